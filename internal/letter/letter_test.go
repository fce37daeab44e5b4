package letter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offerletter/internal/policy"
	"offerletter/internal/roster"
)

func martha() roster.Employee {
	return roster.Employee{
		Name:             "Martha Bennett",
		Band:             policy.BandL3,
		Department:       policy.Engineering,
		Location:         "Bangalore",
		JoiningDate:      time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		BaseSalary:       1200000,
		PerformanceBonus: 100000,
		RetentionBonus:   50000,
		TotalCTC:         1500000,
	}
}

var issued = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

func TestAssemble_Martha(t *testing.T) {
	emp := martha()
	out := Assemble(emp, policy.Resolve(emp.Band, emp.Department), policy.PositionTitle(emp.Department), issued)

	for _, want := range []string{
		"Martha Bennett",
		"Software Engineer",
		"Annual Leave:       18 days",
		"Work From Office:   3 days/week minimum",
		"Band WFO Guidance:  3 days/week\n",
		"Economy (all flights)",
		"₹1,500,000",
		"₹125,000",
		"June 10, 2025",
		"July 1, 2025",
		"Bangalore",
	} {
		assert.Contains(t, out, want)
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	emp := martha()
	snap := policy.Resolve(emp.Band, emp.Department)
	a := Assemble(emp, snap, "Software Engineer", issued)
	b := Assemble(emp, snap, "Software Engineer", issued)
	assert.Equal(t, a, b)
}

func TestAssemble_UnknownKeysUsePlaceholders(t *testing.T) {
	emp := martha()
	emp.Band = "L9"
	emp.Department = "Legal"
	out := Assemble(emp, policy.Resolve(emp.Band, emp.Department), policy.PositionTitle(emp.Department), issued)

	assert.Contains(t, out, policy.DefaultTitle)
	assert.Contains(t, out, "Annual Leave:       "+policy.AsPerPolicy+"\n")
	assert.NotContains(t, out, "days days")
	assert.Contains(t, out, "Work From Office:   "+policy.AsPerTeam)
	assert.Contains(t, out, "Band WFO Guidance:  "+policy.AsPerTeam)
	assert.Contains(t, out, "Approval:           "+policy.AsPerHierarchy)
}

func TestAssemble_SeniorBandLeave(t *testing.T) {
	emp := martha()
	emp.Band = policy.BandL5
	out := Assemble(emp, policy.Resolve(emp.Band, emp.Department), policy.PositionTitle(emp.Department), issued)

	assert.Contains(t, out, "Annual Leave:       Unlimited (with approval)\n")
	assert.Contains(t, out, "Earned Leave:       NA\n")
	assert.Contains(t, out, "Band WFO Guidance:  0-2 days/week (optional)\n")
	assert.Contains(t, out, "Work From Office:   3 days/week minimum\n")
}

func TestAssemble_BandWFOGuidance(t *testing.T) {
	tests := map[policy.Band]string{
		policy.BandL1: "4 days/week minimum",
		policy.BandL2: "3-4 days/week",
		policy.BandL4: "2-3 days/week",
	}
	for band, want := range tests {
		t.Run(string(band), func(t *testing.T) {
			emp := martha()
			emp.Band = band
			out := Assemble(emp, policy.Resolve(emp.Band, emp.Department), "x", issued)
			assert.Contains(t, out, "Band WFO Guidance:  "+want+"\n")
			assert.Regexp(t, `Annual Leave:       \d+ days\n`, out)
		})
	}
}

func TestAssemble_MonthlyGrossFloors(t *testing.T) {
	emp := martha()
	emp.TotalCTC = 1000001
	out := Assemble(emp, policy.Resolve(emp.Band, emp.Department), "x", issued)
	assert.Contains(t, out, "Monthly Gross:      ₹83,333\n")
}

func TestReference(t *testing.T) {
	a := Reference("Martha Bennett", issued)
	assert.True(t, strings.HasPrefix(a, "ABC-"))
	assert.Len(t, a, len("ABC-")+8)
	assert.Equal(t, a, Reference(" martha bennett ", issued))
	assert.NotEqual(t, a, Reference("Martha Bennett", issued.AddDate(0, 0, 1)))
	assert.NotEqual(t, a, Reference("Martha Stevens", issued))
}

func TestFormatINR(t *testing.T) {
	tests := map[int64]string{
		0:       "₹0",
		999:     "₹999",
		125000:  "₹125,000",
		1500000: "₹1,500,000",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatINR(in))
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Martha_Bennett_Offer_Letter.txt", FileName("Martha Bennett"))
	assert.Equal(t, "Cher_Offer_Letter.txt", FileName("Cher"))
	require.Equal(t, "A_B_C_Offer_Letter.txt", FileName("A B C"))
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "letters")
	path, err := Save(dir, "Martha Bennett", "hello")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Martha_Bennett_Offer_Letter.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
