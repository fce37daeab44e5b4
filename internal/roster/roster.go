package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	oerrors "offerletter/internal/errors"
	"offerletter/internal/policy"
)

// Required roster columns, in the order they usually appear.
const (
	ColName             = "Employee Name"
	ColBand             = "Band"
	ColDepartment       = "Department"
	ColLocation         = "Location"
	ColJoiningDate      = "Joining Date"
	ColBaseSalary       = "Base Salary (INR)"
	ColPerformanceBonus = "Performance Bonus (INR)"
	ColRetentionBonus   = "Retention Bonus (INR)"
	ColTotalCTC         = "Total CTC (INR)"
)

var requiredColumns = []string{
	ColName, ColBand, ColDepartment, ColLocation, ColJoiningDate,
	ColBaseSalary, ColPerformanceBonus, ColRetentionBonus, ColTotalCTC,
}

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// Employee is one roster row, typed at load time.
type Employee struct {
	Name             string
	Band             policy.Band
	Department       policy.Department
	Location         string
	JoiningDate      time.Time
	BaseSalary       int64
	PerformanceBonus int64
	RetentionBonus   int64
	TotalCTC         int64
}

// Roster is the immutable, load-ordered set of employees.
type Roster struct {
	employees []Employee
}

// Load reads a roster CSV file. Any missing file, missing column or
// malformed cell fails the whole load.
func Load(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, oerrors.NewIngestionFailure(path, err)
	}
	defer f.Close()
	r, err := Parse(f)
	if err != nil {
		return nil, oerrors.NewIngestionFailure(path, err)
	}
	return r, nil
}

// Parse reads roster CSV data with a header row.
func Parse(src io.Reader) (*Roster, error) {
	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("roster is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var employees []Employee
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}
		emp, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		employees = append(employees, emp)
	}
	return &Roster{employees: employees}, nil
}

func parseRow(rec []string, cols map[string]int) (Employee, error) {
	cell := func(name string) string {
		i := cols[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	emp := Employee{
		Name:       cell(ColName),
		Band:       policy.NormalizeBand(cell(ColBand)),
		Department: policy.NormalizeDepartment(cell(ColDepartment)),
		Location:   cell(ColLocation),
	}
	if emp.Name == "" {
		return Employee{}, fmt.Errorf("%s is empty", ColName)
	}

	joined, err := parseDate(cell(ColJoiningDate))
	if err != nil {
		return Employee{}, fmt.Errorf("%s: %w", ColJoiningDate, err)
	}
	emp.JoiningDate = joined

	money := []struct {
		col string
		dst *int64
	}{
		{ColBaseSalary, &emp.BaseSalary},
		{ColPerformanceBonus, &emp.PerformanceBonus},
		{ColRetentionBonus, &emp.RetentionBonus},
		{ColTotalCTC, &emp.TotalCTC},
	}
	for _, m := range money {
		v, err := parseAmount(cell(m.col))
		if err != nil {
			return Employee{}, fmt.Errorf("%s: %w", m.col, err)
		}
		*m.dst = v
	}
	return emp, nil
}

// parseAmount accepts plain integers plus the decorations spreadsheets add:
// thousands separators, a rupee sign, an INR prefix or a ".00" tail.
func parseAmount(s string) (int64, error) {
	clean := strings.NewReplacer(",", "", "₹", "", "INR", "", " ", "").Replace(s)
	clean = strings.TrimSuffix(clean, ".00")
	if clean == "" {
		return 0, errors.New("amount is empty")
	}
	v, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative amount %q", s)
	}
	return v, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Len returns the number of employees.
func (r *Roster) Len() int { return len(r.employees) }

// Employees returns a copy of the employees in load order.
func (r *Roster) Employees() []Employee {
	out := make([]Employee, len(r.employees))
	copy(out, r.employees)
	return out
}

// Resolve returns the first employee, in load order, whose name contains
// query case-insensitively. Several matches are not an error: the earliest
// row wins.
func (r *Roster) Resolve(query string) (Employee, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Employee{}, oerrors.NewEmployeeNotFound(query)
	}
	for _, e := range r.employees {
		if strings.Contains(strings.ToLower(e.Name), q) {
			return e, nil
		}
	}
	return Employee{}, oerrors.NewEmployeeNotFound(query)
}
