// Package letter renders offer letters as plain text.
package letter

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"offerletter/internal/policy"
	"offerletter/internal/roster"
)

// Company is the issuing organisation named in every letter.
const Company = "Company ABC"

const (
	dateLayout = "January 2, 2006"
	rule       = "================================================================"
	fileSuffix = "_Offer_Letter.txt"
)

// referenceSpace namespaces letter reference numbers.
var referenceSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://company-abc.example/offer-letters"))

// Assemble renders the offer letter for emp. It is a pure function of its
// arguments: the same inputs always produce the same text.
func Assemble(emp roster.Employee, snap policy.Snapshot, title string, date time.Time) string {
	var b strings.Builder
	w := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }

	w(rule)
	w("OFFER LETTER - %s", strings.ToUpper(Company))
	w(rule)
	w("")
	w("Reference: %s", Reference(emp.Name, date))
	w("Date:      %s", date.Format(dateLayout))
	w("")
	w("Dear %s,", emp.Name)
	w("")
	w("We are delighted to offer you the position of %s in the %s team at %s.", title, emp.Department, Company)
	w("This letter sets out the terms of your employment.")
	w("")

	w("1. CANDIDATE DETAILS")
	w("   Name:          %s", emp.Name)
	w("   Position:      %s", title)
	w("   Department:    %s", emp.Department)
	w("   Band:          %s", emp.Band)
	w("   Location:      %s", emp.Location)
	w("   Joining Date:  %s", emp.JoiningDate.Format(dateLayout))
	w("")

	w("2. COMPENSATION (per annum)")
	w("   Base Salary:        %s", FormatINR(emp.BaseSalary))
	w("   Performance Bonus:  %s", FormatINR(emp.PerformanceBonus))
	w("   Retention Bonus:    %s", FormatINR(emp.RetentionBonus))
	w("   Total CTC:          %s", FormatINR(emp.TotalCTC))
	w("   Monthly Gross:      %s", FormatINR(emp.TotalCTC/12))
	w("")

	w("3. LEAVE AND WORK FROM OFFICE (Band %s)", snap.Band)
	w("   Annual Leave:       %s", days(snap.Leave.TotalDays))
	w("   Earned Leave:       %s", snap.Leave.Earned)
	w("   Sick Leave:         %s", snap.Leave.Sick)
	w("   Casual Leave:       %s", snap.Leave.Casual)
	w("   Work From Home:     %s", snap.Leave.WFH)
	w("   Work From Office:   %s", snap.WorkFromOffice())
	w("   Band WFO Guidance:  %s", snap.Leave.WFOMinimum)
	w("   Suggested Days:     %s", snap.Office.SuggestedDays)
	w("   Team Notes:         %s", snap.Office.Notes)
	w("")

	w("4. TRAVEL ENTITLEMENTS")
	w("   Flight Class:       %s", snap.Travel.FlightClass)
	w("   Hotel Cap:          %s", snap.Travel.HotelCap)
	w("   Per Diem (India):   %s", snap.Travel.PerDiemDomestic)
	w("   Per Diem (Intl):    %s", snap.Travel.PerDiemIntl)
	w("   Approval:           %s", snap.Travel.ApprovalChain)
	w("")

	w("5. TERMS AND CONDITIONS")
	for i, t := range terms {
		w("   %c. %s", 'a'+i, t)
	}
	w("")

	w("Please sign and return a copy of this letter to confirm your acceptance.")
	w("We look forward to welcoming you on %s.", emp.JoiningDate.Format(dateLayout))
	w("")
	w("Sincerely,")
	w("")
	w("Human Resources")
	w("%s", Company)
	w(rule)
	return b.String()
}

var terms = []string{
	"This offer is subject to satisfactory background verification.",
	"You will serve a probation period of six months from your joining date.",
	"Either party may terminate employment with 60 days written notice after confirmation.",
	"Compensation details are confidential and must not be shared.",
	"Leave and travel entitlements follow the prevailing company policies, which may be revised.",
}

// days appends the unit to numeric day counts; descriptive values such as
// "Unlimited (with approval)" are printed as-is.
func days(v string) string {
	if _, err := strconv.Atoi(v); err != nil {
		return v
	}
	return v + " days"
}

// Reference returns the letter reference number for name on date. It is
// derived from both values, so regenerating a letter keeps its reference.
func Reference(name string, date time.Time) string {
	id := uuid.NewSHA1(referenceSpace, []byte(strings.ToLower(strings.TrimSpace(name))+"|"+date.Format("2006-01-02")))
	return "ABC-" + strings.ToUpper(id.String()[:8])
}

// FormatINR prints a rupee amount with comma grouping, e.g. ₹1,500,000.
func FormatINR(amount int64) string {
	return message.NewPrinter(language.English).Sprintf("₹%d", amount)
}

// FileName is the download name of the letter for name.
func FileName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_") + fileSuffix
}

// Save writes text to dir under FileName(name), creating dir if needed, and
// returns the written path.
func Save(dir, name, text string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(name))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
