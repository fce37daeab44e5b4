// Package policy resolves leave, travel and office entitlements from the
// static band and department tables. Resolution never fails: anything the
// tables do not model comes back as an explicit placeholder so a letter can
// always be produced.
package policy

import "strings"

// Snapshot is the resolved entitlement set for one band/department pair.
type Snapshot struct {
	Band       Band
	Department Department
	Leave      Leave
	Travel     Travel
	Office     Office
	BandKnown  bool
	DeptKnown  bool
}

// WorkFromOffice renders the department's office minimum for the letter,
// e.g. "3 days/week minimum".
func (s Snapshot) WorkFromOffice() string {
	if !s.DeptKnown {
		return s.Office.Minimum
	}
	return s.Office.Minimum + " minimum"
}

// Resolve looks up the entitlements for band and department. Keys are
// matched after trimming; band codes are case-insensitive.
func Resolve(band Band, department Department) Snapshot {
	b := NormalizeBand(string(band))
	d := NormalizeDepartment(string(department))
	snap := Snapshot{Band: b, Department: d}

	leave, lok := leaveByBand[b]
	travel, tok := travelByBand[b]
	if lok && tok {
		snap.Leave, snap.Travel, snap.BandKnown = leave, travel, true
	} else {
		snap.Leave, snap.Travel = unknownLeave, unknownTravel
	}

	if office, ok := officeByDepartment[d]; ok {
		snap.Office, snap.DeptKnown = office, true
	} else {
		snap.Office = unknownOffice
	}
	return snap
}

// PositionTitle returns the offered position for a department.
func PositionTitle(department Department) string {
	if t, ok := titleByDepartment[NormalizeDepartment(string(department))]; ok {
		return t
	}
	return DefaultTitle
}

// NormalizeBand trims and upper-cases a band code ("l3 " -> "L3").
func NormalizeBand(s string) Band {
	return Band(strings.ToUpper(strings.TrimSpace(s)))
}

// NormalizeDepartment maps a department name onto its canonical spelling
// when it matches one case-insensitively; other values are only trimmed.
func NormalizeDepartment(s string) Department {
	s = strings.TrimSpace(s)
	for _, d := range Departments() {
		if strings.EqualFold(s, string(d)) {
			return d
		}
	}
	return Department(s)
}
