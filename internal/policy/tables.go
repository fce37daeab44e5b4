package policy

// Band is an employee seniority tier, L1 lowest to L5 highest.
type Band string

const (
	BandL1 Band = "L1"
	BandL2 Band = "L2"
	BandL3 Band = "L3"
	BandL4 Band = "L4"
	BandL5 Band = "L5"
)

// Department is an organisational unit with its own office policy.
type Department string

const (
	Engineering Department = "Engineering"
	Sales       Department = "Sales"
	HR          Department = "HR"
	Finance     Department = "Finance"
	Operations  Department = "Operations"
)

// Placeholder values used when a band or department has no table row.
const (
	AsPerPolicy    = "As per policy"
	AsPerBand      = "As per band"
	AsPerTeam      = "As per team"
	AsPerHierarchy = "As per hierarchy"
	DefaultTitle   = "Team Member"
)

// Leave is the leave and flexible-work entitlement of one band.
type Leave struct {
	TotalDays  string
	Earned     string
	Sick       string
	Casual     string
	WFH        string
	WFOMinimum string
}

// Travel is the travel entitlement of one band.
type Travel struct {
	FlightClass     string
	HotelCap        string
	PerDiemDomestic string
	PerDiemIntl     string
	ApprovalChain   string
}

// Office is the work-from-office rule of one department.
type Office struct {
	Minimum       string
	SuggestedDays string
	Notes         string
}

var leaveByBand = map[Band]Leave{
	BandL1: {TotalDays: "12", Earned: "6", Sick: "4", Casual: "2", WFH: "Limited", WFOMinimum: "4 days/week minimum"},
	BandL2: {TotalDays: "15", Earned: "8", Sick: "5", Casual: "2", WFH: "Partial", WFOMinimum: "3-4 days/week"},
	BandL3: {TotalDays: "18", Earned: "10", Sick: "6", Casual: "2", WFH: "Hybrid", WFOMinimum: "3 days/week"},
	BandL4: {TotalDays: "22", Earned: "12", Sick: "7", Casual: "3", WFH: "Flexible", WFOMinimum: "2-3 days/week"},
	BandL5: {TotalDays: "Unlimited (with approval)", Earned: "NA", Sick: "NA", Casual: "NA", WFH: "Full Flex", WFOMinimum: "0-2 days/week (optional)"},
}

var travelByBand = map[Band]Travel{
	BandL1: {FlightClass: "Economy (on approval)", HotelCap: "Rs. 2,000/night", PerDiemDomestic: "Rs. 1,500/day", PerDiemIntl: "USD 30/day", ApprovalChain: "Manager + VP"},
	BandL2: {FlightClass: "Economy (>6hrs)", HotelCap: "Rs. 3,000/night", PerDiemDomestic: "Rs. 2,000/day", PerDiemIntl: "USD 40/day", ApprovalChain: "Manager + Director"},
	BandL3: {FlightClass: "Economy (all flights)", HotelCap: "Rs. 5,000/night", PerDiemDomestic: "Rs. 3,500/day", PerDiemIntl: "USD 60/day", ApprovalChain: "Manager"},
	BandL4: {FlightClass: "Premium Economy (>4hrs)", HotelCap: "Rs. 7,500/night", PerDiemDomestic: "Rs. 5,000/day", PerDiemIntl: "USD 80/day", ApprovalChain: "Director"},
	BandL5: {FlightClass: "Business Class", HotelCap: "Rs. 10,000/night", PerDiemDomestic: "Rs. 7,500/day", PerDiemIntl: "USD 120/day", ApprovalChain: "None"},
}

var officeByDepartment = map[Department]Office{
	Engineering: {Minimum: "3 days/week", SuggestedDays: "Mon, Tue, Thu", Notes: "Sprint reviews must be in-office"},
	Sales:       {Minimum: "4-5 days/week", SuggestedDays: "Field visits + office", Notes: "Remote only with RSM approval"},
	HR:          {Minimum: "3 days/week", SuggestedDays: "Mon, Wed, Fri", Notes: "Employee-facing sessions are in-office"},
	Finance:     {Minimum: "4 days/week", SuggestedDays: "Mon to Thu", Notes: "Month-end close requires full week on-site"},
	Operations:  {Minimum: "5 days/week", SuggestedDays: "All working days", Notes: "Shift rosters published weekly"},
}

var titleByDepartment = map[Department]string{
	Engineering: "Software Engineer",
	Sales:       "Sales Executive",
	HR:          "HR Specialist",
	Finance:     "Financial Analyst",
	Operations:  "Operations Associate",
}

var unknownLeave = Leave{
	TotalDays:  AsPerPolicy,
	Earned:     AsPerPolicy,
	Sick:       AsPerPolicy,
	Casual:     AsPerPolicy,
	WFH:        AsPerBand,
	WFOMinimum: AsPerTeam,
}

var unknownTravel = Travel{
	FlightClass:     AsPerBand,
	HotelCap:        AsPerBand,
	PerDiemDomestic: AsPerBand,
	PerDiemIntl:     AsPerBand,
	ApprovalChain:   AsPerHierarchy,
}

var unknownOffice = Office{
	Minimum:       AsPerTeam,
	SuggestedDays: AsPerTeam,
	Notes:         AsPerPolicy,
}

// bands lists the modelled bands in ascending order.
func bands() []Band {
	return []Band{BandL1, BandL2, BandL3, BandL4, BandL5}
}

// Departments lists the modelled departments.
func Departments() []Department {
	return []Department{Engineering, Sales, HR, Finance, Operations}
}
