package model

// Identity builds the composite lookup key "{country} {candidateName} {referenceID}".
// No escaping or normalization is applied, so distinct triples can collide.
func Identity(country, candidateName, referenceID string) string {
	return country + " " + candidateName + " " + referenceID
}

// Line is one labeled line of a formatted lookup result.
type Line struct {
	Label string
	Value string
}

// String renders the line as "Label: Value".
func (l Line) String() string {
	return l.Label + ": " + l.Value
}

// Record is a mapped report record that can be indexed and displayed.
type Record interface {
	// Product returns the report kind of the record.
	Product() ProductType
	// Identity returns the composite lookup key of the record.
	Identity() string
	// GetCountry returns the candidate's country.
	GetCountry() string
	// GetCandidateName returns the candidate's name.
	GetCandidateName() string
	// Lines returns the record's display lines in their fixed order.
	Lines() []Line
}

// IELTSRecord is one row of the IELTS report.
type IELTSRecord struct {
	CandidateName    string
	Country          string
	Location         string
	ExamFormat       string
	RegistrationDate string
	TestDate         string
	PaymentRef       string
	PaymentType      string
	Total            string
}

// Product returns ProductIELTS.
func (r IELTSRecord) Product() ProductType { return ProductIELTS }

// Identity is keyed on the payment reference.
func (r IELTSRecord) Identity() string {
	return Identity(r.Country, r.CandidateName, r.PaymentRef)
}

// GetCountry returns the candidate's country.
func (r IELTSRecord) GetCountry() string { return r.Country }

// GetCandidateName returns the candidate's name.
func (r IELTSRecord) GetCandidateName() string { return r.CandidateName }

// Lines returns Location, Exam Format, Registration Date, Test Date,
// Payment Ref, Payment Type and Total, in that order.
func (r IELTSRecord) Lines() []Line {
	return []Line{
		{Label: "Location", Value: r.Location},
		{Label: "Exam Format", Value: r.ExamFormat},
		{Label: "Registration Date", Value: r.RegistrationDate},
		{Label: "Test Date", Value: r.TestDate},
		{Label: "Payment Ref", Value: r.PaymentRef},
		{Label: "Payment Type", Value: r.PaymentType},
		{Label: "Total", Value: r.Total},
	}
}

// SchoolRecord is one row of the School report.
type SchoolRecord struct {
	CandidateName    string
	Country          string
	CentreName       string
	TotalLocalFee    string
	NumberOfExams    string
	RegistrationID   string
	PaymentReference string
}

// Product returns ProductSchool.
func (r SchoolRecord) Product() ProductType { return ProductSchool }

// Identity is keyed on the registration id.
func (r SchoolRecord) Identity() string {
	return Identity(r.Country, r.CandidateName, r.RegistrationID)
}

// GetCountry returns the candidate's country.
func (r SchoolRecord) GetCountry() string { return r.Country }

// GetCandidateName returns the candidate's name.
func (r SchoolRecord) GetCandidateName() string { return r.CandidateName }

// Lines returns Centre Name, Total Local Fee($), Number Of Exams and
// Payment Reference, in that order.
func (r SchoolRecord) Lines() []Line {
	return []Line{
		{Label: "Centre Name", Value: r.CentreName},
		{Label: "Total Local Fee($)", Value: r.TotalLocalFee},
		{Label: "Number Of Exams", Value: r.NumberOfExams},
		{Label: "Payment Reference", Value: r.PaymentReference},
	}
}

// LookupKey is a single query against the index.
type LookupKey struct {
	Product       ProductType
	Country       string
	CandidateName string
	ReferenceID   string
}

// Identity returns the composite key the lookup resolves to.
func (k LookupKey) Identity() string {
	return Identity(k.Country, k.CandidateName, k.ReferenceID)
}

// BlankPolicy selects which blank values are left out of the dropdown sets.
type BlankPolicy int

const (
	// BlankNamesOnly excludes empty candidate names; empty countries are kept.
	BlankNamesOnly BlankPolicy = iota
	// BlankNamesAndCountries excludes both empty candidate names and empty countries.
	BlankNamesAndCountries
)

// String returns the string representation of BlankPolicy
func (p BlankPolicy) String() string {
	switch p {
	case BlankNamesAndCountries:
		return "names-and-countries"
	default:
		return "names-only"
	}
}

// ExcludesBlankCountries reports whether empty countries are filtered.
func (p BlankPolicy) ExcludesBlankCountries() bool {
	return p == BlankNamesAndCountries
}
