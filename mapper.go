package regdesk

import "github.com/nao1215/regdesk/domain/model"

// FieldSpec declares where a record attribute comes from: the expected header,
// optional alternative headers, and the value used when none is present.
type FieldSpec struct {
	Header  string
	Aliases []string
	Default string
}

// Field returns a FieldSpec for header with an empty default.
func Field(header string, aliases ...string) FieldSpec {
	return FieldSpec{Header: header, Aliases: aliases}
}

// resolve looks the attribute up in raw. The first name present wins, even if blank.
func (f FieldSpec) resolve(raw model.RawRecord) string {
	if v, ok := raw.Lookup(f.Header); ok {
		return v
	}
	for _, alias := range f.Aliases {
		if v, ok := raw.Lookup(alias); ok {
			return v
		}
	}
	return f.Default
}

// IELTSColumns maps IELTS report headers to IELTSRecord attributes.
type IELTSColumns struct {
	CandidateName    FieldSpec
	Country          FieldSpec
	Location         FieldSpec
	ExamFormat       FieldSpec
	RegistrationDate FieldSpec
	TestDate         FieldSpec
	PaymentRef       FieldSpec
	PaymentType      FieldSpec
	Total            FieldSpec
}

// SchoolColumns maps School report headers to SchoolRecord attributes.
type SchoolColumns struct {
	CandidateName    FieldSpec
	Country          FieldSpec
	CentreName       FieldSpec
	TotalLocalFee    FieldSpec
	NumberOfExams    FieldSpec
	RegistrationID   FieldSpec
	PaymentReference FieldSpec
}

// DefaultIELTSColumns returns the header names of the IELTS "Unpaid" sheet.
func DefaultIELTSColumns() IELTSColumns {
	return IELTSColumns{
		CandidateName:    Field("Candidate Name"),
		Country:          Field("Country"),
		Location:         Field("Location"),
		ExamFormat:       Field("Exam Format"),
		RegistrationDate: Field("Registration Date"),
		TestDate:         Field("Test Date"),
		PaymentRef:       Field("Payment Ref", "Payment Reference"),
		PaymentType:      Field("Payment Type"),
		Total:            Field("Total"),
	}
}

// DefaultSchoolColumns returns the header names of the School report.
func DefaultSchoolColumns() SchoolColumns {
	return SchoolColumns{
		CandidateName:    Field("Candidate Name"),
		Country:          Field("Country"),
		CentreName:       Field("Centre Name", "Center Name"),
		TotalLocalFee:    Field("Total Local Fee($)", "Total Local Fee"),
		NumberOfExams:    Field("Number Of Exams", "Number of Exams"),
		RegistrationID:   Field("Registration ID", "Registration Id"),
		PaymentReference: Field("Payment Reference", "Payment Ref"),
	}
}

// RecordMapper reshapes RawRecords into typed records. Missing columns map to
// the field's default; nothing is validated or coerced.
type RecordMapper struct {
	ielts  IELTSColumns
	school SchoolColumns
}

// MapperOption configures a RecordMapper.
type MapperOption func(*RecordMapper)

// WithIELTSColumns overrides the IELTS column mapping.
func WithIELTSColumns(columns IELTSColumns) MapperOption {
	return func(m *RecordMapper) {
		m.ielts = columns
	}
}

// WithSchoolColumns overrides the School column mapping.
func WithSchoolColumns(columns SchoolColumns) MapperOption {
	return func(m *RecordMapper) {
		m.school = columns
	}
}

// NewRecordMapper creates a mapper using the default columns unless overridden.
func NewRecordMapper(opts ...MapperOption) *RecordMapper {
	m := &RecordMapper{
		ielts:  DefaultIELTSColumns(),
		school: DefaultSchoolColumns(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MapIELTS maps one raw IELTS row.
func (m *RecordMapper) MapIELTS(raw model.RawRecord) model.IELTSRecord {
	c := m.ielts
	return model.IELTSRecord{
		CandidateName:    c.CandidateName.resolve(raw),
		Country:          c.Country.resolve(raw),
		Location:         c.Location.resolve(raw),
		ExamFormat:       c.ExamFormat.resolve(raw),
		RegistrationDate: c.RegistrationDate.resolve(raw),
		TestDate:         c.TestDate.resolve(raw),
		PaymentRef:       c.PaymentRef.resolve(raw),
		PaymentType:      c.PaymentType.resolve(raw),
		Total:            c.Total.resolve(raw),
	}
}

// MapSchool maps one raw School row.
func (m *RecordMapper) MapSchool(raw model.RawRecord) model.SchoolRecord {
	c := m.school
	return model.SchoolRecord{
		CandidateName:    c.CandidateName.resolve(raw),
		Country:          c.Country.resolve(raw),
		CentreName:       c.CentreName.resolve(raw),
		TotalLocalFee:    c.TotalLocalFee.resolve(raw),
		NumberOfExams:    c.NumberOfExams.resolve(raw),
		RegistrationID:   c.RegistrationID.resolve(raw),
		PaymentReference: c.PaymentReference.resolve(raw),
	}
}

// MapAllIELTS maps raw rows in order.
func (m *RecordMapper) MapAllIELTS(raws []model.RawRecord) []model.IELTSRecord {
	out := make([]model.IELTSRecord, 0, len(raws))
	for _, raw := range raws {
		out = append(out, m.MapIELTS(raw))
	}
	return out
}

// MapAllSchool maps raw rows in order.
func (m *RecordMapper) MapAllSchool(raws []model.RawRecord) []model.SchoolRecord {
	out := make([]model.SchoolRecord, 0, len(raws))
	for _, raw := range raws {
		out = append(out, m.MapSchool(raw))
	}
	return out
}
