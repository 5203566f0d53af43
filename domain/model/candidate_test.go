package model

import (
	"errors"
	"testing"
)

func TestIdentity(t *testing.T) {
	t.Parallel()

	if got := Identity("UK", "Jane Doe", "REF1"); got != "UK Jane Doe REF1" {
		t.Errorf("Identity() = %q", got)
	}
	if got := Identity("", "", ""); got != "  " {
		t.Errorf("Identity of blanks = %q, want two spaces", got)
	}
	// Spaces are not escaped, so these two triples share a key.
	if Identity("New", "Zealand Kim", "1") != Identity("New Zealand", "Kim", "1") {
		t.Error("expected colliding identities")
	}
}

func TestIELTSRecord(t *testing.T) {
	t.Parallel()

	r := IELTSRecord{
		CandidateName:    "Jane Doe",
		Country:          "UK",
		Location:         "London",
		ExamFormat:       "Paper",
		RegistrationDate: "2020-01-01",
		TestDate:         "2020-02-01",
		PaymentRef:       "P123",
		PaymentType:      "Card",
		Total:            "200",
	}

	if r.Product() != ProductIELTS {
		t.Errorf("Product() = %v", r.Product())
	}
	if r.Identity() != "UK Jane Doe P123" {
		t.Errorf("Identity() = %q", r.Identity())
	}

	wantLabels := []string{"Location", "Exam Format", "Registration Date", "Test Date", "Payment Ref", "Payment Type", "Total"}
	lines := r.Lines()
	if len(lines) != len(wantLabels) {
		t.Fatalf("Lines() len = %d, want %d", len(lines), len(wantLabels))
	}
	for i, l := range lines {
		if l.Label != wantLabels[i] {
			t.Errorf("line %d label = %q, want %q", i, l.Label, wantLabels[i])
		}
	}
	if lines[0].String() != "Location: London" {
		t.Errorf("first line = %q", lines[0].String())
	}
}

func TestIELTSRecord_EmptyLinesStillPresent(t *testing.T) {
	t.Parallel()

	lines := IELTSRecord{}.Lines()
	if len(lines) != 7 {
		t.Fatalf("Lines() len = %d, want 7", len(lines))
	}
	if lines[6].String() != "Total: " {
		t.Errorf("last line = %q", lines[6].String())
	}
}

func TestSchoolRecord(t *testing.T) {
	t.Parallel()

	r := SchoolRecord{
		CandidateName:    "Ali",
		Country:          "PK",
		CentreName:       "Lahore Centre",
		TotalLocalFee:    "55",
		NumberOfExams:    "3",
		RegistrationID:   "R9",
		PaymentReference: "PAY9",
	}

	if r.Product() != ProductSchool {
		t.Errorf("Product() = %v", r.Product())
	}
	if r.Identity() != "PK Ali R9" {
		t.Errorf("Identity() = %q", r.Identity())
	}

	wantLabels := []string{"Centre Name", "Total Local Fee($)", "Number Of Exams", "Payment Reference"}
	for i, l := range r.Lines() {
		if l.Label != wantLabels[i] {
			t.Errorf("line %d label = %q, want %q", i, l.Label, wantLabels[i])
		}
	}
}

func TestLookupKey_Identity(t *testing.T) {
	t.Parallel()

	k := LookupKey{Product: ProductSchool, Country: "PK", CandidateName: "Ali", ReferenceID: "R9"}
	if k.Identity() != (SchoolRecord{Country: "PK", CandidateName: "Ali", RegistrationID: "R9"}).Identity() {
		t.Error("lookup key and record identity must be built identically")
	}
}

func TestParseProductType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ProductType
		wantErr bool
	}{
		{in: "IELTS", want: ProductIELTS},
		{in: "ielts", want: ProductIELTS},
		{in: " School ", want: ProductSchool},
		{in: "TOEFL", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseProductType(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidProductType) {
					t.Errorf("ParseProductType(%q) error = %v, want ErrInvalidProductType", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProductType(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseProductType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestProductTypes(t *testing.T) {
	t.Parallel()

	got := ProductTypes()
	if len(got) != 2 || got[0].String() != "IELTS" || got[1].String() != "School" {
		t.Errorf("ProductTypes() = %v", got)
	}
	if ProductType(7).IsValid() {
		t.Error("unknown product should be invalid")
	}
}

func TestBlankPolicy(t *testing.T) {
	t.Parallel()

	if BlankNamesOnly.ExcludesBlankCountries() {
		t.Error("BlankNamesOnly must keep blank countries")
	}
	if !BlankNamesAndCountries.ExcludesBlankCountries() {
		t.Error("BlankNamesAndCountries must drop blank countries")
	}
}
