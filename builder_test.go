package regdesk

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/regdesk/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeReports writes an IELTS and a School workbook into one temp dir.
func writeReports(t *testing.T) (ieltsPath, schoolPath string) {
	t.Helper()

	dir := t.TempDir()
	ieltsPath = filepath.Join(dir, "ORS.xlsx")
	schoolPath = filepath.Join(dir, "schools.xlsx")

	require.NoError(t, os.WriteFile(ieltsPath, xlsxBytes(t,
		sheetFixture{name: "Paid", rows: [][]string{ieltsHeader, {"Paid Person", "UK", "", "", "", "", "P0"}}},
		sheetFixture{name: "Unpaid", rows: [][]string{
			ieltsHeader,
			{"Jane Doe", "UK", "London", "CD", "2024-01-02", "2024-02-03", "P123", "Card", "250"},
			{"Amir Ali", "PK", "Lahore", "PB", "2024-01-05", "2024-03-01", "P200", "Cash", "240"},
		}},
	), 0o600))

	require.NoError(t, os.WriteFile(schoolPath, xlsxBytes(t,
		sheetFixture{name: "Registrations", rows: [][]string{
			schoolHeader,
			{"Ali Khan", "PK", "Lahore Centre", "120", "3", "R-1", "PR-1"},
			{"Bea Lin", "", "Remote", "80", "1", "R-2", "PR-2"},
		}},
	), 0o600))
	return ieltsPath, schoolPath
}

func TestNewBuilder(t *testing.T) {
	t.Parallel()

	builder := NewBuilder()
	require.NotNil(t, builder)
	assert.Empty(t, builder.sources)
	assert.Equal(t, DefaultRowCacheSize, builder.rowCacheSize)
	assert.Equal(t, model.BlankNamesOnly, builder.blankPolicy)
}

func TestDeskBuilder_Setters(t *testing.T) {
	t.Parallel()

	builder := NewBuilder().
		AddIELTSReport("ORS.xlsx", "Unpaid").
		AddSchoolReport("schools.csv", "").
		SetRowCacheSize(0).
		SetKeepEmptyRows(true).
		SetUnzipXMLSizeLimit(1 << 20).
		SetBlankPolicy(model.BlankNamesAndCountries)

	assert.Equal(t, reportSource{path: "ORS.xlsx", sheet: "Unpaid"}, builder.sources[model.ProductIELTS])
	assert.Equal(t, reportSource{path: "schools.csv"}, builder.sources[model.ProductSchool])
	assert.Equal(t, DefaultRowCacheSize, builder.rowCacheSize, "invalid size falls back to the default")
	assert.True(t, builder.keepEmptyRows)
	assert.Equal(t, int64(1<<20), builder.unzipXMLSizeLimit)
	assert.Equal(t, model.BlankNamesAndCountries, builder.blankPolicy)

	builder.AddIELTSReport("other.xlsx", "Unpaid")
	assert.Equal(t, "other.xlsx", builder.sources[model.ProductIELTS].path, "a later report replaces the earlier one")
}

func TestDeskBuilder_BuildValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		builder *DeskBuilder
		want    error
	}{
		{name: "no reports", builder: NewBuilder(), want: ErrNoReports},
		{name: "blank paths", builder: NewBuilder().AddIELTSReport(" ", "Unpaid").AddSchoolReport("", ""), want: ErrNoReports},
		{name: "unsupported extension", builder: NewBuilder().AddIELTSReport("ORS.json", "Unpaid"), want: ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			desk, err := tt.builder.SetLogger(discardLogger()).Build(context.Background())
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, desk)
		})
	}
}

func TestDeskBuilder_Build(t *testing.T) {
	t.Parallel()

	t.Run("both reports", func(t *testing.T) {
		t.Parallel()

		ieltsPath, schoolPath := writeReports(t)
		desk, err := NewBuilder().
			AddIELTSReport(ieltsPath, DefaultIELTSSheet).
			AddSchoolReport(schoolPath, DefaultSchoolSheet).
			SetLogger(discardLogger()).
			Build(context.Background())
		require.NoError(t, err)

		summary := desk.Summary()
		assert.Equal(t, 2, summary.IELTSRows)
		assert.Equal(t, 2, summary.SchoolRows)
		assert.NoError(t, summary.IELTSError)
		assert.NoError(t, summary.SchoolError)

		_, ok := desk.Index().LookupIELTS("UK", "Paid Person", "P0")
		assert.False(t, ok, "only the configured sheet is read")
		assert.Equal(t, []string{"", "PK", "UK"}, desk.Countries())
		assert.Equal(t, []string{"Ali Khan", "Amir Ali", "Bea Lin", "Jane Doe"}, desk.CandidateNames())
	})

	t.Run("missing report is logged and skipped", func(t *testing.T) {
		t.Parallel()

		_, schoolPath := writeReports(t)
		missing := filepath.Join(t.TempDir(), "ORS.xlsx")
		logger, logs := captureLogger()

		desk, err := NewBuilder().
			AddIELTSReport(missing, DefaultIELTSSheet).
			AddSchoolReport(schoolPath, "").
			SetLogger(logger).
			Build(context.Background())
		require.NoError(t, err)

		summary := desk.Summary()
		assert.ErrorIs(t, summary.IELTSError, ErrReportNotFound)
		assert.Equal(t, 0, summary.IELTSRows)
		assert.Equal(t, 2, summary.SchoolRows)

		out := logs.String()
		assert.Contains(t, out, `"msg":"report not found"`)
		assert.Contains(t, out, `"level":"WARN"`)
		assert.Contains(t, out, `"report":"IELTS"`)
		assert.Contains(t, out, `"sheet":"Unpaid"`)

		_, err = desk.GetInformation("School", "PK", "Ali Khan", "R-1")
		assert.NoError(t, err)
	})

	t.Run("unreadable report is logged and skipped", func(t *testing.T) {
		t.Parallel()

		ieltsPath, _ := writeReports(t)
		broken := writeFixture(t, "schools.xlsx", []byte("garbage"))
		logger, logs := captureLogger()

		desk, err := NewBuilder().
			AddIELTSReport(ieltsPath, DefaultIELTSSheet).
			AddSchoolReport(broken, "").
			SetLogger(logger).
			Build(context.Background())
		require.NoError(t, err)

		assert.ErrorIs(t, desk.Summary().SchoolError, ErrReportUnreadable)
		assert.Contains(t, logs.String(), `"msg":"report read failed"`)
		assert.Equal(t, 2, desk.Index().Len(model.ProductIELTS))
	})

	t.Run("directory in place of a report is logged and skipped", func(t *testing.T) {
		t.Parallel()

		_, schoolPath := writeReports(t)
		dir := filepath.Join(t.TempDir(), "ORS.xlsx")
		require.NoError(t, os.Mkdir(dir, 0o750))
		logger, logs := captureLogger()

		desk, err := NewBuilder().
			AddIELTSReport(dir, DefaultIELTSSheet).
			AddSchoolReport(schoolPath, "").
			SetLogger(logger).
			Build(context.Background())
		require.NoError(t, err)

		assert.ErrorIs(t, desk.Summary().IELTSError, ErrReportUnreadable)
		assert.Contains(t, logs.String(), `"msg":"report read failed"`)

		got, err := desk.GetInformation("School", "PK", "Ali Khan", "R-1")
		require.NoError(t, err)
		assert.Contains(t, got, "Centre Name: Lahore Centre")
	})

	t.Run("missing sheet is a read failure", func(t *testing.T) {
		t.Parallel()

		ieltsPath, _ := writeReports(t)
		logger, logs := captureLogger()

		desk, err := NewBuilder().
			AddIELTSReport(ieltsPath, "Archived").
			SetLogger(logger).
			Build(context.Background())
		require.NoError(t, err)

		assert.ErrorIs(t, desk.Summary().IELTSError, ErrSheetNotFound)
		assert.Contains(t, logs.String(), `"msg":"report read failed"`)
		assert.Empty(t, desk.Countries())
	})

	t.Run("canceled context fails the build", func(t *testing.T) {
		t.Parallel()

		ieltsPath, _ := writeReports(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewBuilder().AddIELTSReport(ieltsPath, DefaultIELTSSheet).SetLogger(discardLogger()).Build(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("blank policy and custom columns", func(t *testing.T) {
		t.Parallel()

		path := writeFixture(t, "schools.csv", []byte("Name,Country,Candidate No\nAli Khan,PK,C-1\nBea Lin,,C-2\n"))
		columns := DefaultSchoolColumns()
		columns.CandidateName = Field("Name")
		columns.RegistrationID = Field("Candidate No")

		desk, err := NewBuilder().
			AddSchoolReport(path, "").
			SetSchoolColumns(columns).
			SetBlankPolicy(model.BlankNamesAndCountries).
			SetLogger(discardLogger()).
			Build(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{"PK"}, desk.Countries())
		_, ok := desk.Index().LookupSchool("", "Bea Lin", "C-2")
		assert.True(t, ok)
	})

	t.Run("later builder changes do not affect the desk", func(t *testing.T) {
		t.Parallel()

		ieltsPath, _ := writeReports(t)
		builder := NewBuilder().AddIELTSReport(ieltsPath, DefaultIELTSSheet).SetLogger(discardLogger())
		desk, err := builder.Build(context.Background())
		require.NoError(t, err)

		builder.AddIELTSReport(filepath.Join(t.TempDir(), "gone.xlsx"), DefaultIELTSSheet)
		require.NoError(t, desk.Reload(context.Background()))
		assert.Equal(t, 2, desk.Index().Len(model.ProductIELTS))
	})
}

func TestDeskBuilder_IngestLogsSummary(t *testing.T) {
	t.Parallel()

	ieltsPath, schoolPath := writeReports(t)
	logger, logs := captureLogger()

	_, err := NewBuilder().
		AddIELTSReport(ieltsPath, DefaultIELTSSheet).
		AddSchoolReport(schoolPath, "").
		SetLogger(logger).
		Build(context.Background())
	require.NoError(t, err)

	var line string
	for _, l := range strings.Split(logs.String(), "\n") {
		if strings.Contains(l, `"msg":"reports indexed"`) {
			line = l
		}
	}
	require.NotEmpty(t, line)
	assert.Contains(t, line, `"ielts_rows":2`)
	assert.Contains(t, line, `"school_identities":2`)
}
