package regdesk

import (
	"bytes"
	"compress/gzip"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

// Report headers as exported by the registration system
var (
	ieltsHeader = []string{
		"Candidate Name", "Country", "Location", "Exam Format", "Registration Date",
		"Test Date", "Payment Ref", "Payment Type", "Total",
	}
	schoolHeader = []string{
		"Candidate Name", "Country", "Centre Name", "Total Local Fee($)",
		"Number Of Exams", "Registration ID", "Payment Reference",
	}
)

// sheetFixture is one worksheet of a generated workbook. Rows are written
// starting at startRow (1 when zero).
type sheetFixture struct {
	name     string
	startRow int
	rows     [][]string
}

// xlsxBytes builds a workbook in memory. The first fixture replaces the default sheet.
func xlsxBytes(t *testing.T, sheets ...sheetFixture) []byte {
	t.Helper()

	file := excelize.NewFile()
	defer file.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, file.SetSheetName("Sheet1", s.name))
		} else {
			_, err := file.NewSheet(s.name)
			require.NoError(t, err)
		}

		start := s.startRow
		if start == 0 {
			start = 1
		}
		for r, row := range s.rows {
			for c, value := range row {
				if value == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, start+r)
				require.NoError(t, err)
				require.NoError(t, file.SetCellValue(s.name, cell, value))
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return buf.Bytes()
}

// writeFixture writes data to name inside a fresh temp dir and returns the path.
func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// captureLogger returns a debug-level JSON logger writing into the returned buffer.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// discardLogger drops every record.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
