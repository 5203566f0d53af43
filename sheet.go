package regdesk

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nao1215/regdesk/domain/model"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Processing constants (rows-based)
const (
	// DefaultRowCacheSize is the default number of rows handed to a chunk processor at once
	DefaultRowCacheSize = 100
	// MinRowCacheSize is the minimum allowed rows per chunk
	MinRowCacheSize = 1
)

// Default sheet names
const (
	// DefaultIELTSSheet is the data-bearing sheet of the IELTS report
	DefaultIELTSSheet = "Unpaid"
	// DefaultSchoolSheet selects the first sheet of the School report
	DefaultSchoolSheet = ""
)

// ChunkSize is the row-cache window of a streaming parse.
type ChunkSize int

// NewChunkSize creates a new ChunkSize with validation
func NewChunkSize(size int) ChunkSize {
	if size < MinRowCacheSize {
		return ChunkSize(DefaultRowCacheSize)
	}
	return ChunkSize(size)
}

// Int returns the int value of ChunkSize
func (cs ChunkSize) Int() int {
	return int(cs)
}

// String returns the string representation of ChunkSize
func (cs ChunkSize) String() string {
	return strconv.Itoa(int(cs))
}

// chunkProcessor receives up to one row-cache window of records.
// The slice is reused once the processor returns.
type chunkProcessor func(chunk []model.RawRecord) error

// SheetParser streams one sheet of a report into RawRecords.
//
// The first row with any populated cell is the header; every later row is read
// positionally for exactly as many columns as the header has. Missing cells are
// blank, values are trimmed, and row order is preserved.
type SheetParser struct {
	path              string
	sheet             string
	chunkSize         ChunkSize
	keepEmptyRows     bool
	unzipXMLSizeLimit int64
	textEncoding      encoding.Encoding
	logger            *slog.Logger
}

// ParserOption configures a SheetParser.
type ParserOption func(*SheetParser)

// WithRowCacheSize sets the number of rows buffered per chunk.
func WithRowCacheSize(size int) ParserOption {
	return func(p *SheetParser) {
		p.chunkSize = NewChunkSize(size)
	}
}

// WithKeepEmptyRows keeps data rows that have no populated cell as all-blank records.
func WithKeepEmptyRows(keep bool) ParserOption {
	return func(p *SheetParser) {
		p.keepEmptyRows = keep
	}
}

// WithUnzipXMLSizeLimit sets the worksheet XML size above which excelize
// spills the sheet to a temporary file instead of holding it in memory.
func WithUnzipXMLSizeLimit(limit int64) ParserOption {
	return func(p *SheetParser) {
		p.unzipXMLSizeLimit = limit
	}
}

// WithTextEncoding sets the encoding of delimited reports that carry no byte
// order mark, such as charmap.Windows1252 for legacy CSV exports. The default is UTF-8.
func WithTextEncoding(enc encoding.Encoding) ParserOption {
	return func(p *SheetParser) {
		if enc != nil {
			p.textEncoding = enc
		}
	}
}

// WithParserLogger sets the logger used for diagnostics.
func WithParserLogger(logger *slog.Logger) ParserOption {
	return func(p *SheetParser) {
		p.logger = logger
	}
}

// NewSheetParser creates a parser for the named sheet of the report at path.
// An empty sheet name selects the first sheet. Delimited reports (CSV, TSV)
// have a single implicit sheet and ignore the name.
func NewSheetParser(path, sheet string, opts ...ParserOption) *SheetParser {
	p := &SheetParser{
		path:         path,
		sheet:        sheet,
		chunkSize:    NewChunkSize(DefaultRowCacheSize),
		textEncoding: unicode.UTF8,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Path returns the report path.
func (p *SheetParser) Path() string {
	return p.path
}

// Sheet returns the configured sheet name.
func (p *SheetParser) Sheet() string {
	return p.sheet
}

// Parse reads every data row of the sheet. On failure the returned error is a
// *ParseError and no records are returned.
func (p *SheetParser) Parse(ctx context.Context) ([]model.RawRecord, error) {
	var records []model.RawRecord
	err := p.ParseInChunks(ctx, func(chunk []model.RawRecord) error {
		records = append(records, chunk...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Debug("report parsed", "path", p.path, "sheet", p.sheet, "rows", len(records))
	return records, nil
}

// ParseInChunks streams the sheet and hands records to fn one row-cache window
// at a time. An error returned by fn stops the parse and is returned as is.
func (p *SheetParser) ParseInChunks(ctx context.Context, fn func(chunk []model.RawRecord) error) error {
	report := model.NewReportFile(p.path)
	if !report.IsSupported() {
		return newParseError("parse", p.path, p.sheet, ErrUnsupportedFormat, nil)
	}

	reader, cleanup, err := openReport(report)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newParseError("open", p.path, p.sheet, ErrReportNotFound, err)
		}
		return newParseError("open", p.path, p.sheet, ErrReportUnreadable, err)
	}
	defer handleCloseError(cleanup)()

	p.logger.Debug("streaming report",
		"path", p.path,
		"sheet", p.sheet,
		"format", report.Type().String(),
		"compression", report.Compression().String(),
		"row_cache", p.chunkSize.Int(),
	)

	var rows rowIterator
	switch report.Type() {
	case model.FileTypeXLSX:
		rows, err = p.openXLSXRows(reader)
		if err != nil {
			return err
		}
	case model.FileTypeCSV:
		rows = newDelimitedRows(reader, ',', p.textEncoding)
	case model.FileTypeTSV:
		rows = newDelimitedRows(reader, '\t', p.textEncoding)
	default:
		return newParseError("parse", p.path, p.sheet, ErrUnsupportedFormat, nil)
	}
	defer handleCloseError(rows.Close)()

	return p.stream(ctx, rows, fn)
}

// stream converts rows to records, emitting them in chunks.
func (p *SheetParser) stream(ctx context.Context, rows rowIterator, fn chunkProcessor) error {
	var (
		header    model.Header
		hasHeader bool
		chunkSize = p.chunkSize.Int()
		chunk     = make([]model.RawRecord, 0, chunkSize)
	)

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		cells, err := rows.Columns()
		if err != nil {
			return newParseError("read", p.path, p.sheet, ErrReportUnreadable, err)
		}

		// Skip leading empty rows
		if !hasHeader {
			if isEmptyRow(cells) {
				continue
			}
			header = model.NewHeader(cells)
			hasHeader = true
			continue
		}

		record := model.NewRawRecord(header, cells)
		if !p.keepEmptyRows && record.IsBlank() {
			continue
		}
		chunk = append(chunk, record)

		if len(chunk) >= chunkSize {
			if err := fn(chunk); err != nil {
				return err
			}
			chunk = chunk[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return newParseError("read", p.path, p.sheet, ErrReportUnreadable, err)
	}

	if len(chunk) > 0 {
		return fn(chunk)
	}
	return nil
}

// openXLSXRows opens the workbook and positions a row iterator on the selected sheet.
func (p *SheetParser) openXLSXRows(reader io.Reader) (rowIterator, error) {
	var opts []excelize.Options
	if p.unzipXMLSizeLimit > 0 {
		opts = append(opts, excelize.Options{UnzipXMLSizeLimit: p.unzipXMLSizeLimit})
	}

	xlsxFile, err := excelize.OpenReader(reader, opts...)
	if err != nil {
		return nil, newParseError("open", p.path, p.sheet, ErrReportUnreadable, err)
	}

	sheet := p.sheet
	if sheet == "" {
		sheet = xlsxFile.GetSheetName(0)
	}
	if idx, err := xlsxFile.GetSheetIndex(sheet); sheet == "" || err != nil || idx < 0 {
		_ = xlsxFile.Close() // Ignore close error
		return nil, newParseError("open", p.path, p.sheet, ErrSheetNotFound, err)
	}

	iter, err := xlsxFile.Rows(sheet)
	if err != nil {
		_ = xlsxFile.Close() // Ignore close error
		return nil, newParseError("open", p.path, sheet, ErrReportUnreadable, err)
	}
	return &xlsxRows{file: xlsxFile, rows: iter}, nil
}

// rowIterator is the row source shared by the XLSX and delimited readers.
type rowIterator interface {
	Next() bool
	Columns() ([]string, error)
	Err() error
	Close() error
}

// xlsxRows adapts excelize's streaming row iterator.
type xlsxRows struct {
	file *excelize.File
	rows *excelize.Rows
}

func (x *xlsxRows) Next() bool {
	return x.rows.Next()
}

func (x *xlsxRows) Columns() ([]string, error) {
	return x.rows.Columns()
}

func (x *xlsxRows) Err() error {
	return x.rows.Error()
}

func (x *xlsxRows) Close() error {
	rowsErr := x.rows.Close()
	if err := x.file.Close(); err != nil {
		return err
	}
	return rowsErr
}

// delimitedRows reads CSV or TSV records. A leading BOM selects UTF-8 or UTF-16;
// without one the input is decoded with the fallback encoding.
type delimitedRows struct {
	reader  *csv.Reader
	current []string
	err     error
}

func newDelimitedRows(r io.Reader, delimiter rune, fallback encoding.Encoding) *delimitedRows {
	decoded := transform.NewReader(r, unicode.BOMOverride(fallback.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // rows may drift from the header width
	reader.LazyQuotes = true
	return &delimitedRows{reader: reader}
}

func (d *delimitedRows) Next() bool {
	if d.err != nil {
		return false
	}
	record, err := d.reader.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			d.err = err
		}
		d.current = nil
		return false
	}
	d.current = record
	return true
}

func (d *delimitedRows) Columns() ([]string, error) {
	return d.current, nil
}

func (d *delimitedRows) Err() error {
	return d.err
}

func (d *delimitedRows) Close() error {
	return nil
}

// isEmptyRow reports whether a row has no populated cell.
func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// handleCloseError is a helper function to handle close errors consistently
func handleCloseError(closeFunc func() error) func() {
	return func() {
		_ = closeFunc()
	}
}
