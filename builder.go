package regdesk

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/nao1215/regdesk/domain/model"
	"golang.org/x/text/encoding"
)

// DeskBuilder configures report sources and options before ingesting them into a Desk.
//
// The typical usage pattern is:
//
//	desk, err := regdesk.NewBuilder().
//		AddIELTSReport("ORS.xlsx", regdesk.DefaultIELTSSheet).
//		AddSchoolReport("schools.xlsx", regdesk.DefaultSchoolSheet).
//		Build(ctx)
//	if err != nil {
//		return err
//	}
//	text, err := desk.GetInformation("IELTS", "UK", "Jane Doe", "P123")
type DeskBuilder struct {
	// sources holds one report per product; an empty path means no report
	sources map[model.ProductType]reportSource
	// rowCacheSize is the streaming window of every parser
	rowCacheSize int
	// keepEmptyRows keeps all-blank data rows
	keepEmptyRows bool
	// unzipXMLSizeLimit is passed through to excelize
	unzipXMLSizeLimit int64
	// textEncoding decodes delimited reports without a byte order mark
	textEncoding encoding.Encoding
	blankPolicy  model.BlankPolicy
	mapperOpts   []MapperOption
	composerOpts []ComposerOption
	logger       *slog.Logger
}

// reportSource is one configured report.
type reportSource struct {
	path  string
	sheet string
}

// NewBuilder creates a new builder with no reports configured.
func NewBuilder() *DeskBuilder {
	return &DeskBuilder{
		sources:      make(map[model.ProductType]reportSource, 2),
		rowCacheSize: DefaultRowCacheSize,
		blankPolicy:  model.BlankNamesOnly,
	}
}

// AddIELTSReport sets the IELTS report and the sheet to read from it.
func (b *DeskBuilder) AddIELTSReport(path, sheet string) *DeskBuilder {
	b.sources[model.ProductIELTS] = reportSource{path: path, sheet: sheet}
	return b
}

// AddSchoolReport sets the School report and the sheet to read from it.
// An empty sheet name selects the first sheet.
func (b *DeskBuilder) AddSchoolReport(path, sheet string) *DeskBuilder {
	b.sources[model.ProductSchool] = reportSource{path: path, sheet: sheet}
	return b
}

// SetRowCacheSize sets how many rows the parsers buffer per chunk.
func (b *DeskBuilder) SetRowCacheSize(size int) *DeskBuilder {
	b.rowCacheSize = NewChunkSize(size).Int()
	return b
}

// SetKeepEmptyRows keeps data rows with no populated cell.
func (b *DeskBuilder) SetKeepEmptyRows(keep bool) *DeskBuilder {
	b.keepEmptyRows = keep
	return b
}

// SetUnzipXMLSizeLimit sets the worksheet size above which excelize streams through a temp file.
func (b *DeskBuilder) SetUnzipXMLSizeLimit(limit int64) *DeskBuilder {
	b.unzipXMLSizeLimit = limit
	return b
}

// SetTextEncoding sets the encoding of CSV and TSV reports that have no byte order mark.
func (b *DeskBuilder) SetTextEncoding(enc encoding.Encoding) *DeskBuilder {
	b.textEncoding = enc
	return b
}

// SetBlankPolicy selects which blank values the dropdown sets exclude.
func (b *DeskBuilder) SetBlankPolicy(policy model.BlankPolicy) *DeskBuilder {
	b.blankPolicy = policy
	return b
}

// SetIELTSColumns overrides the IELTS header mapping.
func (b *DeskBuilder) SetIELTSColumns(columns IELTSColumns) *DeskBuilder {
	b.mapperOpts = append(b.mapperOpts, WithIELTSColumns(columns))
	return b
}

// SetSchoolColumns overrides the School header mapping.
func (b *DeskBuilder) SetSchoolColumns(columns SchoolColumns) *DeskBuilder {
	b.mapperOpts = append(b.mapperOpts, WithSchoolColumns(columns))
	return b
}

// AddComposerOptions configures the barcode composer.
func (b *DeskBuilder) AddComposerOptions(opts ...ComposerOption) *DeskBuilder {
	b.composerOpts = append(b.composerOpts, opts...)
	return b
}

// SetLogger sets the logger shared by every component.
func (b *DeskBuilder) SetLogger(logger *slog.Logger) *DeskBuilder {
	b.logger = logger
	return b
}

// Build validates the configuration, ingests the reports and returns a ready Desk.
// A report that is missing or unreadable is logged and contributes no records;
// only configuration errors and context cancellation fail Build.
func (b *DeskBuilder) Build(ctx context.Context) (*Desk, error) {
	if err := newValidator().validateSources(b.sources); err != nil {
		return nil, err
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := *b
	cfg.logger = logger
	cfg.sources = make(map[model.ProductType]reportSource, len(b.sources))
	for k, v := range b.sources {
		cfg.sources[k] = v
	}

	idx, summary, err := cfg.ingest(ctx)
	if err != nil {
		return nil, err
	}

	composerOpts := append([]ComposerOption{WithComposerLogger(logger)}, b.composerOpts...)
	return &Desk{
		config:   &cfg,
		snapshot: NewSnapshot(idx),
		composer: NewBarcodeComposer(composerOpts...),
		summary:  summary,
		logger:   logger,
	}, nil
}

// IngestSummary describes the outcome of reading both reports.
type IngestSummary struct {
	IELTSRows   int
	SchoolRows  int
	IELTSError  error
	SchoolError error
}

// ingest parses, maps and indexes every configured report.
func (b *DeskBuilder) ingest(ctx context.Context) (*Index, IngestSummary, error) {
	var summary IngestSummary

	ieltsRaw, err := b.loadReport(ctx, model.ProductIELTS)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, summary, ctxErr
		}
		summary.IELTSError = err
	}
	schoolRaw, err := b.loadReport(ctx, model.ProductSchool)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, summary, ctxErr
		}
		summary.SchoolError = err
	}

	mapper := NewRecordMapper(b.mapperOpts...)
	ielts := mapper.MapAllIELTS(ieltsRaw)
	school := mapper.MapAllSchool(schoolRaw)
	summary.IELTSRows = len(ielts)
	summary.SchoolRows = len(school)

	idx := BuildIndex(ielts, school, WithBlankPolicy(b.blankPolicy), WithIndexLogger(b.logger))
	b.logger.Info("reports indexed",
		"ielts_rows", summary.IELTSRows,
		"school_rows", summary.SchoolRows,
		"ielts_identities", idx.Len(model.ProductIELTS),
		"school_identities", idx.Len(model.ProductSchool),
		"countries", len(idx.countries),
		"candidates", len(idx.names),
	)
	return idx, summary, nil
}

// loadReport parses one report. Failures are logged and yield no records.
func (b *DeskBuilder) loadReport(ctx context.Context, product model.ProductType) ([]model.RawRecord, error) {
	src, ok := b.sources[product]
	if !ok || strings.TrimSpace(src.path) == "" {
		return nil, nil
	}

	parser := NewSheetParser(src.path, src.sheet,
		WithRowCacheSize(b.rowCacheSize),
		WithKeepEmptyRows(b.keepEmptyRows),
		WithUnzipXMLSizeLimit(b.unzipXMLSizeLimit),
		WithTextEncoding(b.textEncoding),
		WithParserLogger(b.logger),
	)
	records, err := parser.Parse(ctx)
	if err != nil {
		msg := "report read failed"
		if errors.Is(err, ErrReportNotFound) {
			msg = "report not found"
		}
		b.logger.Warn(msg, "report", product.String(), "path", src.path, "sheet", src.sheet, "error", err)
		return nil, err
	}
	return records, nil
}
