package regdesk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/regdesk/domain/model"
)

// Standard errors returned by regdesk
var (
	// ErrReportNotFound indicates the report file does not exist
	ErrReportNotFound = errors.New("regdesk: report not found")

	// ErrReportUnreadable indicates the report exists but could not be read or decoded
	ErrReportUnreadable = errors.New("regdesk: report read failed")

	// ErrSheetNotFound indicates the requested sheet is not in the workbook
	ErrSheetNotFound = errors.New("regdesk: sheet not found")

	// ErrUnsupportedFormat indicates an unsupported report file format
	ErrUnsupportedFormat = errors.New("regdesk: unsupported file format")

	// ErrRecordNotFound indicates no record matches a lookup key
	ErrRecordNotFound = errors.New("regdesk: no information found")

	// ErrInvalidProductType indicates an unknown product type
	ErrInvalidProductType = model.ErrInvalidProductType

	// ErrEmptyPayload indicates a barcode was requested for an empty payload
	ErrEmptyPayload = errors.New("regdesk: empty barcode payload")

	// ErrInvalidPayload indicates the payload cannot be encoded by the symbology
	ErrInvalidPayload = errors.New("regdesk: invalid barcode payload")

	// ErrNoReports indicates the builder was given no report to ingest
	ErrNoReports = errors.New("regdesk: no reports configured")
)

// ParseError describes a failure to read a report. Kind is one of the
// report sentinels above; Err is the underlying cause.
type ParseError struct {
	Op    string
	Path  string
	Sheet string
	Kind  error
	Err   error
}

// Error formats the error with its context.
func (e *ParseError) Error() string {
	parts := []string{"regdesk: " + e.Op + " failed"}
	if e.Path != "" {
		parts = append(parts, "file: "+e.Path)
	}
	if e.Sheet != "" {
		parts = append(parts, "sheet: "+e.Sheet)
	}
	msg := strings.Join(parts, ", ")
	if e.Kind != nil {
		msg += ": " + strings.TrimPrefix(e.Kind.Error(), "regdesk: ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *ParseError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// RenderError describes a barcode or image composition failure.
type RenderError struct {
	Payload string
	Stage   string
	Err     error
}

// Error formats the render error.
func (e *RenderError) Error() string {
	return fmt.Sprintf("regdesk: barcode %s failed for payload %q: %v", e.Stage, e.Payload, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// newParseError builds a ParseError in the given operation context.
func newParseError(op, path, sheet string, kind, err error) *ParseError {
	return &ParseError{Op: op, Path: path, Sheet: sheet, Kind: kind, Err: err}
}
