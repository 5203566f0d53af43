// Package model provides domain model for regdesk
package model

import "strings"

// Header is the ordered list of field names taken from the first row of a sheet.
// Blank and repeated names are allowed.
type Header []string

// NewHeader creates a Header from raw cell values, trimming each name.
func NewHeader(cells []string) Header {
	h := make(Header, len(cells))
	for i, c := range cells {
		h[i] = strings.TrimSpace(c)
	}
	return h
}

// Len returns the number of columns (totalColumns).
func (h Header) Len() int {
	return len(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// RawRecord is one data row keyed by the header's field names.
// Its field set and order are exactly those of the header it was read with.
type RawRecord struct {
	header Header
	values []string
}

// NewRawRecord reads exactly header.Len() cells from the row positionally.
// Cells beyond the row's populated extent are blank. Values are trimmed.
func NewRawRecord(header Header, cells []string) RawRecord {
	values := make([]string, len(header))
	for i := range header {
		if i < len(cells) {
			values[i] = strings.TrimSpace(cells[i])
		}
	}
	return RawRecord{header: header, values: values}
}

// Header returns the field names of the record in column order.
func (r RawRecord) Header() Header {
	return r.header
}

// Values returns a copy of the cell values in column order.
func (r RawRecord) Values() []string {
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns the number of fields.
func (r RawRecord) Len() int {
	return len(r.values)
}

// Lookup returns the value of the named field. When the header repeats a name,
// the last column with that name wins.
func (r RawRecord) Lookup(name string) (string, bool) {
	for i := len(r.header) - 1; i >= 0; i-- {
		if r.header[i] == name {
			return r.values[i], true
		}
	}
	return "", false
}

// Get returns the value of the named field, or "" when absent.
func (r RawRecord) Get(name string) string {
	v, _ := r.Lookup(name)
	return v
}

// IsBlank reports whether every value of the record is empty.
func (r RawRecord) IsBlank() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}

// Map returns the record as a map. Repeated names keep the last column's value.
func (r RawRecord) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	for i, name := range r.header {
		m[name] = r.values[i]
	}
	return m
}
