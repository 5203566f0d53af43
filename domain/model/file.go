package model

import (
	"path/filepath"
	"strings"
)

// FileType represents supported report file types
type FileType int

const (
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX FileType = iota
	// FileTypeCSV represents CSV file type
	FileTypeCSV
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// String returns the string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	default:
		return "unsupported"
	}
}

// IsDelimited returns true for line-oriented delimited formats (CSV, TSV).
func (ft FileType) IsDelimited() bool {
	return ft == FileTypeCSV || ft == FileTypeTSV
}

// CompressionType represents the compression applied on top of a report file
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// String returns the string representation of CompressionType
func (ct CompressionType) String() string {
	switch ct {
	case CompressionGZ:
		return "gzip"
	case CompressionBZ2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type
func (ct CompressionType) Extension() string {
	switch ct {
	case CompressionGZ:
		return ExtGZ
	case CompressionBZ2:
		return ExtBZ2
	case CompressionXZ:
		return ExtXZ
	case CompressionZSTD:
		return ExtZSTD
	default:
		return ""
	}
}

// File extensions
const (
	// ExtXLSX is the Excel XLSX file extension
	ExtXLSX = ".xlsx"
	// ExtCSV is the CSV file extension
	ExtCSV = ".csv"
	// ExtTSV is the TSV file extension
	ExtTSV = ".tsv"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
)

var compressionExts = []CompressionType{CompressionGZ, CompressionBZ2, CompressionXZ, CompressionZSTD}

// ReportFile describes a report on disk: its path, base format and compression.
type ReportFile struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// NewReportFile creates a ReportFile, detecting format and compression from the extension.
func NewReportFile(path string) ReportFile {
	compression := DetectCompression(path)
	base := strings.TrimSuffix(strings.ToLower(path), compression.Extension())
	return ReportFile{
		path:        path,
		fileType:    detectFileType(base),
		compression: compression,
	}
}

// Path returns file path
func (f ReportFile) Path() string {
	return f.path
}

// Type returns the base file type (compression removed)
func (f ReportFile) Type() FileType {
	return f.fileType
}

// Compression returns the detected compression
func (f ReportFile) Compression() CompressionType {
	return f.compression
}

// IsCompressed returns true if file is compressed
func (f ReportFile) IsCompressed() bool {
	return f.compression != CompressionNone
}

// IsSupported returns true if the base format can be parsed
func (f ReportFile) IsSupported() bool {
	return f.fileType != FileTypeUnsupported
}

// DetectCompression detects the compression type from a file path
func DetectCompression(path string) CompressionType {
	lower := strings.ToLower(path)
	for _, ct := range compressionExts {
		if strings.HasSuffix(lower, ct.Extension()) {
			return ct
		}
	}
	return CompressionNone
}

func detectFileType(path string) FileType {
	switch filepath.Ext(path) {
	case ExtXLSX:
		return FileTypeXLSX
	case ExtCSV:
		return FileTypeCSV
	case ExtTSV:
		return FileTypeTSV
	default:
		return FileTypeUnsupported
	}
}
