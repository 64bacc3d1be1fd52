// Package export serializes publication result sets to CSV, XLSX and
// BibTeX payloads.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/aquaticfungi/pubdb/internal/publication"
)

// Format is an export format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatBibTeX Format = "bibtex"
	FormatJSONL  Format = "jsonl"
)

// DefaultBaseName prefixes export filenames.
const DefaultBaseName = "aquatic_fungi_publications"

// timestampLayout stamps filenames with the export moment.
const timestampLayout = "20060102_150405"

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatXLSX, FormatBibTeX, FormatJSONL}

// ParseFormat resolves a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel", "spreadsheet":
		return FormatXLSX, nil
	case "bibtex", "bib":
		return FormatBibTeX, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("unknown export format: %q (valid: csv, xlsx, bibtex, jsonl)", s)
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatBibTeX {
		return "bib"
	}
	return string(f)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatBibTeX:
		return "application/x-bibtex"
	case FormatJSONL:
		return "application/x-ndjson"
	}
	return "application/octet-stream"
}

// Payload is a serialized export ready to be written or served.
type Payload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Filename returns "<base>_YYYYMMDD_HHMMSS.<ext>" for an export made at t.
func Filename(base string, f Format, t time.Time) string {
	if base == "" {
		base = DefaultBaseName
	}
	return fmt.Sprintf("%s_%s.%s", base, t.Format(timestampLayout), f.Extension())
}

// Export serializes pubs in format f. base and at name the payload file.
func Export(pubs []publication.Publication, f Format, base string, at time.Time) (*Payload, error) {
	var data []byte
	var err error

	switch f {
	case FormatCSV:
		data, err = ToCSV(pubs)
	case FormatXLSX:
		data, err = ToXLSX(pubs)
	case FormatBibTeX:
		data = []byte(ToBibTeXList(pubs))
	case FormatJSONL:
		data, err = ToJSONL(pubs)
	default:
		return nil, fmt.Errorf("unknown export format: %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", f, err)
	}

	return &Payload{
		Filename:    Filename(base, f, at),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}
