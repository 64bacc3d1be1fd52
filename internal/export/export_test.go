package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/aquaticfungi/pubdb/internal/publication"
	"github.com/xuri/excelize/v2"
)

func samplePubs() []publication.Publication {
	return []publication.Publication{
		{
			ID: 1, Authors: "Smith, J.; Doe, A.", Title: "Aquatic Fungi, a review",
			Keywords: "fungi; water", Abstract: "Line one.\nLine two.", Citations: 7,
			Year: "2025", DOI: "10.1/a", WOSID: "WOS:1", Link: publication.LinkFor("WOS:1"),
		},
		{
			ID: 2, Authors: "Jones, B.", Title: "Yeasts", Keywords: "",
			Abstract: publication.Sentinel, Citations: 0, Year: publication.Sentinel,
			DOI: publication.Sentinel, WOSID: publication.Sentinel, Link: publication.Sentinel,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"Excel", FormatXLSX, false},
		{"xlsx", FormatXLSX, false},
		{"BibTeX", FormatBibTeX, false},
		{"bib", FormatBibTeX, false},
		{"ndjson", FormatJSONL, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 10, 19, 8, 5, 9, 0, time.UTC)

	tests := []struct {
		base string
		f    Format
		want string
	}{
		{"", FormatCSV, "aquatic_fungi_publications_20261019_080509.csv"},
		{"pubs", FormatXLSX, "pubs_20261019_080509.xlsx"},
		{"pubs", FormatBibTeX, "pubs_20261019_080509.bib"},
	}
	for _, tt := range tests {
		if got := Filename(tt.base, tt.f, at); got != tt.want {
			t.Errorf("Filename(%q, %s) = %q, want %q", tt.base, tt.f, got, tt.want)
		}
	}
}

func TestToCSV(t *testing.T) {
	data, err := ToCSV(samplePubs())
	if err != nil {
		t.Fatalf("ToCSV() error = %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("CSV has %d records, want header + 2", len(records))
	}
	if !reflect.DeepEqual(records[0], publication.Columns) {
		t.Errorf("header = %v, want %v", records[0], publication.Columns)
	}
	if records[1][1] != "Aquatic Fungi, a review" || records[1][3] != "Line one.\nLine two." {
		t.Errorf("row 1 = %v", records[1])
	}
	if records[1][4] != "7" || records[2][5] != publication.Sentinel {
		t.Errorf("unexpected citations/year cells: %v / %v", records[1], records[2])
	}
}

func TestToCSV_Empty(t *testing.T) {
	data, err := ToCSV(nil)
	if err != nil {
		t.Fatalf("ToCSV() error = %v", err)
	}
	if string(data) != "Authors,Title,Keywords,Abstract,Citations,Year,DOI,WOS_ID,Link\n" {
		t.Errorf("ToCSV(nil) = %q", data)
	}
}

func TestToXLSX(t *testing.T) {
	data, err := ToXLSX(samplePubs())
	if err != nil {
		t.Fatalf("ToXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Errorf("sheets = %v, want [%s]", sheets, SheetName)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("workbook has %d rows, want 3", len(rows))
	}
	if !reflect.DeepEqual(rows[0], publication.Columns) {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "Smith, J.; Doe, A." || rows[1][4] != "7" || rows[2][8] != publication.Sentinel {
		t.Errorf("rows = %v", rows[1:])
	}
}

func TestExport(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			p, err := Export(samplePubs(), f, "pubs", at)
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			if p.Filename != Filename("pubs", f, at) {
				t.Errorf("Filename = %q", p.Filename)
			}
			if p.ContentType != f.ContentType() || len(p.Data) == 0 {
				t.Errorf("payload = %q, %d bytes", p.ContentType, len(p.Data))
			}
		})
	}

	if _, err := Export(nil, Format("pdf"), "", at); err == nil {
		t.Error("Export() with an unknown format should fail")
	}
}

func TestToJSONL(t *testing.T) {
	data, err := ToJSONL(samplePubs())
	if err != nil {
		t.Fatalf("ToJSONL() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != len(samplePubs()) {
		t.Fatalf("ToJSONL() wrote %d lines, want %d", len(lines), len(samplePubs()))
	}
	var first publication.Publication
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 is not JSON: %v", err)
	}
	if first.Authors != "Smith, J.; Doe, A." || first.Citations != 7 {
		t.Errorf("line 1 = %+v", first)
	}

	if data, _ := ToJSONL(nil); len(data) != 0 {
		t.Errorf("ToJSONL(nil) = %q, want empty", data)
	}
}
