package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aquaticfungi/pubdb/internal/browse"
	"github.com/aquaticfungi/pubdb/internal/config"
	"github.com/aquaticfungi/pubdb/internal/ingest"
	"github.com/aquaticfungi/pubdb/internal/storage"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"Aquatic Fungi in Streams", 10, "Aquatic..."},
		{"Écologie des champignons", 8, "Écolo..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four five", 9, "  ")
	want := "one two\n  three\n  four five"
	if got != want {
		t.Errorf("wrapText() = %q, want %q", got, want)
	}
	if got := wrapText("short", 10, "  "); got != "short" {
		t.Errorf("wrapText(short) = %q", got)
	}
}

func TestFormatAuthorsShort(t *testing.T) {
	tests := []struct {
		authors []string
		want    string
	}{
		{nil, ""},
		{[]string{"Smith, J."}, "Smith, J."},
		{[]string{"A", "B", "C"}, "A; B; C"},
		{[]string{"A", "B", "C", "D"}, "A; B; C; et al."},
	}
	for _, tt := range tests {
		if got := formatAuthorsShort(tt.authors, 3); got != tt.want {
			t.Errorf("formatAuthorsShort(%v) = %q, want %q", tt.authors, got, tt.want)
		}
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing store", fmt.Errorf("opening: %w", storage.ErrStoreNotFound), ExitSchemaError},
		{"schema", &storage.SchemaError{Path: "p.db", Reason: "missing columns: Citations"}, ExitSchemaError},
		{"no sources", ingest.ErrNoSources, ExitDataError},
		{"bad source", &ingest.SourceError{Path: "a.xlsx", Err: errors.New("zip: not a valid zip file")}, ExitDataError},
		{"invalid page", storage.ErrInvalidPage, ExitError},
		{"other", errors.New("disk full"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFilterFlags_Request(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })
	cfg = config.Default()
	cfg.PageSize = 15

	f := filterFlags{year: "2024", minCitations: 3}
	got := f.request([]string{"fungi"})
	want := browse.Request{Search: "fungi", Year: "2024", MinCitations: 3, Page: 1, PageSize: 15}
	if got != want {
		t.Errorf("request() = %+v, want %+v", got, want)
	}

	f = filterFlags{year: storage.AllYears, page: 3, pageSize: 5}
	got = f.request(nil)
	if got.Search != "" || got.Page != 3 || got.PageSize != 5 || !got.Filter().Empty() {
		t.Errorf("request() = %+v", got)
	}
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	joined := strings.Join(names, " ")
	for _, want := range []string{"ingest", "search", "show", "export", "check", "years", "stats", "config", "serve"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
}
