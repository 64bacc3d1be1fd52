package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the source file types Discover picks up.
var DefaultExtensions = []string{".xlsx", ".xlsm", ".csv"}

// Discover lists the files in dir whose extension matches one of exts,
// ignoring case, in name order. Office lock files ("~$name.xlsx") are
// skipped.
func Discover(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		want[e] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		if want[strings.ToLower(filepath.Ext(name))] {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
