// Package ingest normalizes Web of Science style spreadsheet exports into
// the canonical publications store.
package ingest

import (
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/aquaticfungi/pubdb/internal/publication"
	"github.com/aquaticfungi/pubdb/internal/storage"
)

// readWorkers bounds how many sources are parsed at once.
const readWorkers = 4

// DefaultVerifyMarker is the Title substring counted after ingestion.
const DefaultVerifyMarker = "fungi"

// ErrNoSources is returned when there is nothing to ingest.
var ErrNoSources = errors.New("no source files")

// Invalidator is notified after the store has been replaced. The query
// service's snapshot cache implements it.
type Invalidator interface {
	Invalidate()
}

// Options configures an ingestion run.
type Options struct {
	Sources      []string // read and concatenated in this order
	StorePath    string
	VerifyMarker string        // Title substring counted for the log; "" uses DefaultVerifyMarker
	Notify       []Invalidator // told when the store has been replaced
}

// MissingColumns records the expected columns absent from one source.
type MissingColumns struct {
	Path    string   `json:"path"`
	Columns []string `json:"columns"`
}

// Result summarizes a completed run.
type Result struct {
	Files         int              `json:"files"`
	Records       int              `json:"records"`
	MarkerMatches int              `json:"marker_matches"`
	Warnings      []MissingColumns `json:"warnings,omitempty"`
}

// Run reads every source, normalizes and concatenates the rows, and
// replaces the store with them. A source that cannot be parsed aborts the
// run before the store is touched.
func Run(opts Options) (*Result, error) {
	if len(opts.Sources) == 0 {
		return nil, ErrNoSources
	}

	res := &Result{Files: len(opts.Sources)}

	// Sources are parsed concurrently; each lands in its own slot so the
	// concatenation keeps input order.
	parsed := make([][]publication.Publication, len(opts.Sources))
	missing := make([][]string, len(opts.Sources))

	var g errgroup.Group
	g.SetLimit(readWorkers)
	for i, path := range opts.Sources {
		g.Go(func() error {
			slog.Info("Reading source file", "path", path)
			t, err := ReadSource(path)
			if err != nil {
				return err
			}
			parsed[i], missing[i] = Normalize(t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []publication.Publication
	for i, path := range opts.Sources {
		if len(missing[i]) > 0 {
			slog.Warn("Missing columns in source", "path", path, "columns", missing[i])
			res.Warnings = append(res.Warnings, MissingColumns{Path: path, Columns: missing[i]})
		}
		all = append(all, parsed[i]...)
	}
	slog.Info("Combined records", "records", len(all), "files", len(opts.Sources))

	if _, err := storage.ReplaceStore(opts.StorePath, all); err != nil {
		return nil, err
	}
	for _, n := range opts.Notify {
		n.Invalidate()
	}

	marker := opts.VerifyMarker
	if marker == "" {
		marker = DefaultVerifyMarker
	}
	err := storage.WithDB(opts.StorePath, func(db *storage.DB) error {
		var err error
		if res.Records, err = db.Count(storage.Filter{}); err != nil {
			return err
		}
		res.MarkerMatches, err = db.CountTitleContaining(marker)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Inserted records", "table", storage.TableName, "records", res.Records)
	slog.Info("Found records with marker in Title", "marker", marker, "records", res.MarkerMatches)
	return res, nil
}
