package main

import (
	"github.com/spf13/cobra"

	"github.com/aquaticfungi/pubdb/internal/browse"
	"github.com/aquaticfungi/pubdb/internal/storage"
)

// filterFlags are the filter and pagination flags shared by search,
// stats and export.
type filterFlags struct {
	year         string
	minCitations int
	page         int
	pageSize     int
}

func (f *filterFlags) bind(cmd *cobra.Command, paged bool) {
	cmd.Flags().StringVar(&f.year, "year", storage.AllYears, "Publication year, or All")
	cmd.Flags().IntVar(&f.minCitations, "min-citations", 0, "Minimum times cited (inclusive)")
	if paged {
		cmd.Flags().IntVar(&f.page, "page", 1, "Page number (1-indexed)")
		cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "Rows per page (default from config)")
	}
}

// request builds a browse.Request from the flags and an optional search term.
func (f *filterFlags) request(args []string) browse.Request {
	req := browse.Request{
		Year:         f.year,
		MinCitations: f.minCitations,
		Page:         f.page,
		PageSize:     f.pageSize,
	}
	if len(args) > 0 {
		req.Search = args[0]
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = cfg.PageSize
	}
	return req
}

// mustOpenService validates the configured store and returns a query
// service for it, exiting on failure.
func mustOpenService() *browse.Service {
	svc, err := browse.New(cfg.StorePath, browse.WithTTL(cfg.CacheTTL))
	if err != nil {
		exitOnError(err, "opening store")
	}
	return svc
}
