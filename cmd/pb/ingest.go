package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aquaticfungi/pubdb/internal/ingest"
)

var ingestDir string

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "Directory to scan for source files (default from config)")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Rebuild the store from spreadsheet exports",
	Long: `Rebuild the publications store from Web of Science style exports.

Files are read in the order given. Without arguments every .xlsx, .xlsm
and .csv file in --dir is read, in name order. The store is replaced
only when every source parses.

Examples:
  pb ingest savedrecs.xlsx savedrecs2.xlsx
  pb ingest --dir ./exports --store pubs.db`,
	RunE: runIngest,
}

// IngestResponse is the response for the ingest command.
type IngestResponse struct {
	Store   string   `json:"store"`
	Sources []string `json:"sources"`
	*ingest.Result
}

func runIngest(cmd *cobra.Command, args []string) error {
	sources := args
	if len(sources) == 0 {
		dir := ingestDir
		if dir == "" {
			dir = cfg.SourceDir
		}
		var err error
		sources, err = ingest.Discover(dir, cfg.SourceExtensions)
		if err != nil {
			exitOnError(err, "finding sources")
		}
	}

	res, err := ingest.Run(ingest.Options{
		Sources:      sources,
		StorePath:    cfg.StorePath,
		VerifyMarker: cfg.VerifyMarker,
	})
	if err != nil {
		exitOnError(err, "ingesting")
	}

	if humanOutput {
		fmt.Printf("Ingested %s records from %d files into %s\n",
			humanize.Comma(int64(res.Records)), res.Files, cfg.StorePath)
		fmt.Printf("%s titles contain %q\n", humanize.Comma(int64(res.MarkerMatches)), cfg.VerifyMarker)
		for _, w := range res.Warnings {
			fmt.Printf("warning: %s is missing %v\n", w.Path, w.Columns)
		}
	} else {
		outputJSON(IngestResponse{Store: cfg.StorePath, Sources: sources, Result: res})
	}
	return nil
}
