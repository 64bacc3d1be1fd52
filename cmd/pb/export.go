package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aquaticfungi/pubdb/internal/export"
	"github.com/aquaticfungi/pubdb/internal/publication"
)

var (
	exportFlags    filterFlags
	exportFormat   string
	exportAll      bool
	exportOutDir   string
	exportAppendTo string
)

func init() {
	exportFlags.bind(exportCmd, true)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format: csv, xlsx, bibtex, jsonl")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every matching publication, not just one page")
	exportCmd.Flags().StringVar(&exportOutDir, "out", ".", "Directory to write the export into")
	exportCmd.Flags().StringVar(&exportAppendTo, "append-to", "", "Append BibTeX entries to this .bib file, skipping ones already present")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [term]",
	Short: "Export publications to CSV, XLSX or BibTeX",
	Long: `Export the current page, or with --all the whole filtered set, to a
timestamped file named <basename>_YYYYMMDD_HHMMSS.<ext>.

Examples:
  pb export fungi --format xlsx
  pb export --all --year 2025 --format bibtex --out ./exports
  pb export --all --format bibtex --append-to refs.bib`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

// ExportResponse is the response for the export command.
type ExportResponse struct {
	Path    string `json:"path"`
	Format  string `json:"format"`
	Records int    `json:"records"`
	Bytes   int    `json:"bytes,omitempty"`
	Skipped int    `json:"skipped,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if exportAppendTo != "" && format != export.FormatBibTeX {
		exitWithError(ExitError, "--append-to requires --format bibtex")
	}

	svc := mustOpenService()
	req := exportFlags.request(args)

	var pubs []publication.Publication
	switch {
	case !exportAll:
		res, err := svc.FetchPage(req)
		if err != nil {
			exitOnError(err, "querying")
		}
		pubs = res.Publications
	case req.Filter().Empty():
		pubs, err = svc.LoadAll()
	default:
		pubs, err = svc.Find(req)
	}
	if err != nil {
		exitOnError(err, "querying")
	}

	var resp ExportResponse
	if exportAppendTo != "" {
		added, skipped, err := export.AppendBibTeX(exportAppendTo, pubs)
		if err != nil {
			exitWithError(ExitError, "appending to %s: %v", exportAppendTo, err)
		}
		resp = ExportResponse{Path: exportAppendTo, Format: string(format), Records: added, Skipped: skipped}
	} else {
		payload, err := export.Export(pubs, format, cfg.ExportBaseName, time.Now())
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if err := os.MkdirAll(exportOutDir, 0755); err != nil {
			exitWithError(ExitError, "creating %s: %v", exportOutDir, err)
		}
		path := filepath.Join(exportOutDir, payload.Filename)
		if err := os.WriteFile(path, payload.Data, 0644); err != nil {
			exitWithError(ExitError, "writing export: %v", err)
		}
		resp = ExportResponse{Path: path, Format: string(format), Records: len(pubs), Bytes: len(payload.Data)}
	}

	if humanOutput {
		if resp.Bytes > 0 {
			fmt.Printf("Wrote %s publications to %s (%s)\n",
				humanize.Comma(int64(resp.Records)), resp.Path, humanize.Bytes(uint64(resp.Bytes)))
		} else {
			fmt.Printf("Appended %s publications to %s (%d already present)\n",
				humanize.Comma(int64(resp.Records)), resp.Path, resp.Skipped)
		}
	} else {
		outputJSON(resp)
	}
	return nil
}
