package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var searchFlags filterFlags

func init() {
	searchFlags.bind(searchCmd, true)
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Filter publications with pagination",
	Long: `Filter publications by a free-text term, year and minimum citations.

The term matches Title, Authors, Keywords and Abstract, case-insensitively.
Without a term every publication matches.

Examples:
  pb search fungi
  pb search "leaf litter" --year 2024 --min-citations 10
  pb search --page 2 --page-size 25`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc := mustOpenService()

	res, err := svc.FetchPage(searchFlags.request(args))
	if err != nil {
		exitOnError(err, "searching")
	}

	if humanOutput {
		if res.Total == 0 {
			fmt.Println("No publications found")
			return nil
		}
		fmt.Printf("Found %s publications (page %d of %d):\n\n",
			humanize.Comma(int64(res.Total)), res.Page, res.TotalPages)
		for _, p := range res.Publications {
			printPubSummary(p)
		}
	} else {
		outputJSON(res)
	}
	return nil
}
