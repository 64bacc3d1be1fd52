package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsFlags filterFlags

func init() {
	statsFlags.bind(statsCmd, false)
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats [term]",
	Short: "Summarize the publications matching a filter",
	Long: `Report the number of matching publications, their average citation
count and the number of distinct years.

Example:
  pb stats fungi --min-citations 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := mustOpenService().Stats(statsFlags.request(args))
	if err != nil {
		exitOnError(err, "computing stats")
	}

	if humanOutput {
		fmt.Printf("Publications:      %s\n", humanize.Comma(int64(st.Publications)))
		fmt.Printf("Average citations: %s\n", humanize.FormatFloat("#,###.#", st.AverageCitations))
		fmt.Printf("Max citations:     %s\n", humanize.Comma(int64(st.MaxCitations)))
		fmt.Printf("Years:             %d\n", st.Years)
	} else {
		outputJSON(st)
	}
	return nil
}
