package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(yearsCmd)
}

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List the distinct publication years, newest first",
	RunE:  runYears,
}

func runYears(cmd *cobra.Command, args []string) error {
	years, err := mustOpenService().Years()
	if err != nil {
		exitOnError(err, "listing years")
	}
	if years == nil {
		years = []string{}
	}

	if humanOutput {
		for _, y := range years {
			fmt.Println(y)
		}
	} else {
		outputJSON(years)
	}
	return nil
}
