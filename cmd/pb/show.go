package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aquaticfungi/pubdb/internal/publication"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one publication in full",
	Long: `Show one publication in full. The id is the row number reported by
search.

Example:
  pb show 42`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		exitWithError(ExitError, "invalid publication id: %q", args[0])
	}

	svc := mustOpenService()
	p, err := svc.Get(id)
	if err != nil {
		exitOnError(err, "reading publication")
	}
	if p == nil {
		exitWithError(ExitNotFound, "publication %d not found", id)
	}

	if humanOutput {
		printPubDetail(*p)
	} else {
		outputJSON(p)
	}
	return nil
}

func printPubDetail(p publication.Publication) {
	const indent = "            "
	fmt.Printf("Title:      %s\n", wrapText(p.Title, DetailTextWrapWidth, indent))
	fmt.Printf("Authors:    %s\n", wrapText(strings.Join(p.AuthorList(), "; "), DetailTextWrapWidth, indent))
	fmt.Printf("Year:       %s\n", p.Year)
	fmt.Printf("Citations:  %d\n", p.Citations)
	fmt.Printf("DOI:        %s\n", p.DOI)
	fmt.Printf("WOS ID:     %s\n", p.WOSID)
	fmt.Printf("Link:       %s\n", p.Link)
	if kws := p.KeywordList(); len(kws) > 0 {
		fmt.Printf("Keywords:   %s\n", wrapText(strings.Join(kws, "; "), DetailTextWrapWidth, indent))
	}
	fmt.Printf("\nAbstract:\n  %s\n", wrapText(p.Abstract, DetailTextWrapWidth, "  "))
}
