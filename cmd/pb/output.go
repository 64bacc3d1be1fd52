package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/aquaticfungi/pubdb/internal/publication"
)

// Constants for output formatting.
const (
	SearchTitleMaxLen   = 70 // Used in search result summaries
	DetailTextWrapWidth = 68 // Wrap width for the show command
	SummaryAuthorCount  = 3  // Authors listed before "et al."
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitOnError exits with the code exitCodeFor assigns to err.
func exitOnError(err error, context string) {
	exitWithError(exitCodeFor(err), "%s: %v", context, err)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// printPubSummary prints one search result line block.
func printPubSummary(p publication.Publication) {
	fmt.Printf("[%d] %s\n", p.ID, truncateString(p.Title, SearchTitleMaxLen))
	if authors := formatAuthorsShort(p.AuthorList(), SummaryAuthorCount); authors != "" {
		fmt.Printf("    %s\n", authors)
	}
	fmt.Printf("    %s, %s citations\n\n", p.Year, humanize.Comma(int64(p.Citations)))
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}

// formatAuthorsShort lists up to maxCount authors, then "et al.".
func formatAuthorsShort(authors []string, maxCount int) string {
	if len(authors) == 0 {
		return ""
	}
	if len(authors) > maxCount {
		return strings.Join(authors[:maxCount], "; ") + "; et al."
	}
	return strings.Join(authors, "; ")
}
