package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/aquaticfungi/pubdb/internal/publication"
)

// Source column names expected in every input file.
const (
	SrcAuthors        = "Authors"
	SrcArticleTitle   = "Article Title"
	SrcAuthorKeywords = "Author Keywords"
	SrcKeywordsPlus   = "Keywords Plus"
	SrcAbstract       = "Abstract"
	SrcTimesCited     = "Times Cited, All Databases"
	SrcPublYear       = "Publication Year"
	SrcDOI            = "DOI"
	SrcWOSID          = "UT (Unique WOS ID)"
)

// ExpectedColumns lists the source columns read from each file.
var ExpectedColumns = []string{
	SrcAuthors, SrcArticleTitle, SrcAuthorKeywords, SrcKeywordsPlus,
	SrcAbstract, SrcTimesCited, SrcPublYear, SrcDOI, SrcWOSID,
}

// keywordSeparator joins the two source keyword fields.
const keywordSeparator = "; "

// Normalize maps a source table onto the canonical schema. It returns the
// normalized rows and the expected columns the table lacks; those columns
// read as the sentinel on every row.
func Normalize(t *Table) ([]publication.Publication, []string) {
	idx := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}

	var missing []string
	for _, col := range ExpectedColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}

	pubs := make([]publication.Publication, 0, len(t.Rows))
	for _, row := range t.Rows {
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return publication.Sentinel
			}
			return publication.OrSentinel(row[i])
		}

		wosID := get(SrcWOSID)
		pubs = append(pubs, publication.Publication{
			Authors:   get(SrcAuthors),
			Title:     get(SrcArticleTitle),
			Keywords:  MergeKeywords(get(SrcAuthorKeywords), get(SrcKeywordsPlus)),
			Abstract:  get(SrcAbstract),
			Citations: ParseCitations(get(SrcTimesCited)),
			Year:      get(SrcPublYear),
			DOI:       get(SrcDOI),
			WOSID:     wosID,
			Link:      publication.LinkFor(wosID),
		})
	}
	return pubs, missing
}

// MergeKeywords joins the non-sentinel keyword fields with "; ". When both
// are the sentinel the result is the empty string, not the sentinel.
func MergeKeywords(fields ...string) string {
	var parts []string
	for _, f := range fields {
		if f != publication.Sentinel {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, keywordSeparator)
}

// ParseCitations converts a citation count to a non-negative integer.
// Anything unparsable, negative or non-finite becomes 0.
func ParseCitations(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}
