// Package publication defines the canonical bibliographic record stored in
// the publications table.
package publication

import "strings"

// Sentinel is stored in place of an absent value. The table never holds NULL.
const Sentinel = "N/A"

// LinkPrefix is prepended to a WOS_ID to build the record's Link.
const LinkPrefix = "https://www.webofscience.com/wos/woscc/full-record/"

// Canonical column names, in table order.
const (
	ColAuthors   = "Authors"
	ColTitle     = "Title"
	ColKeywords  = "Keywords"
	ColAbstract  = "Abstract"
	ColCitations = "Citations"
	ColYear      = "Year"
	ColDOI       = "DOI"
	ColWOSID     = "WOS_ID"
	ColLink      = "Link"
)

// Columns lists the canonical schema in table order.
var Columns = []string{
	ColAuthors, ColTitle, ColKeywords, ColAbstract, ColCitations,
	ColYear, ColDOI, ColWOSID, ColLink,
}

// Publication is one row of the publications table.
type Publication struct {
	ID        int64  `json:"id"` // SQLite rowid; zero before insertion
	Authors   string `json:"authors"`
	Title     string `json:"title"`
	Keywords  string `json:"keywords"`
	Abstract  string `json:"abstract"`
	Citations int    `json:"citations"`
	Year      string `json:"year"`
	DOI       string `json:"doi"`
	WOSID     string `json:"wos_id"`
	Link      string `json:"link"`
}

// LinkFor derives the Link value for a WOS_ID.
func LinkFor(wosID string) string {
	if IsAbsent(wosID) {
		return Sentinel
	}
	return LinkPrefix + wosID
}

// IsAbsent reports whether v is empty or the sentinel.
func IsAbsent(v string) bool {
	return v == "" || v == Sentinel
}

// OrSentinel returns v, or the sentinel when v is empty.
func OrSentinel(v string) string {
	if v == "" {
		return Sentinel
	}
	return v
}

// Blank returns v with the sentinel replaced by the empty string.
func Blank(v string) string {
	if v == Sentinel {
		return ""
	}
	return v
}

// AuthorList splits the semicolon-separated Authors field, trimming each
// name and dropping empty entries. Order is preserved.
func (p Publication) AuthorList() []string {
	if IsAbsent(strings.TrimSpace(p.Authors)) {
		return nil
	}
	var names []string
	for _, a := range strings.Split(p.Authors, ";") {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}
	return names
}

// KeywordList splits the Keywords field on semicolons.
func (p Publication) KeywordList() []string {
	var kws []string
	for _, k := range strings.Split(p.Keywords, ";") {
		if k = strings.TrimSpace(k); k != "" && k != Sentinel {
			kws = append(kws, k)
		}
	}
	return kws
}

// Values returns the record's fields in Columns order, Citations as int.
func (p Publication) Values() []any {
	return []any{
		p.Authors, p.Title, p.Keywords, p.Abstract, p.Citations,
		p.Year, p.DOI, p.WOSID, p.Link,
	}
}
