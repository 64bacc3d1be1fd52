package export

import (
	"fmt"
	"strings"

	"github.com/aquaticfungi/pubdb/internal/publication"
)

// unknownAuthor stands in for the last name when a record has no author.
const unknownAuthor = "unknown"

// ToBibTeX converts a publication to a BibTeX @article entry. Sentinel
// values are written as empty fields.
func ToBibTeX(p publication.Publication) string {
	return bibEntry(CiteKey(p), p)
}

// bibEntry renders p under the given key.
func bibEntry(key string, p publication.Publication) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@article{%s,\n", key))
	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(publication.Blank(p.Title))))
	b.WriteString(fmt.Sprintf("  author = {%s},\n", escapeLatex(strings.Join(p.AuthorList(), " and "))))
	b.WriteString(fmt.Sprintf("  year = {%s},\n", publication.Blank(p.Year)))
	b.WriteString(fmt.Sprintf("  doi = {%s},\n", publication.Blank(p.DOI)))
	b.WriteString(fmt.Sprintf("  abstract = {%s},\n", escapeLatex(publication.Blank(p.Abstract))))
	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple publications to BibTeX format. Records
// sharing a citation key get letter suffixes: Smith2025, Smith2025a, ...
func ToBibTeXList(pubs []publication.Publication) string {
	idx := NewBibIndex()
	var entries []string
	for _, p := range pubs {
		entries = append(entries, bibEntry(idx.Add(p), p))
	}
	return strings.Join(entries, "\n")
}

// CiteKey returns the entry key: the first author's last name followed by
// the year, or "unknown" plus the year when the first author is blank.
func CiteKey(p publication.Publication) string {
	return lastName(firstAuthor(p.Authors)) + publication.Blank(p.Year)
}

// firstAuthor returns the first semicolon-separated name, trimmed.
func firstAuthor(authors string) string {
	first, _, _ := strings.Cut(authors, ";")
	first = strings.TrimSpace(first)
	if first == publication.Sentinel {
		return ""
	}
	return first
}

// lastName extracts a surname from "Last, First" or "First Last".
func lastName(name string) string {
	if surname, _, ok := strings.Cut(name, ","); ok {
		name = surname
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return unknownAuthor
	}
	return fields[len(fields)-1]
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
