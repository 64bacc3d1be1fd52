package export

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/aquaticfungi/pubdb/internal/publication"
)

var (
	// Match entry start: @type{key,
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)
	// Match DOI field: doi = {value} or doi = "value"
	doiFieldRegex = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[\{"]([^\}"]+)[\}"]`)
)

// BibIndex records the keys and DOIs already present in a .bib file.
type BibIndex struct {
	Keys map[string]bool
	DOIs map[string]string // normalized DOI -> key
}

// NewBibIndex creates an empty index.
func NewBibIndex() *BibIndex {
	return &BibIndex{
		Keys: make(map[string]bool),
		DOIs: make(map[string]string),
	}
}

// Has reports whether p is already in the index. DOI is the primary match;
// the citation key is the fallback for records without a DOI.
func (idx *BibIndex) Has(p publication.Publication) bool {
	if doi := publication.Blank(p.DOI); doi != "" {
		if _, ok := idx.DOIs[normalizeDOI(doi)]; ok {
			return true
		}
		return false
	}
	return idx.Keys[CiteKey(p)]
}

// Add records p in the index and returns the key it was filed under. A
// key already taken by another entry gets the first free suffix.
func (idx *BibIndex) Add(p publication.Publication) string {
	key := idx.freeKey(CiteKey(p))
	idx.Keys[key] = true
	if doi := publication.Blank(p.DOI); doi != "" {
		idx.DOIs[normalizeDOI(doi)] = key
	}
	return key
}

// freeKey returns base, or base with the first unused suffix a..z, aa,
// ab, ... when base is taken.
func (idx *BibIndex) freeKey(base string) string {
	if !idx.Keys[base] {
		return base
	}
	for i := 1; ; i++ {
		if key := base + letterSuffix(i); !idx.Keys[key] {
			return key
		}
	}
}

// letterSuffix maps 1, 2, ..., 26, 27 to a, b, ..., z, aa.
func letterSuffix(n int) string {
	var s []byte
	for n > 0 {
		n--
		s = append([]byte{byte('a' + n%26)}, s...)
		n /= 26
	}
	return string(s)
}

// ReadBibIndex builds an index from an existing .bib file.
// Returns an empty index if the file doesn't exist.
func ReadBibIndex(path string) (*BibIndex, error) {
	idx := NewBibIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var currentKey string

	for scanner.Scan() {
		line := scanner.Text()

		if matches := entryStartRegex.FindStringSubmatch(line); len(matches) > 1 {
			currentKey = strings.TrimSpace(matches[1])
			idx.Keys[currentKey] = true
		}

		if matches := doiFieldRegex.FindStringSubmatch(line); len(matches) > 1 {
			doi := normalizeDOI(matches[1])
			if doi != "" && currentKey != "" {
				idx.DOIs[doi] = currentKey
			}
		}
	}

	return idx, scanner.Err()
}

// normalizeDOI normalizes a DOI for comparison.
// Removes common prefixes like "https://doi.org/" and lowercases.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}

// AppendBibTeX appends entries for pubs not already in the .bib file at
// path, creating it if needed. It returns how many entries were added and
// how many were skipped as already present.
func AppendBibTeX(path string, pubs []publication.Publication) (added, skipped int, err error) {
	idx, err := ReadBibIndex(path)
	if err != nil {
		return 0, 0, fmt.Errorf("reading %s: %w", path, err)
	}

	var fresh []string
	for _, p := range pubs {
		if idx.Has(p) {
			skipped++
			continue
		}
		fresh = append(fresh, bibEntry(idx.Add(p), p))
	}
	if len(fresh) == 0 {
		return 0, skipped, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return 0, skipped, err
	}
	defer file.Close()

	// Ensure we start on a new line
	if _, err := file.WriteString("\n" + strings.Join(fresh, "\n")); err != nil {
		return 0, skipped, err
	}
	return len(fresh), skipped, nil
}
