package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aquaticfungi/pubdb/internal/publication"
)

// AllYears is the year filter value that disables the year predicate.
const AllYears = "All"

// ErrInvalidPage is returned for a page number or size below 1.
var ErrInvalidPage = errors.New("page and page size must be positive")

// searchColumns are matched by the free-text search term.
var searchColumns = []string{"Title", "Authors", "Keywords", "Abstract"}

// Filter holds the predicates of a publication query. The zero value
// matches every row.
type Filter struct {
	Search       string // case-insensitive substring over searchColumns
	Year         string // exact match; "" or AllYears disables
	MinCitations int    // inclusive lower bound; 0 disables
}

// Page selects a window of a filtered result.
type Page struct {
	Number int // 1-indexed
	Size   int
}

// Offset returns the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Validate checks that the page number and size are usable.
func (p Page) Validate() error {
	if p.Number < 1 || p.Size < 1 {
		return fmt.Errorf("%w: page=%d size=%d", ErrInvalidPage, p.Number, p.Size)
	}
	return nil
}

// TotalPages returns how many pages of this size cover total rows.
// An empty result still has one (empty) page.
func TotalPages(total, size int) int {
	if size < 1 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Empty reports whether f matches every row.
func (f Filter) Empty() bool {
	where, _ := f.where()
	return where == ""
}

// where builds the WHERE clause for f. Every caller-supplied value is
// returned as a bound argument, never spliced into the query text.
func (f Filter) where() (string, []interface{}) {
	var conds []string
	var args []interface{}

	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := "%" + escapeLike(fold(term)) + "%"
		var ors []string
		for _, col := range searchColumns {
			ors = append(ors, foldFunc+"("+col+`) LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if f.Year != "" && f.Year != AllYears {
		conds = append(conds, "Year = ?")
		args = append(args, f.Year)
	}

	if f.MinCitations > 0 {
		conds = append(conds, "Citations >= ?")
		args = append(args, f.MinCitations)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike escapes LIKE wildcards so the term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// FetchPage returns one page of publications matching f, ordered by row
// position, together with the number of rows matching f regardless of
// pagination.
func (d *DB) FetchPage(f Filter, p Page) ([]publication.Publication, int, error) {
	if err := p.Validate(); err != nil {
		return nil, 0, err
	}

	total, err := d.Count(f)
	if err != nil {
		return nil, 0, err
	}

	where, args := f.where()
	args = append(args, p.Size, p.Offset())

	rows, err := d.db.Query(`SELECT `+selectPubFields+` FROM publications`+where+
		` ORDER BY rowid LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching page: %w", err)
	}
	defer rows.Close()

	pubs, err := scanPublications(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching page: %w", err)
	}
	return pubs, total, nil
}

// Find returns every publication matching f in row order.
func (d *DB) Find(f Filter) ([]publication.Publication, error) {
	where, args := f.where()
	rows, err := d.db.Query(`SELECT `+selectPubFields+` FROM publications`+where+
		` ORDER BY rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	defer rows.Close()

	return scanPublications(rows)
}

// ListAll returns the full table in row order.
func (d *DB) ListAll() ([]publication.Publication, error) {
	return d.Find(Filter{})
}

// Count returns the number of publications matching f.
func (d *DB) Count(f Filter) (int, error) {
	where, args := f.where()
	var count int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM publications`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting publications: %w", err)
	}
	return count, nil
}

// CountTitleContaining counts rows whose Title contains marker, ignoring
// case.
func (d *DB) CountTitleContaining(marker string) (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM publications WHERE `+foldFunc+`(Title) LIKE ? ESCAPE '\'`,
		"%"+escapeLike(fold(marker))+"%").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting title matches: %w", err)
	}
	return count, nil
}

// GetByID retrieves a publication by its row id. It returns nil, nil when
// no such row exists.
func (d *DB) GetByID(id int64) (*publication.Publication, error) {
	row := d.db.QueryRow(`SELECT `+selectPubFields+` FROM publications WHERE rowid = ?`, id)
	p, err := scanPublication(row)
	if err != nil {
		return nil, fmt.Errorf("getting publication %d: %w", id, err)
	}
	return p, nil
}

// Years returns the distinct publication years, newest first, with the
// missing-value sentinel last.
func (d *DB) Years() ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT Year FROM publications WHERE Year IS NOT NULL
		ORDER BY Year = ?, Year DESC`, publication.Sentinel)
	if err != nil {
		return nil, fmt.Errorf("listing years: %w", err)
	}
	defer rows.Close()

	var years []string
	for rows.Next() {
		var y string
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("listing years: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// Stats summarizes the publications matching a filter.
type Stats struct {
	Publications     int     `json:"publications"`
	AverageCitations float64 `json:"average_citations"`
	Years            int     `json:"years"`
	MaxCitations     int     `json:"max_citations"`
}

// Stats computes aggregate metrics over the rows matching f.
func (d *DB) Stats(f Filter) (Stats, error) {
	where, args := f.where()
	var s Stats
	err := d.db.QueryRow(`SELECT COUNT(*), COALESCE(AVG(Citations), 0), COUNT(DISTINCT Year),
		COALESCE(MAX(Citations), 0) FROM publications`+where, args...).
		Scan(&s.Publications, &s.AverageCitations, &s.Years, &s.MaxCitations)
	if err != nil {
		return Stats{}, fmt.Errorf("computing stats: %w", err)
	}
	return s, nil
}
