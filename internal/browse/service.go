// Package browse is the query/export service the presentation layer calls:
// paginated filtering, record lookup, metrics, and a cached full-table
// snapshot for exports.
package browse

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aquaticfungi/pubdb/internal/publication"
	"github.com/aquaticfungi/pubdb/internal/storage"
)

// DefaultSnapshotTTL bounds how long LoadAll serves a cached snapshot.
const DefaultSnapshotTTL = time.Hour

// Request carries one caller's filter and pagination state. The
// presentation layer owns it; the service keeps none between calls.
type Request struct {
	Search       string `json:"search"`
	Year         string `json:"year"`
	MinCitations int    `json:"min_citations"`
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
}

// Filter returns the storage predicates of the request.
func (r Request) Filter() storage.Filter {
	return storage.Filter{Search: r.Search, Year: r.Year, MinCitations: r.MinCitations}
}

// Result is one page of matching publications.
type Result struct {
	Publications []publication.Publication `json:"publications"`
	Total        int                       `json:"total"`
	Page         int                       `json:"page"`
	PageSize     int                       `json:"page_size"`
	TotalPages   int                       `json:"total_pages"`
}

// Service answers queries against one store file. Each call opens a scoped
// connection through storage.WithDB.
type Service struct {
	path string
	ttl  time.Duration
	now  func() time.Time

	mu   sync.Mutex
	snap *snapshot
}

// snapshot is a cached copy of the full table, tied to the store file it
// was read from.
type snapshot struct {
	pubs     []publication.Publication
	loadedAt time.Time
	modTime  time.Time
	size     int64
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the snapshot time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New validates the store at path and returns a service for it. A store
// without the required schema is rejected here, before any query runs.
func New(path string, opts ...Option) (*Service, error) {
	v, err := storage.ValidateStore(path)
	if err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	s := &Service{path: path, ttl: DefaultSnapshotTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the store path.
func (s *Service) Path() string {
	return s.path
}

// FetchPage returns the requested page and the pagination-independent
// count of matching publications.
func (s *Service) FetchPage(req Request) (*Result, error) {
	page := storage.Page{Number: req.Page, Size: req.PageSize}
	var res *Result
	err := storage.WithDB(s.path, func(db *storage.DB) error {
		pubs, total, err := db.FetchPage(req.Filter(), page)
		if err != nil {
			return err
		}
		if pubs == nil {
			pubs = []publication.Publication{}
		}
		res = &Result{
			Publications: pubs,
			Total:        total,
			Page:         page.Number,
			PageSize:     page.Size,
			TotalPages:   storage.TotalPages(total, page.Size),
		}
		return nil
	})
	return res, err
}

// Find returns every publication matching the request's filter, ignoring
// its pagination.
func (s *Service) Find(req Request) ([]publication.Publication, error) {
	var pubs []publication.Publication
	err := storage.WithDB(s.path, func(db *storage.DB) error {
		var err error
		pubs, err = db.Find(req.Filter())
		return err
	})
	return pubs, err
}

// Get returns the publication with the given row id, or nil.
func (s *Service) Get(id int64) (*publication.Publication, error) {
	var p *publication.Publication
	err := storage.WithDB(s.path, func(db *storage.DB) error {
		var err error
		p, err = db.GetByID(id)
		return err
	})
	return p, err
}

// Years lists distinct years, newest first.
func (s *Service) Years() ([]string, error) {
	var years []string
	err := storage.WithDB(s.path, func(db *storage.DB) error {
		var err error
		years, err = db.Years()
		return err
	})
	return years, err
}

// Stats computes aggregate metrics for the request's filter.
func (s *Service) Stats(req Request) (storage.Stats, error) {
	var st storage.Stats
	err := storage.WithDB(s.path, func(db *storage.DB) error {
		var err error
		st, err = db.Stats(req.Filter())
		return err
	})
	return st, err
}

// LoadAll returns the full table. The result is cached until the TTL
// elapses, Invalidate is called, or the store file is replaced. Callers
// must not modify the returned slice.
func (s *Service) LoadAll() ([]publication.Publication, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if snap := s.snap; snap != nil &&
		now.Sub(snap.loadedAt) < s.ttl &&
		snap.modTime.Equal(info.ModTime()) && snap.size == info.Size() {
		return snap.pubs, nil
	}

	slog.Info("Loading publications snapshot", "path", s.path)
	var pubs []publication.Publication
	err = storage.WithDB(s.path, func(db *storage.DB) error {
		var err error
		pubs, err = db.ListAll()
		return err
	})
	if err != nil {
		return nil, err
	}

	s.snap = &snapshot{
		pubs:     pubs,
		loadedAt: now,
		modTime:  info.ModTime(),
		size:     info.Size(),
	}
	return pubs, nil
}

// Invalidate drops the cached snapshot. Ingestion calls this after it
// rewrites the store.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
}
