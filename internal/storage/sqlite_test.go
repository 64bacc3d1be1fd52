package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aquaticfungi/pubdb/internal/publication"
)

func testPublications() []publication.Publication {
	return []publication.Publication{
		{
			Authors: "Smith, J.; Doe, A.", Title: "Aquatic Fungi in Streams",
			Keywords: "fungi; streams", Abstract: "Freshwater hyphomycetes.",
			Citations: 12, Year: "2025", DOI: "10.1/a", WOSID: "WOS:1",
			Link: publication.LinkFor("WOS:1"),
		},
		{
			Authors: "Jones, B.", Title: "Marine Yeasts",
			Keywords: "yeast", Abstract: publication.Sentinel,
			Citations: 0, Year: "2024", DOI: publication.Sentinel, WOSID: publication.Sentinel,
			Link: publication.Sentinel,
		},
		{
			Authors: "Brown, C.", Title: "Chytrids of Lakes",
			Keywords: "", Abstract: "Zoosporic FUNGI in lakes.",
			Citations: 40, Year: "2025", DOI: "10.1/c", WOSID: "WOS:3",
			Link: publication.LinkFor("WOS:3"),
		},
		{
			Authors: "White, D.", Title: "Sediment Microbes 100% Sampled",
			Keywords: "sediment", Abstract: "Bacteria and archaea.",
			Citations: 5, Year: "2023", DOI: "10.1/d", WOSID: "WOS:4",
			Link: publication.LinkFor("WOS:4"),
		},
		{
			Authors: "Green, E.; Black, F.", Title: "Fungal Decomposition of Leaves",
			Keywords: "decomposition; fungi", Abstract: "Leaf litter breakdown.",
			Citations: 3, Year: publication.Sentinel, DOI: "10.1/e", WOSID: "WOS:5",
			Link: publication.LinkFor("WOS:5"),
		},
	}
}

// setupTestStore writes a store with test data and returns its path.
func setupTestStore(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "publications.db")
	if _, err := ReplaceStore(path, testPublications()); err != nil {
		t.Fatalf("ReplaceStore() error = %v", err)
	}
	return path
}

// openTestDB opens a store with test data and closes it when the test ends.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(setupTestStore(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReplaceStore_CreatesSchemaAndIndexes(t *testing.T) {
	path := setupTestStore(t)

	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer raw.Close()

	var indexes int
	err = raw.QueryRow(`SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'index' AND name IN ('idx_title', 'idx_year', 'idx_keywords')`).Scan(&indexes)
	if err != nil {
		t.Fatalf("counting indexes: %v", err)
	}
	if indexes != 3 {
		t.Errorf("found %d indexes, want 3", indexes)
	}

	if _, err := os.Stat(path + tempSuffix); !os.IsNotExist(err) {
		t.Error("ReplaceStore() left its build file behind")
	}
}

func TestReplaceStore_Overwrites(t *testing.T) {
	path := setupTestStore(t)

	n, err := ReplaceStore(path, testPublications()[:1])
	if err != nil {
		t.Fatalf("ReplaceStore() error = %v", err)
	}
	if n != 1 {
		t.Errorf("ReplaceStore() = %d, want 1", n)
	}

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	count, err := db.Count(Filter{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("after replace, Count() = %d, want 1", count)
	}
}

func TestReplaceStore_RemovesStaleBuildFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publications.db")
	if err := os.WriteFile(path+tempSuffix, []byte("partial"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReplaceStore(path, testPublications()); err != nil {
		t.Fatalf("ReplaceStore() error = %v", err)
	}
	if v, err := ValidateStore(path); err != nil || !v.Valid {
		t.Errorf("ValidateStore() = %+v, %v; want valid", v, err)
	}
}

func TestDB_ListAll_PreservesRowsAndOrder(t *testing.T) {
	db := openTestDB(t)

	pubs, err := db.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}

	want := testPublications()
	if len(pubs) != len(want) {
		t.Fatalf("ListAll() returned %d rows, want %d", len(pubs), len(want))
	}
	for i := range want {
		want[i].ID = int64(i + 1)
		if !reflect.DeepEqual(pubs[i], want[i]) {
			t.Errorf("row %d = %+v, want %+v", i, pubs[i], want[i])
		}
	}
}

func TestDB_GetByID(t *testing.T) {
	db := openTestDB(t)

	p, err := db.GetByID(3)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if p == nil || p.Title != "Chytrids of Lakes" {
		t.Errorf("GetByID(3) = %+v, want Chytrids of Lakes", p)
	}

	p, err = db.GetByID(99)
	if err != nil {
		t.Fatalf("GetByID(99) error = %v", err)
	}
	if p != nil {
		t.Errorf("GetByID(99) = %+v, want nil", p)
	}
}

func TestDB_Years(t *testing.T) {
	db := openTestDB(t)

	years, err := db.Years()
	if err != nil {
		t.Fatalf("Years() error = %v", err)
	}
	want := []string{"2025", "2024", "2023", publication.Sentinel}
	if !reflect.DeepEqual(years, want) {
		t.Errorf("Years() = %v, want %v", years, want)
	}
}

func TestDB_Stats(t *testing.T) {
	db := openTestDB(t)

	s, err := db.Stats(Filter{})
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if s.Publications != 5 || s.Years != 4 {
		t.Errorf("Stats() = %+v, want 5 publications over 4 years", s)
	}
	if s.AverageCitations != 12 {
		t.Errorf("AverageCitations = %v, want 12", s.AverageCitations)
	}
	if s.MaxCitations != 40 {
		t.Errorf("MaxCitations = %d, want 40", s.MaxCitations)
	}

	s, err = db.Stats(Filter{Year: "2025", MinCitations: 1})
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if s.MaxCitations != 40 || s.Publications != 2 {
		t.Errorf("Stats(2025) = %+v, want 2 publications, max 40", s)
	}

	s, err = db.Stats(Filter{Search: "nothing matches this"})
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if s != (Stats{}) {
		t.Errorf("Stats() on empty result = %+v, want zero", s)
	}
}

func TestDB_CountTitleContaining(t *testing.T) {
	db := openTestDB(t)

	n, err := db.CountTitleContaining("fung")
	if err != nil {
		t.Fatalf("CountTitleContaining() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountTitleContaining(fung) = %d, want 2", n)
	}
}

func TestOpen_ReadOnly(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.db.Exec(`DELETE FROM publications`); err == nil {
		t.Error("reader connection accepted a write")
	}
}

func TestOpen_MissingStore(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"))
	if !errors.Is(err, ErrStoreNotFound) {
		t.Errorf("Open() error = %v, want ErrStoreNotFound", err)
	}
}

func TestWithDB_ClosesOnError(t *testing.T) {
	path := setupTestStore(t)
	sentinel := errors.New("boom")

	var held *DB
	err := WithDB(path, func(db *DB) error {
		held = db
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithDB() error = %v, want %v", err, sentinel)
	}
	if _, err := held.Count(Filter{}); err == nil {
		t.Error("connection still usable after WithDB returned")
	}
}
