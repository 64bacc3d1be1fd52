// Package storage reads and writes the SQLite publications store.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/aquaticfungi/pubdb/internal/publication"
	_ "modernc.org/sqlite"
)

// TableName is the single table held by a store.
const TableName = "publications"

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectPubFields contains the standard field list for SELECT queries.
const selectPubFields = `rowid, Authors, Title, Keywords, Abstract,
	Citations, Year, DOI, WOS_ID, Link`

// createTableSQL is the explicit schema for a freshly ingested store.
const createTableSQL = `
	CREATE TABLE publications (
		"Authors" TEXT,
		"Title" TEXT,
		"Keywords" TEXT,
		"Abstract" TEXT,
		"Citations" INTEGER,
		"Year" TEXT,
		"DOI" TEXT,
		"WOS_ID" TEXT,
		"Link" TEXT
	)`

// indexSQL holds the read-acceleration indexes. They carry no semantics.
var indexSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_title ON publications(Title)`,
	`CREATE INDEX IF NOT EXISTS idx_year ON publications(Year)`,
	`CREATE INDEX IF NOT EXISTS idx_keywords ON publications(Keywords)`,
}

// Open validates the store at path and opens it for reading.
// Structural problems are returned as ErrStoreNotFound or *SchemaError
// before any query is issued.
func Open(path string) (*DB, error) {
	v, err := ValidateStore(path)
	if err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return openReader(path)
}

// WithDB opens the store, runs fn, and closes the connection on every exit
// path.
func WithDB(path string, fn func(*DB) error) (err error) {
	db, err := Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing database: %w", cerr)
		}
	}()
	return fn(db)
}

// openReader opens an existing store with writes disabled.
func openReader(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, path)
		}
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection, so the pragma below holds for every query.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA query_only = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &DB{db: db}, nil
}

// createDB creates a new store file at path containing an empty
// publications table. The file must not already hold that table.
func createDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA encoding = 'UTF-8'"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting encoding: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// InsertAll bulk-inserts publications in a single transaction.
func (d *DB) InsertAll(pubs []publication.Publication) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO publications (
			Authors, Title, Keywords, Abstract, Citations,
			Year, DOI, WOS_ID, Link
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range pubs {
		if _, err := stmt.Exec(p.Values()...); err != nil {
			return 0, fmt.Errorf("inserting row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing inserts: %w", err)
	}
	return len(pubs), nil
}

// createIndexes adds the read-acceleration indexes.
func (d *DB) createIndexes() error {
	for _, stmt := range indexSQL {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPublication(s scanner) (*publication.Publication, error) {
	var p publication.Publication
	var authors, title, keywords, abstract sql.NullString
	var year, doi, wosID, link sql.NullString
	var citations sql.NullInt64

	err := s.Scan(
		&p.ID, &authors, &title, &keywords, &abstract,
		&citations, &year, &doi, &wosID, &link,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	// Stores written by other tools may hold NULLs.
	p.Authors = nullToSentinel(authors)
	p.Title = nullToSentinel(title)
	p.Keywords = keywords.String
	p.Abstract = nullToSentinel(abstract)
	p.Year = nullToSentinel(year)
	p.DOI = nullToSentinel(doi)
	p.WOSID = nullToSentinel(wosID)
	p.Link = nullToSentinel(link)
	if citations.Valid && citations.Int64 > 0 {
		p.Citations = int(citations.Int64)
	}

	return &p, nil
}

func scanPublications(rows *sql.Rows) ([]publication.Publication, error) {
	var pubs []publication.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		if p != nil {
			pubs = append(pubs, *p)
		}
	}
	return pubs, rows.Err()
}

func nullToSentinel(s sql.NullString) string {
	if !s.Valid {
		return publication.Sentinel
	}
	return s.String
}
