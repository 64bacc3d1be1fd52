package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aquaticfungi/pubdb/internal/publication"
)

// ErrStoreNotFound is returned when the store file does not exist.
var ErrStoreNotFound = errors.New("store not found")

// RequiredColumns is the column set a store must expose before it is queried.
var RequiredColumns = publication.Columns

// SchemaError reports a store that exists but lacks the required table or
// columns. It is a structural failure, distinct from I/O errors.
type SchemaError struct {
	Path    string
	Reason  string
	Missing []string // missing table or column names
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid store %s: %s", e.Path, e.Reason)
}

// Validation is the outcome of ValidateStore.
type Validation struct {
	Path    string   `json:"path"`
	Valid   bool     `json:"valid"`
	Reason  string   `json:"reason,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// Err returns nil for a valid store, ErrStoreNotFound when the file is
// absent, and a *SchemaError otherwise.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	if len(v.Missing) == 0 {
		return fmt.Errorf("%w: %s", ErrStoreNotFound, v.Path)
	}
	return &SchemaError{Path: v.Path, Reason: v.Reason, Missing: v.Missing}
}

// ValidateStore checks that path holds the publications table with every
// required column. Structural problems come back as an invalid Validation;
// the error is reserved for failures to read the file at all.
func ValidateStore(path string) (Validation, error) {
	v := Validation{Path: path}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			v.Reason = "store file not found"
			return v, nil
		}
		return v, fmt.Errorf("reading store: %w", err)
	}

	db, err := openReader(path)
	if err != nil {
		return v, err
	}
	defer db.Close()

	var name string
	err = db.db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, TableName,
	).Scan(&name)
	if err == sql.ErrNoRows {
		v.Reason = fmt.Sprintf("no '%s' table found", TableName)
		v.Missing = []string{TableName}
		return v, nil
	}
	if err != nil {
		return v, fmt.Errorf("reading store metadata: %w", err)
	}

	columns, err := db.tableColumns()
	if err != nil {
		return v, err
	}

	for _, col := range RequiredColumns {
		if !columns[col] {
			v.Missing = append(v.Missing, col)
		}
	}
	if len(v.Missing) > 0 {
		v.Reason = "missing columns: " + strings.Join(v.Missing, ", ")
		return v, nil
	}

	v.Valid = true
	return v, nil
}

// tableColumns returns the column names reported by the storage engine.
func (d *DB) tableColumns() (map[string]bool, error) {
	rows, err := d.db.Query(`SELECT name FROM pragma_table_info(?)`, TableName)
	if err != nil {
		return nil, fmt.Errorf("reading table info: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("reading table info: %w", err)
		}
		columns[name] = true
	}
	return columns, rows.Err()
}
