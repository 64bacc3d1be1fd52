package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/aquaticfungi/pubdb/internal/publication"
)

// tempSuffix names the scratch file a store is built in before it is
// renamed over the target.
const tempSuffix = ".building"

// ReplaceStore rebuilds the store at path from pubs. The new table is built
// in a scratch file next to path and renamed into place, so a reader opening
// path sees either the previous store or the complete new one. On failure the
// previous store is left untouched and the scratch file is removed.
func ReplaceStore(path string, pubs []publication.Publication) (int, error) {
	tmp := path + tempSuffix
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("removing stale build file: %w", err)
	}

	n, err := buildStore(tmp, pubs)
	if err != nil {
		os.Remove(tmp)
		return 0, err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("replacing store: %w", err)
	}
	return n, nil
}

func buildStore(path string, pubs []publication.Publication) (n int, err error) {
	db, err := createDB(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing database: %w", cerr)
		}
	}()

	n, err = db.InsertAll(pubs)
	if err != nil {
		return 0, err
	}
	if err := db.createIndexes(); err != nil {
		return 0, err
	}
	return n, nil
}
