package main

import (
	"errors"

	"github.com/aquaticfungi/pubdb/internal/ingest"
	"github.com/aquaticfungi/pubdb/internal/storage"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config file or env value)
	ExitDataError   = 3 // Source file missing or unparsable
	ExitSchemaError = 4 // Store missing, or lacks the publications table or a column
	ExitNotFound    = 5 // Requested record does not exist
)

// exitCodeFor classifies err into an exit code.
func exitCodeFor(err error) int {
	var schemaErr *storage.SchemaError
	var sourceErr *ingest.SourceError
	switch {
	case errors.Is(err, storage.ErrStoreNotFound), errors.As(err, &schemaErr):
		return ExitSchemaError
	case errors.Is(err, ingest.ErrNoSources), errors.As(err, &sourceErr):
		return ExitDataError
	}
	return ExitError
}
