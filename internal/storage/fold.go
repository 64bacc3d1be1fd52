package storage

import (
	"database/sql/driver"

	"golang.org/x/text/cases"
	"modernc.org/sqlite"
)

// foldFunc is the SQL function applied to searched columns. SQLite's
// built-in LOWER and LIKE only fold ASCII, so "Ørsted" would not match
// "ørsted" without it.
const foldFunc = "casefold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, foldValue)
}

// foldValue implements casefold(x): Unicode case folding for text, other
// values pass through unchanged.
func foldValue(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return fold(v), nil
	case []byte:
		return fold(string(v)), nil
	default:
		return v, nil
	}
}

// fold case-folds s. A Caser holds state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
