package repository

import (
	"database/sql"
	"time"
)

const dateLayout = "2006-01-02"

// parseDate parses a stored calendar date into a UTC-midnight time.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// parseTimestamp parses a stored audit timestamp.
func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// nullableStr converts a sql.NullString into a *string.
func nullableStr(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := s.String
	return &v
}

// nullableStrToValue converts a *string to a value suitable for SQLite
// storage. Returns nil (SQL NULL) if the pointer is nil.
func nullableStrToValue(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// nullableIntToValue converts a *int to a value suitable for SQLite
// storage. Returns nil (SQL NULL) if the pointer is nil.
func nullableIntToValue(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}
