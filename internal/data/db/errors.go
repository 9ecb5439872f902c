package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	sqlStateUndefinedColumn   = "42703"
	sqlStateUndefinedFunction = "42883"
	sqlStateUndefinedTable    = "42P01"
)

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsMissingColumn reports an insert or select naming a column the table lacks.
func IsMissingColumn(err error) bool {
	if err == nil {
		return false
	}
	if sqlState(err) == sqlStateUndefinedColumn {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "has no column named") || strings.Contains(msg, "no such column")
}

// IsMissingRoutine reports a call to a function or relation that is not installed.
func IsMissingRoutine(err error) bool {
	if err == nil {
		return false
	}
	switch sqlState(err) {
	case sqlStateUndefinedFunction, sqlStateUndefinedTable:
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such function") ||
		strings.Contains(msg, "no such table-valued function") ||
		strings.Contains(msg, "no such table")
}

// HasMatchFunction reports whether match_assignments is installed.
func HasMatchFunction(db *gorm.DB) (bool, error) {
	if db.Dialector.Name() != DriverPostgres {
		return false, nil
	}
	var exists bool
	err := db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_proc WHERE proname = 'match_assignments')`).Scan(&exists).Error
	return exists, err
}
