package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantColumn  bool
		wantRoutine bool
	}{
		{name: "pg undefined column", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "42703"}), wantColumn: true},
		{name: "pg undefined function", err: &pgconn.PgError{Code: "42883"}, wantRoutine: true},
		{name: "pg undefined table", err: &pgconn.PgError{Code: "42P01"}, wantRoutine: true},
		{name: "pg unique violation", err: &pgconn.PgError{Code: "23505"}},
		{name: "sqlite missing column", err: errors.New("table evaluations has no column named student_roll"), wantColumn: true},
		{name: "sqlite missing function", err: errors.New("no such table-valued function: match_assignments"), wantRoutine: true},
		{name: "connection refused", err: errors.New("dial tcp: connection refused")},
		{name: "nil", err: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsMissingColumn(tc.err); got != tc.wantColumn {
				t.Fatalf("IsMissingColumn: want=%v got=%v", tc.wantColumn, got)
			}
			if got := IsMissingRoutine(tc.err); got != tc.wantRoutine {
				t.Fatalf("IsMissingRoutine: want=%v got=%v", tc.wantRoutine, got)
			}
		})
	}
}
