package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func TestCentsConversion(t *testing.T) {
	tests := []struct {
		amount string
		cents  int64
	}{
		{"0", 0},
		{"0.01", 1},
		{"19.99", 1999},
		{"150", 15000},
		{"1234567.89", 123456789},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.amount)
		if got := toCents(d); got != tt.cents {
			t.Errorf("toCents(%s) = %d, want %d", tt.amount, got, tt.cents)
		}
		if got := fromCents(tt.cents); !got.Equal(d) {
			t.Errorf("fromCents(%d) = %s, want %s", tt.cents, got.String(), tt.amount)
		}
	}
}

func TestBasisPoints(t *testing.T) {
	if got := toBps(decimal.RequireFromString("10.5")); got != 1050 {
		t.Errorf("toBps(10.5) = %d, want 1050", got)
	}
	if got := fromBps(1250); !got.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("fromBps(1250) = %s, want 12.5", got.String())
	}
	if toNullBps(decimal.NullDecimal{}).Valid {
		t.Error("Expected unset rate to map to NULL")
	}
}

func TestConstraintErrors(t *testing.T) {
	unique := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	fk := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}
	pgUnique := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	pgFK := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}

	if !isUniqueViolation(fmt.Errorf("wrapped: %w", unique)) {
		t.Error("Expected sqlite unique violation to be detected")
	}
	if !isUniqueViolation(pgUnique) {
		t.Error("Expected postgres unique violation to be detected")
	}
	if isUniqueViolation(fk) || isUniqueViolation(errors.New("other")) {
		t.Error("Expected non-unique errors to be ignored")
	}
	if !isForeignKeyViolation(fk) || !isForeignKeyViolation(pgFK) {
		t.Error("Expected foreign key violations to be detected")
	}
	if isForeignKeyViolation(pgUnique) {
		t.Error("Expected unique violation not to be a foreign key violation")
	}
}

func TestDialectFor(t *testing.T) {
	d, err := dialectFor(DriverPostgres)
	if err != nil {
		t.Fatalf("dialectFor failed: %v", err)
	}
	if d.lockSuffix != " FOR UPDATE" {
		t.Errorf("Expected FOR UPDATE suffix, got %q", d.lockSuffix)
	}
	d, err = dialectFor(DriverSQLite)
	if err != nil {
		t.Fatalf("dialectFor failed: %v", err)
	}
	if d.lockSuffix != "" {
		t.Errorf("Expected no lock suffix for sqlite, got %q", d.lockSuffix)
	}
}
