// Package testdb provides the shared Postgres harness for integration
// tests. Tests opt in by setting DATABASE_URL; without it they skip.
// Each test runs inside a transaction that is rolled back, so tests
// never see each other's data and the database stays clean.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/engram-api/internal/platform/postgres"
)

var (
	openOnce sync.Once
	sharedDB *sql.DB
	openErr  error
)

// Open returns the shared test database connection, applying migrations
// on first use. It skips the test when DATABASE_URL is not set.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping database integration test")
	}

	openOnce.Do(func() {
		sharedDB, openErr = sql.Open("pgx", url)
		if openErr != nil {
			return
		}
		openErr = postgres.MigrateUp(sharedDB)
	})
	if openErr != nil {
		t.Fatalf("failed to prepare test database: %v", openErr)
	}
	return sharedDB
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to begin test transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(tx)
}
