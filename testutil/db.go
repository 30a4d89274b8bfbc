// Package testutil opens connections to the integration test database.
// Every helper skips the calling test when TEST_DATABASE_URL is unset, so
// `go test ./...` stays green on machines without Postgres.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/trip-planner/internal/repo"
)

// EnvDatabaseURL names the variable holding the test database DSN.
const EnvDatabaseURL = "TEST_DATABASE_URL"

// LockTimeout is the lock_timeout test pools run with. It is far below the
// production default so contention tests fail fast.
const LockTimeout = 250 * time.Millisecond

// NewPool returns a pool configured the way cmd/api configures production,
// with lock_timeout set to LockTimeout. It is closed when t finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	cfg, err := repo.ParsePoolConfig(databaseURL(t), LockTimeout)
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("testutil.NewPool: create: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB returns a database/sql view over a NewPool pool, the same
// arrangement cmd/api uses to hand goose a *sql.DB.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db := stdlib.OpenDBFromPool(NewPool(t))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// MustOpenSQLDB is NewSQLDB for TestMain, which has no *testing.T.
// It panics on failure and the caller closes the result.
func MustOpenSQLDB(dsn string) *sql.DB {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: parse: " + err.Error())
	}
	db := stdlib.OpenDB(*cfg)
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		panic("testutil.MustOpenSQLDB: ping: " + err.Error())
	}
	return db
}

func databaseURL(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skip(EnvDatabaseURL + " not set; skipping integration test")
	}
	return dsn
}
