// Package repo contains all database access logic for the trip planner.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkordes/trip-planner/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txStarter is satisfied by *pgxpool.Pool and by pgx.Tx (which opens a
// savepoint), so a Transactor can be nested inside a test transaction.
type txStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Trips       TripRepo
	Activities  ActivityRepo
	Suggestions SuggestionRepo
	Votes       VoteRepo
	Members     MembershipRepo
	Reviews     ReviewRepo
}

// NewRepos builds all repositories on top of db.
func NewRepos(db db) Repos {
	return Repos{
		Trips:       NewTripRepo(db),
		Activities:  NewActivityRepo(db),
		Suggestions: NewSuggestionRepo(db),
		Votes:       NewVoteRepo(db),
		Members:     NewMembershipRepo(db),
		Reviews:     NewReviewRepo(db),
	}
}

// ParsePoolConfig parses dsn and sets lock_timeout on every session the pool
// opens, so a statement blocked on a row lock fails with SQLSTATE 55P03
// (domain.ErrStoreBusy) instead of waiting indefinitely.
func ParsePoolConfig(dsn string, lockTimeout time.Duration) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.ParsePoolConfig: %w", err)
	}
	if lockTimeout > 0 {
		cfg.ConnConfig.RuntimeParams["lock_timeout"] = strconv.FormatInt(lockTimeout.Milliseconds(), 10)
	}
	return cfg, nil
}

// Transactor runs a unit of work inside a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

type pgTransactor struct {
	db txStarter
}

// NewTransactor returns a Transactor that begins transactions on db.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewTransactor(db txStarter) Transactor {
	return &pgTransactor{db: db}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(r Repos) error) (err error) {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Transactor.WithinTx: begin: %w", classify(err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			// The rollback error is irrelevant once fn or commit has failed.
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(NewRepos(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Transactor.WithinTx: commit: %w", classify(err))
	}
	return nil
}

// Postgres SQLSTATE codes classify understands. The first three mean "could
// not get the lock in time": lock_timeout raises 55P03, the other two come
// from concurrent writers.
const (
	sqlstateLockNotAvailable     = "55P03"
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
	sqlstateUniqueViolation      = "23505"
)

// classify maps driver errors onto domain sentinels: no rows becomes
// domain.ErrNotFound, lock contention becomes domain.ErrStoreBusy and a
// unique violation becomes domain.ErrAlreadyExists.
// Anything else is returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateLockNotAvailable, sqlstateSerializationFailure, sqlstateDeadlockDetected:
			return fmt.Errorf("%w: %w", domain.ErrStoreBusy, err)
		case sqlstateUniqueViolation:
			return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err)
		}
	}
	return err
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// clockArg converts a wall-clock time into a Postgres TIME value.
func clockArg(c domain.ClockTime) pgtype.Time {
	return pgtype.Time{Microseconds: c.Duration().Microseconds(), Valid: true}
}

// clockValue converts a scanned Postgres TIME value back into a ClockTime.
func clockValue(t pgtype.Time) domain.ClockTime {
	return domain.ClockFromDuration(time.Duration(t.Microseconds) * time.Microsecond)
}

// dateArg strips the clock part so only the calendar date reaches the DB.
func dateArg(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}
