// Package service contains the business logic for the trip planner.
// Services validate inputs, enforce membership rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// RetryPolicy bounds the automatic retries of a unit of work that failed
// with domain.ErrStoreBusy.
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries uint64
	// BaseDelay is the first backoff; each further retry doubles it.
	BaseDelay time.Duration
}

// DefaultRetryPolicy matches the configuration defaults.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, BaseDelay: 50 * time.Millisecond}

// Recorder receives scheduling events, usually to export them as metrics.
type Recorder interface {
	// StoreBusy is called for every attempt of op that found the store busy.
	StoreBusy(op string)
	SuggestionProposed(outcome string)
	VoteCast(outcome string)
}

// Outcomes passed to a Recorder.
const (
	OutcomeCreated  = "created"
	OutcomeReplayed = "replayed"
	OutcomeConflict = "conflict"
	OutcomePending  = "pending"
	OutcomePromoted = "promoted"
	OutcomeBlocked  = "blocked"
)

type nopRecorder struct{}

func (nopRecorder) StoreBusy(string)          {}
func (nopRecorder) SuggestionProposed(string) {}
func (nopRecorder) VoteCast(string)           {}

// TxRunner runs units of work in a transaction and retries the whole
// transaction while the store reports itself busy. Every other error is
// returned on the first attempt.
type TxRunner struct {
	tx     repo.Transactor
	policy RetryPolicy
	log    *slog.Logger
	rec    Recorder
}

// NewTxRunner constructs a TxRunner. A nil logger falls back to slog.Default().
func NewTxRunner(tx repo.Transactor, policy RetryPolicy, log *slog.Logger) *TxRunner {
	if log == nil {
		log = slog.Default()
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	return &TxRunner{tx: tx, policy: policy, log: log, rec: nopRecorder{}}
}

// WithRecorder sets the Recorder shared by every service built on u.
func (u *TxRunner) WithRecorder(rec Recorder) *TxRunner {
	if rec != nil {
		u.rec = rec
	}
	return u
}

// Run executes fn inside WithinTx. op names the operation in retry logs.
func (u *TxRunner) Run(ctx context.Context, op string, fn func(r repo.Repos) error) error {
	b := retry.NewExponential(u.policy.BaseDelay)
	b = retry.WithJitterPercent(20, b)
	b = retry.WithMaxRetries(u.policy.MaxRetries, b)

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := u.tx.WithinTx(ctx, fn)
		if errors.Is(err, domain.ErrStoreBusy) {
			u.rec.StoreBusy(op)
			u.log.WarnContext(ctx, "store busy, retrying", "op", op, "attempt", attempt)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
