package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrRetryExhausted indicates a store operation kept hitting connection
// faults until the attempt ceiling was reached.
var ErrRetryExhausted = errors.New("store retry attempts exhausted")

// RetryConfig bounds the recovery loop around store operations.
type RetryConfig struct {
	// Attempts is the total number of times an operation is tried.
	Attempts int
	// Step is the backoff unit; the delay after failed attempt n is n*Step.
	Step time.Duration
}

// pgConnectionExceptionClass is the SQLSTATE class covering lost and
// refused connections (08000, 08003, 08006, ...).
const pgConnectionExceptionClass = "08"

// IsTransient reports whether err belongs to the enumerated family of
// connection-lost faults that reconnection and retry can recover from.
// Anything else, notably constraint violations and query errors, is fatal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == pgConnectionExceptionClass
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// retrier executes store operations with pool recovery and bounded,
// linearly increasing backoff. refresh, when set, is called before every
// attempt to discard pooled connections and verify a fresh one.
type retrier struct {
	cfg     RetryConfig
	logger  *slog.Logger
	refresh func(context.Context)
}

// Do runs op, retrying transient connection faults up to the configured
// attempt ceiling. Non-transient errors propagate immediately.
func (r *retrier) Do(ctx context.Context, opName string, op func(context.Context) error) error {
	log := r.logger.With("operation", opName)

	var lastErr error
	for attempt := 1; attempt <= r.cfg.Attempts; attempt++ {
		if r.refresh != nil {
			r.refresh(ctx)
		}

		err := op(ctx)
		if err == nil {
			if attempt > 1 {
				log.InfoContext(ctx, "Store operation recovered after retry",
					"attempt", attempt)
			}
			return nil
		}

		if !IsTransient(err) {
			log.DebugContext(ctx, "Store operation failed with non-transient error, not retrying",
				"attempt", attempt,
				"error", err)
			return err
		}

		lastErr = err
		delay := time.Duration(attempt) * r.cfg.Step
		log.WarnContext(ctx, "Store operation hit connection fault, backing off",
			"attempt", attempt,
			"max_attempts", r.cfg.Attempts,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("store retry abandoned: %w", ctx.Err())
		case <-timer.C:
		}
	}

	log.ErrorContext(ctx, "Store operation retry attempts exhausted",
		"attempts", r.cfg.Attempts,
		"error", lastErr)
	return fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, r.cfg.Attempts, lastErr)
}
