package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "bad connection",
			err:  driver.ErrBadConn,
			want: true,
		},
		{
			name: "wrapped bad connection",
			err:  fmt.Errorf("query failed: %w", driver.ErrBadConn),
			want: true,
		},
		{
			name: "connection reset by peer",
			err:  &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET},
			want: true,
		},
		{
			name: "broken pipe",
			err:  &net.OpError{Op: "write", Net: "tcp", Err: syscall.EPIPE},
			want: true,
		},
		{
			name: "unexpected EOF",
			err:  io.ErrUnexpectedEOF,
			want: true,
		},
		{
			name: "postgres connection exception class 08",
			err:  &pgconn.PgError{Code: "08006", Message: "connection failure"},
			want: true,
		},
		{
			name: "postgres admin shutdown is not a connection fault",
			err:  &pgconn.PgError{Code: "57P01", Message: "terminating connection"},
			want: false,
		},
		{
			name: "unique constraint violation",
			err:  &pgconn.PgError{Code: "23505", Message: "duplicate key value"},
			want: false,
		},
		{
			name: "syntax error",
			err:  &pgconn.PgError{Code: "42601", Message: "syntax error"},
			want: false,
		},
		{
			name: "no rows",
			err:  sql.ErrNoRows,
			want: false,
		},
		{
			name: "arbitrary error",
			err:  errors.New("boom"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func testRetrier(attempts int, refresh func(context.Context)) *retrier {
	return &retrier{
		cfg:     RetryConfig{Attempts: attempts, Step: time.Millisecond},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		refresh: refresh,
	}
}

func TestRetrierDo(t *testing.T) {
	t.Parallel()

	connLost := &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}

	t.Run("persistent connection fault exhausts all attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		r := testRetrier(3, nil)
		err := r.Do(context.Background(), "op", func(context.Context) error {
			calls++
			return connLost
		})

		require.ErrorIs(t, err, ErrRetryExhausted)
		assert.Equal(t, 3, calls)
	})

	t.Run("fatal fault propagates without retry", func(t *testing.T) {
		t.Parallel()

		constraint := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}

		calls := 0
		r := testRetrier(3, nil)
		err := r.Do(context.Background(), "op", func(context.Context) error {
			calls++
			return constraint
		})

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRetryExhausted)
		assert.ErrorAs(t, err, new(*pgconn.PgError))
		assert.Equal(t, 1, calls)
	})

	t.Run("recovers when a later attempt succeeds", func(t *testing.T) {
		t.Parallel()

		calls := 0
		r := testRetrier(3, nil)
		err := r.Do(context.Background(), "op", func(context.Context) error {
			calls++
			if calls < 3 {
				return connLost
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("pool is refreshed before every attempt", func(t *testing.T) {
		t.Parallel()

		refreshes := 0
		calls := 0
		r := testRetrier(3, func(context.Context) { refreshes++ })
		err := r.Do(context.Background(), "op", func(context.Context) error {
			calls++
			return connLost
		})

		require.ErrorIs(t, err, ErrRetryExhausted)
		assert.Equal(t, calls, refreshes)
	})

	t.Run("context cancellation abandons the backoff", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		calls := 0
		r := &retrier{
			cfg:    RetryConfig{Attempts: 3, Step: time.Minute},
			logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		}
		err := r.Do(ctx, "op", func(context.Context) error {
			calls++
			cancel()
			return connLost
		})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausted error preserves the last fault text", func(t *testing.T) {
		t.Parallel()

		r := testRetrier(2, nil)
		err := r.Do(context.Background(), "op", func(context.Context) error {
			return connLost
		})

		require.ErrorIs(t, err, ErrRetryExhausted)
		assert.Contains(t, err.Error(), "connection reset by peer")
	})
}
