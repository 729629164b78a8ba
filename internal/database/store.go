package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// ErrAccountNotFound indicates the webhook token does not belong to any
// account. This is an authentication failure, not a datastore fault.
var ErrAccountNotFound = errors.New("account not found")

// Store defines the read operations the relay pipeline needs. All methods
// accept context.Context for cancellation and run behind connection-fault
// recovery.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// AccountByToken resolves the account owning a webhook token.
	// Returns ErrAccountNotFound when the token is unknown.
	AccountByToken(ctx context.Context, token string) (*Account, error)

	// RulesForAccount retrieves all forwarding rules of an account with
	// each rule's destination chat eager-loaded, so matching and delivery
	// never issue a second round trip per rule.
	RulesForAccount(ctx context.Context, accountID int64) ([]Rule, error)
}

// sqlStore implements Store using sqlx over PostgreSQL.
type sqlStore struct {
	db           *sqlx.DB
	logger       *slog.Logger
	retry        *retrier
	maxIdleConns int
}

// NewStore creates a Store backed by sqlx. It requires a connected sqlx.DB
// instance, a logger, and retry settings for connection-fault recovery.
func NewStore(db *sqlx.DB, logger *slog.Logger, retryCfg RetryConfig, maxIdleConns int) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &sqlStore{
		db:           db,
		logger:       logger.With("component", "store"),
		maxIdleConns: maxIdleConns,
	}
	s.retry = &retrier{
		cfg:     retryCfg,
		logger:  s.logger,
		refresh: s.refreshPool,
	}
	return s
}

// refreshPool discards idle pooled connections and verifies that a fresh
// one can be established. The database is known to drop pooled connections
// ("connection reset by peer"), so every attempt starts from a clean pool.
// Shrinking the idle limit to zero makes database/sql close all idle
// connections; restoring it re-enables pooling for the attempt.
func (s *sqlStore) refreshPool(ctx context.Context) {
	s.db.SetMaxIdleConns(0)
	s.db.SetMaxIdleConns(s.maxIdleConns)

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.WarnContext(ctx, "Fresh connection check failed before store attempt",
			"error", err)
	}
}

// Ping checks the database connection.
func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const accountByTokenQuery = `
SELECT id, email, token, balance, created_at
FROM accounts
WHERE token = $1`

// AccountByToken resolves the account owning a webhook token.
func (s *sqlStore) AccountByToken(ctx context.Context, token string) (*Account, error) {
	if token == "" {
		return nil, ErrAccountNotFound
	}

	var account Account
	err := s.retry.Do(ctx, "account_by_token", func(ctx context.Context) error {
		return s.db.GetContext(ctx, &account, accountByTokenQuery, token)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to query account by token: %w", err)
	}

	return &account, nil
}

const rulesForAccountQuery = `
SELECT r.id, r.account_id, r.sender, r.origin_number, r.chat_id,
       c.id AS "chat.id",
       c.account_id AS "chat.account_id",
       c.telegram_id AS "chat.telegram_id",
       c.title AS "chat.title"
FROM rules r
JOIN telegram_chats c ON c.id = r.chat_id
WHERE r.account_id = $1
ORDER BY r.id`

// RulesForAccount retrieves all rules of an account with destination chats
// eager-loaded in a single JOIN query.
func (s *sqlStore) RulesForAccount(ctx context.Context, accountID int64) ([]Rule, error) {
	var rules []Rule
	err := s.retry.Do(ctx, "rules_for_account", func(ctx context.Context) error {
		rules = rules[:0]
		return s.db.SelectContext(ctx, &rules, rulesForAccountQuery, accountID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query rules for account %d: %w", accountID, err)
	}

	return rules, nil
}
