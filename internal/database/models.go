package database

import "time"

// Account represents a tenant of the service. The webhook URL token is the
// only credential the relay pipeline cares about; accounts are created and
// managed by the web application and are read-only here.
type Account struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	Token     string    `db:"token"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
}

// Chat is a Telegram destination linked to an account by the onboarding bot.
// TelegramID is the external chat identifier messages are delivered to.
type Chat struct {
	ID         int64  `db:"id"`
	AccountID  int64  `db:"account_id"`
	TelegramID int64  `db:"telegram_id"`
	Title      string `db:"title"`
}

// Rule is a forwarding condition: an SMS from Sender (or from anyone, when
// Sender holds the wildcard value) arriving on OriginNumber is relayed to
// the destination Chat. Chat is eager-loaded by RulesForAccount.
type Rule struct {
	ID           int64  `db:"id"`
	AccountID    int64  `db:"account_id"`
	Sender       string `db:"sender"`
	OriginNumber string `db:"origin_number"`
	ChatID       int64  `db:"chat_id"`

	Chat Chat `db:"chat"`
}

// ServiceNumber is a telephony number provisioned for an account. The CRUD
// layer guarantees every rule's origin number references one of these.
type ServiceNumber struct {
	ID        int64  `db:"id"`
	AccountID int64  `db:"account_id"`
	Provider  string `db:"provider"`
	Telephone string `db:"telephone"`
}

// ServiceKey is an API credential for an external telephony provider,
// managed by the CRUD layer.
type ServiceKey struct {
	ID        int64  `db:"id"`
	AccountID int64  `db:"account_id"`
	Provider  string `db:"provider"`
	Title     string `db:"title"`
	Token     string `db:"token"`
}
