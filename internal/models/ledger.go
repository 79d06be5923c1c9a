package models

import "time"

// Balance is a row of the balances table, keyed by (account_id, asset_id).
type Balance struct {
	AccountID string    `db:"account_id"`
	AssetID   string    `db:"asset_id"`
	Balance   int64     `db:"balance"`
	UpdatedAt time.Time `db:"updated_at"`
}

// LedgerTransaction is a row of the ledger_transactions table.
type LedgerTransaction struct {
	TransactionID  string         `db:"transaction_id"`
	EventType      string         `db:"event_type"`
	IdempotencyKey string         `db:"idempotency_key"`
	ActorUserID    *string        `db:"actor_user_id"`
	ContextType    *string        `db:"context_type"`
	ContextID      *string        `db:"context_id"`
	Memo           map[string]any `db:"memo"` // JSONB
	CreatedAt      time.Time      `db:"created_at"`
}

// LedgerEntry is a row of the append-only ledger_entries table.
type LedgerEntry struct {
	EntryID       string    `db:"entry_id"`
	TransactionID string    `db:"transaction_id"`
	AccountID     string    `db:"account_id"`
	AssetID       string    `db:"asset_id"`
	Delta         int64     `db:"delta"`
	EntryType     string    `db:"entry_type"`
	CreatedAt     time.Time `db:"created_at"`
}
