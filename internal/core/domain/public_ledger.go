package domain

import "time"

// PageCursor names the last row of a newest-first page. The next page starts strictly after it.
type PageCursor struct {
	CreatedAt time.Time
	ID        string
}

// PublicLedgerFilter narrows a public ledger query.
type PublicLedgerFilter struct {
	Limit       int
	OnlyMine    bool
	EventType   string
	ContextType string
	AssetCode   string
	Before      *PageCursor
}

// PublicEntry is an entry with its account replaced by a display label.
type PublicEntry struct {
	Account      string    `json:"account"`
	Asset        string    `json:"asset"`
	DeltaTicks   int64     `json:"deltaTicks"`
	DeltaDisplay string    `json:"deltaDisplay"`
	EntryType    EntryType `json:"entryType"`
}

// PublicTransaction is a transaction as shown on the public ledger.
type PublicTransaction struct {
	TransactionID string        `json:"transactionID"`
	CreatedAt     time.Time     `json:"createdAt"`
	EventType     string        `json:"eventType"`
	ContextType   *string       `json:"contextType,omitempty"`
	ContextID     *string       `json:"contextID,omitempty"`
	Actor         string        `json:"actor"`
	Entries       []PublicEntry `json:"entries"`
}

// TransactionFilter narrows a recent-transactions scan in storage.
// AssetID keeps only transactions with at least one entry in that asset.
type TransactionFilter struct {
	Limit       int
	ActorUserID *string
	EventType   string
	ContextType string
	AssetID     string
	Before      *PageCursor
}
