package domain

import (
	"sort"
	"time"
)

// EntryType labels the purpose of a single ledger entry.
type EntryType string

const (
	EntryTypePrincipal     EntryType = "principal"
	EntryTypeMint          EntryType = "mint"
	EntryTypeTax           EntryType = "tax"
	EntryTypeVelocityTax   EntryType = "velocity_tax"
	EntryTypeEscrow        EntryType = "escrow"
	EntryTypeEscrowRelease EntryType = "escrow_release"
	EntryTypeSettle        EntryType = "settle"
	EntryTypePayout        EntryType = "payout"
	EntryTypeSignupBonus   EntryType = "signup_bonus"
)

// Event types recorded on transactions posted by this service.
const (
	EventTypeDailyAccessTax   = "daily_access_tax"
	EventTypeSignupBonus      = "signup_bonus"
	EventTypeShareMint        = "curriculum_share_mint"
	EventTypeLessonReward     = "lesson_complete_reward"
	EventTypeCurriculumPayout = "curriculum_wallet_payout"
	EventTypeOrderEscrow      = "market_order_escrow"
	EventTypeOrderCancel      = "market_order_cancel"
	EventTypeTradeSettlement  = "market_trade_settlement"
)

// EntrySpec is a requested delta against one (account, asset) pair.
type EntrySpec struct {
	AccountID string    `json:"accountID"`
	AssetID   string    `json:"assetID"`
	Delta     int64     `json:"delta"`
	EntryType EntryType `json:"entryType"`
}

// Key returns the balance row the entry touches.
func (e EntrySpec) Key() BalanceKey {
	return BalanceKey{AccountID: e.AccountID, AssetID: e.AssetID}
}

// PostRequest describes one atomic posting.
// AllowOverdraft lifts the user-wallet overdraft check; the zero value forbids overdrafts.
type PostRequest struct {
	EventType      string
	IdempotencyKey string
	Entries        []EntrySpec
	ActorUserID    *string
	ContextType    *string
	ContextID      *string
	Memo           map[string]any
	AllowOverdraft bool
}

// Transaction is the immutable header of a committed posting.
type Transaction struct {
	TransactionID  string         `json:"transactionID"`
	EventType      string         `json:"eventType"`
	IdempotencyKey string         `json:"idempotencyKey"`
	ActorUserID    *string        `json:"actorUserID,omitempty"`
	ContextType    *string        `json:"contextType,omitempty"`
	ContextID      *string        `json:"contextID,omitempty"`
	Memo           map[string]any `json:"memo,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Entry is one committed, append-only delta.
type Entry struct {
	EntryID       string    `json:"entryID"`
	TransactionID string    `json:"transactionID"`
	AccountID     string    `json:"accountID"`
	AssetID       string    `json:"assetID"`
	Delta         int64     `json:"delta"`
	EntryType     EntryType `json:"entryType"`
	CreatedAt     time.Time `json:"createdAt"`
}

// BalanceKey identifies one balance row.
type BalanceKey struct {
	AccountID string
	AssetID   string
}

// Less orders keys by account id, then asset id. All lock acquisition follows this order.
func (k BalanceKey) Less(o BalanceKey) bool {
	if k.AccountID != o.AccountID {
		return k.AccountID < o.AccountID
	}
	return k.AssetID < o.AssetID
}

// SortBalanceKeys de-duplicates keys and returns them in lock order.
func SortBalanceKeys(keys []BalanceKey) []BalanceKey {
	seen := make(map[BalanceKey]struct{}, len(keys))
	out := make([]BalanceKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Balance is the cached sum of all committed deltas on a pair.
type Balance struct {
	AccountID string    `json:"accountID"`
	AssetID   string    `json:"assetID"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AddDelta returns balance+delta and false when the result does not fit in an int64.
func AddDelta(balance, delta int64) (int64, bool) {
	sum := balance + delta
	if (delta > 0 && sum < balance) || (delta < 0 && sum > balance) {
		return 0, false
	}
	return sum, true
}
