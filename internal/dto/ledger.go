package dto

import (
	"time"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/SscSPs/access_exchange/internal/utils"
	"github.com/SscSPs/access_exchange/internal/utils/pagination"
)

// EntryRequest is one signed delta in a posting request.
type EntryRequest struct {
	AccountID string           `json:"accountID" binding:"required"`
	AssetID   string           `json:"assetID" binding:"required"`
	Delta     int64            `json:"delta" binding:"required"`
	EntryType domain.EntryType `json:"entryType" binding:"required"`
}

// PostTransactionRequest defines the data needed to post a ledger transaction.
type PostTransactionRequest struct {
	EventType      string         `json:"eventType" binding:"required,max=64"`
	IdempotencyKey string         `json:"idempotencyKey" binding:"required,idempotency_key"`
	Entries        []EntryRequest `json:"entries" binding:"required,min=1,dive"`
	ContextType    *string        `json:"contextType"`
	ContextID      *string        `json:"contextID"`
	Memo           map[string]any `json:"memo"`
	// AllowOverdraft lets user wallets go negative. Only service callers reach this route.
	AllowOverdraft bool           `json:"allowOverdraft"`
}

// ToPostRequest converts the request into a domain posting attributed to actorUserID.
func (r PostTransactionRequest) ToPostRequest(actorUserID string) domain.PostRequest {
	entries := make([]domain.EntrySpec, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, domain.EntrySpec{
			AccountID: e.AccountID,
			AssetID:   e.AssetID,
			Delta:     e.Delta,
			EntryType: e.EntryType,
		})
	}
	req := domain.PostRequest{
		EventType:      r.EventType,
		IdempotencyKey: r.IdempotencyKey,
		Entries:        entries,
		ContextType:    r.ContextType,
		ContextID:      r.ContextID,
		Memo:           r.Memo,
		AllowOverdraft: r.AllowOverdraft,
	}
	if actorUserID != "" {
		req.ActorUserID = &actorUserID
	}
	return req
}

// PostTransactionResponse is returned for both first posts and replays.
type PostTransactionResponse struct {
	TransactionID  string `json:"transactionID"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// BalanceResponse defines the data returned for a balance lookup.
type BalanceResponse struct {
	AccountID string `json:"accountID"`
	AssetID   string `json:"assetID"`
	Balance   int64  `json:"balance"`
}

// PublicLedgerParams are the query parameters of the public ledger listing.
type PublicLedgerParams struct {
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=500"`
	OnlyMine    bool   `form:"onlyMine"`
	EventType   string `form:"eventType"`
	ContextType string `form:"contextType"`
	AssetCode   string `form:"assetCode"`
	Cursor      string `form:"cursor"`
}

// ToFilter converts the params into a domain filter with the default page size applied.
func (p PublicLedgerParams) ToFilter() (domain.PublicLedgerFilter, error) {
	limit := p.Limit
	if limit == 0 {
		limit = 100
	}
	filter := domain.PublicLedgerFilter{
		Limit:       limit,
		OnlyMine:    p.OnlyMine,
		EventType:   p.EventType,
		ContextType: p.ContextType,
		AssetCode:   p.AssetCode,
	}
	if p.Cursor != "" {
		createdAt, id, err := pagination.DecodeCursor(p.Cursor)
		if err != nil {
			return domain.PublicLedgerFilter{}, err
		}
		filter.Before = &domain.PageCursor{CreatedAt: createdAt, ID: id}
	}
	return filter, nil
}

// PublicLedgerResponse wraps a public ledger page. NextCursor is set when the page is full.
type PublicLedgerResponse struct {
	Transactions []domain.PublicTransaction `json:"transactions"`
	NextCursor   string                     `json:"nextCursor,omitempty"`
	GeneratedAt  time.Time                  `json:"generatedAt"`
}

// ToPublicLedgerResponse builds a page response for a listing requested with limit.
func ToPublicLedgerResponse(txns []domain.PublicTransaction, limit int, now time.Time) PublicLedgerResponse {
	resp := PublicLedgerResponse{Transactions: txns, GeneratedAt: now.UTC()}
	if limit > 0 && len(txns) == limit {
		last := txns[len(txns)-1]
		resp.NextCursor = pagination.EncodeCursor(last.CreatedAt, last.TransactionID)
	}
	return resp
}

// FormatCurrency renders currency ticks as Access Notes.
func FormatCurrency(ticks int64) string {
	return utils.FormatTicks(ticks, domain.CurrencyScale)
}
