package services

import (
	"context"
	"time"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines read operations on the ledger.
type LedgerReaderSvc interface {
	GetBalance(ctx context.Context, accountID, assetID string) (int64, error)
	FindTransaction(ctx context.Context, idempotencyKey string) (*domain.Transaction, error)
}

// LedgerWriterSvc posts atomic, idempotent transactions.
type LedgerWriterSvc interface {
	// Post runs the posting in its own unit of work and returns the transaction id.
	// A replayed idempotency key returns the original id without side effects.
	Post(ctx context.Context, req domain.PostRequest) (string, error)

	// PostInTx runs the posting inside a unit of work owned by the caller.
	PostInTx(ctx context.Context, tx portsrepo.Tx, req domain.PostRequest) (string, error)
}

// LedgerSvcFacade combines all ledger operations.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}

// TaxSvcFacade runs the daily access tax.
type TaxSvcFacade interface {
	// ChargeDailyTax returns false when the user could not pay and access was revoked.
	ChargeDailyTax(ctx context.Context, userID string, day time.Time) (bool, error)
	ChargeDailyTaxForAllUsers(ctx context.Context, day time.Time) (*dto.DailyTaxStats, error)
}

// PublicLedgerSvcFacade renders recent transactions with accounts masked.
type PublicLedgerSvcFacade interface {
	PublicLedger(ctx context.Context, viewerUserID string, filter domain.PublicLedgerFilter) ([]domain.PublicTransaction, error)
}

// SubscriptionCanceller is the billing collaborator that revokes a user's access.
type SubscriptionCanceller interface {
	// ForceCancel must be idempotent per anchor.
	ForceCancel(ctx context.Context, userID, reason, anchor string) error
}

// UserMultiplierProvider supplies the per-user daily tax multiplier.
type UserMultiplierProvider interface {
	Multiplier(ctx context.Context, userID string) (decimal.Decimal, error)
}
