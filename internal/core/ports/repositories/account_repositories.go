package repositories

import (
	"context"

	"github.com/SscSPs/access_exchange/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing ids are simply absent from the map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccountsByType lists accounts of one type, oldest first.
	ListAccountsByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error)
}

// AccountWriter defines the get-or-create operations. Both are upserts guarded by unique indexes.
type AccountWriter interface {
	UpsertSystemAccount(ctx context.Context, account domain.Account) (*domain.Account, error)
	UpsertUserWallet(ctx context.Context, account domain.Account) (*domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
