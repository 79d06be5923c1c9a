package repositories

import (
	"context"

	"github.com/SscSPs/access_exchange/internal/core/domain"
)

// BalanceReader reads committed balances.
type BalanceReader interface {
	// GetBalance returns 0 for pairs that were never materialized.
	GetBalance(ctx context.Context, key domain.BalanceKey) (int64, error)

	// ListBalancesByAccount returns every materialized balance of an account.
	ListBalancesByAccount(ctx context.Context, accountID string) ([]domain.Balance, error)

	// ListPositiveHolders returns positive balances of an asset held by accounts of the given type.
	ListPositiveHolders(ctx context.Context, assetID string, accountType domain.AccountType) ([]domain.Balance, error)
}

// TransactionReader reads committed transactions and entries.
type TransactionReader interface {
	FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns the most recent transactions first.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)

	ListEntriesByTransactionIDs(ctx context.Context, transactionIDs []string) ([]domain.Entry, error)
}

// LedgerRepositoryFacade combines the ledger read side with unit-of-work support.
type LedgerRepositoryFacade interface {
	BalanceReader
	TransactionReader
	TransactionManager
}
