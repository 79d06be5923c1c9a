package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/access_exchange/internal/core/domain"
)

// TxFunc is the body of a unit of work. Returning an error rolls the unit back.
type TxFunc func(ctx context.Context, tx Tx) error

// TransactionManager runs a function inside one atomic unit of work.
// Row locks taken through tx are held until the unit commits or rolls back.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// Tx is the set of operations that must share one atomic scope.
type Tx interface {
	LedgerTxSupport
	OrderTxSupport
}

// LedgerTxSupport are the ledger writes performed inside a posting.
type LedgerTxSupport interface {
	// FindTransactionByIdempotencyKey sees committed transactions and those inserted earlier in this unit.
	FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)

	// InsertTransaction returns apperrors.ErrDuplicate when the idempotency key is taken.
	InsertTransaction(ctx context.Context, txn domain.Transaction) error

	// EnsureBalances materializes zero balance rows for pairs that do not exist yet.
	EnsureBalances(ctx context.Context, keys []domain.BalanceKey) error

	// LockBalances locks exactly the given rows, in the order given, and returns their balances.
	LockBalances(ctx context.Context, keys []domain.BalanceKey) (map[domain.BalanceKey]int64, error)

	// SumOutgoing returns the magnitude of negative deltas on the pair committed in [from, to),
	// ignoring the excluded entry types.
	SumOutgoing(ctx context.Context, key domain.BalanceKey, from, to time.Time, excluded []domain.EntryType) (int64, error)

	// SaveBalances overwrites the given (already locked) rows.
	SaveBalances(ctx context.Context, balances map[domain.BalanceKey]int64) error

	// InsertEntries appends entries to the journal.
	InsertEntries(ctx context.Context, entries []domain.Entry) error
}

// OrderTxSupport are the order book writes performed inside placement, matching and cancellation.
type OrderTxSupport interface {
	// LockOrderBook serializes matching and cancellation on one curriculum.
	LockOrderBook(ctx context.Context, curriculumID string) error

	// FindOrderForUpdate returns apperrors.ErrNotFound if the order does not exist.
	FindOrderForUpdate(ctx context.Context, orderID string) (*domain.Order, error)

	// FindBestOrderForUpdate locks the best active order on one side of the book.
	// Returns apperrors.ErrNotFound when that side is empty.
	FindBestOrderForUpdate(ctx context.Context, curriculumID string, side domain.OrderSide) (*domain.Order, error)

	InsertOrder(ctx context.Context, order domain.Order) error
	UpdateOrder(ctx context.Context, order domain.Order) error
	InsertTrade(ctx context.Context, trade domain.Trade) error
}
