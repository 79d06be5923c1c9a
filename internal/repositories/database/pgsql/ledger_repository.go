package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool, base BaseRepository) portsrepo.LedgerRepositoryFacade {
	base.Pool = pool
	return &PgxLedgerRepository{BaseRepository: base}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// GetBalance returns 0 when the row was never materialized.
func (r *PgxLedgerRepository) GetBalance(ctx context.Context, key domain.BalanceKey) (int64, error) {
	var balance int64
	err := r.Pool.QueryRow(ctx,
		`SELECT balance FROM balances WHERE account_id = $1 AND asset_id = $2`,
		key.AccountID, key.AssetID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, mapError(err, "get balance")
	}
	return balance, nil
}

func (r *PgxLedgerRepository) ListBalancesByAccount(ctx context.Context, accountID string) ([]domain.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE account_id = $1 ORDER BY asset_id`
	rows, err := r.Pool.Query(ctx, query, accountID)
	return collect(rows, err, fmt.Sprintf("list balances of %s", accountID), scanBalance)
}

func (r *PgxLedgerRepository) ListPositiveHolders(ctx context.Context, assetID string, accountType domain.AccountType) ([]domain.Balance, error) {
	query := `
		SELECT b.account_id, b.asset_id, b.balance, b.updated_at
		FROM balances b
		JOIN accounts a ON a.account_id = b.account_id
		WHERE b.asset_id = $1 AND a.account_type = $2 AND b.balance > 0
		ORDER BY b.account_id;
	`
	rows, err := r.Pool.Query(ctx, query, assetID, string(accountType))
	return collect(rows, err, fmt.Sprintf("list holders of %s", assetID), scanBalance)
}

func (r *PgxLedgerRepository) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	return findTransactionByKey(ctx, r.Pool, key)
}

func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions WHERE transaction_id = $1`
	return findOne(r.Pool.QueryRow(ctx, query, transactionID), fmt.Sprintf("find transaction %s", transactionID), scanTransaction)
}

// ListTransactions returns the newest transactions first.
func (r *PgxLedgerRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.ActorUserID != nil {
		args = append(args, *filter.ActorUserID)
		conditions = append(conditions, fmt.Sprintf("actor_user_id = $%d", len(args)))
	}
	if filter.EventType != "" {
		args = append(args, filter.EventType)
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", len(args)))
	}
	if filter.ContextType != "" {
		args = append(args, filter.ContextType)
		conditions = append(conditions, fmt.Sprintf("context_type = $%d", len(args)))
	}
	if filter.AssetID != "" {
		args = append(args, filter.AssetID)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM ledger_entries e WHERE e.transaction_id = ledger_transactions.transaction_id AND e.asset_id = $%d)", len(args)))
	}
	if filter.Before != nil {
		args = append(args, filter.Before.CreatedAt, filter.Before.ID)
		conditions = append(conditions, fmt.Sprintf("(created_at, transaction_id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM ledger_transactions`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, transaction_id DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	return collect(rows, err, "list transactions", scanTransaction)
}

// ListEntriesByTransactionIDs returns entries in insertion order.
func (r *PgxLedgerRepository) ListEntriesByTransactionIDs(ctx context.Context, transactionIDs []string) ([]domain.Entry, error) {
	if len(transactionIDs) == 0 {
		return []domain.Entry{}, nil
	}
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE transaction_id = ANY($1) ORDER BY entry_seq`
	rows, err := r.Pool.Query(ctx, query, transactionIDs)
	return collect(rows, err, "list entries", scanEntry)
}

func findTransactionByKey(ctx context.Context, q querier, key string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions WHERE idempotency_key = $1`
	return findOne(q.QueryRow(ctx, query, key), fmt.Sprintf("find transaction %s", key), scanTransaction)
}
