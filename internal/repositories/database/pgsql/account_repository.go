package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	"github.com/SscSPs/access_exchange/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1`
	return findOne(r.Pool.QueryRow(ctx, query, accountID), fmt.Sprintf("find account %s", accountID), scanAccount)
}

func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1)`
	rows, err := r.Pool.Query(ctx, query, accountIDs)
	accounts, err := collect(rows, err, "find accounts", scanAccount)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		out[a.AccountID] = a
	}
	return out, nil
}

func (r *PgxAccountRepository) ListAccountsByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_type = $1 ORDER BY created_at, account_id`
	rows, err := r.Pool.Query(ctx, query, string(accountType))
	return collect(rows, err, fmt.Sprintf("list %s accounts", accountType), scanAccount)
}

// UpsertSystemAccount inserts or returns the account owning (type, currency, scope).
func (r *PgxAccountRepository) UpsertSystemAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	if account.OwnerUserID != nil {
		return nil, fmt.Errorf("%w: system account with owner", apperrors.ErrValidation)
	}
	m := mapping.ToModelAccount(account)
	insert := `
		INSERT INTO accounts (account_id, owner_user_id, account_type, currency_code, scope, created_at)
		VALUES ($1, NULL, $2, $3, $4, $5)
		ON CONFLICT (account_type, currency_code, scope) WHERE owner_user_id IS NULL DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, insert, m.AccountID, m.AccountType, m.CurrencyCode, m.Scope, m.CreatedAt); err != nil {
		return nil, mapError(err, fmt.Sprintf("upsert %s account", m.AccountType))
	}

	query := `
		SELECT ` + accountColumns + ` FROM accounts
		WHERE owner_user_id IS NULL AND account_type = $1 AND currency_code = $2 AND scope = $3
	`
	return findOne(r.Pool.QueryRow(ctx, query, m.AccountType, m.CurrencyCode, m.Scope),
		fmt.Sprintf("find %s account", m.AccountType), scanAccount)
}

// UpsertUserWallet inserts or returns the wallet of (owner, currency).
func (r *PgxAccountRepository) UpsertUserWallet(ctx context.Context, account domain.Account) (*domain.Account, error) {
	if account.OwnerUserID == nil {
		return nil, fmt.Errorf("%w: user wallet without owner", apperrors.ErrValidation)
	}
	m := mapping.ToModelAccount(account)
	insert := `
		INSERT INTO accounts (account_id, owner_user_id, account_type, currency_code, scope, created_at)
		VALUES ($1, $2, $3, $4, '', $5)
		ON CONFLICT (owner_user_id, currency_code) WHERE owner_user_id IS NOT NULL DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, insert, m.AccountID, m.OwnerUserID, m.AccountType, m.CurrencyCode, m.CreatedAt); err != nil {
		return nil, mapError(err, fmt.Sprintf("upsert wallet of %s", *m.OwnerUserID))
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_user_id = $1 AND currency_code = $2`
	return findOne(r.Pool.QueryRow(ctx, query, m.OwnerUserID, m.CurrencyCode),
		fmt.Sprintf("find wallet of %s", *m.OwnerUserID), scanAccount)
}
