package pgsql

import (
	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/SscSPs/access_exchange/internal/models"
	"github.com/SscSPs/access_exchange/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const (
	assetColumns       = `asset_id, code, asset_type, curriculum_id, scale, created_at`
	accountColumns     = `account_id, owner_user_id, account_type, currency_code, scope, created_at`
	balanceColumns     = `account_id, asset_id, balance, updated_at`
	transactionColumns = `transaction_id, event_type, idempotency_key, actor_user_id, context_type, context_id, memo, created_at`
	entryColumns       = `entry_id, transaction_id, account_id, asset_id, delta, entry_type, created_at`
	orderColumns       = `order_id, curriculum_id, user_id, side, status, limit_price, quantity, remaining_quantity, locked_currency, locked_shares, created_at, last_updated_at`
	tradeColumns       = `trade_id, curriculum_id, buy_order_id, sell_order_id, buyer_user_id, seller_user_id, execution_price, quantity, ledger_transaction_id, created_at`
)

func scanAsset(row pgx.Row) (domain.Asset, error) {
	var m models.Asset
	err := row.Scan(&m.AssetID, &m.Code, &m.AssetType, &m.CurriculumID, &m.Scale, &m.CreatedAt)
	return mapping.ToDomainAsset(m), err
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(&m.AccountID, &m.OwnerUserID, &m.AccountType, &m.CurrencyCode, &m.Scope, &m.CreatedAt)
	return mapping.ToDomainAccount(m), err
}

func scanBalance(row pgx.Row) (domain.Balance, error) {
	var m models.Balance
	err := row.Scan(&m.AccountID, &m.AssetID, &m.Balance, &m.UpdatedAt)
	return mapping.ToDomainBalance(m), err
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var m models.LedgerTransaction
	err := row.Scan(
		&m.TransactionID,
		&m.EventType,
		&m.IdempotencyKey,
		&m.ActorUserID,
		&m.ContextType,
		&m.ContextID,
		&m.Memo,
		&m.CreatedAt,
	)
	return mapping.ToDomainTransaction(m), err
}

func scanEntry(row pgx.Row) (domain.Entry, error) {
	var m models.LedgerEntry
	err := row.Scan(&m.EntryID, &m.TransactionID, &m.AccountID, &m.AssetID, &m.Delta, &m.EntryType, &m.CreatedAt)
	return mapping.ToDomainEntry(m), err
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var m models.MarketOrder
	err := row.Scan(
		&m.OrderID,
		&m.CurriculumID,
		&m.UserID,
		&m.Side,
		&m.Status,
		&m.LimitPrice,
		&m.Quantity,
		&m.RemainingQuantity,
		&m.LockedCurrency,
		&m.LockedShares,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	return mapping.ToDomainOrder(m), err
}

func scanTrade(row pgx.Row) (domain.Trade, error) {
	var m models.MarketTrade
	err := row.Scan(
		&m.TradeID,
		&m.CurriculumID,
		&m.BuyOrderID,
		&m.SellOrderID,
		&m.BuyerUserID,
		&m.SellerUserID,
		&m.ExecutionPrice,
		&m.Quantity,
		&m.LedgerTransactionID,
		&m.CreatedAt,
	)
	return mapping.ToDomainTrade(m), err
}

// collect runs query and scans every row with scan.
func collect[T any](rows pgx.Rows, err error, op string, scan func(pgx.Row) (T, error)) ([]T, error) {
	if err != nil {
		return nil, mapError(err, op)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return scan(row)
	})
	if err != nil {
		return nil, mapError(err, op)
	}
	return out, nil
}

// findOne scans a single row, mapping pgx.ErrNoRows to apperrors.ErrNotFound.
func findOne[T any](row pgx.Row, op string, scan func(pgx.Row) (T, error)) (*T, error) {
	v, err := scan(row)
	if err != nil {
		return nil, mapError(err, op)
	}
	return &v, nil
}
