package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	"github.com/SscSPs/access_exchange/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

// pgTx implements portsrepo.Tx on top of one pgx transaction.
type pgTx struct {
	q querier
}

var _ portsrepo.Tx = (*pgTx)(nil)

func (t *pgTx) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	return findTransactionByKey(ctx, t.q, key)
}

func (t *pgTx) InsertTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelLedgerTransaction(txn)
	query := `
		INSERT INTO ledger_transactions (transaction_id, event_type, idempotency_key, actor_user_id, context_type, context_id, memo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := t.q.Exec(ctx, query,
		m.TransactionID,
		m.EventType,
		m.IdempotencyKey,
		m.ActorUserID,
		m.ContextType,
		m.ContextID,
		m.Memo,
		m.CreatedAt,
	)
	return mapError(err, fmt.Sprintf("insert transaction %s", m.IdempotencyKey))
}

func splitKeys(keys []domain.BalanceKey) ([]string, []string) {
	accounts := make([]string, len(keys))
	assets := make([]string, len(keys))
	for i, k := range keys {
		accounts[i] = k.AccountID
		assets[i] = k.AssetID
	}
	return accounts, assets
}

// EnsureBalances inserts zero rows for missing pairs. Unknown accounts or assets fail the foreign keys.
func (t *pgTx) EnsureBalances(ctx context.Context, keys []domain.BalanceKey) error {
	if len(keys) == 0 {
		return nil
	}
	accounts, assets := splitKeys(keys)
	query := `
		INSERT INTO balances (account_id, asset_id, balance, updated_at)
		SELECT k.account_id, k.asset_id, 0, now()
		FROM unnest($1::text[], $2::text[]) AS k(account_id, asset_id)
		ON CONFLICT (account_id, asset_id) DO NOTHING;
	`
	_, err := t.q.Exec(ctx, query, accounts, assets)
	return mapError(err, "ensure balances")
}

// LockBalances takes row locks in byte order, which is the order domain.SortBalanceKeys produces.
func (t *pgTx) LockBalances(ctx context.Context, keys []domain.BalanceKey) (map[domain.BalanceKey]int64, error) {
	out := make(map[domain.BalanceKey]int64, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	accounts, assets := splitKeys(keys)
	query := `
		SELECT b.account_id, b.asset_id, b.balance
		FROM balances b
		JOIN unnest($1::text[], $2::text[]) AS k(account_id, asset_id)
		  ON b.account_id = k.account_id AND b.asset_id = k.asset_id
		ORDER BY b.account_id COLLATE "C", b.asset_id COLLATE "C"
		FOR UPDATE OF b;
	`
	rows, err := t.q.Query(ctx, query, accounts, assets)
	if err != nil {
		return nil, mapError(err, "lock balances")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key     domain.BalanceKey
			balance int64
		)
		if err := rows.Scan(&key.AccountID, &key.AssetID, &balance); err != nil {
			return nil, mapError(err, "scan locked balance")
		}
		out[key] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "lock balances")
	}
	if len(out) != len(keys) {
		return nil, fmt.Errorf("%w: locked %d of %d balance rows", apperrors.ErrNotFound, len(out), len(keys))
	}
	return out, nil
}

func (t *pgTx) SumOutgoing(ctx context.Context, key domain.BalanceKey, from, to time.Time, excluded []domain.EntryType) (int64, error) {
	types := make([]string, len(excluded))
	for i, e := range excluded {
		types[i] = string(e)
	}
	query := `
		SELECT COALESCE(SUM(-delta), 0)::bigint
		FROM ledger_entries
		WHERE account_id = $1 AND asset_id = $2 AND delta < 0
		  AND created_at >= $3 AND created_at < $4
		  AND NOT (entry_type = ANY($5::text[]));
	`
	var total int64
	if err := t.q.QueryRow(ctx, query, key.AccountID, key.AssetID, from, to, types).Scan(&total); err != nil {
		return 0, mapError(err, "sum outgoing")
	}
	return total, nil
}

func (t *pgTx) SaveBalances(ctx context.Context, balances map[domain.BalanceKey]int64) error {
	if len(balances) == 0 {
		return nil
	}
	keys := make([]domain.BalanceKey, 0, len(balances))
	for k := range balances {
		keys = append(keys, k)
	}
	batch := &pgx.Batch{}
	for _, k := range domain.SortBalanceKeys(keys) {
		batch.Queue(
			`UPDATE balances SET balance = $3, updated_at = now() WHERE account_id = $1 AND asset_id = $2`,
			k.AccountID, k.AssetID, balances[k],
		)
	}
	return t.sendBatch(ctx, batch, "save balances")
}

func (t *pgTx) InsertEntries(ctx context.Context, entries []domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `
		INSERT INTO ledger_entries (entry_id, transaction_id, account_id, asset_id, delta, entry_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	batch := &pgx.Batch{}
	for _, e := range entries {
		m := mapping.ToModelLedgerEntry(e)
		batch.Queue(query, m.EntryID, m.TransactionID, m.AccountID, m.AssetID, m.Delta, m.EntryType, m.CreatedAt)
	}
	return t.sendBatch(ctx, batch, "insert entries")
}

func (t *pgTx) sendBatch(ctx context.Context, batch *pgx.Batch, op string) error {
	br := t.q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return mapError(err, op)
		}
	}
	return mapError(br.Close(), op)
}

// LockOrderBook takes a transaction-scoped advisory lock on the curriculum's book.
func (t *pgTx) LockOrderBook(ctx context.Context, curriculumID string) error {
	_, err := t.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "order_book:"+curriculumID)
	return mapError(err, fmt.Sprintf("lock order book %s", curriculumID))
}

func (t *pgTx) FindOrderForUpdate(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM market_orders WHERE order_id = $1 FOR UPDATE`
	return findOne(t.q.QueryRow(ctx, query, orderID), fmt.Sprintf("find order %s", orderID), scanOrder)
}

func (t *pgTx) FindBestOrderForUpdate(ctx context.Context, curriculumID string, side domain.OrderSide) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM market_orders WHERE ` + activeOrderPredicate + ` ORDER BY ` + bookOrdering(side) + ` LIMIT 1 FOR UPDATE`
	return findOne(t.q.QueryRow(ctx, query, curriculumID, string(side)),
		fmt.Sprintf("find best %s on %s", side, curriculumID), scanOrder)
}

func (t *pgTx) InsertOrder(ctx context.Context, order domain.Order) error {
	m := mapping.ToModelOrder(order)
	query := `
		INSERT INTO market_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := t.q.Exec(ctx, query,
		m.OrderID,
		m.CurriculumID,
		m.UserID,
		m.Side,
		m.Status,
		m.LimitPrice,
		m.Quantity,
		m.RemainingQuantity,
		m.LockedCurrency,
		m.LockedShares,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	return mapError(err, fmt.Sprintf("insert order %s", m.OrderID))
}

func (t *pgTx) UpdateOrder(ctx context.Context, order domain.Order) error {
	m := mapping.ToModelOrder(order)
	query := `
		UPDATE market_orders
		SET status = $2, remaining_quantity = $3, locked_currency = $4, locked_shares = $5, last_updated_at = $6
		WHERE order_id = $1;
	`
	tag, err := t.q.Exec(ctx, query, m.OrderID, m.Status, m.RemainingQuantity, m.LockedCurrency, m.LockedShares, m.LastUpdatedAt)
	if err != nil {
		return mapError(err, fmt.Sprintf("update order %s", m.OrderID))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s", apperrors.ErrNotFound, m.OrderID)
	}
	return nil
}

func (t *pgTx) InsertTrade(ctx context.Context, trade domain.Trade) error {
	m := mapping.ToModelTrade(trade)
	query := `
		INSERT INTO market_trades (` + tradeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := t.q.Exec(ctx, query,
		m.TradeID,
		m.CurriculumID,
		m.BuyOrderID,
		m.SellOrderID,
		m.BuyerUserID,
		m.SellerUserID,
		m.ExecutionPrice,
		m.Quantity,
		m.LedgerTransactionID,
		m.CreatedAt,
	)
	return mapError(err, fmt.Sprintf("insert trade %s", m.TradeID))
}
