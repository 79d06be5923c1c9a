package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
)

// memTx stages writes for one unit of work and tracks the row locks it holds.
type memTx struct {
	s *Store

	held      map[string]struct{}
	heldOrder []string

	txns     []domain.Transaction
	ensured  []domain.BalanceKey
	balances map[domain.BalanceKey]int64
	entries  []domain.Entry
	orders   map[string]domain.Order
	trades   []domain.Trade
}

var _ portsrepo.Tx = (*memTx)(nil)

func newTx(s *Store) *memTx {
	return &memTx{
		s:        s,
		held:     make(map[string]struct{}),
		balances: make(map[domain.BalanceKey]int64),
		orders:   make(map[string]domain.Order),
	}
}

func (t *memTx) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	if err := t.s.locks.acquire(ctx, key, t.s.lockTimeout); err != nil {
		return err
	}
	t.held[key] = struct{}{}
	t.heldOrder = append(t.heldOrder, key)
	return nil
}

func (t *memTx) releaseLocks() {
	for i := len(t.heldOrder) - 1; i >= 0; i-- {
		t.s.locks.release(t.heldOrder[i])
	}
	t.held = map[string]struct{}{}
	t.heldOrder = nil
}

func (t *memTx) commit() {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, txn := range t.txns {
		s.txns[txn.TransactionID] = txn
		s.txnByKey[txn.IdempotencyKey] = txn.TransactionID
		delete(s.pendingKeys, txn.IdempotencyKey)
	}
	for _, k := range t.ensured {
		if _, ok := s.balances[k]; !ok {
			s.balances[k] = domain.Balance{AccountID: k.AccountID, AssetID: k.AssetID, UpdatedAt: now}
		}
	}
	for k, v := range t.balances {
		s.balances[k] = domain.Balance{AccountID: k.AccountID, AssetID: k.AssetID, Balance: v, UpdatedAt: now}
	}
	s.entries = append(s.entries, t.entries...)
	for id, o := range t.orders {
		s.orders[id] = o
	}
	s.trades = append(s.trades, t.trades...)
}

func (t *memTx) rollback() {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range t.txns {
		delete(s.pendingKeys, txn.IdempotencyKey)
	}
}

// --- ledger ---

func (t *memTx) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	for i := range t.txns {
		if t.txns[i].IdempotencyKey == key {
			txn := t.txns[i]
			return &txn, nil
		}
	}
	return t.s.FindTransactionByIdempotencyKey(ctx, key)
}

func (t *memTx) InsertTransaction(ctx context.Context, txn domain.Transaction) error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txnByKey[txn.IdempotencyKey]; ok {
		return fmt.Errorf("%w: idempotency key %s", apperrors.ErrDuplicate, txn.IdempotencyKey)
	}
	if _, ok := s.pendingKeys[txn.IdempotencyKey]; ok {
		return fmt.Errorf("%w: idempotency key %s", apperrors.ErrDuplicate, txn.IdempotencyKey)
	}
	s.pendingKeys[txn.IdempotencyKey] = struct{}{}
	t.txns = append(t.txns, txn)
	return nil
}

func (t *memTx) EnsureBalances(ctx context.Context, keys []domain.BalanceKey) error {
	s := t.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range keys {
		if _, ok := s.accounts[k.AccountID]; !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, k.AccountID)
		}
		if _, ok := s.assets[k.AssetID]; !ok {
			return fmt.Errorf("%w: asset %s", apperrors.ErrNotFound, k.AssetID)
		}
	}
	t.ensured = append(t.ensured, keys...)
	return nil
}

func balanceLockKey(k domain.BalanceKey) string {
	return "balance:" + k.AccountID + "|" + k.AssetID
}

func (t *memTx) LockBalances(ctx context.Context, keys []domain.BalanceKey) (map[domain.BalanceKey]int64, error) {
	out := make(map[domain.BalanceKey]int64, len(keys))
	for _, k := range keys {
		if err := t.lock(ctx, balanceLockKey(k)); err != nil {
			return nil, err
		}
		if v, ok := t.balances[k]; ok {
			out[k] = v
			continue
		}
		t.s.mu.RLock()
		out[k] = t.s.balances[k].Balance
		t.s.mu.RUnlock()
	}
	return out, nil
}

func (t *memTx) SumOutgoing(ctx context.Context, key domain.BalanceKey, from, to time.Time, excluded []domain.EntryType) (int64, error) {
	skip := make(map[domain.EntryType]struct{}, len(excluded))
	for _, et := range excluded {
		skip[et] = struct{}{}
	}
	sum := func(entries []domain.Entry) int64 {
		var total int64
		for _, e := range entries {
			if e.AccountID != key.AccountID || e.AssetID != key.AssetID || e.Delta >= 0 {
				continue
			}
			if _, ok := skip[e.EntryType]; ok {
				continue
			}
			if e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
				continue
			}
			total += -e.Delta
		}
		return total
	}

	t.s.mu.RLock()
	committed := sum(t.s.entries)
	t.s.mu.RUnlock()
	return committed + sum(t.entries), nil
}

func (t *memTx) SaveBalances(ctx context.Context, balances map[domain.BalanceKey]int64) error {
	if err := t.s.fault("SaveBalances"); err != nil {
		return err
	}
	for k, v := range balances {
		if _, ok := t.held[balanceLockKey(k)]; !ok {
			return fmt.Errorf("balance %s/%s saved without holding its lock", k.AccountID, k.AssetID)
		}
		t.balances[k] = v
	}
	return nil
}

func (t *memTx) InsertEntries(ctx context.Context, entries []domain.Entry) error {
	t.entries = append(t.entries, entries...)
	return nil
}

// --- orders ---

func (t *memTx) LockOrderBook(ctx context.Context, curriculumID string) error {
	return t.lock(ctx, "book:"+curriculumID)
}

func (t *memTx) order(orderID string) (domain.Order, bool) {
	if o, ok := t.orders[orderID]; ok {
		return o, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	o, ok := t.s.orders[orderID]
	return o, ok
}

func (t *memTx) FindOrderForUpdate(ctx context.Context, orderID string) (*domain.Order, error) {
	if err := t.lock(ctx, "order:"+orderID); err != nil {
		return nil, err
	}
	o, ok := t.order(orderID)
	if !ok {
		return nil, fmt.Errorf("%w: order %s", apperrors.ErrNotFound, orderID)
	}
	return &o, nil
}

func (t *memTx) FindBestOrderForUpdate(ctx context.Context, curriculumID string, side domain.OrderSide) (*domain.Order, error) {
	t.s.mu.RLock()
	candidates := activeOrders(t.s.orders, t.orders, curriculumID, side)
	t.s.mu.RUnlock()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no active %s orders for curriculum %s", apperrors.ErrNotFound, side, curriculumID)
	}
	return t.FindOrderForUpdate(ctx, candidates[0].OrderID)
}

func (t *memTx) InsertOrder(ctx context.Context, order domain.Order) error {
	if _, ok := t.order(order.OrderID); ok {
		return fmt.Errorf("%w: order %s", apperrors.ErrDuplicate, order.OrderID)
	}
	t.orders[order.OrderID] = order
	return nil
}

func (t *memTx) UpdateOrder(ctx context.Context, order domain.Order) error {
	if err := t.s.fault("UpdateOrder"); err != nil {
		return err
	}
	if _, ok := t.order(order.OrderID); !ok {
		return fmt.Errorf("%w: order %s", apperrors.ErrNotFound, order.OrderID)
	}
	t.orders[order.OrderID] = order
	return nil
}

func (t *memTx) InsertTrade(ctx context.Context, trade domain.Trade) error {
	if err := t.s.fault("InsertTrade"); err != nil {
		return err
	}
	t.trades = append(t.trades, trade)
	return nil
}
