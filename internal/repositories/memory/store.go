package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// Store is an in-process implementation of every repository port.
// Writes inside WithinTx are staged and become visible atomically on commit; row locks follow
// the same keys and ordering as the postgres store.
type Store struct {
	mu sync.RWMutex

	assets       map[string]domain.Asset
	assetsByCode map[string]string

	accounts    map[string]domain.Account
	systemIndex map[string]string
	walletIndex map[string]string

	balances map[domain.BalanceKey]domain.Balance

	txns        map[string]domain.Transaction
	txnByKey    map[string]string
	pendingKeys map[string]struct{}
	entries     []domain.Entry

	orders map[string]domain.Order
	trades []domain.Trade

	multipliers map[string]decimal.Decimal

	// faults maps a tx write (e.g. "InsertTrade") to the error it returns.
	faults map[string]error

	locks       *lockTable
	lockTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout bounds how long a unit of work waits for a row lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		assets:       make(map[string]domain.Asset),
		assetsByCode: make(map[string]string),
		accounts:     make(map[string]domain.Account),
		systemIndex:  make(map[string]string),
		walletIndex:  make(map[string]string),
		balances:     make(map[domain.BalanceKey]domain.Balance),
		txns:         make(map[string]domain.Transaction),
		txnByKey:     make(map[string]string),
		pendingKeys:  make(map[string]struct{}),
		orders:       make(map[string]domain.Order),
		multipliers:  make(map[string]decimal.Decimal),
		faults:       make(map[string]error),
		locks:        newLockTable(),
		lockTimeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider exposes the store through every repository port.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AssetRepo:      s,
		AccountRepo:    s,
		LedgerRepo:     s,
		OrderRepo:      s,
		MultiplierRepo: s,
	}
}

var (
	_ portsrepo.AssetRepositoryFacade   = (*Store)(nil)
	_ portsrepo.AccountRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade  = (*Store)(nil)
	_ portsrepo.OrderRepositoryFacade   = (*Store)(nil)
	_ portsrepo.UserMultiplierReader    = (*Store)(nil)
)

// InjectFault makes the named tx write ("InsertTrade", "UpdateOrder", "SaveBalances") fail with err.
// A nil err clears it.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.faults[op]
}

// WithinTx runs fn as one unit of work.
func (s *Store) WithinTx(ctx context.Context, fn portsrepo.TxFunc) (err error) {
	tx := newTx(s)
	defer tx.releaseLocks()
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	tx.commit()
	return nil
}

// --- assets ---

func (s *Store) FindAssetByCode(ctx context.Context, code string) (*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.assetsByCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: asset %s", apperrors.ErrNotFound, code)
	}
	a := s.assets[id]
	return &a, nil
}

func (s *Store) FindAssetsByIDs(ctx context.Context, assetIDs []string) (map[string]domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Asset, len(assetIDs))
	for _, id := range assetIDs {
		if a, ok := s.assets[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (s *Store) UpsertAsset(ctx context.Context, asset domain.Asset) (*domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.assetsByCode[asset.Code]; ok {
		existing := s.assets[id]
		return &existing, nil
	}
	if asset.IsShare() && asset.CurriculumID != nil {
		for _, a := range s.assets {
			if a.IsShare() && a.CurriculumID != nil && *a.CurriculumID == *asset.CurriculumID {
				return nil, fmt.Errorf("%w: share asset for curriculum %s", apperrors.ErrDuplicate, *asset.CurriculumID)
			}
		}
	}
	s.assets[asset.AssetID] = asset
	s.assetsByCode[asset.Code] = asset.AssetID
	return &asset, nil
}

// --- accounts ---

func systemIndexKey(a domain.Account) string {
	return string(a.AccountType) + "|" + a.CurrencyCode + "|" + a.Scope
}

func walletIndexKey(ownerUserID, currencyCode string) string {
	return ownerUserID + "|" + currencyCode
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &a, nil
}

func (s *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if a, ok := s.accounts[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (s *Store) ListAccountsByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Account
	for _, a := range s.accounts {
		if a.AccountType == accountType {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out, nil
}

func (s *Store) UpsertSystemAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := systemIndexKey(account)
	if id, ok := s.systemIndex[key]; ok {
		existing := s.accounts[id]
		return &existing, nil
	}
	s.accounts[account.AccountID] = account
	s.systemIndex[key] = account.AccountID
	return &account, nil
}

func (s *Store) UpsertUserWallet(ctx context.Context, account domain.Account) (*domain.Account, error) {
	if account.OwnerUserID == nil {
		return nil, fmt.Errorf("%w: user wallet without owner", apperrors.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := walletIndexKey(*account.OwnerUserID, account.CurrencyCode)
	if id, ok := s.walletIndex[key]; ok {
		existing := s.accounts[id]
		return &existing, nil
	}
	s.accounts[account.AccountID] = account
	s.walletIndex[key] = account.AccountID
	return &account, nil
}

// --- balances ---

func (s *Store) GetBalance(ctx context.Context, key domain.BalanceKey) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[key].Balance, nil
}

func (s *Store) ListBalancesByAccount(ctx context.Context, accountID string) ([]domain.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Balance
	for k, b := range s.balances {
		if k.AccountID == accountID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out, nil
}

func (s *Store) ListPositiveHolders(ctx context.Context, assetID string, accountType domain.AccountType) ([]domain.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Balance
	for k, b := range s.balances {
		if k.AssetID != assetID || b.Balance <= 0 {
			continue
		}
		if s.accounts[k.AccountID].AccountType != accountType {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

// --- transactions ---

func (s *Store) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.txnByKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: transaction with key %s", apperrors.ErrNotFound, key)
	}
	t := s.txns[id]
	return &t, nil
}

func (s *Store) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.txns[transactionID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return &t, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var withAsset map[string]struct{}
	if filter.AssetID != "" {
		withAsset = make(map[string]struct{})
		for _, e := range s.entries {
			if e.AssetID == filter.AssetID {
				withAsset[e.TransactionID] = struct{}{}
			}
		}
	}
	var out []domain.Transaction
	for _, t := range s.txns {
		if withAsset != nil {
			if _, ok := withAsset[t.TransactionID]; !ok {
				continue
			}
		}
		if filter.Before != nil && !olderThan(t, *filter.Before) {
			continue
		}
		if filter.ActorUserID != nil && (t.ActorUserID == nil || *t.ActorUserID != *filter.ActorUserID) {
			continue
		}
		if filter.EventType != "" && t.EventType != filter.EventType {
			continue
		}
		if filter.ContextType != "" && (t.ContextType == nil || *t.ContextType != filter.ContextType) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].TransactionID > out[j].TransactionID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// olderThan reports whether t sorts after the cursor in newest-first order.
func olderThan(t domain.Transaction, cursor domain.PageCursor) bool {
	if !t.CreatedAt.Equal(cursor.CreatedAt) {
		return t.CreatedAt.Before(cursor.CreatedAt)
	}
	return t.TransactionID < cursor.ID
}

func (s *Store) ListEntriesByTransactionIDs(ctx context.Context, transactionIDs []string) ([]domain.Entry, error) {
	want := make(map[string]struct{}, len(transactionIDs))
	for _, id := range transactionIDs {
		want[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Entry
	for _, e := range s.entries {
		if _, ok := want[e.TransactionID]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// Entries returns a copy of every committed entry.
func (s *Store) Entries() []domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Entry(nil), s.entries...)
}

// --- orders ---

func (s *Store) FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", apperrors.ErrNotFound, orderID)
	}
	return &o, nil
}

func (s *Store) ListActiveOrders(ctx context.Context, curriculumID string, side domain.OrderSide) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeOrders(s.orders, nil, curriculumID, side), nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Precedes(out[i]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListTrades(ctx context.Context, curriculumID string, limit int) ([]domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Trade
	for i := len(s.trades) - 1; i >= 0; i-- {
		if s.trades[i].CurriculumID == curriculumID {
			out = append(out, s.trades[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// activeOrders merges committed orders with staged overrides and returns one side best first.
func activeOrders(committed, staged map[string]domain.Order, curriculumID string, side domain.OrderSide) []domain.Order {
	var out []domain.Order
	for id, o := range committed {
		if so, ok := staged[id]; ok {
			o = so
		}
		if o.CurriculumID == curriculumID && o.Side == side && o.IsActive() {
			out = append(out, o)
		}
	}
	for id, o := range staged {
		if _, ok := committed[id]; ok {
			continue
		}
		if o.CurriculumID == curriculumID && o.Side == side && o.IsActive() {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BetterThan(out[j]) })
	return out
}

// --- multipliers ---

func (s *Store) FindUserMultiplier(ctx context.Context, userID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.multipliers[userID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: multiplier for user %s", apperrors.ErrNotFound, userID)
	}
	return m, nil
}

// SetUserMultiplier records a per-user daily tax multiplier.
func (s *Store) SetUserMultiplier(userID string, multiplier decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.multipliers[userID] = multiplier
}
