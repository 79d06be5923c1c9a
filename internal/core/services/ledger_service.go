package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/events"
	"github.com/SscSPs/access_exchange/internal/platform/config"
	"github.com/google/uuid"
)

type ledgerService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountReader
	velocity    *velocityTax
	now         func() time.Time
}

// NewLedgerService creates the posting engine. The velocity overlay is driven by policy.
func NewLedgerService(
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	registry portssvc.RegistrySvcFacade,
	policy config.LedgerPolicy,
	publisher events.Publisher,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService: BaseService{Publisher: publisher},
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		velocity:    newVelocityTax(policy, registry),
		now:         time.Now,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) GetBalance(ctx context.Context, accountID, assetID string) (int64, error) {
	return s.ledgerRepo.GetBalance(ctx, domain.BalanceKey{AccountID: accountID, AssetID: assetID})
}

func (s *ledgerService) FindTransaction(ctx context.Context, idempotencyKey string) (*domain.Transaction, error) {
	return s.ledgerRepo.FindTransactionByIdempotencyKey(ctx, idempotencyKey)
}

func (s *ledgerService) Post(ctx context.Context, req domain.PostRequest) (string, error) {
	logger := s.GetLogger(ctx).With(
		slog.String("event_type", req.EventType),
		slog.String("idempotency_key", req.IdempotencyKey),
	)
	if err := validateEntrySet(req); err != nil {
		logger.Warn("Rejected posting", slog.String("error", err.Error()))
		return "", err
	}

	var (
		posted *domain.Transaction
		id     string
		count  int
	)
	err := s.ledgerRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		txn, n, err := s.post(ctx, tx, req)
		if err != nil {
			return err
		}
		id = txn.TransactionID
		if n > 0 {
			posted, count = txn, n
		}
		return nil
	})
	if errors.Is(err, apperrors.ErrDuplicate) {
		// A concurrent posting with the same key committed first.
		existing, findErr := s.ledgerRepo.FindTransactionByIdempotencyKey(ctx, req.IdempotencyKey)
		if findErr == nil {
			logger.Info("Idempotent replay after concurrent insert", slog.String("transaction_id", existing.TransactionID))
			return existing.TransactionID, nil
		}
		return "", fmt.Errorf("%w: idempotency key %s is being posted concurrently", apperrors.ErrRetryable, req.IdempotencyKey)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) || apperrors.IsValidation(err) || apperrors.IsNotFound(err) {
			logger.Warn("Posting rejected", slog.String("error", err.Error()))
		} else {
			logger.Error("Posting failed", slog.String("error", err.Error()))
		}
		return "", err
	}

	if posted != nil {
		logger.Info("Transaction posted", slog.String("transaction_id", id), slog.Int("entries", count))
		s.Publish(ctx, events.TopicLedgerTransactions, posted.IdempotencyKey, events.TransactionPosted{
			TransactionID:  posted.TransactionID,
			EventType:      posted.EventType,
			IdempotencyKey: posted.IdempotencyKey,
			ActorUserID:    posted.ActorUserID,
			ContextType:    posted.ContextType,
			ContextID:      posted.ContextID,
			EntryCount:     count,
			PostedAt:       posted.CreatedAt,
		})
	} else {
		logger.Debug("Idempotent replay", slog.String("transaction_id", id))
	}
	return id, nil
}

func (s *ledgerService) PostInTx(ctx context.Context, tx portsrepo.Tx, req domain.PostRequest) (string, error) {
	if err := validateEntrySet(req); err != nil {
		return "", err
	}
	txn, _, err := s.post(ctx, tx, req)
	if err != nil {
		return "", err
	}
	return txn.TransactionID, nil
}

// post applies one posting inside tx. It returns the number of entries written, which is zero on replay.
func (s *ledgerService) post(ctx context.Context, tx portsrepo.Tx, req domain.PostRequest) (*domain.Transaction, int, error) {
	existing, err := tx.FindTransactionByIdempotencyKey(ctx, req.IdempotencyKey)
	if err == nil {
		return existing, 0, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, 0, err
	}

	entries := append([]domain.EntrySpec(nil), req.Entries...)
	accounts, err := s.loadAccounts(ctx, entries)
	if err != nil {
		return nil, 0, err
	}

	plan, err := s.velocity.prepare(ctx, accounts, entries)
	if err != nil {
		return nil, 0, err
	}

	keys := make([]domain.BalanceKey, 0, len(entries)+1)
	for _, e := range entries {
		keys = append(keys, e.Key())
	}
	if plan != nil {
		accounts[plan.treasury.AccountID] = plan.treasury
		keys = append(keys, plan.treasuryKey())
	}
	keys = domain.SortBalanceKeys(keys)

	now := s.now().UTC()
	txn := domain.Transaction{
		TransactionID:  uuid.NewString(),
		EventType:      req.EventType,
		IdempotencyKey: req.IdempotencyKey,
		ActorUserID:    req.ActorUserID,
		ContextType:    req.ContextType,
		ContextID:      req.ContextID,
		Memo:           req.Memo,
		CreatedAt:      now,
	}
	if err := tx.InsertTransaction(ctx, txn); err != nil {
		return nil, 0, err
	}
	if err := tx.EnsureBalances(ctx, keys); err != nil {
		return nil, 0, err
	}
	balances, err := tx.LockBalances(ctx, keys)
	if err != nil {
		return nil, 0, err
	}

	if plan != nil {
		surcharges, err := s.velocity.apply(ctx, tx, plan, accounts, entries, now)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, surcharges...)
	}

	changed := make(map[domain.BalanceKey]int64, len(keys))
	rows := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		k := e.Key()
		next, ok := domain.AddDelta(balances[k], e.Delta)
		if !ok {
			return nil, 0, fmt.Errorf("%w: account %s asset %s balance %d cannot absorb %d",
				apperrors.ErrInvalidEntrySet, e.AccountID, e.AssetID, balances[k], e.Delta)
		}
		acct := accounts[e.AccountID]
		if next < 0 && (acct.IsCurriculumWallet() || (acct.IsUserWallet() && !req.AllowOverdraft)) {
			return nil, 0, fmt.Errorf("%w: account %s asset %s has %d, needs %d",
				apperrors.ErrInsufficientFunds, e.AccountID, e.AssetID, balances[k], -e.Delta)
		}
		balances[k] = next
		changed[k] = next
		rows = append(rows, domain.Entry{
			EntryID:       uuid.NewString(),
			TransactionID: txn.TransactionID,
			AccountID:     e.AccountID,
			AssetID:       e.AssetID,
			Delta:         e.Delta,
			EntryType:     e.EntryType,
			CreatedAt:     now,
		})
	}

	if err := tx.SaveBalances(ctx, changed); err != nil {
		return nil, 0, err
	}
	if err := tx.InsertEntries(ctx, rows); err != nil {
		return nil, 0, err
	}
	return &txn, len(rows), nil
}

func (s *ledgerService) loadAccounts(ctx context.Context, entries []domain.EntrySpec) (map[string]domain.Account, error) {
	ids := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		ids = append(ids, e.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return accounts, nil
}

// validateEntrySet checks the shape of a posting before any storage is touched.
func validateEntrySet(req domain.PostRequest) error {
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		return fmt.Errorf("%w: idempotency key is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.EventType) == "" {
		return fmt.Errorf("%w: event type is required", apperrors.ErrValidation)
	}
	if len(req.Entries) == 0 {
		return fmt.Errorf("%w: no entries", apperrors.ErrInvalidEntrySet)
	}
	sums := make(map[string]int64)
	order := make([]string, 0, 2)
	for i, e := range req.Entries {
		if e.AccountID == "" || e.AssetID == "" {
			return fmt.Errorf("%w: entry %d is missing account or asset", apperrors.ErrInvalidEntrySet, i)
		}
		if e.Delta == 0 {
			return fmt.Errorf("%w: entry %d has a zero delta", apperrors.ErrInvalidEntrySet, i)
		}
		if e.Delta == math.MinInt64 {
			return fmt.Errorf("%w: entry %d delta is out of range", apperrors.ErrInvalidEntrySet, i)
		}
		if _, ok := sums[e.AssetID]; !ok {
			order = append(order, e.AssetID)
		}
		sum, ok := domain.AddDelta(sums[e.AssetID], e.Delta)
		if !ok {
			return fmt.Errorf("%w: asset %s overflows at entry %d", apperrors.ErrInvalidEntrySet, e.AssetID, i)
		}
		sums[e.AssetID] = sum
	}
	for _, assetID := range order {
		if sums[assetID] != 0 {
			return fmt.Errorf("%w: asset %s nets to %d", apperrors.ErrInvalidEntrySet, assetID, sums[assetID])
		}
	}
	return nil
}
