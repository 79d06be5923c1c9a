package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/SscSPs/access_exchange/internal/platform/config"
	"github.com/shopspring/decimal"
)

// DailyTaxInsufficientReason is the cancellation reason sent to billing when a user cannot pay.
const DailyTaxInsufficientReason = "daily_tax_insufficient"

// DailyTaxKey is the idempotency key of one user's charge for one UTC day.
func DailyTaxKey(day time.Time, userID string) string {
	return fmt.Sprintf("daily_tax:%s:%s", domain.DayKey(day), userID)
}

// DailyTaxAnchor de-duplicates revocations for one user and day.
func DailyTaxAnchor(day time.Time, userID string) string {
	return fmt.Sprintf("%s:%s:%s", DailyTaxInsufficientReason, domain.DayKey(day), userID)
}

type dailyTaxService struct {
	BaseService
	ledger      portssvc.LedgerSvcFacade
	registry    portssvc.RegistrySvcFacade
	accountRepo portsrepo.AccountReader
	multipliers portssvc.UserMultiplierProvider
	canceller   portssvc.SubscriptionCanceller
	policy      config.LedgerPolicy
}

// NewDailyTaxService creates the daily access tax runner.
func NewDailyTaxService(
	ledger portssvc.LedgerSvcFacade,
	registry portssvc.RegistrySvcFacade,
	accountRepo portsrepo.AccountReader,
	multipliers portssvc.UserMultiplierProvider,
	canceller portssvc.SubscriptionCanceller,
	policy config.LedgerPolicy,
) portssvc.TaxSvcFacade {
	return &dailyTaxService{
		ledger:      ledger,
		registry:    registry,
		accountRepo: accountRepo,
		multipliers: multipliers,
		canceller:   canceller,
		policy:      policy,
	}
}

var _ portssvc.TaxSvcFacade = (*dailyTaxService)(nil)

// taxOutcome is what one daily tax attempt did.
type taxOutcome int

const (
	taxCharged taxOutcome = iota
	taxWaived
	taxInsufficient
)

func (s *dailyTaxService) ChargeDailyTax(ctx context.Context, userID string, day time.Time) (bool, error) {
	outcome, err := s.charge(ctx, userID, day)
	if err != nil {
		return false, err
	}
	return outcome == taxCharged, nil
}

// charge reports an already charged day as taxCharged. A zero tax is waived without a posting.
func (s *dailyTaxService) charge(ctx context.Context, userID string, day time.Time) (taxOutcome, error) {
	if strings.TrimSpace(userID) == "" {
		return taxInsufficient, fmt.Errorf("%w: user id is required", apperrors.ErrValidation)
	}
	logger := s.GetLogger(ctx).With(slog.String("user_id", userID), slog.String("day", domain.DayKey(day)))
	key := DailyTaxKey(day, userID)

	if _, err := s.ledger.FindTransaction(ctx, key); err == nil {
		logger.Debug("Daily tax already charged")
		return taxCharged, nil
	} else if !apperrors.IsNotFound(err) {
		return taxInsufficient, err
	}

	multiplier := s.multiplier(ctx, userID)
	tax := decimal.NewFromInt(s.policy.DailyTaxTicks).Mul(multiplier).IntPart()
	if tax <= 0 {
		logger.Debug("Daily tax waived", slog.String("multiplier", multiplier.String()))
		return taxWaived, nil
	}

	wallet, err := s.registry.UserWallet(ctx, userID)
	if err != nil {
		return taxInsufficient, err
	}
	treasury, err := s.registry.SystemAccount(ctx, domain.AccountTypeTreasury)
	if err != nil {
		return taxInsufficient, err
	}
	currency, err := s.registry.CurrencyAsset(ctx)
	if err != nil {
		return taxInsufficient, err
	}

	balance, err := s.ledger.GetBalance(ctx, wallet.AccountID, currency.AssetID)
	if err != nil {
		return taxInsufficient, err
	}
	if balance < tax {
		logger.Warn("Insufficient balance for daily tax", slog.Int64("balance", balance), slog.Int64("tax", tax))
		return taxInsufficient, s.revoke(ctx, userID, day)
	}

	contextType := "user"
	_, err = s.ledger.Post(ctx, domain.PostRequest{
		EventType:      domain.EventTypeDailyAccessTax,
		IdempotencyKey: key,
		Entries: []domain.EntrySpec{
			{AccountID: wallet.AccountID, AssetID: currency.AssetID, Delta: -tax, EntryType: domain.EntryTypeTax},
			{AccountID: treasury.AccountID, AssetID: currency.AssetID, Delta: tax, EntryType: domain.EntryTypeTax},
		},
		ActorUserID: &userID,
		ContextType: &contextType,
		ContextID:   &userID,
		Memo: map[string]any{
			"day":        domain.DayKey(day),
			"base_ticks": s.policy.DailyTaxTicks,
			"multiplier": multiplier.String(),
			"tax_ticks":  tax,
		},
	})
	if errors.Is(err, apperrors.ErrInsufficientFunds) {
		// The wallet was drained between the balance check and the posting.
		logger.Warn("Daily tax lost a race with a concurrent debit")
		return taxInsufficient, s.revoke(ctx, userID, day)
	}
	if err != nil {
		return taxInsufficient, err
	}
	logger.Info("Daily tax charged", slog.Int64("tax", tax))
	return taxCharged, nil
}

func (s *dailyTaxService) ChargeDailyTaxForAllUsers(ctx context.Context, day time.Time) (*dto.DailyTaxStats, error) {
	wallets, err := s.accountRepo.ListAccountsByType(ctx, domain.AccountTypeUserWallet)
	if err != nil {
		return nil, err
	}
	stats := &dto.DailyTaxStats{}
	for _, w := range wallets {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if w.OwnerUserID == nil {
			continue
		}
		outcome, err := s.charge(ctx, *w.OwnerUserID, day)
		switch {
		case err != nil:
			stats.Failed++
			s.LogError(ctx, err, "Daily tax failed", slog.String("user_id", *w.OwnerUserID))
		case outcome == taxCharged:
			stats.Charged++
		case outcome == taxWaived:
			stats.Waived++
		default:
			stats.SkippedInsufficient++
		}
	}
	s.LogInfo(ctx, "Daily tax run finished",
		slog.String("day", domain.DayKey(day)),
		slog.Int("charged", stats.Charged),
		slog.Int("skipped_insufficient", stats.SkippedInsufficient),
		slog.Int("waived", stats.Waived),
		slog.Int("failed", stats.Failed),
	)
	return stats, nil
}

// multiplier never fails the charge: lookup errors fall back to 1 and values are clamped to [0, max].
func (s *dailyTaxService) multiplier(ctx context.Context, userID string) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if s.multipliers == nil {
		return one
	}
	m, err := s.multipliers.Multiplier(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read tax multiplier, using 1", slog.String("user_id", userID))
		return one
	}
	if m.IsNegative() {
		return decimal.Zero
	}
	if s.policy.MaxUserMultiplier.IsPositive() && m.GreaterThan(s.policy.MaxUserMultiplier) {
		return s.policy.MaxUserMultiplier
	}
	return m
}

func (s *dailyTaxService) revoke(ctx context.Context, userID string, day time.Time) error {
	if s.canceller == nil {
		return nil
	}
	if err := s.canceller.ForceCancel(ctx, userID, DailyTaxInsufficientReason, DailyTaxAnchor(day, userID)); err != nil {
		s.LogError(ctx, err, "Failed to request subscription cancellation", slog.String("user_id", userID))
		return err
	}
	return nil
}

// repositoryMultiplierProvider reads multipliers from storage. Users without an override pay 1x.
type repositoryMultiplierProvider struct {
	repo portsrepo.UserMultiplierReader
}

// NewRepositoryMultiplierProvider adapts a UserMultiplierReader to the provider port.
func NewRepositoryMultiplierProvider(repo portsrepo.UserMultiplierReader) portssvc.UserMultiplierProvider {
	return &repositoryMultiplierProvider{repo: repo}
}

func (p *repositoryMultiplierProvider) Multiplier(ctx context.Context, userID string) (decimal.Decimal, error) {
	m, err := p.repo.FindUserMultiplier(ctx, userID)
	if apperrors.IsNotFound(err) {
		return decimal.NewFromInt(1), nil
	}
	if err != nil {
		return decimal.Decimal{}, err
	}
	return m, nil
}
