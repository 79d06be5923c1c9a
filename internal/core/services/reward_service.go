package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/SscSPs/access_exchange/internal/platform/config"
	"github.com/SscSPs/access_exchange/internal/utils"
	"github.com/shopspring/decimal"
)

type rewardService struct {
	BaseService
	ledger      portssvc.LedgerSvcFacade
	registry    portssvc.RegistrySvcFacade
	balances    portsrepo.BalanceReader
	accountRepo portsrepo.AccountReader
	policy      config.RewardPolicy
	now         func() time.Time
}

// NewRewardService creates the issuance and payout service.
func NewRewardService(
	ledger portssvc.LedgerSvcFacade,
	registry portssvc.RegistrySvcFacade,
	balances portsrepo.BalanceReader,
	accountRepo portsrepo.AccountReader,
	policy config.RewardPolicy,
) portssvc.RewardSvcFacade {
	return &rewardService{
		ledger:      ledger,
		registry:    registry,
		balances:    balances,
		accountRepo: accountRepo,
		policy:      policy,
		now:         time.Now,
	}
}

var _ portssvc.RewardSvcFacade = (*rewardService)(nil)

func (s *rewardService) GrantSignupBonus(ctx context.Context, userID string, ticks int64) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, fmt.Errorf("%w: user id is required", apperrors.ErrValidation)
	}
	if ticks <= 0 {
		ticks = s.policy.SignupBonusTicks
	}
	key := "signup_bonus:" + userID
	if _, err := s.ledger.FindTransaction(ctx, key); err == nil {
		return false, nil
	} else if !apperrors.IsNotFound(err) {
		return false, err
	}

	treasury, err := s.registry.SystemAccount(ctx, domain.AccountTypeTreasury)
	if err != nil {
		return false, err
	}
	wallet, err := s.registry.UserWallet(ctx, userID)
	if err != nil {
		return false, err
	}
	currency, err := s.registry.CurrencyAsset(ctx)
	if err != nil {
		return false, err
	}

	contextType := "user"
	if _, err := s.ledger.Post(ctx, domain.PostRequest{
		EventType:      domain.EventTypeSignupBonus,
		IdempotencyKey: key,
		Entries: []domain.EntrySpec{
			{AccountID: treasury.AccountID, AssetID: currency.AssetID, Delta: -ticks, EntryType: domain.EntryTypeSignupBonus},
			{AccountID: wallet.AccountID, AssetID: currency.AssetID, Delta: ticks, EntryType: domain.EntryTypeSignupBonus},
		},
		ActorUserID: &userID,
		ContextType: &contextType,
		ContextID:   &userID,
	}); err != nil {
		return false, err
	}
	s.LogInfo(ctx, "Signup bonus granted", slog.String("user_id", userID), slog.Int64("ticks", ticks))
	return true, nil
}

func (s *rewardService) MintShares(ctx context.Context, curriculumID string, req dto.MintSharesRequest) (string, error) {
	if strings.TrimSpace(curriculumID) == "" || strings.TrimSpace(req.UserID) == "" {
		return "", fmt.Errorf("%w: curriculum and user are required", apperrors.ErrValidation)
	}
	if req.Quantity <= 0 {
		return "", fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	reference := req.Reference
	if reference == "" {
		reference = strconv.FormatInt(req.Quantity, 10)
	}

	share, err := s.registry.ShareAsset(ctx, curriculumID)
	if err != nil {
		return "", err
	}
	treasury, err := s.registry.SystemAccount(ctx, domain.AccountTypeTreasury)
	if err != nil {
		return "", err
	}
	wallet, err := s.registry.UserWallet(ctx, req.UserID)
	if err != nil {
		return "", err
	}

	contextType := "curriculum"
	txnID, err := s.ledger.Post(ctx, domain.PostRequest{
		EventType:      domain.EventTypeShareMint,
		IdempotencyKey: fmt.Sprintf("mint:%s:%s:%s", curriculumID, req.UserID, reference),
		Entries: []domain.EntrySpec{
			{AccountID: treasury.AccountID, AssetID: share.AssetID, Delta: -req.Quantity, EntryType: domain.EntryTypeMint},
			{AccountID: wallet.AccountID, AssetID: share.AssetID, Delta: req.Quantity, EntryType: domain.EntryTypeMint},
		},
		ContextType: &contextType,
		ContextID:   &curriculumID,
		Memo:        map[string]any{"reference": reference},
	})
	if err != nil {
		return "", err
	}
	return txnID, nil
}

// LessonRewardTicks is the saturating reward curve max * m / (m + half), in currency ticks.
func LessonRewardTicks(policy config.RewardPolicy, secondsSpent int64) int64 {
	if secondsSpent <= 0 {
		return 0
	}
	minutes := decimal.NewFromInt(secondsSpent).Div(decimal.NewFromInt(60))
	reward := policy.LessonRewardMaxAN.Mul(minutes).Div(minutes.Add(policy.LessonRewardHalfMinutes))
	return utils.TicksFromDecimal(reward, domain.CurrencyScale)
}

func (s *rewardService) RewardLessonCompletion(ctx context.Context, req dto.LessonRewardRequest) (*dto.LessonRewardResponse, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.LessonID) == "" {
		return nil, fmt.Errorf("%w: user and lesson are required", apperrors.ErrValidation)
	}
	day, err := dto.ParseDay(req.Day, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	reward := LessonRewardTicks(s.policy, req.SecondsSpent)
	if reward <= 0 {
		return &dto.LessonRewardResponse{RewardDisplay: dto.FormatCurrency(0)}, nil
	}
	var bonus int64
	if req.CurriculumID != "" {
		bonus = decimal.NewFromInt(reward).Mul(s.policy.CurriculumBonusRate).Round(0).IntPart()
	}

	pool, err := s.registry.SystemAccount(ctx, domain.AccountTypeRewardsPool)
	if err != nil {
		return nil, err
	}
	wallet, err := s.registry.UserWallet(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	currency, err := s.registry.CurrencyAsset(ctx)
	if err != nil {
		return nil, err
	}

	entries := []domain.EntrySpec{
		{AccountID: pool.AccountID, AssetID: currency.AssetID, Delta: -(reward + bonus), EntryType: domain.EntryTypeMint},
		{AccountID: wallet.AccountID, AssetID: currency.AssetID, Delta: reward, EntryType: domain.EntryTypeMint},
	}
	if bonus > 0 {
		curriculumWallet, err := s.registry.CurriculumWallet(ctx, req.CurriculumID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.EntrySpec{
			AccountID: curriculumWallet.AccountID, AssetID: currency.AssetID, Delta: bonus, EntryType: domain.EntryTypeMint,
		})
	}

	contextType := "lesson"
	memo := map[string]any{"seconds_spent": req.SecondsSpent, "reward_ticks": reward}
	if req.CurriculumID != "" {
		memo["curriculum_id"] = req.CurriculumID
		memo["curriculum_bonus_ticks"] = bonus
	}
	txnID, err := s.ledger.Post(ctx, domain.PostRequest{
		EventType:      domain.EventTypeLessonReward,
		IdempotencyKey: fmt.Sprintf("lesson_daily_reward:%s:%s:%s", req.UserID, req.LessonID, domain.DayKey(day)),
		Entries:        entries,
		ActorUserID:    &req.UserID,
		ContextType:    &contextType,
		ContextID:      &req.LessonID,
		Memo:           memo,
	})
	if err != nil {
		return nil, err
	}
	return &dto.LessonRewardResponse{
		TransactionID:        txnID,
		RewardTicks:          reward,
		CurriculumBonusTicks: bonus,
		RewardDisplay:        dto.FormatCurrency(reward),
	}, nil
}

// PayoutKey buckets payouts of one curriculum per minute.
func PayoutKey(curriculumID string, at time.Time) string {
	return fmt.Sprintf("curriculum_payout:%s:%s", curriculumID, at.UTC().Format("200601021504"))
}

func (s *rewardService) PayoutCurriculumWallet(ctx context.Context, curriculumID string, maxTicks int64) (int64, error) {
	logger := s.GetLogger(ctx).With(slog.String("curriculum_id", curriculumID))

	wallet, err := s.registry.CurriculumWallet(ctx, curriculumID)
	if err != nil {
		return 0, err
	}
	currency, err := s.registry.CurrencyAsset(ctx)
	if err != nil {
		return 0, err
	}
	share, err := s.registry.ShareAsset(ctx, curriculumID)
	if err != nil {
		return 0, err
	}

	key := PayoutKey(curriculumID, s.now())
	if _, err := s.ledger.FindTransaction(ctx, key); err == nil {
		logger.Debug("Payout already ran in this window", slog.String("idempotency_key", key))
		return 0, nil
	} else if !apperrors.IsNotFound(err) {
		return 0, err
	}

	// The posting re-checks the locked pot; a debit racing this read fails it with ErrInsufficientFunds.
	pot, err := s.ledger.GetBalance(ctx, wallet.AccountID, currency.AssetID)
	if err != nil {
		return 0, err
	}
	if maxTicks > 0 && maxTicks < pot {
		pot = maxTicks
	}
	if pot <= 0 {
		return 0, nil
	}

	holders, err := s.balances.ListPositiveHolders(ctx, share.AssetID, domain.AccountTypeUserWallet)
	if err != nil {
		return 0, err
	}
	var totalShares int64
	for _, h := range holders {
		totalShares += h.Balance
	}
	if totalShares <= 0 {
		logger.Debug("No share holders, payout skipped")
		return 0, nil
	}

	potDec, totalDec := decimal.NewFromInt(pot), decimal.NewFromInt(totalShares)
	var distributed int64
	entries := make([]domain.EntrySpec, 0, len(holders)+1)
	for _, h := range holders {
		portion, _ := potDec.Mul(decimal.NewFromInt(h.Balance)).QuoRem(totalDec, 0)
		amount := portion.IntPart()
		if amount <= 0 {
			continue
		}
		distributed += amount
		entries = append(entries, domain.EntrySpec{
			AccountID: h.AccountID, AssetID: currency.AssetID, Delta: amount, EntryType: domain.EntryTypePayout,
		})
	}
	if distributed == 0 {
		return 0, nil
	}
	entries = append(entries, domain.EntrySpec{
		AccountID: wallet.AccountID, AssetID: currency.AssetID, Delta: -distributed, EntryType: domain.EntryTypePayout,
	})

	contextType := "curriculum"
	if _, err := s.ledger.Post(ctx, domain.PostRequest{
		EventType:      domain.EventTypeCurriculumPayout,
		IdempotencyKey: key,
		Entries:        entries,
		ContextType:    &contextType,
		ContextID:      &curriculumID,
		Memo: map[string]any{
			"pot_ticks":    pot,
			"total_shares": totalShares,
			"holders":      len(entries) - 1,
		},
	}); errors.Is(err, apperrors.ErrInsufficientFunds) {
		logger.Warn("Curriculum wallet shrank during payout, retrying next window", slog.Int64("pot", pot))
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	logger.Info("Curriculum payout distributed", slog.Int64("distributed", distributed), slog.Int("holders", len(entries)-1))
	return distributed, nil
}

func (s *rewardService) PayoutAllCurricula(ctx context.Context) (int64, error) {
	wallets, err := s.accountRepo.ListAccountsByType(ctx, domain.AccountTypeCurriculumWallet)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, w := range wallets {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if w.Scope == "" {
			continue
		}
		paid, err := s.PayoutCurriculumWallet(ctx, w.Scope, 0)
		if err != nil {
			s.LogError(ctx, err, "Curriculum payout failed", slog.String("curriculum_id", w.Scope))
			continue
		}
		total += paid
	}
	return total, nil
}
