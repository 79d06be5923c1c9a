package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/google/uuid"
)

// registryService resolves assets and accounts with get-or-create semantics.
// Rows are immutable once created, so resolved values are cached for the life of the process.
type registryService struct {
	BaseService
	assetRepo   portsrepo.AssetRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade

	assets   sync.Map // code -> domain.Asset
	accounts sync.Map // cache key -> domain.Account
}

// NewRegistryService creates a new RegistryService.
func NewRegistryService(assetRepo portsrepo.AssetRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.RegistrySvcFacade {
	return &registryService{
		assetRepo:   assetRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.RegistrySvcFacade = (*registryService)(nil)

func (s *registryService) CurrencyAsset(ctx context.Context) (*domain.Asset, error) {
	return s.asset(ctx, domain.Asset{
		Code:      domain.CurrencyCode,
		AssetType: domain.AssetTypeCurrency,
		Scale:     domain.CurrencyScale,
	})
}

func (s *registryService) ShareAsset(ctx context.Context, curriculumID string) (*domain.Asset, error) {
	if strings.TrimSpace(curriculumID) == "" {
		return nil, fmt.Errorf("%w: curriculum id is required", apperrors.ErrValidation)
	}
	return s.asset(ctx, domain.Asset{
		Code:         domain.ShareAssetCode(curriculumID),
		AssetType:    domain.AssetTypeCurriculumShare,
		CurriculumID: &curriculumID,
		Scale:        domain.ShareScale,
	})
}

func (s *registryService) asset(ctx context.Context, candidate domain.Asset) (*domain.Asset, error) {
	if cached, ok := s.assets.Load(candidate.Code); ok {
		a := cached.(domain.Asset)
		return &a, nil
	}
	candidate.AssetID = uuid.NewString()
	candidate.CreatedAt = time.Now().UTC()

	stored, err := s.assetRepo.UpsertAsset(ctx, candidate)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve asset", "code", candidate.Code)
		return nil, fmt.Errorf("resolve asset %s: %w", candidate.Code, err)
	}
	s.assets.Store(stored.Code, *stored)
	return stored, nil
}

func (s *registryService) SystemAccount(ctx context.Context, accountType domain.AccountType) (*domain.Account, error) {
	switch accountType {
	case domain.AccountTypeTreasury, domain.AccountTypeRewardsPool, domain.AccountTypeEscrowPool:
	default:
		return nil, fmt.Errorf("%w: %q is not a singleton system account type", apperrors.ErrValidation, accountType)
	}
	return s.account(ctx, "system|"+string(accountType), domain.Account{
		AccountType:  accountType,
		CurrencyCode: domain.CurrencyCode,
	}, s.accountRepo.UpsertSystemAccount)
}

func (s *registryService) CurriculumWallet(ctx context.Context, curriculumID string) (*domain.Account, error) {
	if strings.TrimSpace(curriculumID) == "" {
		return nil, fmt.Errorf("%w: curriculum id is required", apperrors.ErrValidation)
	}
	return s.account(ctx, "curriculum|"+curriculumID, domain.Account{
		AccountType:  domain.AccountTypeCurriculumWallet,
		CurrencyCode: domain.CurrencyCode,
		Scope:        curriculumID,
	}, s.accountRepo.UpsertSystemAccount)
}

func (s *registryService) UserWallet(ctx context.Context, userID string) (*domain.Account, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", apperrors.ErrValidation)
	}
	return s.account(ctx, "wallet|"+userID, domain.Account{
		OwnerUserID:  &userID,
		AccountType:  domain.AccountTypeUserWallet,
		CurrencyCode: domain.CurrencyCode,
	}, s.accountRepo.UpsertUserWallet)
}

func (s *registryService) account(
	ctx context.Context,
	cacheKey string,
	candidate domain.Account,
	upsert func(context.Context, domain.Account) (*domain.Account, error),
) (*domain.Account, error) {
	if cached, ok := s.accounts.Load(cacheKey); ok {
		a := cached.(domain.Account)
		return &a, nil
	}
	candidate.AccountID = uuid.NewString()
	candidate.CreatedAt = time.Now().UTC()

	stored, err := upsert(ctx, candidate)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve account", "cache_key", cacheKey)
		return nil, fmt.Errorf("resolve account %s: %w", cacheKey, err)
	}
	s.accounts.Store(cacheKey, *stored)
	return stored, nil
}
