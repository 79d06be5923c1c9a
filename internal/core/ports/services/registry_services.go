package services

import (
	"context"

	"github.com/SscSPs/access_exchange/internal/core/domain"
)

// AssetRegistrySvc resolves assets, creating them on first use.
type AssetRegistrySvc interface {
	CurrencyAsset(ctx context.Context) (*domain.Asset, error)
	ShareAsset(ctx context.Context, curriculumID string) (*domain.Asset, error)
}

// AccountRegistrySvc resolves accounts, creating them on first use.
type AccountRegistrySvc interface {
	SystemAccount(ctx context.Context, accountType domain.AccountType) (*domain.Account, error)
	CurriculumWallet(ctx context.Context, curriculumID string) (*domain.Account, error)
	UserWallet(ctx context.Context, userID string) (*domain.Account, error)
}

// RegistrySvcFacade combines asset and account resolution.
type RegistrySvcFacade interface {
	AssetRegistrySvc
	AccountRegistrySvc
}
