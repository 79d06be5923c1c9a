package repositories

import (
	"context"

	"github.com/SscSPs/access_exchange/internal/core/domain"
)

// AssetReader defines read operations for assets.
type AssetReader interface {
	FindAssetByCode(ctx context.Context, code string) (*domain.Asset, error)
	FindAssetsByIDs(ctx context.Context, assetIDs []string) (map[string]domain.Asset, error)
}

// AssetWriter creates assets lazily.
type AssetWriter interface {
	// UpsertAsset inserts the asset unless one with the same code exists, and returns the stored row.
	UpsertAsset(ctx context.Context, asset domain.Asset) (*domain.Asset, error)
}

// AssetRepositoryFacade combines all asset-related repository interfaces.
type AssetRepositoryFacade interface {
	AssetReader
	AssetWriter
}
