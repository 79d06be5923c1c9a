package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	"github.com/SscSPs/access_exchange/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAssetRepository struct {
	BaseRepository
}

func newPgxAssetRepository(pool *pgxpool.Pool) portsrepo.AssetRepositoryFacade {
	return &PgxAssetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AssetRepositoryFacade = (*PgxAssetRepository)(nil)

func (r *PgxAssetRepository) FindAssetByCode(ctx context.Context, code string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE code = $1`
	return findOne(r.Pool.QueryRow(ctx, query, code), fmt.Sprintf("find asset %s", code), scanAsset)
}

func (r *PgxAssetRepository) FindAssetsByIDs(ctx context.Context, assetIDs []string) (map[string]domain.Asset, error) {
	out := make(map[string]domain.Asset, len(assetIDs))
	if len(assetIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + assetColumns + ` FROM assets WHERE asset_id = ANY($1)`
	rows, err := r.Pool.Query(ctx, query, assetIDs)
	assets, err := collect(rows, err, "find assets", scanAsset)
	if err != nil {
		return nil, err
	}
	for _, a := range assets {
		out[a.AssetID] = a
	}
	return out, nil
}

// UpsertAsset relies on the unique code and the one-share-per-curriculum index.
func (r *PgxAssetRepository) UpsertAsset(ctx context.Context, asset domain.Asset) (*domain.Asset, error) {
	m := mapping.ToModelAsset(asset)
	query := `
		INSERT INTO assets (asset_id, code, asset_type, curriculum_id, scale, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO NOTHING;
	`
	if _, err := r.Pool.Exec(ctx, query, m.AssetID, m.Code, m.AssetType, m.CurriculumID, m.Scale, m.CreatedAt); err != nil {
		return nil, mapError(err, fmt.Sprintf("upsert asset %s", m.Code))
	}
	return r.FindAssetByCode(ctx, m.Code)
}
