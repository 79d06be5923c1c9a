package pgsql

import (
	"context"
	"fmt"

	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxMultiplierRepository reads per-user daily tax multipliers.
type PgxMultiplierRepository struct {
	BaseRepository
}

func newPgxMultiplierRepository(pool *pgxpool.Pool) portsrepo.UserMultiplierReader {
	return &PgxMultiplierRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.UserMultiplierReader = (*PgxMultiplierRepository)(nil)

// FindUserMultiplier reads the NUMERIC column as text so no precision is lost on the way to decimal.
func (r *PgxMultiplierRepository) FindUserMultiplier(ctx context.Context, userID string) (decimal.Decimal, error) {
	var raw string
	err := r.Pool.QueryRow(ctx, `SELECT multiplier::text FROM user_tax_multipliers WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		return decimal.Zero, mapError(err, fmt.Sprintf("find multiplier of %s", userID))
	}
	m, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid multiplier %q for %s: %w", raw, userID, err)
	}
	return m, nil
}
