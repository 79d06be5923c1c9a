package pgsql

import (
	"time"

	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every Postgres repository. lockTimeout applies to units of work.
func NewRepositoryProvider(dbPool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	txBase := BaseRepository{LockTimeout: lockTimeout}

	return portsrepo.RepositoryProvider{
		AssetRepo:      newPgxAssetRepository(dbPool),
		AccountRepo:    newPgxAccountRepository(dbPool),
		LedgerRepo:     newPgxLedgerRepository(dbPool, txBase),
		OrderRepo:      newPgxOrderRepository(dbPool, txBase),
		MultiplierRepo: newPgxMultiplierRepository(dbPool),
	}
}
