package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// activeOrderPredicate expects $1 = curriculum and $2 = side.
const activeOrderPredicate = `curriculum_id = $1 AND side = $2 AND status IN ('open', 'partial') AND remaining_quantity > 0`

// bookOrdering is price priority, then time, then id.
func bookOrdering(side domain.OrderSide) string {
	if side == domain.OrderSideBid {
		return `limit_price DESC, created_at, order_id COLLATE "C"`
	}
	return `limit_price ASC, created_at, order_id COLLATE "C"`
}

type PgxOrderRepository struct {
	BaseRepository
}

func newPgxOrderRepository(pool *pgxpool.Pool, base BaseRepository) portsrepo.OrderRepositoryFacade {
	base.Pool = pool
	return &PgxOrderRepository{BaseRepository: base}
}

var _ portsrepo.OrderRepositoryFacade = (*PgxOrderRepository)(nil)

func (r *PgxOrderRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM market_orders WHERE order_id = $1`
	return findOne(r.Pool.QueryRow(ctx, query, orderID), fmt.Sprintf("find order %s", orderID), scanOrder)
}

func (r *PgxOrderRepository) ListActiveOrders(ctx context.Context, curriculumID string, side domain.OrderSide) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM market_orders WHERE ` + activeOrderPredicate + ` ORDER BY ` + bookOrdering(side)
	rows, err := r.Pool.Query(ctx, query, curriculumID, string(side))
	return collect(rows, err, fmt.Sprintf("list %s orders on %s", side, curriculumID), scanOrder)
}

func (r *PgxOrderRepository) ListOrdersByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + ` FROM market_orders
		WHERE user_id = $1
		ORDER BY created_at DESC, order_id DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, userID, limit)
	return collect(rows, err, fmt.Sprintf("list orders of %s", userID), scanOrder)
}

func (r *PgxOrderRepository) ListTrades(ctx context.Context, curriculumID string, limit int) ([]domain.Trade, error) {
	query := `
		SELECT ` + tradeColumns + ` FROM market_trades
		WHERE curriculum_id = $1
		ORDER BY created_at DESC, trade_id DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, curriculumID, limit)
	return collect(rows, err, fmt.Sprintf("list trades on %s", curriculumID), scanTrade)
}
