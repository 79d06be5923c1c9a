package repositories

import (
	"context"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OrderReader reads committed orders and trades.
type OrderReader interface {
	FindOrderByID(ctx context.Context, orderID string) (*domain.Order, error)

	// ListActiveOrders returns open/partial orders of one side, best first.
	ListActiveOrders(ctx context.Context, curriculumID string, side domain.OrderSide) ([]domain.Order, error)

	// ListOrdersByUser returns the user's orders, newest first.
	ListOrdersByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error)

	// ListTrades returns the newest trades of a curriculum first.
	ListTrades(ctx context.Context, curriculumID string, limit int) ([]domain.Trade, error)
}

// OrderRepositoryFacade combines the order read side with unit-of-work support.
type OrderRepositoryFacade interface {
	OrderReader
	TransactionManager
}

// UserMultiplierReader reads the per-user daily tax multiplier.
type UserMultiplierReader interface {
	// FindUserMultiplier returns apperrors.ErrNotFound when the user has no override.
	FindUserMultiplier(ctx context.Context, userID string) (decimal.Decimal, error)
}
