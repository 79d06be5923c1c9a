package services

import (
	"context"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/SscSPs/access_exchange/internal/dto"
)

// OrderReaderSvc defines read operations on order books and trades.
type OrderReaderSvc interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	OrderBook(ctx context.Context, curriculumID string) (*domain.OrderBook, error)
	ListTrades(ctx context.Context, curriculumID string, limit int) ([]domain.Trade, error)
	ListUserOrders(ctx context.Context, userID string, limit int) ([]domain.Order, error)
}

// OrderWriterSvc places, cancels and matches orders.
type OrderWriterSvc interface {
	PlaceOrder(ctx context.Context, curriculumID string, req dto.PlaceOrderRequest, userID string) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID string, userID string) (*domain.Order, error)

	// Drain crosses the book of one curriculum until no cross remains or the iteration bound is hit.
	Drain(ctx context.Context, curriculumID string) (*domain.DrainResult, error)
}

// ExchangeSvcFacade combines all exchange operations.
type ExchangeSvcFacade interface {
	OrderReaderSvc
	OrderWriterSvc
}

// PortfolioSvcFacade values user holdings.
type PortfolioSvcFacade interface {
	Portfolio(ctx context.Context, userID string) (*domain.Portfolio, error)
	LastTradePrice(ctx context.Context, curriculumID string) (*int64, error)
	LiquidationValue(ctx context.Context, curriculumID string, shares int64) (int64, error)
}
