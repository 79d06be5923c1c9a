package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetBalance(ctx context.Context, accountID, assetID string) (int64, error) {
	args := m.Called(ctx, accountID, assetID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockLedgerService) FindTransaction(ctx context.Context, idempotencyKey string) (*domain.Transaction, error) {
	args := m.Called(ctx, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) Post(ctx context.Context, req domain.PostRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
func (m *MockLedgerService) PostInTx(ctx context.Context, tx portsrepo.Tx, req domain.PostRequest) (string, error) {
	args := m.Called(ctx, tx, req)
	return args.String(0), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock PublicLedgerService ---
type MockPublicLedgerService struct {
	mock.Mock
}

func (m *MockPublicLedgerService) PublicLedger(ctx context.Context, viewerUserID string, filter domain.PublicLedgerFilter) ([]domain.PublicTransaction, error) {
	args := m.Called(ctx, viewerUserID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PublicTransaction), args.Error(1)
}

var _ portssvc.PublicLedgerSvcFacade = (*MockPublicLedgerService)(nil)

// --- Mock ExchangeService ---
type MockExchangeService struct {
	mock.Mock
}

func (m *MockExchangeService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockExchangeService) OrderBook(ctx context.Context, curriculumID string) (*domain.OrderBook, error) {
	args := m.Called(ctx, curriculumID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderBook), args.Error(1)
}
func (m *MockExchangeService) ListTrades(ctx context.Context, curriculumID string, limit int) ([]domain.Trade, error) {
	args := m.Called(ctx, curriculumID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Trade), args.Error(1)
}
func (m *MockExchangeService) ListUserOrders(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}
func (m *MockExchangeService) PlaceOrder(ctx context.Context, curriculumID string, req dto.PlaceOrderRequest, userID string) (*domain.Order, error) {
	args := m.Called(ctx, curriculumID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockExchangeService) CancelOrder(ctx context.Context, orderID string, userID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockExchangeService) Drain(ctx context.Context, curriculumID string) (*domain.DrainResult, error) {
	args := m.Called(ctx, curriculumID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DrainResult), args.Error(1)
}

var _ portssvc.ExchangeSvcFacade = (*MockExchangeService)(nil)

// --- Mock TaxService ---
type MockTaxService struct {
	mock.Mock
}

func (m *MockTaxService) ChargeDailyTax(ctx context.Context, userID string, day time.Time) (bool, error) {
	args := m.Called(ctx, userID, day)
	return args.Bool(0), args.Error(1)
}
func (m *MockTaxService) ChargeDailyTaxForAllUsers(ctx context.Context, day time.Time) (*dto.DailyTaxStats, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DailyTaxStats), args.Error(1)
}

var _ portssvc.TaxSvcFacade = (*MockTaxService)(nil)

// --- Mock RewardService ---
type MockRewardService struct {
	mock.Mock
}

func (m *MockRewardService) GrantSignupBonus(ctx context.Context, userID string, ticks int64) (bool, error) {
	args := m.Called(ctx, userID, ticks)
	return args.Bool(0), args.Error(1)
}
func (m *MockRewardService) MintShares(ctx context.Context, curriculumID string, req dto.MintSharesRequest) (string, error) {
	args := m.Called(ctx, curriculumID, req)
	return args.String(0), args.Error(1)
}
func (m *MockRewardService) RewardLessonCompletion(ctx context.Context, req dto.LessonRewardRequest) (*dto.LessonRewardResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LessonRewardResponse), args.Error(1)
}
func (m *MockRewardService) PayoutCurriculumWallet(ctx context.Context, curriculumID string, maxTicks int64) (int64, error) {
	args := m.Called(ctx, curriculumID, maxTicks)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockRewardService) PayoutAllCurricula(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

var _ portssvc.RewardSvcFacade = (*MockRewardService)(nil)

// --- Mock PortfolioService ---
type MockPortfolioService struct {
	mock.Mock
}

func (m *MockPortfolioService) Portfolio(ctx context.Context, userID string) (*domain.Portfolio, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Portfolio), args.Error(1)
}
func (m *MockPortfolioService) LastTradePrice(ctx context.Context, curriculumID string) (*int64, error) {
	args := m.Called(ctx, curriculumID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int64), args.Error(1)
}
func (m *MockPortfolioService) LiquidationValue(ctx context.Context, curriculumID string, shares int64) (int64, error) {
	args := m.Called(ctx, curriculumID, shares)
	return args.Get(0).(int64), args.Error(1)
}

var _ portssvc.PortfolioSvcFacade = (*MockPortfolioService)(nil)
