package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/SscSPs/access_exchange/internal/handlers"
	"github.com/SscSPs/access_exchange/internal/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ExchangeHandlerTestSuite struct {
	handlerSuite
	mockExchange *MockExchangeService
}

func (suite *ExchangeHandlerTestSuite) SetupTest() {
	suite.handlerSuite.SetupTest()
	suite.mockExchange = new(MockExchangeService)
	handlers.RegisterExchangeRoutes(suite.v1, suite.mockExchange, nil)
}

func sampleOrder(status domain.OrderStatus, remaining int64) *domain.Order {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return &domain.Order{
		OrderID:           "ord-1",
		CurriculumID:      "cur-1",
		UserID:            testUserID,
		Side:              domain.OrderSideBid,
		Status:            status,
		LimitPrice:        120,
		Quantity:          5,
		RemainingQuantity: remaining,
		LockedCurrency:    remaining * 120,
		AuditFields:       domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
}

func (suite *ExchangeHandlerTestSuite) TestPlaceOrder_Success() {
	req := dto.PlaceOrderRequest{Side: domain.OrderSideBid, Quantity: 5, LimitPrice: 120}
	suite.mockExchange.On("PlaceOrder", mock.Anything, "cur-1", req, testUserID).
		Return(sampleOrder(domain.OrderStatusPartial, 2), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/curricula/cur-1/orders", req)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.OrderResponse
	suite.decode(w, &resp)
	suite.Equal("ord-1", resp.OrderID)
	suite.Equal(domain.OrderStatusPartial, resp.Status)
	suite.Equal(int64(2), resp.RemainingQuantity)
	suite.Equal("0.120", resp.LimitPriceDisplay)
	suite.mockExchange.AssertExpectations(suite.T())
}

func (suite *ExchangeHandlerTestSuite) TestPlaceOrder_ValidationErrors() {
	tests := []struct {
		name string
		body string
	}{
		{"unknown side", `{"side":"hold","quantity":5,"limitPrice":120}`},
		{"zero quantity", `{"side":"bid","quantity":0,"limitPrice":120}`},
		{"negative price", `{"side":"ask","quantity":1,"limitPrice":-1}`},
		{"malformed", `{"side":`},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.do(http.MethodPost, "/api/v1/curricula/cur-1/orders", tt.body)
			suite.Equal(http.StatusBadRequest, w.Code)
		})
	}
	suite.mockExchange.AssertNotCalled(suite.T(), "PlaceOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeHandlerTestSuite) TestPlaceOrder_InsufficientFunds() {
	req := dto.PlaceOrderRequest{Side: domain.OrderSideBid, Quantity: 5, LimitPrice: 120}
	suite.mockExchange.On("PlaceOrder", mock.Anything, "cur-1", req, testUserID).
		Return(nil, fmt.Errorf("%w: wallet", apperrors.ErrInsufficientFunds)).Once()

	w := suite.do(http.MethodPost, "/api/v1/curricula/cur-1/orders", req)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *ExchangeHandlerTestSuite) TestCancelOrder() {
	canceled := sampleOrder(domain.OrderStatusCanceled, 2)
	canceled.LockedCurrency = 0
	suite.mockExchange.On("CancelOrder", mock.Anything, "ord-1", testUserID).Return(canceled, nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/orders/ord-1", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.OrderResponse
	suite.decode(w, &resp)
	suite.Equal(domain.OrderStatusCanceled, resp.Status)
	suite.Zero(resp.LockedCurrency)
}

func (suite *ExchangeHandlerTestSuite) TestCancelOrder_ErrorMapping() {
	tests := []struct {
		orderID string
		err     error
		status  int
	}{
		{"ord-other", fmt.Errorf("%w: not your order", apperrors.ErrForbidden), http.StatusForbidden},
		{"ord-filled", fmt.Errorf("%w: order is filled", apperrors.ErrConflict), http.StatusConflict},
		{"ord-missing", fmt.Errorf("%w: order ord-missing", apperrors.ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.Run(tt.orderID, func() {
			suite.mockExchange.On("CancelOrder", mock.Anything, tt.orderID, testUserID).Return(nil, tt.err).Once()

			w := suite.do(http.MethodDelete, "/api/v1/orders/"+tt.orderID, nil)

			suite.Equal(tt.status, w.Code)
		})
	}
}

func (suite *ExchangeHandlerTestSuite) TestOrderBook() {
	book := &domain.OrderBook{
		CurriculumID: "cur-1",
		Bids:         []domain.Order{*sampleOrder(domain.OrderStatusOpen, 5)},
		Asks:         []domain.Order{},
	}
	suite.mockExchange.On("OrderBook", mock.Anything, "cur-1").Return(book, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/curricula/cur-1/book", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.OrderBookResponse
	suite.decode(w, &resp)
	suite.Len(resp.Bids, 1)
	suite.Empty(resp.Asks)
}

func (suite *ExchangeHandlerTestSuite) TestListTrades_DefaultLimit() {
	trades := []domain.Trade{{
		TradeID:        "trd-1",
		CurriculumID:   "cur-1",
		BuyOrderID:     "ord-1",
		SellOrderID:    "ord-2",
		BuyerUserID:    testUserID,
		SellerUserID:   "user-2",
		ExecutionPrice: 100,
		Quantity:       3,
	}}
	suite.mockExchange.On("ListTrades", mock.Anything, "cur-1", 50).Return(trades, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/curricula/cur-1/trades", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.TradeResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp, 1)
	suite.Equal("0.300", resp[0].NotionalDisplay)
	suite.NotContains(w.Body.String(), "user-2")
}

func (suite *ExchangeHandlerTestSuite) TestListMyOrders() {
	suite.mockExchange.On("ListUserOrders", mock.Anything, testUserID, 10).
		Return([]domain.Order{*sampleOrder(domain.OrderStatusOpen, 5)}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/orders?limit=10", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockExchange.AssertExpectations(suite.T())
}

func (suite *ExchangeHandlerTestSuite) TestDrain() {
	result := &domain.DrainResult{
		CurriculumID: "cur-1",
		Trades:       []domain.Trade{{TradeID: "trd-1", CurriculumID: "cur-1", ExecutionPrice: 100, Quantity: 1}},
		Exhausted:    true,
	}
	suite.mockExchange.On("Drain", mock.Anything, "cur-1").Return(result, nil).Once()

	w := suite.doService(http.MethodPost, "/api/v1/curricula/cur-1/drain", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.DrainResponse
	suite.decode(w, &resp)
	suite.True(resp.Exhausted)
	suite.Len(resp.Trades, 1)
}

func (suite *ExchangeHandlerTestSuite) TestDrain_EndUserForbidden() {
	w := suite.do(http.MethodPost, "/api/v1/curricula/cur-1/drain", nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockExchange.AssertNotCalled(suite.T(), "Drain", mock.Anything, mock.Anything)
}

func TestExchangeHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeHandlerTestSuite))
}

// RateLimitedExchangeTestSuite mounts the order routes behind a one-request-per-minute limiter.
type RateLimitedExchangeTestSuite struct {
	handlerSuite
	mockExchange *MockExchangeService
}

func (suite *RateLimitedExchangeTestSuite) SetupTest() {
	suite.handlerSuite.SetupTest()
	suite.mockExchange = new(MockExchangeService)
	lim, err := middleware.NewMemoryLimiter("1-M")
	suite.Require().NoError(err)
	handlers.RegisterExchangeRoutes(suite.v1, suite.mockExchange, nil, middleware.RateLimit(lim))
}

func (suite *RateLimitedExchangeTestSuite) TestSecondPlacementIsLimited() {
	req := dto.PlaceOrderRequest{Side: domain.OrderSideBid, Quantity: 5, LimitPrice: 120}
	suite.mockExchange.On("PlaceOrder", mock.Anything, "cur-1", req, testUserID).
		Return(sampleOrder(domain.OrderStatusOpen, 5), nil).Once()

	first := suite.do(http.MethodPost, "/api/v1/curricula/cur-1/orders", req)
	second := suite.do(http.MethodPost, "/api/v1/curricula/cur-1/orders", req)

	suite.Equal(http.StatusCreated, first.Code)
	suite.Equal(http.StatusTooManyRequests, second.Code)
	suite.mockExchange.AssertNumberOfCalls(suite.T(), "PlaceOrder", 1)
}

func (suite *RateLimitedExchangeTestSuite) TestReadsAreNotLimited() {
	suite.mockExchange.On("GetOrder", mock.Anything, "ord-1").Return(sampleOrder(domain.OrderStatusOpen, 5), nil).Times(3)

	for i := 0; i < 3; i++ {
		w := suite.do(http.MethodGet, "/api/v1/orders/ord-1", nil)
		suite.Equal(http.StatusOK, w.Code)
	}
}

func TestRateLimitedExchangeTestSuite(t *testing.T) {
	suite.Run(t, new(RateLimitedExchangeTestSuite))
}
