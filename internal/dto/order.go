package dto

import (
	"time"

	"github.com/SscSPs/access_exchange/internal/core/domain"
)

// PlaceOrderRequest defines the data needed to place a limit order.
type PlaceOrderRequest struct {
	Side       domain.OrderSide `json:"side" binding:"required,order_side"`
	Quantity   int64            `json:"quantity" binding:"required,gt=0"`
	LimitPrice int64            `json:"limitPrice" binding:"required,gt=0"`
}

// OrderResponse defines the data returned for an order.
type OrderResponse struct {
	OrderID           string             `json:"orderID"`
	CurriculumID      string             `json:"curriculumID"`
	UserID            string             `json:"userID"`
	Side              domain.OrderSide   `json:"side"`
	Status            domain.OrderStatus `json:"status"`
	LimitPrice        int64              `json:"limitPrice"`
	LimitPriceDisplay string             `json:"limitPriceDisplay"`
	Quantity          int64              `json:"quantity"`
	RemainingQuantity int64              `json:"remainingQuantity"`
	LockedCurrency    int64              `json:"lockedCurrency"`
	LockedShares      int64              `json:"lockedShares"`
	CreatedAt         time.Time          `json:"createdAt"`
	LastUpdatedAt     time.Time          `json:"lastUpdatedAt"`
}

// ToOrderResponse converts a domain.Order to OrderResponse DTO.
func ToOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		OrderID:           o.OrderID,
		CurriculumID:      o.CurriculumID,
		UserID:            o.UserID,
		Side:              o.Side,
		Status:            o.Status,
		LimitPrice:        o.LimitPrice,
		LimitPriceDisplay: FormatCurrency(o.LimitPrice),
		Quantity:          o.Quantity,
		RemainingQuantity: o.RemainingQuantity,
		LockedCurrency:    o.LockedCurrency,
		LockedShares:      o.LockedShares,
		CreatedAt:         o.CreatedAt,
		LastUpdatedAt:     o.LastUpdatedAt,
	}
}

// ToOrderResponses converts a slice of orders.
func ToOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return out
}

// TradeResponse defines the data returned for a trade.
type TradeResponse struct {
	TradeID             string    `json:"tradeID"`
	CurriculumID        string    `json:"curriculumID"`
	BuyOrderID          string    `json:"buyOrderID"`
	SellOrderID         string    `json:"sellOrderID"`
	ExecutionPrice      int64     `json:"executionPrice"`
	Quantity            int64     `json:"quantity"`
	NotionalDisplay     string    `json:"notionalDisplay"`
	LedgerTransactionID string    `json:"ledgerTransactionID"`
	CreatedAt           time.Time `json:"createdAt"`
}

// ToTradeResponses converts trades; counterparties are not exposed.
func ToTradeResponses(trades []domain.Trade) []TradeResponse {
	out := make([]TradeResponse, 0, len(trades))
	for _, t := range trades {
		out = append(out, TradeResponse{
			TradeID:             t.TradeID,
			CurriculumID:        t.CurriculumID,
			BuyOrderID:          t.BuyOrderID,
			SellOrderID:         t.SellOrderID,
			ExecutionPrice:      t.ExecutionPrice,
			Quantity:            t.Quantity,
			NotionalDisplay:     FormatCurrency(t.Notional()),
			LedgerTransactionID: t.LedgerTransactionID,
			CreatedAt:           t.CreatedAt,
		})
	}
	return out
}

// OrderBookResponse is the active book of one curriculum.
type OrderBookResponse struct {
	CurriculumID string          `json:"curriculumID"`
	Bids         []OrderResponse `json:"bids"`
	Asks         []OrderResponse `json:"asks"`
}

// DrainResponse reports a drain pass.
type DrainResponse struct {
	CurriculumID string          `json:"curriculumID"`
	Trades       []TradeResponse `json:"trades"`
	Exhausted    bool            `json:"exhausted"`
}

// ListParams is a simple limit query parameter.
type ListParams struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// LimitOrDefault returns the requested limit or def.
func (p ListParams) LimitOrDefault(def int) int {
	if p.Limit == 0 {
		return def
	}
	return p.Limit
}
