package domain

import "time"

// OrderSide is bid (buy shares with currency) or ask (sell shares for currency).
type OrderSide string

const (
	OrderSideBid OrderSide = "bid"
	OrderSideAsk OrderSide = "ask"
)

// IsValid reports whether s is bid or ask.
func (s OrderSide) IsValid() bool {
	return s == OrderSideBid || s == OrderSideAsk
}

// OrderStatus tracks an order through its lifecycle. filled and canceled are terminal.
type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "open"
	OrderStatusPartial  OrderStatus = "partial"
	OrderStatusFilled   OrderStatus = "filled"
	OrderStatusCanceled OrderStatus = "canceled"
)

// Order is a resting limit order on a curriculum's share book.
// LimitPrice is in currency ticks per share. LockedCurrency and LockedShares hold what is still escrowed.
type Order struct {
	OrderID           string      `json:"orderID"`
	CurriculumID      string      `json:"curriculumID"`
	UserID            string      `json:"userID"`
	Side              OrderSide   `json:"side"`
	Status            OrderStatus `json:"status"`
	LimitPrice        int64       `json:"limitPrice"`
	Quantity          int64       `json:"quantity"`
	RemainingQuantity int64       `json:"remainingQuantity"`
	LockedCurrency    int64       `json:"lockedCurrency"`
	LockedShares      int64       `json:"lockedShares"`
	AuditFields
}

// IsActive reports whether the order can still trade or be canceled.
func (o Order) IsActive() bool {
	return (o.Status == OrderStatusOpen || o.Status == OrderStatusPartial) && o.RemainingQuantity > 0
}

// Fill takes qty off the order and releases the matching escrow bookkeeping.
func (o *Order) Fill(qty int64, at time.Time) {
	o.RemainingQuantity -= qty
	switch o.Side {
	case OrderSideBid:
		o.LockedCurrency -= qty * o.LimitPrice
	case OrderSideAsk:
		o.LockedShares -= qty
	}
	if o.RemainingQuantity == 0 {
		o.Status = OrderStatusFilled
	} else {
		o.Status = OrderStatusPartial
	}
	o.LastUpdatedAt = at
}

// Cancel marks the order canceled and clears its escrow bookkeeping.
func (o *Order) Cancel(at time.Time) {
	o.Status = OrderStatusCanceled
	o.LockedCurrency = 0
	o.LockedShares = 0
	o.LastUpdatedAt = at
}

// Precedes reports whether o has time priority over other: earlier creation, then lower id.
func (o Order) Precedes(other Order) bool {
	if !o.CreatedAt.Equal(other.CreatedAt) {
		return o.CreatedAt.Before(other.CreatedAt)
	}
	return o.OrderID < other.OrderID
}

// BetterThan reports whether o ranks ahead of other on the same side of the book.
func (o Order) BetterThan(other Order) bool {
	if o.LimitPrice != other.LimitPrice {
		if o.Side == OrderSideBid {
			return o.LimitPrice > other.LimitPrice
		}
		return o.LimitPrice < other.LimitPrice
	}
	return o.Precedes(other)
}

// OrderBook is a snapshot of the active orders of one curriculum, each side best first.
type OrderBook struct {
	CurriculumID string  `json:"curriculumID"`
	Bids         []Order `json:"bids"`
	Asks         []Order `json:"asks"`
}
