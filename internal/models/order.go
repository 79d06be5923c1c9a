package models

import "time"

// MarketOrder is a row of the market_orders table.
type MarketOrder struct {
	OrderID           string `db:"order_id"`
	CurriculumID      string `db:"curriculum_id"`
	UserID            string `db:"user_id"`
	Side              string `db:"side"`
	Status            string `db:"status"`
	LimitPrice        int64  `db:"limit_price"`
	Quantity          int64  `db:"quantity"`
	RemainingQuantity int64  `db:"remaining_quantity"`
	LockedCurrency    int64  `db:"locked_currency"`
	LockedShares      int64  `db:"locked_shares"`
	AuditFields
}

// MarketTrade is a row of the market_trades table.
type MarketTrade struct {
	TradeID             string    `db:"trade_id"`
	CurriculumID        string    `db:"curriculum_id"`
	BuyOrderID          string    `db:"buy_order_id"`
	SellOrderID         string    `db:"sell_order_id"`
	BuyerUserID         string    `db:"buyer_user_id"`
	SellerUserID        string    `db:"seller_user_id"`
	ExecutionPrice      int64     `db:"execution_price"`
	Quantity            int64     `db:"quantity"`
	LedgerTransactionID string    `db:"ledger_transaction_id"`
	CreatedAt           time.Time `db:"created_at"`
}
