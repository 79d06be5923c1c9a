package domain

import "time"

// Trade is an executed match between a bid and an ask.
type Trade struct {
	TradeID             string    `json:"tradeID"`
	CurriculumID        string    `json:"curriculumID"`
	BuyOrderID          string    `json:"buyOrderID"`
	SellOrderID         string    `json:"sellOrderID"`
	BuyerUserID         string    `json:"buyerUserID"`
	SellerUserID        string    `json:"sellerUserID"`
	ExecutionPrice      int64     `json:"executionPrice"`
	Quantity            int64     `json:"quantity"`
	LedgerTransactionID string    `json:"ledgerTransactionID"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Notional is the currency value of the trade in ticks.
func (t Trade) Notional() int64 {
	return t.ExecutionPrice * t.Quantity
}

// DrainResult reports the trades produced by one drain pass.
// Exhausted is true when the pass stopped at its iteration bound with the book possibly still crossed.
type DrainResult struct {
	CurriculumID string  `json:"curriculumID"`
	Trades       []Trade `json:"trades"`
	Exhausted    bool    `json:"exhausted"`
}
