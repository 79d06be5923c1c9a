package mapping

import (
	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/SscSPs/access_exchange/internal/models"
)

// ToModelOrder converts a domain Order to a model MarketOrder
func ToModelOrder(d domain.Order) models.MarketOrder {
	return models.MarketOrder{
		OrderID:           d.OrderID,
		CurriculumID:      d.CurriculumID,
		UserID:            d.UserID,
		Side:              string(d.Side),
		Status:            string(d.Status),
		LimitPrice:        d.LimitPrice,
		Quantity:          d.Quantity,
		RemainingQuantity: d.RemainingQuantity,
		LockedCurrency:    d.LockedCurrency,
		LockedShares:      d.LockedShares,
		AuditFields:       models.AuditFields(d.AuditFields),
	}
}

// ToDomainOrder converts a model MarketOrder to a domain Order
func ToDomainOrder(m models.MarketOrder) domain.Order {
	return domain.Order{
		OrderID:           m.OrderID,
		CurriculumID:      m.CurriculumID,
		UserID:            m.UserID,
		Side:              domain.OrderSide(m.Side),
		Status:            domain.OrderStatus(m.Status),
		LimitPrice:        m.LimitPrice,
		Quantity:          m.Quantity,
		RemainingQuantity: m.RemainingQuantity,
		LockedCurrency:    m.LockedCurrency,
		LockedShares:      m.LockedShares,
		AuditFields:       domain.AuditFields(m.AuditFields),
	}
}

// ToModelTrade converts a domain Trade to a model MarketTrade
func ToModelTrade(d domain.Trade) models.MarketTrade {
	return models.MarketTrade{
		TradeID:             d.TradeID,
		CurriculumID:        d.CurriculumID,
		BuyOrderID:          d.BuyOrderID,
		SellOrderID:         d.SellOrderID,
		BuyerUserID:         d.BuyerUserID,
		SellerUserID:        d.SellerUserID,
		ExecutionPrice:      d.ExecutionPrice,
		Quantity:            d.Quantity,
		LedgerTransactionID: d.LedgerTransactionID,
		CreatedAt:           d.CreatedAt,
	}
}

// ToDomainTrade converts a model MarketTrade to a domain Trade
func ToDomainTrade(m models.MarketTrade) domain.Trade {
	return domain.Trade{
		TradeID:             m.TradeID,
		CurriculumID:        m.CurriculumID,
		BuyOrderID:          m.BuyOrderID,
		SellOrderID:         m.SellOrderID,
		BuyerUserID:         m.BuyerUserID,
		SellerUserID:        m.SellerUserID,
		ExecutionPrice:      m.ExecutionPrice,
		Quantity:            m.Quantity,
		LedgerTransactionID: m.LedgerTransactionID,
		CreatedAt:           m.CreatedAt,
	}
}
