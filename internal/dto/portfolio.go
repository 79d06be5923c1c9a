package dto

import "github.com/SscSPs/access_exchange/internal/core/domain"

// HoldingResponse is one curriculum position.
type HoldingResponse struct {
	CurriculumID            string `json:"curriculumID"`
	AssetCode               string `json:"assetCode"`
	Shares                  int64  `json:"shares"`
	LastPrice               *int64 `json:"lastPrice,omitempty"`
	LiquidationValue        int64  `json:"liquidationValue"`
	LiquidationValueDisplay string `json:"liquidationValueDisplay"`
}

// PortfolioResponse values a user's cash and shares.
type PortfolioResponse struct {
	UserID                       string            `json:"userID"`
	CashTicks                    int64             `json:"cashTicks"`
	CashDisplay                  string            `json:"cashDisplay"`
	Holdings                     []HoldingResponse `json:"holdings"`
	TotalLiquidationValue        int64             `json:"totalLiquidationValue"`
	TotalLiquidationValueDisplay string            `json:"totalLiquidationValueDisplay"`
}

// ToPortfolioResponse converts a domain.Portfolio to PortfolioResponse DTO.
func ToPortfolioResponse(p *domain.Portfolio) PortfolioResponse {
	holdings := make([]HoldingResponse, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		holdings = append(holdings, HoldingResponse{
			CurriculumID:            h.CurriculumID,
			AssetCode:               h.AssetCode,
			Shares:                  h.Shares,
			LastPrice:               h.LastPrice,
			LiquidationValue:        h.LiquidationValue,
			LiquidationValueDisplay: FormatCurrency(h.LiquidationValue),
		})
	}
	return PortfolioResponse{
		UserID:                       p.UserID,
		CashTicks:                    p.CashTicks,
		CashDisplay:                  FormatCurrency(p.CashTicks),
		Holdings:                     holdings,
		TotalLiquidationValue:        p.TotalLiquidationValue,
		TotalLiquidationValueDisplay: FormatCurrency(p.TotalLiquidationValue),
	}
}

// LiquidationParams is the share count to value against the bids.
type LiquidationParams struct {
	Shares int64 `form:"shares" binding:"required,gt=0"`
}

// LiquidationResponse reports what selling Shares into the book would fetch now.
type LiquidationResponse struct {
	CurriculumID string `json:"curriculumID"`
	Shares       int64  `json:"shares"`
	LastPrice    *int64 `json:"lastPrice,omitempty"`
	ValueTicks   int64  `json:"valueTicks"`
	ValueDisplay string `json:"valueDisplay"`
}
