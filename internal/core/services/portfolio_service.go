package services

import (
	"context"
	"sort"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
)

type portfolioService struct {
	BaseService
	registry  portssvc.RegistrySvcFacade
	balances  portsrepo.BalanceReader
	assetRepo portsrepo.AssetReader
	orderRepo portsrepo.OrderReader
}

// NewPortfolioService creates a read-only valuation service.
func NewPortfolioService(
	registry portssvc.RegistrySvcFacade,
	balances portsrepo.BalanceReader,
	assetRepo portsrepo.AssetReader,
	orderRepo portsrepo.OrderReader,
) portssvc.PortfolioSvcFacade {
	return &portfolioService{
		registry:  registry,
		balances:  balances,
		assetRepo: assetRepo,
		orderRepo: orderRepo,
	}
}

var _ portssvc.PortfolioSvcFacade = (*portfolioService)(nil)

func (s *portfolioService) Portfolio(ctx context.Context, userID string) (*domain.Portfolio, error) {
	wallet, err := s.registry.UserWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	balances, err := s.balances.ListBalancesByAccount(ctx, wallet.AccountID)
	if err != nil {
		return nil, err
	}
	assetIDs := make([]string, 0, len(balances))
	for _, b := range balances {
		assetIDs = append(assetIDs, b.AssetID)
	}
	assets, err := s.assetRepo.FindAssetsByIDs(ctx, assetIDs)
	if err != nil {
		return nil, err
	}

	portfolio := &domain.Portfolio{UserID: userID, Holdings: []domain.Holding{}}
	for _, b := range balances {
		asset, ok := assets[b.AssetID]
		if !ok {
			continue
		}
		if asset.AssetType == domain.AssetTypeCurrency {
			portfolio.CashTicks += b.Balance
			continue
		}
		if !asset.IsShare() || b.Balance <= 0 || asset.CurriculumID == nil {
			continue
		}
		curriculumID := *asset.CurriculumID
		last, err := s.LastTradePrice(ctx, curriculumID)
		if err != nil {
			return nil, err
		}
		value, err := s.LiquidationValue(ctx, curriculumID, b.Balance)
		if err != nil {
			return nil, err
		}
		portfolio.Holdings = append(portfolio.Holdings, domain.Holding{
			CurriculumID:     curriculumID,
			AssetCode:        asset.Code,
			Shares:           b.Balance,
			LastPrice:        last,
			LiquidationValue: value,
		})
		portfolio.TotalLiquidationValue += value
	}
	sort.Slice(portfolio.Holdings, func(i, j int) bool {
		return portfolio.Holdings[i].CurriculumID < portfolio.Holdings[j].CurriculumID
	})
	return portfolio, nil
}

// LastTradePrice returns nil when the curriculum has never traded.
func (s *portfolioService) LastTradePrice(ctx context.Context, curriculumID string) (*int64, error) {
	trades, err := s.orderRepo.ListTrades(ctx, curriculumID, 1)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, nil
	}
	price := trades[0].ExecutionPrice
	return &price, nil
}

// LiquidationValue is what selling shares into the current bids would fetch, best bid first.
// Shares beyond the book's depth are worth nothing.
func (s *portfolioService) LiquidationValue(ctx context.Context, curriculumID string, shares int64) (int64, error) {
	if shares <= 0 {
		return 0, nil
	}
	bids, err := s.orderRepo.ListActiveOrders(ctx, curriculumID, domain.OrderSideBid)
	if err != nil {
		return 0, err
	}
	var value int64
	remaining := shares
	for _, bid := range bids {
		if remaining == 0 {
			break
		}
		qty := min(remaining, bid.RemainingQuantity)
		value += qty * bid.LimitPrice
		remaining -= qty
	}
	return value, nil
}
