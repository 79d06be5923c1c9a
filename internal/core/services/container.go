package services

import (
	"github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	"github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/events"
	"github.com/SscSPs/access_exchange/internal/platform/config"
)

// NewServiceContainer creates a new service container with all services initialized.
// canceller receives daily tax revocations; publisher receives post-commit events.
func NewServiceContainer(
	repos repositories.RepositoryProvider,
	cfg *config.Config,
	publisher events.Publisher,
	canceller services.SubscriptionCanceller,
) *services.ServiceContainer {
	registry := NewRegistryService(repos.AssetRepo, repos.AccountRepo)
	ledger := NewLedgerService(repos.LedgerRepo, repos.AccountRepo, registry, cfg.Ledger, publisher)

	return &services.ServiceContainer{
		Registry: registry,
		Ledger:   ledger,
		Tax: NewDailyTaxService(
			ledger, registry, repos.AccountRepo,
			NewRepositoryMultiplierProvider(repos.MultiplierRepo),
			canceller, cfg.Ledger,
		),
		Exchange:     NewExchangeService(repos.OrderRepo, ledger, registry, cfg.Exchange, publisher),
		Rewards:      NewRewardService(ledger, registry, repos.LedgerRepo, repos.AccountRepo, cfg.Rewards),
		Portfolio:    NewPortfolioService(registry, repos.LedgerRepo, repos.AssetRepo, repos.OrderRepo),
		PublicLedger: NewPublicLedgerService(repos.LedgerRepo, repos.AccountRepo, repos.AssetRepo),
	}
}
