package services

import (
	"context"
	"strconv"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/utils"
)

const (
	publicLedgerSalt    = "public-ledger-v1:"
	defaultPublicLimit  = 100
	actorYou            = "you"
	actorMasked         = "masked"
	viewerWalletDisplay = "your_wallet"
)

type publicLedgerService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountReader
	assetRepo   portsrepo.AssetReader
}

// NewPublicLedgerService creates the masked ledger view.
func NewPublicLedgerService(
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	assetRepo portsrepo.AssetReader,
) portssvc.PublicLedgerSvcFacade {
	return &publicLedgerService{ledgerRepo: ledgerRepo, accountRepo: accountRepo, assetRepo: assetRepo}
}

var _ portssvc.PublicLedgerSvcFacade = (*publicLedgerService)(nil)

// MaskAccountID returns a stable pseudonym for a user wallet.
func MaskAccountID(accountID string) string {
	return "acct_" + utils.HashIdentifier(publicLedgerSalt, accountID)[:6]
}

func (s *publicLedgerService) PublicLedger(ctx context.Context, viewerUserID string, filter domain.PublicLedgerFilter) ([]domain.PublicTransaction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPublicLimit
	}
	txFilter := domain.TransactionFilter{
		Limit:       limit,
		EventType:   filter.EventType,
		ContextType: filter.ContextType,
		Before:      filter.Before,
	}
	if filter.OnlyMine {
		if viewerUserID == "" {
			return []domain.PublicTransaction{}, nil
		}
		txFilter.ActorUserID = &viewerUserID
	}

	var assetFilter string
	if filter.AssetCode != "" {
		asset, err := s.assetRepo.FindAssetByCode(ctx, filter.AssetCode)
		if apperrors.IsNotFound(err) {
			return []domain.PublicTransaction{}, nil
		}
		if err != nil {
			return nil, err
		}
		assetFilter = asset.AssetID
		txFilter.AssetID = asset.AssetID
	}

	txns, err := s.ledgerRepo.ListTransactions(ctx, txFilter)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return []domain.PublicTransaction{}, nil
	}
	txnIDs := make([]string, 0, len(txns))
	for _, t := range txns {
		txnIDs = append(txnIDs, t.TransactionID)
	}
	entries, err := s.ledgerRepo.ListEntriesByTransactionIDs(ctx, txnIDs)
	if err != nil {
		return nil, err
	}

	byTxn := make(map[string][]domain.Entry, len(txns))
	accountSet := make(map[string]struct{})
	assetSet := make(map[string]struct{})
	for _, e := range entries {
		if assetFilter != "" && e.AssetID != assetFilter {
			continue
		}
		byTxn[e.TransactionID] = append(byTxn[e.TransactionID], e)
		accountSet[e.AccountID] = struct{}{}
		assetSet[e.AssetID] = struct{}{}
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, setKeys(accountSet))
	if err != nil {
		return nil, err
	}
	assets, err := s.assetRepo.FindAssetsByIDs(ctx, setKeys(assetSet))
	if err != nil {
		return nil, err
	}

	out := make([]domain.PublicTransaction, 0, len(txns))
	for _, t := range txns {
		txnEntries := byTxn[t.TransactionID]
		if len(txnEntries) == 0 {
			continue
		}
		pub := domain.PublicTransaction{
			TransactionID: t.TransactionID,
			CreatedAt:     t.CreatedAt,
			EventType:     t.EventType,
			ContextType:   t.ContextType,
			ContextID:     t.ContextID,
			Actor:         actorMasked,
			Entries:       make([]domain.PublicEntry, 0, len(txnEntries)),
		}
		if viewerUserID != "" && t.ActorUserID != nil && *t.ActorUserID == viewerUserID {
			pub.Actor = actorYou
		}
		for _, e := range txnEntries {
			asset := assets[e.AssetID]
			pub.Entries = append(pub.Entries, domain.PublicEntry{
				Account:      displayAccount(accounts[e.AccountID], e.AccountID, viewerUserID),
				Asset:        asset.Code,
				DeltaTicks:   e.Delta,
				DeltaDisplay: displayDelta(asset, e.Delta),
				EntryType:    e.EntryType,
			})
		}
		out = append(out, pub)
	}
	return out, nil
}

func displayAccount(account domain.Account, accountID, viewerUserID string) string {
	if account.AccountID == "" {
		return MaskAccountID(accountID)
	}
	if account.IsSystem() {
		return string(account.AccountType)
	}
	if viewerUserID != "" && *account.OwnerUserID == viewerUserID {
		return viewerWalletDisplay
	}
	return MaskAccountID(accountID)
}

func displayDelta(asset domain.Asset, delta int64) string {
	if asset.AssetType == domain.AssetTypeCurrency {
		return utils.FormatTicks(delta, asset.Scale)
	}
	return strconv.FormatInt(delta, 10)
}

func setKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
