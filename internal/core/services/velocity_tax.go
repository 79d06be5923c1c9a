package services

import (
	"context"
	"math"
	"time"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/platform/config"
	"github.com/shopspring/decimal"
)

// velocityTax surcharges currency leaving a user wallet once the wallet has spent
// more than the threshold in the current UTC day.
type velocityTax struct {
	policy   config.LedgerPolicy
	registry portssvc.RegistrySvcFacade
	exempt   map[domain.EntryType]struct{}
}

// velocityPlan carries what was resolved before balance locks were taken.
type velocityPlan struct {
	currencyAssetID string
	treasury        domain.Account
}

func (p *velocityPlan) treasuryKey() domain.BalanceKey {
	return domain.BalanceKey{AccountID: p.treasury.AccountID, AssetID: p.currencyAssetID}
}

func newVelocityTax(policy config.LedgerPolicy, registry portssvc.RegistrySvcFacade) *velocityTax {
	exempt := make(map[domain.EntryType]struct{}, len(policy.VelocityTaxExemptEntryTypes))
	for _, t := range policy.VelocityTaxExemptEntryTypes {
		exempt[t] = struct{}{}
	}
	return &velocityTax{policy: policy, registry: registry, exempt: exempt}
}

func (v *velocityTax) enabled() bool {
	return v.policy.VelocityTaxEnabled && v.policy.VelocityTaxRate.IsPositive()
}

func (v *velocityTax) taxable(e domain.EntrySpec, accounts map[string]domain.Account, currencyAssetID string) bool {
	if e.AssetID != currencyAssetID || e.Delta >= 0 {
		return false
	}
	if _, ok := v.exempt[e.EntryType]; ok {
		return false
	}
	return accounts[e.AccountID].IsUserWallet()
}

// prepare returns nil when no entry of the posting can attract the surcharge.
func (v *velocityTax) prepare(ctx context.Context, accounts map[string]domain.Account, entries []domain.EntrySpec) (*velocityPlan, error) {
	if !v.enabled() {
		return nil, nil
	}
	currency, err := v.registry.CurrencyAsset(ctx)
	if err != nil {
		return nil, err
	}
	candidate := false
	for _, e := range entries {
		if v.taxable(e, accounts, currency.AssetID) {
			candidate = true
			break
		}
	}
	if !candidate {
		return nil, nil
	}
	treasury, err := v.registry.SystemAccount(ctx, domain.AccountTypeTreasury)
	if err != nil {
		return nil, err
	}
	return &velocityPlan{currencyAssetID: currency.AssetID, treasury: *treasury}, nil
}

// apply computes the surcharge entries. It must run after the wallet balance rows are locked,
// so the day's committed outflow cannot change underneath it.
// Outflow earlier in the same posting counts toward the threshold of later entries.
func (v *velocityTax) apply(
	ctx context.Context,
	tx portsrepo.LedgerTxSupport,
	plan *velocityPlan,
	accounts map[string]domain.Account,
	entries []domain.EntrySpec,
	now time.Time,
) ([]domain.EntrySpec, error) {
	dayStart, dayEnd := domain.UTCDayBounds(now)
	spent := make(map[string]int64)
	loaded := make(map[string]bool)

	var out []domain.EntrySpec
	for _, e := range entries {
		if !v.taxable(e, accounts, plan.currencyAssetID) {
			continue
		}
		if !loaded[e.AccountID] {
			before, err := tx.SumOutgoing(ctx, e.Key(), dayStart, dayEnd, v.policy.VelocityTaxExemptEntryTypes)
			if err != nil {
				return nil, err
			}
			spent[e.AccountID] = before
			loaded[e.AccountID] = true
		}
		amount := -e.Delta
		tax := v.marginalTax(spent[e.AccountID], amount)
		if next, ok := domain.AddDelta(spent[e.AccountID], amount); ok {
			spent[e.AccountID] = next
		} else {
			spent[e.AccountID] = math.MaxInt64
		}
		if tax <= 0 {
			continue
		}
		out = append(out,
			domain.EntrySpec{AccountID: e.AccountID, AssetID: plan.currencyAssetID, Delta: -tax, EntryType: domain.EntryTypeVelocityTax},
			domain.EntrySpec{AccountID: plan.treasury.AccountID, AssetID: plan.currencyAssetID, Delta: tax, EntryType: domain.EntryTypeVelocityTax},
		)
	}
	return out, nil
}

// marginalTax taxes only the part of amount above the threshold, truncated to whole ticks.
func (v *velocityTax) marginalTax(spentBefore, amount int64) int64 {
	total, ok := domain.AddDelta(spentBefore, amount)
	taxable := amount
	if ok {
		over := total - v.policy.VelocityTaxThresholdTicks
		if over <= 0 {
			return 0
		}
		taxable = min(over, amount)
	}
	return decimal.NewFromInt(taxable).Mul(v.policy.VelocityTaxRate).IntPart()
}
