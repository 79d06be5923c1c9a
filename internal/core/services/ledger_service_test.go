package services_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	"github.com/SscSPs/access_exchange/internal/events"
	"github.com/SscSPs/access_exchange/internal/platform/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	economySuite
}

func (s *LedgerServiceTestSuite) publishedOn(topic string) int {
	n := 0
	for _, c := range s.publisher.Calls {
		if c.Method == "Publish" && c.Arguments.String(1) == topic {
			n++
		}
	}
	return n
}

func (s *LedgerServiceTestSuite) entriesOf(txnID string) []domain.Entry {
	var out []domain.Entry
	for _, e := range s.store.Entries() {
		if e.TransactionID == txnID {
			out = append(out, e)
		}
	}
	return out
}

func (s *LedgerServiceTestSuite) TestPost_TransfersAndPublishes() {
	s.fund("alice", an(50))
	before := s.publishedOn(events.TopicLedgerTransactions)

	txnID, err := s.transfer("alice", "bob", an(20))

	s.Require().NoError(err)
	s.NotEmpty(txnID)
	s.Equal(an(30), s.cash("alice"))
	s.Equal(an(20), s.cash("bob"))
	s.Equal(before+1, s.publishedOn(events.TopicLedgerTransactions))
}

func (s *LedgerServiceTestSuite) TestPost_RejectsInvalidEntrySets() {
	s.fund("alice", an(50))
	currency := s.currency()
	alice, bob := s.wallet("alice"), s.wallet("bob")
	treasury, pool := s.system(domain.AccountTypeTreasury), s.system(domain.AccountTypeRewardsPool)
	treasuryBefore := s.balance(treasury, currency)

	cases := map[string][]domain.EntrySpec{
		"empty": nil,
		"unbalanced": {
			{AccountID: alice.AccountID, AssetID: currency.AssetID, Delta: -an(10), EntryType: domain.EntryTypePrincipal},
			{AccountID: bob.AccountID, AssetID: currency.AssetID, Delta: an(5), EntryType: domain.EntryTypePrincipal},
		},
		"zero delta": {
			{AccountID: alice.AccountID, AssetID: currency.AssetID, Delta: 0, EntryType: domain.EntryTypePrincipal},
		},
		"missing account": {
			{AssetID: currency.AssetID, Delta: -1, EntryType: domain.EntryTypePrincipal},
			{AccountID: bob.AccountID, AssetID: currency.AssetID, Delta: 1, EntryType: domain.EntryTypePrincipal},
		},
		"sum wraps to zero": {
			{AccountID: treasury.AccountID, AssetID: currency.AssetID, Delta: math.MaxInt64, EntryType: domain.EntryTypePrincipal},
			{AccountID: pool.AccountID, AssetID: currency.AssetID, Delta: math.MaxInt64, EntryType: domain.EntryTypePrincipal},
			{AccountID: alice.AccountID, AssetID: currency.AssetID, Delta: 2, EntryType: domain.EntryTypePrincipal},
		},
		"min delta": {
			{AccountID: treasury.AccountID, AssetID: currency.AssetID, Delta: math.MinInt64, EntryType: domain.EntryTypePrincipal},
			{AccountID: pool.AccountID, AssetID: currency.AssetID, Delta: math.MaxInt64, EntryType: domain.EntryTypePrincipal},
			{AccountID: bob.AccountID, AssetID: currency.AssetID, Delta: 1, EntryType: domain.EntryTypePrincipal},
		},
	}
	for name, entries := range cases {
		s.Run(name, func() {
			_, err := s.svc.Ledger.Post(s.ctx, domain.PostRequest{
				EventType:      "transfer",
				IdempotencyKey: "invalid:" + name,
				Entries:        entries,
			})
			s.ErrorIs(err, apperrors.ErrInvalidEntrySet)
			_, err = s.svc.Ledger.FindTransaction(s.ctx, "invalid:"+name)
			s.ErrorIs(err, apperrors.ErrNotFound)
		})
	}
	s.Equal(an(50), s.cash("alice"))
	s.Equal(int64(0), s.cash("bob"))
	s.Equal(treasuryBefore, s.balance(treasury, currency))
	s.Equal(int64(0), s.balance(pool, currency))
}

func (s *LedgerServiceTestSuite) TestPost_RejectsBalanceOverflow() {
	currency := s.currency()
	treasury, pool := s.system(domain.AccountTypeTreasury), s.system(domain.AccountTypeRewardsPool)
	seed := func(key string, delta int64) error {
		_, err := s.svc.Ledger.Post(s.ctx, domain.PostRequest{
			EventType:      "test_funding",
			IdempotencyKey: key,
			Entries: []domain.EntrySpec{
				{AccountID: treasury.AccountID, AssetID: currency.AssetID, Delta: -delta, EntryType: domain.EntryTypePrincipal},
				{AccountID: pool.AccountID, AssetID: currency.AssetID, Delta: delta, EntryType: domain.EntryTypePrincipal},
			},
		})
		return err
	}
	s.Require().NoError(seed("pool:max", math.MaxInt64))
	treasuryBefore := s.balance(treasury, currency)

	err := seed("pool:one-more", 1)
	s.ErrorIs(err, apperrors.ErrInvalidEntrySet)
	s.Equal(int64(math.MaxInt64), s.balance(pool, currency))
	s.Equal(treasuryBefore, s.balance(treasury, currency))
	_, err = s.svc.Ledger.FindTransaction(s.ctx, "pool:one-more")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestPost_CurriculumWalletNeverOverdraws() {
	currency := s.currency()
	pot, err := s.svc.Registry.CurriculumWallet(s.ctx, curriculum)
	s.Require().NoError(err)
	treasury := s.system(domain.AccountTypeTreasury)
	_, err = s.svc.Ledger.Post(s.ctx, domain.PostRequest{
		EventType:      "test_funding",
		IdempotencyKey: "pot:fund",
		Entries: []domain.EntrySpec{
			{AccountID: treasury.AccountID, AssetID: currency.AssetID, Delta: -100, EntryType: domain.EntryTypePrincipal},
			{AccountID: pot.AccountID, AssetID: currency.AssetID, Delta: 100, EntryType: domain.EntryTypePrincipal},
		},
	})
	s.Require().NoError(err)

	_, err = s.svc.Ledger.Post(s.ctx, domain.PostRequest{
		EventType:      "curriculum_payout",
		IdempotencyKey: "pot:overdraw",
		AllowOverdraft: true,
		Entries: []domain.EntrySpec{
			{AccountID: pot.AccountID, AssetID: currency.AssetID, Delta: -150, EntryType: domain.EntryTypePayout},
			{AccountID: s.wallet("alice").AccountID, AssetID: currency.AssetID, Delta: 150, EntryType: domain.EntryTypePayout},
		},
	})

	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.Equal(int64(100), s.balance(pot, currency))
	s.Zero(s.cash("alice"))
}

func (s *LedgerServiceTestSuite) TestPost_RequiresIdempotencyKey() {
	_, err := s.svc.Ledger.Post(s.ctx, domain.PostRequest{EventType: "transfer"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestPost_UnknownAccount() {
	currency := s.currency()
	_, err := s.svc.Ledger.Post(s.ctx, domain.PostRequest{
		EventType:      "transfer",
		IdempotencyKey: "unknown-account",
		Entries: []domain.EntrySpec{
			{AccountID: "nope", AssetID: currency.AssetID, Delta: -1, EntryType: domain.EntryTypePrincipal},
			{AccountID: s.wallet("bob").AccountID, AssetID: currency.AssetID, Delta: 1, EntryType: domain.EntryTypePrincipal},
		},
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestPost_IdempotentReplay() {
	s.fund("alice", an(50))
	currency := s.currency()
	req := domain.PostRequest{
		EventType:      "transfer",
		IdempotencyKey: "replay-me",
		Entries: []domain.EntrySpec{
			{AccountID: s.wallet("alice").AccountID, AssetID: currency.AssetID, Delta: -an(10), EntryType: domain.EntryTypePrincipal},
			{AccountID: s.wallet("bob").AccountID, AssetID: currency.AssetID, Delta: an(10), EntryType: domain.EntryTypePrincipal},
		},
	}
	before := s.publishedOn(events.TopicLedgerTransactions)

	first, err := s.svc.Ledger.Post(s.ctx, req)
	s.Require().NoError(err)
	second, err := s.svc.Ledger.Post(s.ctx, req)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(an(40), s.cash("alice"))
	s.Equal(an(10), s.cash("bob"))
	s.Len(s.entriesOf(first), 2)
	s.Equal(before+1, s.publishedOn(events.TopicLedgerTransactions))
}

func (s *LedgerServiceTestSuite) TestPost_InsufficientFundsWritesNothing() {
	s.fund("alice", an(5))

	_, err := s.transfer("alice", "bob", an(10))

	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.Equal(an(5), s.cash("alice"))
	s.Equal(int64(0), s.cash("bob"))
}

func (s *LedgerServiceTestSuite) TestPost_AllowOverdraft() {
	currency := s.currency()
	_, err := s.svc.Ledger.Post(s.ctx, domain.PostRequest{
		EventType:      "correction",
		IdempotencyKey: "overdraft-ok",
		Entries: []domain.EntrySpec{
			{AccountID: s.wallet("alice").AccountID, AssetID: currency.AssetID, Delta: -an(3), EntryType: domain.EntryTypePrincipal},
			{AccountID: s.wallet("bob").AccountID, AssetID: currency.AssetID, Delta: an(3), EntryType: domain.EntryTypePrincipal},
		},
		AllowOverdraft: true,
	})
	s.Require().NoError(err)
	s.Equal(-an(3), s.cash("alice"))
}

func (s *LedgerServiceTestSuite) TestSystemAccountsMayGoNegative() {
	s.fund("alice", an(7))
	s.Equal(-an(7), s.balance(s.system(domain.AccountTypeTreasury), s.currency()))
}

func (s *LedgerServiceTestSuite) TestVelocityTax_OnlyAboveThreshold() {
	s.fund("alice", an(500))
	treasury := s.system(domain.AccountTypeTreasury)

	_, err := s.transfer("alice", "bob", an(90))
	s.Require().NoError(err)
	s.Equal(an(410), s.cash("alice"))

	txnID, err := s.transfer("alice", "bob", an(20))
	s.Require().NoError(err)

	// 10 AN above the 100 AN threshold at 50%.
	s.Equal(an(500-90-20-5), s.cash("alice"))
	s.Equal(an(110), s.cash("bob"))
	s.Equal(-an(500)+an(5), s.balance(treasury, s.currency()))

	var taxed int64
	for _, e := range s.entriesOf(txnID) {
		if e.EntryType == domain.EntryTypeVelocityTax && e.AccountID == treasury.AccountID {
			taxed += e.Delta
		}
	}
	s.Equal(an(5), taxed)
}

func (s *LedgerServiceTestSuite) TestVelocityTax_CumulativeWithinOnePosting() {
	s.fund("alice", an(500))
	currency := s.currency()

	_, err := s.svc.Ledger.Post(s.ctx, domain.PostRequest{
		EventType:      "split_payment",
		IdempotencyKey: "split:" + uuid.NewString(),
		Entries: []domain.EntrySpec{
			{AccountID: s.wallet("alice").AccountID, AssetID: currency.AssetID, Delta: -an(60), EntryType: domain.EntryTypePrincipal},
			{AccountID: s.wallet("bob").AccountID, AssetID: currency.AssetID, Delta: an(60), EntryType: domain.EntryTypePrincipal},
			{AccountID: s.wallet("alice").AccountID, AssetID: currency.AssetID, Delta: -an(60), EntryType: domain.EntryTypePrincipal},
			{AccountID: s.wallet("carol").AccountID, AssetID: currency.AssetID, Delta: an(60), EntryType: domain.EntryTypePrincipal},
		},
	})
	s.Require().NoError(err)

	// The second leg starts at 60 spent, so 20 AN of it is above the threshold.
	s.Equal(an(500-120-10), s.cash("alice"))
}

func (s *LedgerServiceTestSuite) TestVelocityTax_CannotBeDodgedByOverdraft() {
	s.fund("alice", an(120))
	_, err := s.transfer("alice", "bob", an(100))
	s.Require().NoError(err)

	// 20 AN transfer costs 30 AN with the surcharge; alice only has 20.
	_, err = s.transfer("alice", "bob", an(20))
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.Equal(an(20), s.cash("alice"))
}

func (s *LedgerServiceTestSuite) TestPostInTx_RollsBackWithCaller() {
	s.fund("alice", an(50))
	currency := s.currency()
	abort := errors.New("abort")

	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		_, err := s.svc.Ledger.PostInTx(ctx, tx, domain.PostRequest{
			EventType:      "transfer",
			IdempotencyKey: "inside-caller-tx",
			Entries: []domain.EntrySpec{
				{AccountID: s.wallet("alice").AccountID, AssetID: currency.AssetID, Delta: -an(10), EntryType: domain.EntryTypePrincipal},
				{AccountID: s.wallet("bob").AccountID, AssetID: currency.AssetID, Delta: an(10), EntryType: domain.EntryTypePrincipal},
			},
		})
		s.Require().NoError(err)
		return abort
	})

	s.ErrorIs(err, abort)
	s.Equal(an(50), s.cash("alice"))
	_, err = s.svc.Ledger.FindTransaction(s.ctx, "inside-caller-tx")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestConcurrentDebitsNeverOverdraw() {
	s.fund("alice", an(10))
	currency := s.currency()
	alice, bob := s.wallet("alice"), s.wallet("bob")

	const workers = 20
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.svc.Ledger.Post(context.Background(), domain.PostRequest{
				EventType:      "transfer",
				IdempotencyKey: "concurrent:" + uuid.NewString(),
				Entries: []domain.EntrySpec{
					{AccountID: alice.AccountID, AssetID: currency.AssetID, Delta: -an(1), EntryType: domain.EntryTypePrincipal},
					{AccountID: bob.AccountID, AssetID: currency.AssetID, Delta: an(1), EntryType: domain.EntryTypePrincipal},
				},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	}
	s.Equal(10, succeeded)
	s.Equal(int64(0), s.cash("alice"))
	s.Equal(an(10), s.cash("bob"))
}

func (s *LedgerServiceTestSuite) TestConcurrentSameKeyAppliesOnce() {
	s.fund("alice", an(10))
	currency := s.currency()
	req := domain.PostRequest{
		EventType:      "transfer",
		IdempotencyKey: "same-key",
		Entries: []domain.EntrySpec{
			{AccountID: s.wallet("alice").AccountID, AssetID: currency.AssetID, Delta: -an(1), EntryType: domain.EntryTypePrincipal},
			{AccountID: s.wallet("bob").AccountID, AssetID: currency.AssetID, Delta: an(1), EntryType: domain.EntryTypePrincipal},
		},
	}

	const workers = 8
	var wg sync.WaitGroup
	ids := make([]string, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = s.svc.Ledger.Post(context.Background(), req)
		}(i)
	}
	wg.Wait()

	winner, err := s.svc.Ledger.FindTransaction(s.ctx, "same-key")
	s.Require().NoError(err)
	for i := range ids {
		if errs[i] != nil {
			s.True(apperrors.IsRetryable(errs[i]), "unexpected error: %v", errs[i])
			continue
		}
		s.Equal(winner.TransactionID, ids[i])
	}
	s.Equal(an(9), s.cash("alice"))
	s.Equal(an(1), s.cash("bob"))
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

type VelocityTaxDisabledTestSuite struct {
	economySuite
}

func (s *VelocityTaxDisabledTestSuite) TestLargeTransferIsNotTaxed() {
	s.fund("alice", an(500))
	_, err := s.transfer("alice", "bob", an(300))
	s.Require().NoError(err)
	s.Equal(an(200), s.cash("alice"))
}

func TestVelocityTaxDisabled(t *testing.T) {
	suite.Run(t, &VelocityTaxDisabledTestSuite{economySuite{
		configure: func(cfg *config.Config) { cfg.Ledger.VelocityTaxEnabled = false },
	}})
}
