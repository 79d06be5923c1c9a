package services_test

import (
	"context"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/core/services"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/SscSPs/access_exchange/internal/platform/config"
	"github.com/SscSPs/access_exchange/internal/repositories/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockPublisher is a mock type for the events.Publisher interface
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	args := m.Called(ctx, topic, key, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSubscriptionCanceller is a mock type for the SubscriptionCanceller interface
type MockSubscriptionCanceller struct {
	mock.Mock
}

func (m *MockSubscriptionCanceller) ForceCancel(ctx context.Context, userID, reason, anchor string) error {
	args := m.Called(ctx, userID, reason, anchor)
	return args.Error(0)
}

// economySuite wires every service over a fresh in-memory store.
type economySuite struct {
	suite.Suite
	ctx       context.Context
	store     *memory.Store
	cfg       *config.Config
	publisher *MockPublisher
	canceller *MockSubscriptionCanceller
	svc       *portssvc.ServiceContainer

	// configure, when set, adjusts the policy before services are built.
	configure func(cfg *config.Config)
}

func (s *economySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.cfg = &config.Config{
		Ledger:   config.DefaultLedgerPolicy(),
		Exchange: config.DefaultExchangePolicy(),
		Rewards:  config.DefaultRewardPolicy(),
	}
	if s.configure != nil {
		s.configure(s.cfg)
	}
	s.publisher = new(MockPublisher)
	s.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	s.canceller = new(MockSubscriptionCanceller)
	s.svc = services.NewServiceContainer(s.store.Provider(), s.cfg, s.publisher, s.canceller)
}

func (s *economySuite) currency() *domain.Asset {
	a, err := s.svc.Registry.CurrencyAsset(s.ctx)
	s.Require().NoError(err)
	return a
}

func (s *economySuite) share(curriculumID string) *domain.Asset {
	a, err := s.svc.Registry.ShareAsset(s.ctx, curriculumID)
	s.Require().NoError(err)
	return a
}

func (s *economySuite) wallet(userID string) *domain.Account {
	a, err := s.svc.Registry.UserWallet(s.ctx, userID)
	s.Require().NoError(err)
	return a
}

func (s *economySuite) system(t domain.AccountType) *domain.Account {
	a, err := s.svc.Registry.SystemAccount(s.ctx, t)
	s.Require().NoError(err)
	return a
}

func (s *economySuite) balance(account *domain.Account, asset *domain.Asset) int64 {
	b, err := s.svc.Ledger.GetBalance(s.ctx, account.AccountID, asset.AssetID)
	s.Require().NoError(err)
	return b
}

func (s *economySuite) cash(userID string) int64 {
	return s.balance(s.wallet(userID), s.currency())
}

func (s *economySuite) shares(userID, curriculumID string) int64 {
	return s.balance(s.wallet(userID), s.share(curriculumID))
}

// fund moves currency from the treasury into a user's wallet.
func (s *economySuite) fund(userID string, ticks int64) {
	treasury := s.system(domain.AccountTypeTreasury)
	currency := s.currency()
	_, err := s.svc.Ledger.Post(s.ctx, domain.PostRequest{
		EventType:      "test_funding",
		IdempotencyKey: "fund:" + userID + ":" + uuid.NewString(),
		Entries: []domain.EntrySpec{
			{AccountID: treasury.AccountID, AssetID: currency.AssetID, Delta: -ticks, EntryType: domain.EntryTypePrincipal},
			{AccountID: s.wallet(userID).AccountID, AssetID: currency.AssetID, Delta: ticks, EntryType: domain.EntryTypePrincipal},
		},
	})
	s.Require().NoError(err)
}

func (s *economySuite) mint(curriculumID, userID string, qty int64) {
	_, err := s.svc.Rewards.MintShares(s.ctx, curriculumID, dto.MintSharesRequest{
		UserID:    userID,
		Quantity:  qty,
		Reference: uuid.NewString(),
	})
	s.Require().NoError(err)
}

func (s *economySuite) transfer(from, to string, ticks int64) (string, error) {
	currency := s.currency()
	return s.svc.Ledger.Post(s.ctx, domain.PostRequest{
		EventType:      "transfer",
		IdempotencyKey: "transfer:" + uuid.NewString(),
		Entries: []domain.EntrySpec{
			{AccountID: s.wallet(from).AccountID, AssetID: currency.AssetID, Delta: -ticks, EntryType: domain.EntryTypePrincipal},
			{AccountID: s.wallet(to).AccountID, AssetID: currency.AssetID, Delta: ticks, EntryType: domain.EntryTypePrincipal},
		},
		ActorUserID: &from,
	})
}

// an converts whole Access Notes to ticks.
func an(units int64) int64 {
	return units * domain.CurrencyScale
}
