package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/SscSPs/access_exchange/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type DailyTaxServiceTestSuite struct {
	economySuite
	day time.Time
}

func (s *DailyTaxServiceTestSuite) SetupTest() {
	s.economySuite.SetupTest()
	s.day = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
}

func (s *DailyTaxServiceTestSuite) TestKeysAreHumanReadable() {
	s.Equal("daily_tax:2026-03-14:u1", services.DailyTaxKey(s.day, "u1"))
	s.Equal("daily_tax_insufficient:2026-03-14:u1", services.DailyTaxAnchor(s.day, "u1"))
}

func (s *DailyTaxServiceTestSuite) TestChargeDailyTax_ChargesOncePerDay() {
	s.fund("alice", an(5))
	treasury := s.system(domain.AccountTypeTreasury)
	treasuryBefore := s.balance(treasury, s.currency())

	charged, err := s.svc.Tax.ChargeDailyTax(s.ctx, "alice", s.day)
	s.Require().NoError(err)
	s.True(charged)

	charged, err = s.svc.Tax.ChargeDailyTax(s.ctx, "alice", s.day)
	s.Require().NoError(err)
	s.True(charged)

	s.Equal(an(4), s.cash("alice"))
	s.Equal(treasuryBefore+an(1), s.balance(treasury, s.currency()))
	txn, err := s.svc.Ledger.FindTransaction(s.ctx, services.DailyTaxKey(s.day, "alice"))
	s.Require().NoError(err)
	s.Equal(domain.EventTypeDailyAccessTax, txn.EventType)
	s.canceller.AssertNotCalled(s.T(), "ForceCancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *DailyTaxServiceTestSuite) TestChargeDailyTax_NextDayChargesAgain() {
	s.fund("alice", an(5))

	_, err := s.svc.Tax.ChargeDailyTax(s.ctx, "alice", s.day)
	s.Require().NoError(err)
	_, err = s.svc.Tax.ChargeDailyTax(s.ctx, "alice", s.day.AddDate(0, 0, 1))
	s.Require().NoError(err)

	s.Equal(an(3), s.cash("alice"))
}

func (s *DailyTaxServiceTestSuite) TestChargeDailyTax_ShortfallRevokesAccess() {
	s.fund("alice", 500)
	s.canceller.On("ForceCancel", mock.Anything, "alice", services.DailyTaxInsufficientReason,
		services.DailyTaxAnchor(s.day, "alice")).Return(nil).Once()

	charged, err := s.svc.Tax.ChargeDailyTax(s.ctx, "alice", s.day)

	s.Require().NoError(err)
	s.False(charged)
	s.Equal(int64(500), s.cash("alice"))
	_, err = s.svc.Ledger.FindTransaction(s.ctx, services.DailyTaxKey(s.day, "alice"))
	s.Error(err)
	s.canceller.AssertExpectations(s.T())
}

func (s *DailyTaxServiceTestSuite) TestChargeDailyTax_CancellerFailureSurfaces() {
	s.canceller.On("ForceCancel", mock.Anything, "alice", mock.Anything, mock.Anything).
		Return(errors.New("billing down")).Once()

	charged, err := s.svc.Tax.ChargeDailyTax(s.ctx, "alice", s.day)

	s.Error(err)
	s.False(charged)
}

func (s *DailyTaxServiceTestSuite) TestChargeDailyTax_AppliesMultiplier() {
	s.fund("alice", an(50))
	s.store.SetUserMultiplier("alice", decimal.RequireFromString("2.5"))

	charged, err := s.svc.Tax.ChargeDailyTax(s.ctx, "alice", s.day)

	s.Require().NoError(err)
	s.True(charged)
	s.Equal(an(50)-2500, s.cash("alice"))
}

func (s *DailyTaxServiceTestSuite) TestChargeDailyTax_ClampsMultiplier() {
	s.fund("alice", an(50))
	s.store.SetUserMultiplier("alice", decimal.NewFromInt(40))

	_, err := s.svc.Tax.ChargeDailyTax(s.ctx, "alice", s.day)

	s.Require().NoError(err)
	s.Equal(an(40), s.cash("alice"))
}

func (s *DailyTaxServiceTestSuite) TestChargeDailyTax_ZeroMultiplierWaives() {
	s.store.SetUserMultiplier("alice", decimal.Zero)

	charged, err := s.svc.Tax.ChargeDailyTax(s.ctx, "alice", s.day)

	s.Require().NoError(err)
	s.False(charged)
	s.Equal(int64(0), s.cash("alice"))
	_, err = s.svc.Ledger.FindTransaction(s.ctx, services.DailyTaxKey(s.day, "alice"))
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.canceller.AssertNotCalled(s.T(), "ForceCancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *DailyTaxServiceTestSuite) TestChargeDailyTaxForAllUsers_CountsWaivedApart() {
	s.fund("alice", an(5))
	s.wallet("dave")
	s.store.SetUserMultiplier("dave", decimal.Zero)

	stats, err := s.svc.Tax.ChargeDailyTaxForAllUsers(s.ctx, s.day)

	s.Require().NoError(err)
	s.Equal(1, stats.Charged)
	s.Equal(1, stats.Waived)
	s.Equal(0, stats.SkippedInsufficient)
	s.Equal(an(4), s.cash("alice"))
	s.canceller.AssertNotCalled(s.T(), "ForceCancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *DailyTaxServiceTestSuite) TestChargeDailyTaxForAllUsers() {
	s.fund("alice", an(5))
	s.fund("bob", an(2))
	s.wallet("carol")
	s.canceller.On("ForceCancel", mock.Anything, "carol", services.DailyTaxInsufficientReason, mock.Anything).
		Return(nil).Once()

	stats, err := s.svc.Tax.ChargeDailyTaxForAllUsers(s.ctx, s.day)

	s.Require().NoError(err)
	s.Equal(2, stats.Charged)
	s.Equal(1, stats.SkippedInsufficient)
	s.Equal(0, stats.Waived)
	s.Equal(0, stats.Failed)
	s.Equal(an(4), s.cash("alice"))
	s.Equal(an(1), s.cash("bob"))
	s.canceller.AssertExpectations(s.T())
}

func TestDailyTaxService(t *testing.T) {
	suite.Run(t, new(DailyTaxServiceTestSuite))
}
