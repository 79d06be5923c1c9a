package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/SscSPs/access_exchange/internal/handlers"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LedgerHandlerTestSuite struct {
	handlerSuite
	mockLedger *MockLedgerService
	mockPublic *MockPublicLedgerService
}

func (suite *LedgerHandlerTestSuite) SetupTest() {
	suite.handlerSuite.SetupTest()
	suite.mockLedger = new(MockLedgerService)
	suite.mockPublic = new(MockPublicLedgerService)
	handlers.RegisterLedgerRoutes(suite.v1, suite.mockLedger, suite.mockPublic)
}

func transferBody(key string) map[string]any {
	return map[string]any{
		"eventType":      "transfer",
		"idempotencyKey": key,
		"entries": []map[string]any{
			{"accountID": "acc-a", "assetID": "asset-an", "delta": -5000, "entryType": "principal"},
			{"accountID": "acc-b", "assetID": "asset-an", "delta": 5000, "entryType": "principal"},
		},
	}
}

func (suite *LedgerHandlerTestSuite) TestPostTransaction_Success() {
	isTransfer := mock.MatchedBy(func(req domain.PostRequest) bool {
		return req.IdempotencyKey == "transfer:1" &&
			req.ActorUserID != nil && *req.ActorUserID == testServiceID &&
			len(req.Entries) == 2 && req.Entries[0].Delta == -5000
	})
	suite.mockLedger.On("Post", mock.Anything, isTransfer).Return("txn-1", nil).Once()

	w := suite.doService(http.MethodPost, "/api/v1/ledger/transactions", transferBody("transfer:1"))

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.PostTransactionResponse
	suite.decode(w, &resp)
	suite.Equal("txn-1", resp.TransactionID)
	suite.Equal("transfer:1", resp.IdempotencyKey)
	suite.mockLedger.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestPostTransaction_InvalidIdempotencyKey() {
	w := suite.doService(http.MethodPost, "/api/v1/ledger/transactions", transferBody("has a space"))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedger.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestPostTransaction_MissingEntries() {
	body := map[string]any{"eventType": "transfer", "idempotencyKey": "k"}
	w := suite.doService(http.MethodPost, "/api/v1/ledger/transactions", body)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedger.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestPostTransaction_ErrorMapping() {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unbalanced", fmt.Errorf("%w: asset sums to 5", apperrors.ErrInvalidEntrySet), http.StatusBadRequest},
		{"insufficient funds", fmt.Errorf("%w: acc-a", apperrors.ErrInsufficientFunds), http.StatusUnprocessableEntity},
		{"unknown account", fmt.Errorf("%w: account acc-a", apperrors.ErrNotFound), http.StatusNotFound},
		{"retryable", fmt.Errorf("%w: lock timeout", apperrors.ErrRetryable), http.StatusServiceUnavailable},
		{"internal", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for i, tt := range tests {
		suite.Run(tt.name, func() {
			key := fmt.Sprintf("err:%d", i)
			suite.mockLedger.On("Post", mock.Anything, mock.MatchedBy(func(req domain.PostRequest) bool {
				return req.IdempotencyKey == key
			})).Return("", tt.err).Once()

			w := suite.doService(http.MethodPost, "/api/v1/ledger/transactions", transferBody(key))

			suite.Equal(tt.status, w.Code)
			var body map[string]string
			suite.decode(w, &body)
			suite.NotEmpty(body["error"])
			if tt.status == http.StatusInternalServerError {
				suite.Equal("Failed to post transaction", body["error"])
			}
		})
	}
}

func (suite *LedgerHandlerTestSuite) TestPostTransaction_Unauthorized() {
	w := suite.doAs("", http.MethodPost, "/api/v1/ledger/transactions", transferBody("k"))

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedger.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestPostTransaction_EndUserForbidden() {
	body := transferBody("steal:1")
	body["allowOverdraft"] = true

	w := suite.doAs("mallory", http.MethodPost, "/api/v1/ledger/transactions", body)

	suite.Equal(http.StatusForbidden, w.Code)
	var resp map[string]string
	suite.decode(w, &resp)
	suite.Equal("Service role required", resp["error"])
	suite.mockLedger.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestGetBalance() {
	suite.mockLedger.On("GetBalance", mock.Anything, "acc-a", "asset-an").Return(int64(12345), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/ledger/balances/acc-a/asset-an", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.BalanceResponse
	suite.decode(w, &resp)
	suite.Equal(int64(12345), resp.Balance)
	suite.Equal("acc-a", resp.AccountID)
}

func (suite *LedgerHandlerTestSuite) TestPublicLedger_PassesViewerAndFilter() {
	want := domain.PublicLedgerFilter{Limit: 5, OnlyMine: true, AssetCode: "AN"}
	txns := []domain.PublicTransaction{{
		TransactionID: "txn-1",
		CreatedAt:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		EventType:     "transfer",
		Actor:         "you",
		Entries: []domain.PublicEntry{
			{Account: "your_wallet", Asset: "AN", DeltaTicks: -20000, DeltaDisplay: "-20.000", EntryType: domain.EntryTypePrincipal},
		},
	}}
	suite.mockPublic.On("PublicLedger", mock.Anything, testUserID, want).Return(txns, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/ledger/public?limit=5&onlyMine=true&assetCode=AN", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.PublicLedgerResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp.Transactions, 1)
	suite.Equal("your_wallet", resp.Transactions[0].Entries[0].Account)
	suite.Equal("-20.000", resp.Transactions[0].Entries[0].DeltaDisplay)
	suite.mockPublic.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestPublicLedger_DefaultLimit() {
	suite.mockPublic.On("PublicLedger", mock.Anything, testUserID, domain.PublicLedgerFilter{Limit: 100}).
		Return([]domain.PublicTransaction{}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/ledger/public", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockPublic.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestPublicLedger_LimitTooLarge() {
	w := suite.do(http.MethodGet, "/api/v1/ledger/public?limit=1000", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPublic.AssertNotCalled(suite.T(), "PublicLedger", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerHandlerTestSuite) TestPublicLedger_FullPageCarriesCursor() {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	page := []domain.PublicTransaction{
		{TransactionID: "txn-2", CreatedAt: at.Add(time.Minute), Actor: "masked"},
		{TransactionID: "txn-1", CreatedAt: at, Actor: "masked"},
	}
	suite.mockPublic.On("PublicLedger", mock.Anything, testUserID, domain.PublicLedgerFilter{Limit: 2}).Return(page, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/ledger/public?limit=2", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.PublicLedgerResponse
	suite.decode(w, &resp)
	suite.Require().NotEmpty(resp.NextCursor)

	suite.mockPublic.On("PublicLedger", mock.Anything, testUserID, mock.MatchedBy(func(f domain.PublicLedgerFilter) bool {
		return f.Limit == 2 && f.Before != nil && f.Before.ID == "txn-1" && f.Before.CreatedAt.Equal(at)
	})).Return([]domain.PublicTransaction{}, nil).Once()

	w = suite.do(http.MethodGet, "/api/v1/ledger/public?limit=2&cursor="+resp.NextCursor, nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "nextCursor")
	suite.mockPublic.AssertExpectations(suite.T())
}

func (suite *LedgerHandlerTestSuite) TestPublicLedger_BadCursor() {
	w := suite.do(http.MethodGet, "/api/v1/ledger/public?cursor=%21%21", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPublic.AssertNotCalled(suite.T(), "PublicLedger", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerHandlerTestSuite))
}
