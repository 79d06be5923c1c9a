package handlers_test

import (
	"net/http"
	"testing"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/SscSPs/access_exchange/internal/handlers"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PortfolioHandlerTestSuite struct {
	handlerSuite
	mockPortfolio *MockPortfolioService
}

func (suite *PortfolioHandlerTestSuite) SetupTest() {
	suite.handlerSuite.SetupTest()
	suite.mockPortfolio = new(MockPortfolioService)
	handlers.RegisterPortfolioRoutes(suite.v1, suite.mockPortfolio)
}

func (suite *PortfolioHandlerTestSuite) TestPortfolio() {
	last := int64(100)
	portfolio := &domain.Portfolio{
		UserID:    testUserID,
		CashTicks: 700,
		Holdings: []domain.Holding{
			{CurriculumID: "cur-1", AssetCode: "SHR-cur-1", Shares: 3, LastPrice: &last, LiquidationValue: 260},
		},
		TotalLiquidationValue: 260,
	}
	suite.mockPortfolio.On("Portfolio", mock.Anything, testUserID).Return(portfolio, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/portfolio", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.PortfolioResponse
	suite.decode(w, &resp)
	suite.Equal("0.700", resp.CashDisplay)
	suite.Require().Len(resp.Holdings, 1)
	suite.Equal("0.260", resp.Holdings[0].LiquidationValueDisplay)
	suite.Equal(&last, resp.Holdings[0].LastPrice)
}

func (suite *PortfolioHandlerTestSuite) TestPortfolio_Unauthorized() {
	w := suite.doAs("", http.MethodGet, "/api/v1/portfolio", nil)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockPortfolio.AssertNotCalled(suite.T(), "Portfolio", mock.Anything, mock.Anything)
}

func (suite *PortfolioHandlerTestSuite) TestLiquidation() {
	last := int64(100)
	suite.mockPortfolio.On("LiquidationValue", mock.Anything, "cur-1", int64(3)).Return(int64(260), nil).Once()
	suite.mockPortfolio.On("LastTradePrice", mock.Anything, "cur-1").Return(&last, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/curricula/cur-1/liquidation?shares=3", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.LiquidationResponse
	suite.decode(w, &resp)
	suite.Equal(int64(260), resp.ValueTicks)
	suite.Equal("0.260", resp.ValueDisplay)
	suite.Require().NotNil(resp.LastPrice)
	suite.Equal(int64(100), *resp.LastPrice)
}

func (suite *PortfolioHandlerTestSuite) TestLiquidation_NoTradesYet() {
	suite.mockPortfolio.On("LiquidationValue", mock.Anything, "cur-2", int64(1)).Return(int64(0), nil).Once()
	suite.mockPortfolio.On("LastTradePrice", mock.Anything, "cur-2").Return(nil, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/curricula/cur-2/liquidation?shares=1", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "lastPrice")
}

func (suite *PortfolioHandlerTestSuite) TestLiquidation_MissingShares() {
	w := suite.do(http.MethodGet, "/api/v1/curricula/cur-1/liquidation", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPortfolio.AssertNotCalled(suite.T(), "LiquidationValue", mock.Anything, mock.Anything, mock.Anything)
}

func TestPortfolioHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(PortfolioHandlerTestSuite))
}
