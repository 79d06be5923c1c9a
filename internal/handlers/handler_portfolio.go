package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/SscSPs/access_exchange/internal/middleware"
	"github.com/gin-gonic/gin"
)

type portfolioHandler struct {
	portfolioService portssvc.PortfolioSvcFacade
}

// RegisterPortfolioRoutes registers portfolio valuation routes.
func RegisterPortfolioRoutes(rg *gin.RouterGroup, portfolioService portssvc.PortfolioSvcFacade) {
	h := &portfolioHandler{portfolioService: portfolioService}

	rg.GET("/portfolio", h.getPortfolio)
	rg.GET("/curricula/:curriculumID/liquidation", h.liquidationValue)
}

// getPortfolio godoc
// @Summary The caller's portfolio
// @Description Cash, share holdings, last trade prices and liquidation values against the current bids.
// @Tags portfolio
// @Produce  json
// @Success 200 {object} dto.PortfolioResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to load portfolio"
// @Security BearerAuth
// @Router /portfolio [get]
func (h *portfolioHandler) getPortfolio(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	portfolio, err := h.portfolioService.Portfolio(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "load portfolio")
		return
	}
	c.JSON(http.StatusOK, dto.ToPortfolioResponse(portfolio))
}

// liquidationValue godoc
// @Summary Liquidation value of a share count
// @Tags portfolio
// @Produce  json
// @Param   curriculumID path string true "Curriculum ID"
// @Param   shares query int true "Shares to value"
// @Success 200 {object} dto.LiquidationResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to value shares"
// @Security BearerAuth
// @Router /curricula/{curriculumID}/liquidation [get]
func (h *portfolioHandler) liquidationValue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	curriculumID := c.Param("curriculumID")
	var params dto.LiquidationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	value, err := h.portfolioService.LiquidationValue(c.Request.Context(), curriculumID, params.Shares)
	if err != nil {
		respondError(c, logger, err, "value shares")
		return
	}
	last, err := h.portfolioService.LastTradePrice(c.Request.Context(), curriculumID)
	if err != nil {
		respondError(c, logger, err, "value shares")
		return
	}
	c.JSON(http.StatusOK, dto.LiquidationResponse{
		CurriculumID: curriculumID,
		Shares:       params.Shares,
		LastPrice:    last,
		ValueTicks:   value,
		ValueDisplay: dto.FormatCurrency(value),
	})
}
