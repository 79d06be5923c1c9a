package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/SscSPs/access_exchange/internal/middleware"
	"github.com/gin-gonic/gin"
)

type taxHandler struct {
	taxService portssvc.TaxSvcFacade
}

// RegisterTaxRoutes registers the daily access tax routes.
func RegisterTaxRoutes(rg *gin.RouterGroup, taxService portssvc.TaxSvcFacade) {
	h := &taxHandler{taxService: taxService}

	tax := rg.Group("/tax", middleware.RequireServiceRole())
	{
		tax.POST("/daily", h.chargeDailyTax)
		tax.POST("/daily/all", h.chargeDailyTaxForAll)
	}
}

// chargeDailyTax godoc
// @Summary Charge one user's daily access tax
// @Description Idempotent per user and UTC day. A user who cannot pay has access revoked and charged=false is returned. A zero tax is waived and also returns charged=false.
// @Tags tax
// @Accept  json
// @Produce  json
// @Param   request body dto.DailyTaxRequest true "User and day"
// @Success 200 {object} dto.DailyTaxResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Service role required"
// @Failure 503 {object} map[string]string "Transient storage fault, retry"
// @Failure 500 {object} map[string]string "Failed to charge daily tax"
// @Security BearerAuth
// @Router /tax/daily [post]
func (h *taxHandler) chargeDailyTax(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DailyTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ChargeDailyTax", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	day, err := dto.ParseDay(req.Day, time.Now())
	if err != nil {
		respondError(c, logger, fmt.Errorf("%w: %v", apperrors.ErrValidation, err), "charge daily tax")
		return
	}

	logger = logger.With(slog.String("target_user_id", req.UserID), slog.String("day", domain.DayKey(day)))
	charged, err := h.taxService.ChargeDailyTax(c.Request.Context(), req.UserID, day)
	if err != nil {
		respondError(c, logger, err, "charge daily tax")
		return
	}

	logger.Info("Daily tax processed", slog.Bool("charged", charged))
	c.JSON(http.StatusOK, dto.DailyTaxResponse{
		UserID:  req.UserID,
		Day:     domain.DayKey(day),
		Charged: charged,
	})
}

// chargeDailyTaxForAll godoc
// @Summary Charge the daily access tax of every user
// @Tags tax
// @Accept  json
// @Produce  json
// @Param   request body dto.DailyTaxAllRequest false "Day (defaults to today UTC)"
// @Success 200 {object} dto.DailyTaxStats
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Service role required"
// @Failure 500 {object} map[string]string "Failed to run daily tax"
// @Security BearerAuth
// @Router /tax/daily/all [post]
func (h *taxHandler) chargeDailyTaxForAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DailyTaxAllRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	day, err := dto.ParseDay(req.Day, time.Now())
	if err != nil {
		respondError(c, logger, fmt.Errorf("%w: %v", apperrors.ErrValidation, err), "run daily tax")
		return
	}

	stats, err := h.taxService.ChargeDailyTaxForAllUsers(c.Request.Context(), day)
	if err != nil {
		respondError(c, logger, err, "run daily tax")
		return
	}
	logger.Info("Daily tax run finished",
		slog.String("day", domain.DayKey(day)),
		slog.Int("charged", stats.Charged),
		slog.Int("skipped_insufficient", stats.SkippedInsufficient),
		slog.Int("waived", stats.Waived),
		slog.Int("failed", stats.Failed),
	)
	c.JSON(http.StatusOK, stats)
}
