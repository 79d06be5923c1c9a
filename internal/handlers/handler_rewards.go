package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/SscSPs/access_exchange/internal/middleware"
	"github.com/SscSPs/access_exchange/internal/utils"
	"github.com/gin-gonic/gin"
)

type rewardHandler struct {
	rewardService portssvc.RewardSvcFacade
	posthogClient *utils.PosthogClientWrapper
}

// RegisterRewardRoutes registers issuance and payout routes.
func RegisterRewardRoutes(rg *gin.RouterGroup, rewardService portssvc.RewardSvcFacade, posthogClient *utils.PosthogClientWrapper) {
	h := &rewardHandler{
		rewardService: rewardService,
		posthogClient: posthogClient,
	}

	// Issuance and payouts move money for arbitrary users, so only service callers reach them.
	rewards := rg.Group("/rewards", middleware.RequireServiceRole())
	{
		rewards.POST("/signup-bonus", h.grantSignupBonus)
		rewards.POST("/lessons", h.rewardLesson)
		rewards.POST("/payouts", h.payoutAll)
	}

	curricula := rg.Group("/curricula/:curriculumID", middleware.RequireServiceRole())
	{
		curricula.POST("/shares", h.mintShares)
		curricula.POST("/payout", h.payoutCurriculum)
	}
}

// grantSignupBonus godoc
// @Summary Grant the signup bonus
// @Description One-time currency grant from the treasury. Repeated calls return granted=false.
// @Tags rewards
// @Accept  json
// @Produce  json
// @Param   request body dto.SignupBonusRequest true "Recipient"
// @Success 200 {object} dto.SignupBonusResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Service role required"
// @Failure 500 {object} map[string]string "Failed to grant signup bonus"
// @Security BearerAuth
// @Router /rewards/signup-bonus [post]
func (h *rewardHandler) grantSignupBonus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SignupBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SignupBonus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	granted, err := h.rewardService.GrantSignupBonus(c.Request.Context(), req.UserID, req.Ticks)
	if err != nil {
		respondError(c, logger.With(slog.String("target_user_id", req.UserID)), err, "grant signup bonus")
		return
	}
	c.JSON(http.StatusOK, dto.SignupBonusResponse{UserID: req.UserID, Granted: granted})
}

// rewardLesson godoc
// @Summary Reward a completed lesson
// @Description Pays a reward that saturates with time spent, at most once per user, lesson and day.
// @Tags rewards
// @Accept  json
// @Produce  json
// @Param   request body dto.LessonRewardRequest true "Lesson attempt"
// @Success 200 {object} dto.LessonRewardResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Service role required"
// @Failure 500 {object} map[string]string "Failed to reward lesson"
// @Security BearerAuth
// @Router /rewards/lessons [post]
func (h *rewardHandler) rewardLesson(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LessonRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for LessonReward", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp, err := h.rewardService.RewardLessonCompletion(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger.With(slog.String("lesson_id", req.LessonID)), err, "reward lesson")
		return
	}
	if resp.RewardTicks > 0 {
		middleware.PosthogEvent(c, h.posthogClient, "lesson_reward_paid", map[string]any{
			"lesson_id":     req.LessonID,
			"curriculum_id": req.CurriculumID,
			"reward_ticks":  resp.RewardTicks,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// mintShares godoc
// @Summary Mint curriculum shares
// @Description Issues shares of a curriculum from the treasury to a user.
// @Tags rewards
// @Accept  json
// @Produce  json
// @Param   curriculumID path string true "Curriculum ID"
// @Param   request body dto.MintSharesRequest true "Recipient and quantity"
// @Success 201 {object} dto.MintSharesResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Service role required"
// @Failure 500 {object} map[string]string "Failed to mint shares"
// @Security BearerAuth
// @Router /curricula/{curriculumID}/shares [post]
func (h *rewardHandler) mintShares(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	curriculumID := c.Param("curriculumID")
	var req dto.MintSharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for MintShares", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	txnID, err := h.rewardService.MintShares(c.Request.Context(), curriculumID, req)
	if err != nil {
		respondError(c, logger.With(slog.String("curriculum_id", curriculumID)), err, "mint shares")
		return
	}
	c.JSON(http.StatusCreated, dto.MintSharesResponse{TransactionID: txnID})
}

// payoutCurriculum godoc
// @Summary Pay out a curriculum wallet
// @Description Splits the wallet's currency pro rata among share holders. Remainders stay in the wallet.
// @Tags rewards
// @Accept  json
// @Produce  json
// @Param   curriculumID path string true "Curriculum ID"
// @Param   request body dto.PayoutRequest false "Optional cap"
// @Success 200 {object} dto.PayoutResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Service role required"
// @Failure 500 {object} map[string]string "Failed to pay out curriculum"
// @Security BearerAuth
// @Router /curricula/{curriculumID}/payout [post]
func (h *rewardHandler) payoutCurriculum(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	curriculumID := c.Param("curriculumID")
	var req dto.PayoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	paid, err := h.rewardService.PayoutCurriculumWallet(c.Request.Context(), curriculumID, req.MaxTicks)
	if err != nil {
		respondError(c, logger.With(slog.String("curriculum_id", curriculumID)), err, "pay out curriculum")
		return
	}
	c.JSON(http.StatusOK, dto.PayoutResponse{
		CurriculumID:     curriculumID,
		DistributedTicks: paid,
		Display:          dto.FormatCurrency(paid),
	})
}

// payoutAll godoc
// @Summary Pay out every curriculum wallet
// @Tags rewards
// @Produce  json
// @Success 200 {object} dto.PayoutResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Service role required"
// @Failure 500 {object} map[string]string "Failed to pay out curricula"
// @Security BearerAuth
// @Router /rewards/payouts [post]
func (h *rewardHandler) payoutAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paid, err := h.rewardService.PayoutAllCurricula(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "pay out curricula")
		return
	}
	c.JSON(http.StatusOK, dto.PayoutResponse{
		DistributedTicks: paid,
		Display:          dto.FormatCurrency(paid),
	})
}
