package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/SscSPs/access_exchange/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for postings, balances and the public ledger.
type ledgerHandler struct {
	ledgerService       portssvc.LedgerSvcFacade
	publicLedgerService portssvc.PublicLedgerSvcFacade
}

// RegisterLedgerRoutes registers routes related to the ledger.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, publicLedgerService portssvc.PublicLedgerSvcFacade) {
	registerValidators()
	h := &ledgerHandler{
		ledgerService:       ledgerService,
		publicLedgerService: publicLedgerService,
	}

	ledger := rg.Group("/ledger")
	{
		ledger.POST("/transactions", middleware.RequireServiceRole(), h.postTransaction)
		ledger.GET("/balances/:accountID/:assetID", h.getBalance)
		ledger.GET("/public", h.publicLedger)
	}
}

// postTransaction godoc
// @Summary Post a ledger transaction
// @Description Atomically applies a balanced set of entries. Replaying an idempotency key returns the original transaction.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   transaction body dto.PostTransactionRequest true "Entries to post"
// @Success 201 {object} dto.PostTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or unbalanced entries"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Service role required"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Failure 503 {object} map[string]string "Transient storage fault, retry"
// @Failure 500 {object} map[string]string "Failed to post transaction"
// @Security BearerAuth
// @Router /ledger/transactions [post]
func (h *ledgerHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("idempotency_key", req.IdempotencyKey), slog.String("event_type", req.EventType))
	txnID, err := h.ledgerService.Post(c.Request.Context(), req.ToPostRequest(userID))
	if err != nil {
		respondError(c, logger, err, "post transaction")
		return
	}

	logger.Info("Transaction posted", slog.String("transaction_id", txnID))
	c.JSON(http.StatusCreated, dto.PostTransactionResponse{
		TransactionID:  txnID,
		IdempotencyKey: req.IdempotencyKey,
	})
}

// getBalance godoc
// @Summary Get a balance
// @Description Returns the committed balance of one (account, asset) pair in ticks. Never-touched pairs are 0.
// @Tags ledger
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   assetID path string true "Asset ID"
// @Success 200 {object} dto.BalanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to get balance"
// @Security BearerAuth
// @Router /ledger/balances/{accountID}/{assetID} [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")
	assetID := c.Param("assetID")

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), accountID, assetID)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", accountID)), err, "get balance")
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		AccountID: accountID,
		AssetID:   assetID,
		Balance:   balance,
	})
}

// publicLedger godoc
// @Summary Public ledger
// @Description Lists recent transactions with other users' accounts masked.
// @Tags ledger
// @Produce  json
// @Param   limit query int false "Page size (1-500, default 100)"
// @Param   onlyMine query bool false "Only transactions the caller acted in"
// @Param   eventType query string false "Event type filter"
// @Param   contextType query string false "Context type filter"
// @Param   assetCode query string false "Keep only entries of this asset"
// @Param   cursor query string false "nextCursor of the previous page"
// @Success 200 {object} dto.PublicLedgerResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list public ledger"
// @Security BearerAuth
// @Router /ledger/public [get]
func (h *ledgerHandler) publicLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.PublicLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for PublicLedger", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	viewerID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	filter, err := params.ToFilter()
	if err != nil {
		logger.Warn("Invalid public ledger cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	txns, err := h.publicLedgerService.PublicLedger(c.Request.Context(), viewerID, filter)
	if err != nil {
		respondError(c, logger, err, "list public ledger")
		return
	}

	c.JSON(http.StatusOK, dto.ToPublicLedgerResponse(txns, filter.Limit, time.Now()))
}
