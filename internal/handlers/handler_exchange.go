package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/SscSPs/access_exchange/internal/middleware"
	"github.com/SscSPs/access_exchange/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultTradesPageSize = 50
	defaultOrdersPageSize = 100
)

// exchangeHandler handles HTTP requests for the order book.
type exchangeHandler struct {
	exchangeService portssvc.ExchangeSvcFacade
	posthogClient   *utils.PosthogClientWrapper
}

// RegisterExchangeRoutes registers order and book routes. limits run before placement and cancellation.
func RegisterExchangeRoutes(rg *gin.RouterGroup, exchangeService portssvc.ExchangeSvcFacade, posthogClient *utils.PosthogClientWrapper, limits ...gin.HandlerFunc) {
	registerValidators()
	h := &exchangeHandler{
		exchangeService: exchangeService,
		posthogClient:   posthogClient,
	}

	curricula := rg.Group("/curricula/:curriculumID")
	{
		curricula.POST("/orders", chain(limits, h.placeOrder)...)
		curricula.GET("/book", h.orderBook)
		curricula.GET("/trades", h.listTrades)
		curricula.POST("/drain", middleware.RequireServiceRole(), h.drain)
	}

	orders := rg.Group("/orders")
	{
		orders.GET("", h.listMyOrders)
		orders.GET("/:orderID", h.getOrder)
		orders.DELETE("/:orderID", chain(limits, h.cancelOrder)...)
	}
}

// chain returns limits followed by handler in a fresh slice.
func chain(limits []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(limits)+1)
	out = append(out, limits...)
	return append(out, handler)
}

// placeOrder godoc
// @Summary Place a limit order
// @Description Escrows the order's funds or shares, rests it on the book and matches immediately.
// @Tags exchange
// @Accept  json
// @Produce  json
// @Param   curriculumID path string true "Curriculum ID"
// @Param   order body dto.PlaceOrderRequest true "Order details"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "Insufficient funds or shares"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 503 {object} map[string]string "Transient storage fault, retry"
// @Failure 500 {object} map[string]string "Failed to place order"
// @Security BearerAuth
// @Router /curricula/{curriculumID}/orders [post]
func (h *exchangeHandler) placeOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	curriculumID := c.Param("curriculumID")
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PlaceOrder", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("curriculum_id", curriculumID), slog.String("side", string(req.Side)))
	order, err := h.exchangeService.PlaceOrder(c.Request.Context(), curriculumID, req, userID)
	if err != nil {
		respondError(c, logger, err, "place order")
		return
	}

	logger.Info("Order placed", slog.String("order_id", order.OrderID), slog.String("status", string(order.Status)))
	if order.Status == domain.OrderStatusFilled || order.Status == domain.OrderStatusPartial {
		middleware.PosthogEvent(c, h.posthogClient, "order_filled", map[string]any{
			"curriculum_id": curriculumID,
			"side":          string(order.Side),
			"filled":        order.Quantity - order.RemainingQuantity,
		})
	}
	c.JSON(http.StatusCreated, dto.ToOrderResponse(order))
}

// cancelOrder godoc
// @Summary Cancel an order
// @Description Cancels an active order of the caller and refunds the remaining escrow.
// @Tags exchange
// @Produce  json
// @Param   orderID path string true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Order belongs to another user"
// @Failure 404 {object} map[string]string "Order not found"
// @Failure 409 {object} map[string]string "Order is no longer active"
// @Failure 500 {object} map[string]string "Failed to cancel order"
// @Security BearerAuth
// @Router /orders/{orderID} [delete]
func (h *exchangeHandler) cancelOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orderID := c.Param("orderID")

	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("order_id", orderID))
	order, err := h.exchangeService.CancelOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, logger, err, "cancel order")
		return
	}

	logger.Info("Order canceled")
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// getOrder godoc
// @Summary Get an order
// @Tags exchange
// @Produce  json
// @Param   orderID path string true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Order not found"
// @Failure 500 {object} map[string]string "Failed to get order"
// @Security BearerAuth
// @Router /orders/{orderID} [get]
func (h *exchangeHandler) getOrder(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	order, err := h.exchangeService.GetOrder(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		respondError(c, logger, err, "get order")
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// listMyOrders godoc
// @Summary List the caller's orders
// @Tags exchange
// @Produce  json
// @Param   limit query int false "Page size (1-500, default 100)"
// @Success 200 {array} dto.OrderResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list orders"
// @Security BearerAuth
// @Router /orders [get]
func (h *exchangeHandler) listMyOrders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	orders, err := h.exchangeService.ListUserOrders(c.Request.Context(), userID, params.LimitOrDefault(defaultOrdersPageSize))
	if err != nil {
		respondError(c, logger, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponses(orders))
}

// orderBook godoc
// @Summary Order book
// @Description Active bids (best first) and asks (best first) of one curriculum.
// @Tags exchange
// @Produce  json
// @Param   curriculumID path string true "Curriculum ID"
// @Success 200 {object} dto.OrderBookResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to load order book"
// @Security BearerAuth
// @Router /curricula/{curriculumID}/book [get]
func (h *exchangeHandler) orderBook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	book, err := h.exchangeService.OrderBook(c.Request.Context(), c.Param("curriculumID"))
	if err != nil {
		respondError(c, logger, err, "load order book")
		return
	}
	c.JSON(http.StatusOK, dto.OrderBookResponse{
		CurriculumID: book.CurriculumID,
		Bids:         dto.ToOrderResponses(book.Bids),
		Asks:         dto.ToOrderResponses(book.Asks),
	})
}

// listTrades godoc
// @Summary Recent trades
// @Tags exchange
// @Produce  json
// @Param   curriculumID path string true "Curriculum ID"
// @Param   limit query int false "Page size (1-500, default 50)"
// @Success 200 {array} dto.TradeResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list trades"
// @Security BearerAuth
// @Router /curricula/{curriculumID}/trades [get]
func (h *exchangeHandler) listTrades(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	trades, err := h.exchangeService.ListTrades(c.Request.Context(), c.Param("curriculumID"), params.LimitOrDefault(defaultTradesPageSize))
	if err != nil {
		respondError(c, logger, err, "list trades")
		return
	}
	c.JSON(http.StatusOK, dto.ToTradeResponses(trades))
}

// drain godoc
// @Summary Drain an order book
// @Description Matches crossing orders until the book no longer crosses or the fill bound is reached.
// @Tags exchange
// @Produce  json
// @Param   curriculumID path string true "Curriculum ID"
// @Success 200 {object} dto.DrainResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Service role required"
// @Failure 503 {object} map[string]string "Transient storage fault, retry"
// @Failure 500 {object} map[string]string "Failed to drain order book"
// @Security BearerAuth
// @Router /curricula/{curriculumID}/drain [post]
func (h *exchangeHandler) drain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	curriculumID := c.Param("curriculumID")
	result, err := h.exchangeService.Drain(c.Request.Context(), curriculumID)
	if err != nil {
		respondError(c, logger.With(slog.String("curriculum_id", curriculumID)), err, "drain order book")
		return
	}
	c.JSON(http.StatusOK, dto.DrainResponse{
		CurriculumID: curriculumID,
		Trades:       dto.ToTradeResponses(result.Trades),
		Exhausted:    result.Exhausted,
	})
}
