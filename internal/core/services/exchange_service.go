package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/SscSPs/access_exchange/internal/apperrors"
	"github.com/SscSPs/access_exchange/internal/core/domain"
	portsrepo "github.com/SscSPs/access_exchange/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/access_exchange/internal/core/ports/services"
	"github.com/SscSPs/access_exchange/internal/dto"
	"github.com/SscSPs/access_exchange/internal/events"
	"github.com/SscSPs/access_exchange/internal/platform/config"
	"github.com/google/uuid"
)

const (
	defaultTradeListLimit = 50
	defaultOrderListLimit = 100

	orderContextType = "market_order"
	tradeContextType = "market_trade"
)

type exchangeService struct {
	BaseService
	orderRepo portsrepo.OrderRepositoryFacade
	ledger    portssvc.LedgerSvcFacade
	registry  portssvc.RegistrySvcFacade
	policy    config.ExchangePolicy
	now       func() time.Time
}

// NewExchangeService creates the order book and matching engine.
// orderRepo and the ledger must be backed by the same store, since escrow and settlement
// postings run inside order units of work.
func NewExchangeService(
	orderRepo portsrepo.OrderRepositoryFacade,
	ledger portssvc.LedgerSvcFacade,
	registry portssvc.RegistrySvcFacade,
	policy config.ExchangePolicy,
	publisher events.Publisher,
) portssvc.ExchangeSvcFacade {
	return &exchangeService{
		BaseService: BaseService{Publisher: publisher},
		orderRepo:   orderRepo,
		ledger:      ledger,
		registry:    registry,
		policy:      policy,
		now:         time.Now,
	}
}

var _ portssvc.ExchangeSvcFacade = (*exchangeService)(nil)

// EscrowKey is the idempotency key of the posting that funds an order.
func EscrowKey(order domain.Order) string {
	return fmt.Sprintf("escrow:%s:%s:%s:%s", order.Side, order.UserID, order.CurriculumID, order.OrderID)
}

// CancelKey is the idempotency key of the refund posted when an order is canceled.
func CancelKey(orderID string) string {
	return "cancel:" + orderID
}

// FillKey is the idempotency key of one settlement. Remaining quantities strictly decrease,
// so a pair of orders never produces the same key twice.
func FillKey(bid, ask domain.Order) string {
	return fmt.Sprintf("fill:%s:%s:%d:%d", bid.OrderID, ask.OrderID, bid.RemainingQuantity, ask.RemainingQuantity)
}

// escrowAssets resolves the accounts and assets every order operation needs.
type escrowAssets struct {
	escrow   *domain.Account
	currency *domain.Asset
	share    *domain.Asset
}

func (s *exchangeService) resolveEscrow(ctx context.Context, curriculumID string) (*escrowAssets, error) {
	escrow, err := s.registry.SystemAccount(ctx, domain.AccountTypeEscrowPool)
	if err != nil {
		return nil, err
	}
	currency, err := s.registry.CurrencyAsset(ctx)
	if err != nil {
		return nil, err
	}
	share, err := s.registry.ShareAsset(ctx, curriculumID)
	if err != nil {
		return nil, err
	}
	return &escrowAssets{escrow: escrow, currency: currency, share: share}, nil
}

func (s *exchangeService) PlaceOrder(ctx context.Context, curriculumID string, req dto.PlaceOrderRequest, userID string) (*domain.Order, error) {
	logger := s.GetLogger(ctx).With(slog.String("curriculum_id", curriculumID), slog.String("user_id", userID))

	if strings.TrimSpace(curriculumID) == "" || strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: curriculum and user are required", apperrors.ErrValidation)
	}
	if !req.Side.IsValid() {
		return nil, fmt.Errorf("%w: side must be bid or ask, got %q", apperrors.ErrValidation, req.Side)
	}
	if req.Quantity <= 0 || req.LimitPrice <= 0 {
		return nil, fmt.Errorf("%w: quantity and limit price must be positive", apperrors.ErrValidation)
	}
	if req.LimitPrice > math.MaxInt64/req.Quantity {
		return nil, fmt.Errorf("%w: order notional overflows", apperrors.ErrValidation)
	}

	wallet, err := s.registry.UserWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	res, err := s.resolveEscrow(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := domain.Order{
		OrderID:           uuid.NewString(),
		CurriculumID:      curriculumID,
		UserID:            userID,
		Side:              req.Side,
		Status:            domain.OrderStatusOpen,
		LimitPrice:        req.LimitPrice,
		Quantity:          req.Quantity,
		RemainingQuantity: req.Quantity,
		AuditFields:       domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}

	var entries []domain.EntrySpec
	switch order.Side {
	case domain.OrderSideBid:
		order.LockedCurrency = req.LimitPrice * req.Quantity
		entries = []domain.EntrySpec{
			{AccountID: wallet.AccountID, AssetID: res.currency.AssetID, Delta: -order.LockedCurrency, EntryType: domain.EntryTypeEscrow},
			{AccountID: res.escrow.AccountID, AssetID: res.currency.AssetID, Delta: order.LockedCurrency, EntryType: domain.EntryTypeEscrow},
		}
	case domain.OrderSideAsk:
		order.LockedShares = req.Quantity
		entries = []domain.EntrySpec{
			{AccountID: wallet.AccountID, AssetID: res.share.AssetID, Delta: -order.LockedShares, EntryType: domain.EntryTypeEscrow},
			{AccountID: res.escrow.AccountID, AssetID: res.share.AssetID, Delta: order.LockedShares, EntryType: domain.EntryTypeEscrow},
		}
	}

	contextType := orderContextType
	err = s.orderRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		if _, err := s.ledger.PostInTx(ctx, tx, domain.PostRequest{
			EventType:      domain.EventTypeOrderEscrow,
			IdempotencyKey: EscrowKey(order),
			Entries:        entries,
			ActorUserID:    &userID,
			ContextType:    &contextType,
			ContextID:      &order.OrderID,
			Memo: map[string]any{
				"side":        string(order.Side),
				"quantity":    order.Quantity,
				"limit_price": order.LimitPrice,
			},
		}); err != nil {
			return err
		}
		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Warn("Order rejected, escrow not covered", slog.String("side", string(order.Side)))
		} else {
			logger.Error("Failed to place order", slog.String("error", err.Error()))
		}
		return nil, err
	}
	logger.Info("Order placed",
		slog.String("order_id", order.OrderID),
		slog.String("side", string(order.Side)),
		slog.Int64("quantity", order.Quantity),
		slog.Int64("limit_price", order.LimitPrice),
	)

	if _, err := s.Drain(ctx, curriculumID); err != nil {
		// The order is durably placed; the next drain picks up the cross.
		logger.Warn("Drain after placement failed", slog.String("order_id", order.OrderID), slog.String("error", err.Error()))
	}

	latest, err := s.orderRepo.FindOrderByID(ctx, order.OrderID)
	if err != nil {
		return &order, nil
	}
	return latest, nil
}

func (s *exchangeService) CancelOrder(ctx context.Context, orderID string, userID string) (*domain.Order, error) {
	logger := s.GetLogger(ctx).With(slog.String("order_id", orderID), slog.String("user_id", userID))

	existing, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, fmt.Errorf("%w: order %s belongs to another user", apperrors.ErrForbidden, orderID)
	}
	wallet, err := s.registry.UserWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	res, err := s.resolveEscrow(ctx, existing.CurriculumID)
	if err != nil {
		return nil, err
	}

	var canceled domain.Order
	contextType := orderContextType
	err = s.orderRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		if err := tx.LockOrderBook(ctx, existing.CurriculumID); err != nil {
			return err
		}
		order, err := tx.FindOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return fmt.Errorf("%w: order %s belongs to another user", apperrors.ErrForbidden, orderID)
		}
		if !order.IsActive() {
			return fmt.Errorf("%w: order %s is %s", apperrors.ErrConflict, orderID, order.Status)
		}

		var entries []domain.EntrySpec
		switch order.Side {
		case domain.OrderSideBid:
			refund := order.RemainingQuantity * order.LimitPrice
			if refund != order.LockedCurrency {
				logger.Warn("Locked currency drifted from remaining quantity",
					slog.Int64("locked", order.LockedCurrency), slog.Int64("refund", refund))
			}
			entries = []domain.EntrySpec{
				{AccountID: res.escrow.AccountID, AssetID: res.currency.AssetID, Delta: -refund, EntryType: domain.EntryTypeEscrowRelease},
				{AccountID: wallet.AccountID, AssetID: res.currency.AssetID, Delta: refund, EntryType: domain.EntryTypeEscrowRelease},
			}
		case domain.OrderSideAsk:
			entries = []domain.EntrySpec{
				{AccountID: res.escrow.AccountID, AssetID: res.share.AssetID, Delta: -order.RemainingQuantity, EntryType: domain.EntryTypeEscrowRelease},
				{AccountID: wallet.AccountID, AssetID: res.share.AssetID, Delta: order.RemainingQuantity, EntryType: domain.EntryTypeEscrowRelease},
			}
		}

		if _, err := s.ledger.PostInTx(ctx, tx, domain.PostRequest{
			EventType:      domain.EventTypeOrderCancel,
			IdempotencyKey: CancelKey(orderID),
			Entries:        entries,
			ActorUserID:    &userID,
			ContextType:    &contextType,
			ContextID:      &order.OrderID,
			Memo:           map[string]any{"remaining_quantity": order.RemainingQuantity},
		}); err != nil {
			return err
		}

		order.Cancel(s.now().UTC())
		if err := tx.UpdateOrder(ctx, *order); err != nil {
			return err
		}
		canceled = *order
		return nil
	})
	if err != nil {
		logger.Warn("Failed to cancel order", slog.String("error", err.Error()))
		return nil, err
	}
	logger.Info("Order canceled")
	return &canceled, nil
}

func (s *exchangeService) Drain(ctx context.Context, curriculumID string) (*domain.DrainResult, error) {
	result := &domain.DrainResult{CurriculumID: curriculumID, Trades: []domain.Trade{}}
	if strings.TrimSpace(curriculumID) == "" {
		return nil, fmt.Errorf("%w: curriculum id is required", apperrors.ErrValidation)
	}
	res, err := s.resolveEscrow(ctx, curriculumID)
	if err != nil {
		return nil, err
	}

	for i := 0; i < s.policy.MaxFillsPerDrain; i++ {
		trade, err := s.matchOnce(ctx, curriculumID, res)
		if err != nil {
			return result, err
		}
		if trade == nil {
			return result, nil
		}
		result.Trades = append(result.Trades, *trade)
		s.Publish(ctx, events.TopicTrades, trade.CurriculumID, events.TradeExecuted{
			TradeID:             trade.TradeID,
			CurriculumID:        trade.CurriculumID,
			BuyOrderID:          trade.BuyOrderID,
			SellOrderID:         trade.SellOrderID,
			ExecutionPrice:      trade.ExecutionPrice,
			Quantity:            trade.Quantity,
			LedgerTransactionID: trade.LedgerTransactionID,
			ExecutedAt:          trade.CreatedAt,
		})
	}
	result.Exhausted = true
	s.LogInfo(ctx, "Drain stopped at fill bound",
		slog.String("curriculum_id", curriculumID), slog.Int("fills", len(result.Trades)))
	return result, nil
}

// matchOnce settles the top of the book if it is crossed. It returns nil when nothing crosses.
// A failed settlement rolls back with both orders untouched.
func (s *exchangeService) matchOnce(ctx context.Context, curriculumID string, res *escrowAssets) (*domain.Trade, error) {
	var trade *domain.Trade
	err := s.orderRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		if err := tx.LockOrderBook(ctx, curriculumID); err != nil {
			return err
		}
		bid, err := tx.FindBestOrderForUpdate(ctx, curriculumID, domain.OrderSideBid)
		if apperrors.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		ask, err := tx.FindBestOrderForUpdate(ctx, curriculumID, domain.OrderSideAsk)
		if apperrors.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if ask.LimitPrice > bid.LimitPrice {
			return nil
		}
		t, err := s.settle(ctx, tx, res, *bid, *ask)
		if err != nil {
			return err
		}
		trade = t
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Settlement aborted", slog.String("curriculum_id", curriculumID))
		return nil, err
	}
	return trade, nil
}

func (s *exchangeService) settle(ctx context.Context, tx portsrepo.Tx, res *escrowAssets, bid, ask domain.Order) (*domain.Trade, error) {
	buyer, err := s.registry.UserWallet(ctx, bid.UserID)
	if err != nil {
		return nil, err
	}
	seller, err := s.registry.UserWallet(ctx, ask.UserID)
	if err != nil {
		return nil, err
	}

	// Drain does not know which order arrived last, so every cross settles at the ask
	// and the bid's surplus is refunded.
	price := ask.LimitPrice
	qty := min(bid.RemainingQuantity, ask.RemainingQuantity)
	notional := price * qty
	refund := (bid.LimitPrice - price) * qty

	escrowID, currencyID, shareID := res.escrow.AccountID, res.currency.AssetID, res.share.AssetID
	entries := []domain.EntrySpec{
		{AccountID: escrowID, AssetID: shareID, Delta: -qty, EntryType: domain.EntryTypeSettle},
		{AccountID: buyer.AccountID, AssetID: shareID, Delta: qty, EntryType: domain.EntryTypeSettle},
		{AccountID: escrowID, AssetID: currencyID, Delta: -notional, EntryType: domain.EntryTypeSettle},
		{AccountID: seller.AccountID, AssetID: currencyID, Delta: notional, EntryType: domain.EntryTypeSettle},
	}
	if refund > 0 {
		entries = append(entries,
			domain.EntrySpec{AccountID: escrowID, AssetID: currencyID, Delta: -refund, EntryType: domain.EntryTypeEscrowRelease},
			domain.EntrySpec{AccountID: buyer.AccountID, AssetID: currencyID, Delta: refund, EntryType: domain.EntryTypeEscrowRelease},
		)
	}

	tradeID := uuid.NewString()
	contextType := tradeContextType
	txnID, err := s.ledger.PostInTx(ctx, tx, domain.PostRequest{
		EventType:      domain.EventTypeTradeSettlement,
		IdempotencyKey: FillKey(bid, ask),
		Entries:        entries,
		ContextType:    &contextType,
		ContextID:      &tradeID,
		Memo: map[string]any{
			"bid_order_id":    bid.OrderID,
			"ask_order_id":    ask.OrderID,
			"execution_price": price,
			"quantity":        qty,
		},
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	bid.Fill(qty, now)
	ask.Fill(qty, now)
	if err := tx.UpdateOrder(ctx, bid); err != nil {
		return nil, err
	}
	if err := tx.UpdateOrder(ctx, ask); err != nil {
		return nil, err
	}

	trade := domain.Trade{
		TradeID:             tradeID,
		CurriculumID:        bid.CurriculumID,
		BuyOrderID:          bid.OrderID,
		SellOrderID:         ask.OrderID,
		BuyerUserID:         bid.UserID,
		SellerUserID:        ask.UserID,
		ExecutionPrice:      price,
		Quantity:            qty,
		LedgerTransactionID: txnID,
		CreatedAt:           now,
	}
	if err := tx.InsertTrade(ctx, trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

func (s *exchangeService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orderRepo.FindOrderByID(ctx, orderID)
}

func (s *exchangeService) OrderBook(ctx context.Context, curriculumID string) (*domain.OrderBook, error) {
	bids, err := s.orderRepo.ListActiveOrders(ctx, curriculumID, domain.OrderSideBid)
	if err != nil {
		return nil, err
	}
	asks, err := s.orderRepo.ListActiveOrders(ctx, curriculumID, domain.OrderSideAsk)
	if err != nil {
		return nil, err
	}
	return &domain.OrderBook{CurriculumID: curriculumID, Bids: bids, Asks: asks}, nil
}

func (s *exchangeService) ListTrades(ctx context.Context, curriculumID string, limit int) ([]domain.Trade, error) {
	if limit <= 0 {
		limit = defaultTradeListLimit
	}
	return s.orderRepo.ListTrades(ctx, curriculumID, limit)
}

func (s *exchangeService) ListUserOrders(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = defaultOrderListLimit
	}
	return s.orderRepo.ListOrdersByUser(ctx, userID, limit)
}
