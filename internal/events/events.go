package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Topics carrying the economy's outbound signals.
const (
	TopicLedgerTransactions      = "ledger.transactions"
	TopicTrades                  = "exchange.trades"
	TopicSubscriptionRevocations = "billing.subscription_revocations"
)

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
	Close() error
}

// TransactionPosted is emitted after a ledger transaction commits.
type TransactionPosted struct {
	TransactionID  string    `json:"transaction_id"`
	EventType      string    `json:"event_type"`
	IdempotencyKey string    `json:"idempotency_key"`
	ActorUserID    *string   `json:"actor_user_id,omitempty"`
	ContextType    *string   `json:"context_type,omitempty"`
	ContextID      *string   `json:"context_id,omitempty"`
	EntryCount     int       `json:"entry_count"`
	PostedAt       time.Time `json:"posted_at"`
}

// TradeExecuted is emitted after a match settles.
type TradeExecuted struct {
	TradeID             string    `json:"trade_id"`
	CurriculumID        string    `json:"curriculum_id"`
	BuyOrderID          string    `json:"buy_order_id"`
	SellOrderID         string    `json:"sell_order_id"`
	ExecutionPrice      int64     `json:"execution_price"`
	Quantity            int64     `json:"quantity"`
	LedgerTransactionID string    `json:"ledger_transaction_id"`
	ExecutedAt          time.Time `json:"executed_at"`
}

// SubscriptionRevocationRequested asks billing to cancel a user's subscription.
type SubscriptionRevocationRequested struct {
	UserID      string    `json:"user_id"`
	Reason      string    `json:"reason"`
	Anchor      string    `json:"anchor"`
	RequestedAt time.Time `json:"requested_at"`
}

// LogPublisher writes events to the structured log. It is used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher returns a publisher that only logs.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "Event published",
		slog.String("topic", topic),
		slog.String("key", key),
		slog.String("payload", string(data)),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// SubscriptionRevoker forwards force-cancel requests to billing over the event bus.
type SubscriptionRevoker struct {
	publisher Publisher
	now       func() time.Time
}

// NewSubscriptionRevoker returns a revoker publishing on TopicSubscriptionRevocations.
func NewSubscriptionRevoker(publisher Publisher) *SubscriptionRevoker {
	return &SubscriptionRevoker{publisher: publisher, now: time.Now}
}

// ForceCancel publishes a revocation keyed by anchor so billing can de-duplicate repeats.
func (r *SubscriptionRevoker) ForceCancel(ctx context.Context, userID, reason, anchor string) error {
	return r.publisher.Publish(ctx, TopicSubscriptionRevocations, anchor, SubscriptionRevocationRequested{
		UserID:      userID,
		Reason:      reason,
		Anchor:      anchor,
		RequestedAt: r.now().UTC(),
	})
}
