package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	EventOrderPlacedCustomer = "order.placed.customer"
	EventOrderPlacedAdmin    = "order.placed.admin"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaNotifier.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter returns a writer keyed-balanced by order id so that both events of one
// order land on the same partition.
func NewKafkaWriter(brokersCSV, topic string) *kafka.Writer {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
}

type KafkaNotifier struct {
	writer     MessageWriter
	breaker    *gobreaker.CircuitBreaker[struct{}]
	adminEmail string
	logger     *zap.Logger
}

// BreakerSettings controls when publishing stops trying and fails fast.
type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial publish.
	OpenTimeout time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{MaxFailures: 5, OpenTimeout: 30 * time.Second}
}

func NewKafkaNotifier(writer MessageWriter, adminEmail string, settings BreakerSettings, logger *zap.Logger) *KafkaNotifier {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-notifier",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &KafkaNotifier{
		writer:     writer,
		breaker:    breaker,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

type OrderLineEvent struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// OrderPlacedEvent is the message body of both order placed events.
// Recipient is the owner id for the customer event and the admin address for the admin event.
type OrderPlacedEvent struct {
	EventType string           `json:"event_type"`
	OrderID   string           `json:"order_id"`
	OwnerID   string           `json:"owner_id"`
	Recipient string           `json:"recipient"`
	Total     string           `json:"total"`
	Currency  string           `json:"currency"`
	Items     int              `json:"items"`
	Lines     []OrderLineEvent `json:"lines,omitempty"`
	PlacedAt  time.Time        `json:"placed_at"`
}

// NotifyOrderPlaced publishes the customer and admin events of the order in one batch.
func (n *KafkaNotifier) NotifyOrderPlaced(ctx context.Context, order domain.Order) error {
	customer := newOrderPlacedEvent(EventOrderPlacedCustomer, order, order.OwnerID)

	admin := newOrderPlacedEvent(EventOrderPlacedAdmin, order, n.adminEmail)
	admin.Lines = make([]OrderLineEvent, 0, len(order.Lines))
	for _, line := range order.Lines {
		admin.Lines = append(admin.Lines, OrderLineEvent{
			ProductID:   line.ProductID.String(),
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.Amount.StringFixed(domain.MoneyScale),
		})
	}

	msgs := make([]kafka.Message, 0, 2)
	for _, event := range []OrderPlacedEvent{customer, admin} {
		msg, err := newMessage(order.ID.String(), event)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrNotification, err)
		}
		msgs = append(msgs, msg)
	}

	_, err := n.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, n.writer.WriteMessages(ctx, msgs...)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: kafka publishing suspended: %w", domain.ErrNotification, err)
	}
	if err != nil {
		return fmt.Errorf("%w: writer.WriteMessages: %w", domain.ErrNotification, err)
	}

	n.logger.Debug("order placed events published", zap.String("order_id", order.ID.String()))

	return nil
}

func newOrderPlacedEvent(eventType string, order domain.Order, recipient string) OrderPlacedEvent {
	placedAt := order.CreatedAt
	if placedAt.IsZero() {
		placedAt = time.Now()
	}

	return OrderPlacedEvent{
		EventType: eventType,
		OrderID:   order.ID.String(),
		OwnerID:   order.OwnerID,
		Recipient: recipient,
		Total:     order.Total.Amount.StringFixed(domain.MoneyScale),
		Currency:  order.Total.Currency.String(),
		Items:     order.ItemCount(),
		PlacedAt:  placedAt.UTC(),
	}
}

func newMessage(key string, event OrderPlacedEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("json.Marshal: %w", err)
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}, nil
}
