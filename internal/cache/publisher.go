package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderPlacedEvent is the message handed to the notification subsystem once
// an order has been committed.
type OrderPlacedEvent struct {
	OrderID     uuid.UUID              `json:"orderId"`
	ShopperID   uuid.UUID              `json:"shopperId"`
	Subtotal    decimal.Decimal        `json:"subtotal"`
	ShippingFee decimal.Decimal        `json:"shippingFee"`
	Total       decimal.Decimal        `json:"total"`
	Items       []OrderPlacedItem      `json:"items"`
	Shipping    model.ShippingSnapshot `json:"shipping"`
	PlacedAt    time.Time              `json:"placedAt"`
}

// OrderPlacedItem is one line of an OrderPlacedEvent.
type OrderPlacedItem struct {
	ProductName string          `json:"productName"`
	VariantName *string         `json:"variantName,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// NewOrderPlacedEvent builds the event payload for a committed order.
func NewOrderPlacedEvent(order *model.OrderDetail) OrderPlacedEvent {
	items := make([]OrderPlacedItem, len(order.Items))
	for i, it := range order.Items {
		items[i] = OrderPlacedItem{
			ProductName: it.ProductName,
			VariantName: it.VariantName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		}
	}
	return OrderPlacedEvent{
		OrderID:     order.ID,
		ShopperID:   order.ShopperID,
		Subtotal:    order.Subtotal,
		ShippingFee: order.ShippingFee,
		Total:       order.Total,
		Items:       items,
		Shipping:    order.Shipping,
		PlacedAt:    order.CreatedAt,
	}
}

// OrderPlacedPublisher notifies downstream consumers that an order was placed.
type OrderPlacedPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *model.OrderDetail) error
}

type redisPublisher struct {
	store   cmdable
	channel string
	logger  zerolog.Logger
}

// NewRedisPublisher publishes order events on a Redis pub/sub channel.
func NewRedisPublisher(client *Client, channel string, logger zerolog.Logger) OrderPlacedPublisher {
	return &redisPublisher{
		store:   client.store,
		channel: channel,
		logger:  logger.With().Str("component", "order_publisher").Logger(),
	}
}

func (p *redisPublisher) PublishOrderPlaced(ctx context.Context, order *model.OrderDetail) error {
	payload, err := json.Marshal(NewOrderPlacedEvent(order))
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}

	receivers, err := p.store.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		p.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to publish order event")
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("channel", p.channel).
		Int64("receivers", receivers).
		Msg("order event published")
	return nil
}

type logPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher records order events in the log only. It is used when Redis
// is disabled.
func NewLogPublisher(logger zerolog.Logger) OrderPlacedPublisher {
	return &logPublisher{logger: logger.With().Str("component", "order_publisher").Logger()}
}

func (p *logPublisher) PublishOrderPlaced(_ context.Context, order *model.OrderDetail) error {
	p.logger.Info().
		Str("order_id", order.ID.String()).
		Str("shopper_id", order.ShopperID.String()).
		Str("total", order.Total.StringFixed(2)).
		Int("item_count", len(order.Items)).
		Msg("order placed")
	return nil
}
