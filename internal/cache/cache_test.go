package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"kart-checkout/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCmdable struct {
	data       map[string]string
	published  map[string][][]byte
	publishErr error
}

func newFakeCmdable() *fakeCmdable {
	return &fakeCmdable{data: map[string]string{}, published: map[string][][]byte{}}
}

func (f *fakeCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if v, ok := f.data[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (f *fakeCmdable) SetNX(ctx context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if _, ok := f.data[key]; ok {
		cmd.SetVal(false)
		return cmd
	}
	f.data[key], _ = value.(string)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeCmdable) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	f.data[key], _ = value.(string)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (f *fakeCmdable) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.publishErr != nil {
		cmd.SetErr(f.publishErr)
		return cmd
	}
	b, _ := message.([]byte)
	f.published[channel] = append(f.published[channel], b)
	cmd.SetVal(1)
	return cmd
}

func (f *fakeCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func testOrder() *model.OrderDetail {
	name := "500 g"
	return &model.OrderDetail{
		Order: model.Order{
			ID:          uuid.New(),
			ShopperID:   uuid.New(),
			Subtotal:    decimal.RequireFromString("200.00"),
			ShippingFee: decimal.RequireFromString("50.00"),
			Total:       decimal.RequireFromString("250.00"),
			Shipping:    model.ShippingSnapshot{Name: "Asha", City: "Pune"},
			CreatedAt:   time.Now().UTC(),
		},
		Items: []model.OrderItem{
			{ProductName: "Tea", VariantName: &name, Quantity: 2, Price: decimal.RequireFromString("100.00")},
		},
	}
}

func TestClient_IdempotencyRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newFakeCmdable()}

	key := client.IdempotencyKey("shopper-1|POST|/api/checkout/orders", "abc")
	assert.Equal(t, "kart:idempotency:shopper-1|POST|/api/checkout/orders:abc", key)

	_, err := client.Get(ctx, key)
	assert.True(t, errors.Is(err, redis.Nil))

	ok, err := client.SetNX(ctx, key, "first", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, key, "second", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	require.NoError(t, client.Set(ctx, key, "final", time.Hour))
	v, err = client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "final", v)

	require.NoError(t, client.Del(ctx, key))
	_, err = client.Get(ctx, key)
	assert.True(t, errors.Is(err, redis.Nil))

	assert.NoError(t, client.Ping(ctx))
}

func TestBuildKey_SkipsEmptyParts(t *testing.T) {
	assert.Equal(t, "kart:idempotency:x", buildKey(idempotencyPrefix, " ", "x"))
	assert.Equal(t, "kart", buildKey())
}

func TestRedisPublisher_PublishOrderPlaced(t *testing.T) {
	fake := newFakeCmdable()
	pub := NewRedisPublisher(&Client{store: fake}, "orders.placed", zerolog.Nop())
	order := testOrder()

	require.NoError(t, pub.PublishOrderPlaced(context.Background(), order))

	require.Len(t, fake.published["orders.placed"], 1)
	var event OrderPlacedEvent
	require.NoError(t, json.Unmarshal(fake.published["orders.placed"][0], &event))
	assert.Equal(t, order.ID, event.OrderID)
	assert.True(t, event.Total.Equal(order.Total))
	require.Len(t, event.Items, 1)
	assert.Equal(t, "Tea", event.Items[0].ProductName)
	assert.Equal(t, "Pune", event.Shipping.City)
}

func TestRedisPublisher_PublishError(t *testing.T) {
	fake := newFakeCmdable()
	fake.publishErr = errors.New("connection refused")
	pub := NewRedisPublisher(&Client{store: fake}, "orders.placed", zerolog.Nop())

	err := pub.PublishOrderPlaced(context.Background(), testOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish order event")
}

func TestLogPublisher_PublishOrderPlaced(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(zerolog.New(&buf))
	order := testOrder()

	require.NoError(t, pub.PublishOrderPlaced(context.Background(), order))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, order.ID.String(), entry["order_id"])
	assert.Equal(t, "250.00", entry["total"])
	assert.Equal(t, "order placed", entry["message"])
}
