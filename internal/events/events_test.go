package events

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_backend/internal/logging"
)

func TestEmitRecords(t *testing.T) {
	mem := &Memory{}
	Emit(context.Background(), mem, TopicOrders, "ORD-1", map[string]any{"type": "order_created", "order_id": "ORD-1"})

	msgs := mem.Messages(TopicOrders)
	require.Len(t, msgs, 1)
	assert.Equal(t, "ORD-1", msgs[0].Key)
	assert.Equal(t, "order_created", msgs[0].Event["type"])
	assert.Empty(t, mem.Messages(TopicCart))
}

func TestEmitSwallowsErrors(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.IntoContext(context.Background(), logging.NewWithWriter(&buf, "info"))

	mem := &Memory{Err: errors.New("broker down")}
	Emit(ctx, mem, TopicCart, "1", map[string]any{"type": "add_cart_item"})

	assert.Contains(t, buf.String(), "publish_event_error")
	assert.Contains(t, buf.String(), "broker down")
}

func TestEmitNilPublisher(t *testing.T) {
	assert.NotPanics(t, func() { Emit(context.Background(), nil, TopicCart, "1", nil) })
}

func TestNewKafkaProducerNeedsBrokers(t *testing.T) {
	_, err := NewKafkaProducer(nil)
	assert.ErrorIs(t, err, ErrNoBrokers)

	p, err := NewKafkaProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}
