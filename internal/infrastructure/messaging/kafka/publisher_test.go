package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jhoicas/warehouse-orders/internal/application/order"
	"github.com/jhoicas/warehouse-orders/internal/infrastructure/messaging/kafka"
	"github.com/jhoicas/warehouse-orders/pkg/logger"
)

type mockWriter struct{ mock.Mock }

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error { return m.Called().Error(0) }

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishOrderEvent_ClaveYCabeceras(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "estado")
	defer span.End()

	w := &mockWriter{}
	var sent []kafkago.Message
	w.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]kafkago.Message) }).
		Return(nil).Once()

	evt := order.OrderEvent{
		Type:           order.EventOrderStatusChanged,
		OrderID:        "o-9",
		Status:         "SHIPPED",
		PreviousStatus: "READY_FOR_SHIPMENT",
		TotalAmount:    decimal.NewFromInt(10),
		OccurredAt:     time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, kafka.NewWithWriter(w, logger.Nop()).PublishOrderEvent(ctx, evt))
	w.AssertExpectations(t)

	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "o-9", string(msg.Key))
	assert.Equal(t, "order.status", header(msg, "event_type"))
	assert.Contains(t, header(msg, "traceparent"), span.SpanContext().TraceID().String())
	assert.Equal(t, evt.OccurredAt, msg.Time)

	var decoded order.OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "READY_FOR_SHIPMENT", decoded.PreviousStatus)
}

func TestPublishOrderEvent_ErrorDelWriter(t *testing.T) {
	w := &mockWriter{}
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("sin líder")).Once()

	err := kafka.NewWithWriter(w, logger.Nop()).PublishOrderEvent(context.Background(), order.OrderEvent{Type: order.EventOrderPlaced, OrderID: "o-1"})
	assert.ErrorContains(t, err, "sin líder")
}

func TestNew_ValidaConfig(t *testing.T) {
	_, err := kafka.New(kafka.Config{Topic: "order-events"}, logger.Nop())
	assert.Error(t, err)

	p, err := kafka.New(kafka.Config{Brokers: []string{"localhost:9092"}, Topic: "order-events"}, logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
