// Package kafka publica los eventos de pedido en un tópico Kafka con clave = ID del pedido,
// de modo que todos los eventos de un pedido caen en la misma partición y conservan su orden.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/warehouse-orders/internal/application/order"
	"github.com/jhoicas/warehouse-orders/pkg/logger"
)

// Config brokers y tópico destino.
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration // 0 = 50ms
}

// MessageWriter parte de *kafka.Writer que usa el publicador.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implementa order.EventPublisher sobre un kafka.Writer.
type Publisher struct {
	w   MessageWriter
	log *logger.Logger
}

var _ order.EventPublisher = (*Publisher)(nil)

// New construye el writer con balanceo por hash de clave.
func New(cfg Config, log *logger.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka: brokers y tópico son obligatorios")
	}
	batch := cfg.BatchTimeout
	if batch <= 0 {
		batch = 50 * time.Millisecond
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batch,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("publicador kafka listo")
	return NewWithWriter(w, log), nil
}

// NewWithWriter permite inyectar el writer (pruebas u otro transporte compatible).
func NewWithWriter(w MessageWriter, log *logger.Logger) *Publisher {
	return &Publisher{w: w, log: log}
}

// PublishOrderEvent escribe el evento en JSON. El tipo y el contexto de traza van en cabeceras.
func (p *Publisher) PublishOrderEvent(ctx context.Context, evt order.OrderEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("kafka: serializar evento: %w", err)
	}
	carrier := headerCarrier{{Key: "event_type", Value: []byte(evt.Type)}}
	otel.GetTextMapPropagator().Inject(ctx, &carrier)

	msg := kafka.Message{
		Key:     []byte(evt.OrderID),
		Value:   body,
		Headers: carrier,
		Time:    evt.OccurredAt,
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publicar %s del pedido %s: %w", evt.Type, evt.OrderID, err)
	}
	p.log.Debug().Str("order_id", evt.OrderID).Str("event", evt.Type).Msg("evento publicado")
	return nil
}

// Close vacía los lotes pendientes y cierra el writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}

// headerCarrier adapta las cabeceras Kafka a propagation.TextMapCarrier.
type headerCarrier []kafka.Header

func (h *headerCarrier) Get(key string) string {
	for _, hdr := range *h {
		if hdr.Key == key {
			return string(hdr.Value)
		}
	}
	return ""
}

func (h *headerCarrier) Set(key, value string) {
	for i, hdr := range *h {
		if hdr.Key == key {
			(*h)[i].Value = []byte(value)
			return
		}
	}
	*h = append(*h, kafka.Header{Key: key, Value: []byte(value)})
}

func (h *headerCarrier) Keys() []string {
	keys := make([]string, len(*h))
	for i, hdr := range *h {
		keys[i] = hdr.Key
	}
	return keys
}
