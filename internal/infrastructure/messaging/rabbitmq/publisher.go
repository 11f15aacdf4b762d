// Package rabbitmq publica los eventos de pedido en un exchange topic de RabbitMQ.
// La routing key es el tipo de evento (order.placed, order.status).
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/warehouse-orders/internal/application/order"
	"github.com/jhoicas/warehouse-orders/pkg/logger"
)

// Config conexión y exchange.
type Config struct {
	URL      string
	Exchange string
	Retries  int // intentos de conexión; 0 = 5
}

// channel parte de *amqp.Channel que usa el publicador.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implementa order.EventPublisher sobre un canal AMQP.
// Un canal AMQP no admite publicaciones concurrentes; mu las serializa.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	log      *logger.Logger
	now      func() time.Time
}

var _ order.EventPublisher = (*Publisher)(nil)

// Dial conecta con reintentos, declara el exchange topic durable y devuelve el publicador.
func Dial(ctx context.Context, cfg Config, log *logger.Logger) (*Publisher, error) {
	if cfg.Exchange == "" {
		return nil, errors.New("rabbitmq: exchange vacío")
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = 5
	}

	var conn *amqp.Connection
	var err error
	for i := 0; i < retries; i++ {
		conn, err = amqp.Dial(cfg.URL)
		if err == nil {
			break
		}
		wait := time.Duration(i*i)*time.Second + time.Second
		log.Warn().Err(err).Dur("retry_in", wait).Msg("rabbitmq no disponible, reintentando")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: conectar tras %d intentos: %w", retries, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: abrir canal: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: declarar exchange %s: %w", cfg.Exchange, err)
	}
	log.Info().Str("exchange", cfg.Exchange).Msg("publicador rabbitmq listo")

	p := newPublisher(ch, cfg.Exchange, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, log *logger.Logger) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, log: log, now: time.Now}
}

// PublishOrderEvent serializa el evento en JSON y lo publica como mensaje persistente.
// El contexto de traza viaja en las cabeceras del mensaje.
func (p *Publisher) PublishOrderEvent(ctx context.Context, evt order.OrderEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("rabbitmq: serializar evento: %w", err)
	}
	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, tableCarrier(headers))

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.OrderID + ":" + evt.Type + ":" + evt.Status,
		Timestamp:    p.now(),
		Type:         evt.Type,
		Headers:      headers,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return errors.New("rabbitmq: publicador cerrado")
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, evt.Type, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publicar en %s con routing key %s: %w", p.exchange, evt.Type, err)
	}
	p.log.Debug().Str("order_id", evt.OrderID).Str("routing_key", evt.Type).Msg("evento publicado")
	return nil
}

// Close cierra canal y conexión. Llamadas repetidas no fallan.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs error
	if p.ch != nil {
		errs = errors.Join(errs, p.ch.Close())
		p.ch = nil
	}
	if p.conn != nil {
		errs = errors.Join(errs, p.conn.Close())
		p.conn = nil
	}
	return errs
}

// tableCarrier adapta amqp.Table a propagation.TextMapCarrier.
type tableCarrier amqp.Table

func (t tableCarrier) Get(key string) string {
	s, _ := t[key].(string)
	return s
}

func (t tableCarrier) Set(key, value string) { t[key] = value }

func (t tableCarrier) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	return keys
}
