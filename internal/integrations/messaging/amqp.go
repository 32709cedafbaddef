package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeKind = "topic"

// AMQPTransport публикует сообщения в exchange, который читает шлюз мессенджера
type AMQPTransport struct {
	url        string
	exchange   string
	routingKey string
	timeout    time.Duration

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPTransport создает транспорт, соединение открывается в Connect
func NewAMQPTransport(url, exchange, routingKey string, timeout time.Duration) *AMQPTransport {
	return &AMQPTransport{
		url:        url,
		exchange:   exchange,
		routingKey: routingKey,
		timeout:    timeout,
	}
}

// Connect открывает соединение, канал и объявляет exchange
func (t *AMQPTransport) Connect(ctx context.Context) (<-chan error, error) {
	cfg := amqp.Config{Properties: amqp.NewConnectionProperties()}
	cfg.Properties.SetClientConnectionName("workshop-booking")
	if t.timeout > 0 {
		cfg.Dial = amqp.DefaultDial(t.timeout)
	}

	conn, err := amqp.DialConfig(t.url, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: dial rabbitmq: %v", ErrInternal, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", ErrInternal, err)
	}

	if err := ch.ExchangeDeclare(t.exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare exchange %q: %v", ErrInternal, t.exchange, err)
	}

	t.mu.Lock()
	t.conn = conn
	t.ch = ch
	t.mu.Unlock()

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	lost := make(chan error, 1)
	go func() {
		if amqpErr, ok := <-closed; ok && amqpErr != nil {
			lost <- fmt.Errorf("%w: %v", ErrConnectionLost, amqpErr)
			return
		}
		lost <- ErrConnectionLost
	}()

	return lost, nil
}

// Publish публикует сообщение в JSON
func (t *AMQPTransport) Publish(ctx context.Context, msg Message) error {
	t.mu.Lock()
	ch := t.ch
	t.mu.Unlock()
	if ch == nil {
		return ErrNotReady
	}

	body, err := json.Marshal(newPayload(msg))
	if err != nil {
		return fmt.Errorf("%w: marshal message: %v", ErrInternal, err)
	}

	return ch.PublishWithContext(ctx, t.exchange, t.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// Close закрывает канал и соединение
func (t *AMQPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ch != nil {
		_ = t.ch.Close()
		t.ch = nil
	}
	if t.conn != nil {
		err := t.conn.Close()
		t.conn = nil
		if err != nil && err != amqp.ErrClosed {
			return err
		}
	}
	return nil
}
