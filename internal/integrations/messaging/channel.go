package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State состояние канала
type State string

const (
	StateDisconnected   State = "disconnected"
	StateAuthenticating State = "authenticating"
	StateReady          State = "ready"
	StateFailed         State = "failed"
)

// AllStates все состояния канала
var AllStates = []State{StateDisconnected, StateAuthenticating, StateReady, StateFailed}

const (
	defaultReconnectInterval = 5 * time.Second
	maxReconnectInterval     = time.Minute
)

// Channel канал доставки сообщений с явным состоянием соединения
//
// Отправка возможна только в состоянии ready. В остальных состояниях Send
// сразу возвращает ErrNotReady, сообщения не ставятся в очередь.
type Channel struct {
	transport         Transport
	reconnectInterval time.Duration
	metrics           StateRecorder
	logger            Logger

	mu        sync.RWMutex
	state     State
	listeners []func(State)
}

// NewChannel создает канал в состоянии disconnected
// При transport == nil канал остается отключенным
func NewChannel(transport Transport, reconnectInterval time.Duration, metrics StateRecorder, logger Logger) *Channel {
	if reconnectInterval <= 0 {
		reconnectInterval = defaultReconnectInterval
	}
	c := &Channel{
		transport:         transport,
		reconnectInterval: reconnectInterval,
		metrics:           metrics,
		logger:            logger,
		state:             StateDisconnected,
	}
	c.recordState(StateDisconnected)
	return c
}

// State текущее состояние
func (c *Channel) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// OnStateChange подписка на смену состояния
func (c *Channel) OnStateChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Send отправляет текст на адрес
func (c *Channel) Send(ctx context.Context, address, text string) error {
	if state := c.State(); state != StateReady {
		return fmt.Errorf("%w: state=%s", ErrNotReady, state)
	}

	msg := Message{ID: uuid.NewString(), To: address, Text: text}
	if err := c.transport.Publish(ctx, msg); err != nil {
		return fmt.Errorf("%w: message id=%s: %w", ErrSendFailed, msg.ID, err)
	}

	return nil
}

// Run держит соединение до отмены контекста, переподключаясь с растущей паузой
func (c *Channel) Run(ctx context.Context) error {
	if c.transport == nil {
		c.logger.Warn("Messaging: transport is not configured, notifications are disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	interval := c.reconnectInterval
	for {
		c.setState(StateAuthenticating)

		lost, err := c.transport.Connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.setState(StateDisconnected)
				return ctx.Err()
			}
			c.setState(StateFailed)
			c.logger.Error("Messaging: failed to connect, retry in %s: %v", interval, err)
		} else {
			c.setState(StateReady)
			c.logger.Info("Messaging: channel is ready")
			interval = c.reconnectInterval

			select {
			case <-ctx.Done():
				c.setState(StateDisconnected)
				if err := c.transport.Close(); err != nil {
					c.logger.Warn("Messaging: failed to close transport: %v", err)
				}
				return ctx.Err()
			case err := <-lost:
				c.setState(StateDisconnected)
				c.logger.Warn("Messaging: connection lost, reconnect in %s: %v", interval, err)
				_ = c.transport.Close()
			}
		}

		select {
		case <-ctx.Done():
			c.setState(StateDisconnected)
			return ctx.Err()
		case <-time.After(interval):
		}

		interval *= 2
		if interval > maxReconnectInterval {
			interval = maxReconnectInterval
		}
	}
}

func (c *Channel) setState(next State) {
	c.mu.Lock()
	if c.state == next {
		c.mu.Unlock()
		return
	}
	c.state = next
	listeners := append(([]func(State))(nil), c.listeners...)
	c.mu.Unlock()

	c.recordState(next)
	for _, fn := range listeners {
		fn(next)
	}
}

func (c *Channel) recordState(current State) {
	if c.metrics == nil {
		return
	}
	all := make([]string, len(AllStates))
	for i, s := range AllStates {
		all[i] = string(s)
	}
	c.metrics.ChannelState(string(current), all)
}
