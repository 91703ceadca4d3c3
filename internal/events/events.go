// Package events publishes audit events for administrative mutations.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event describes one administrative mutation.
type Event struct {
	ID         string    `json:"id"`
	Resource   string    `json:"resource"`
	Action     string    `json:"action"`
	ResourceID string    `json:"resource_id"`
	LicenseID  string    `json:"license_id,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Name is the dotted event name, e.g. "license.created".
func (e Event) Name() string {
	return e.Resource + "." + e.Action
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// New fills in the id and timestamp of an event.
func New(resource, action, resourceID string) Event {
	return Event{
		ID:         uuid.NewString(),
		Resource:   resource,
		Action:     action,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
	}
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// NATSPublisher publishes events as JSON on "<prefix>.<resource>.<action>".
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *zap.Logger
}

// Connect dials the NATS server at url. The connection reconnects forever.
func Connect(url, prefix, name string, logger *zap.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Warn("nats error", zap.Error(err))
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return NewNATSPublisher(conn, prefix, logger), nil
}

func NewNATSPublisher(conn *nats.Conn, prefix string, logger *zap.Logger) *NATSPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSPublisher{conn: conn, prefix: strings.Trim(prefix, "."), logger: logger}
}

// Subject returns the subject an event is published on.
func (p *NATSPublisher) Subject(event Event) string {
	if p.prefix == "" {
		return event.Name()
	}
	return p.prefix + "." + event.Name()
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Name(), err)
	}
	msg := nats.NewMsg(p.Subject(event))
	msg.Data = payload
	msg.Header.Set(nats.MsgIdHdr, event.ID)
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish event %s: %w", event.Name(), err)
	}
	p.logger.Debug("audit event published", zap.String("subject", msg.Subject), zap.String("event_id", event.ID))
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Drain()
	if err != nil {
		p.conn.Close()
	}
	return err
}
