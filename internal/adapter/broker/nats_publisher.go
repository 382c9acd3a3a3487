// internal/adapter/broker/nats_publisher.go

package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"

	"locallens/internal/config"
	"locallens/internal/domain/content"
)

// DefaultSubject receives every aggregation regardless of location
const DefaultSubject = "news.aggregated"

// Conn is the part of *nats.Conn the publisher needs
type Conn interface {
	Publish(subject string, data []byte) error
}

// AggregatedEvent is the message published after each aggregation
type AggregatedEvent struct {
	Type        string         `json:"type"`
	Location    string         `json:"location"`
	ItemCount   int            `json:"itemCount"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Result      content.Result `json:"result"`
}

// Publisher announces aggregation results on NATS
type Publisher struct {
	conn    Conn
	subject string
	logger  *log.Logger
}

// NewPublisher creates a publisher that writes to subject and its per-location variant
func NewPublisher(conn Conn, subject string, logger *log.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{
		conn:    conn,
		subject: subject,
		logger:  logger,
	}
}

// PublishAggregated publishes the result to the shared subject and the location subject
func (p *Publisher) PublishAggregated(ctx context.Context, r content.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event := AggregatedEvent{
		Type:        "news.aggregated",
		Location:    r.Location,
		ItemCount:   r.TotalResults(),
		GeneratedAt: r.GeneratedAt,
		Result:      r,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("error publishing event: %w", err)
	}

	locationSubject := LocationSubject(r.Location)
	if err := p.conn.Publish(locationSubject, data); err != nil {
		return fmt.Errorf("error publishing event: %w", err)
	}

	p.logger.Debug("published aggregation", "subject", locationSubject, "items", event.ItemCount)
	return nil
}

// LocationSubject returns the per-location subject, e.g. news.baltimore-md.aggregated
func LocationSubject(location string) string {
	return fmt.Sprintf("news.%s.aggregated", Slug(location))
}

// Slug reduces a location to lowercase alphanumerics joined by single dashes
func Slug(location string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(location) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

// Connect opens a NATS connection with reconnect logging
func Connect(cfg config.NATSConfig, logger *log.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("locallens"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

// Subscriber adapts a NATS connection to plain byte callbacks
type Subscriber struct {
	conn *nats.Conn
}

// NewSubscriber creates a subscriber on nc
func NewSubscriber(nc *nats.Conn) *Subscriber {
	return &Subscriber{conn: nc}
}

// Subscribe registers fn for subject and returns its unsubscribe func
func (s *Subscriber) Subscribe(subject string, fn func(data []byte)) (func() error, error) {
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return sub.Unsubscribe, nil
}
