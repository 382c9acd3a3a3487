// internal/server/handlers/websocket.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"locallens/internal/adapter/broker"
)

// Subscriber delivers bus messages for a subject until unsubscribed
type Subscriber interface {
	Subscribe(subject string, fn func(data []byte)) (unsubscribe func() error, err error)
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64

	// Messages buffered per client before new ones are dropped
	SendBuffer int
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
		SendBuffer:     16,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// newsClient is one WebSocket subscriber to a location's aggregation events
type newsClient struct {
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	once     sync.Once
	location string
	config   WebSocketConfig
	logger   *log.Logger
	unsub    func() error
}

// NewsWebSocketHandler pushes aggregation events for ?location= to the client
func NewsWebSocketHandler(subscriber Subscriber, snapshots SnapshotLister, logger *log.Logger) http.HandlerFunc {
	config := DefaultWebSocketConfig()

	return func(w http.ResponseWriter, r *http.Request) {
		location := strings.TrimSpace(r.URL.Query().Get("location"))
		if location == "" {
			respondWithError(w, http.StatusBadRequest, "Location parameter required")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("failed to upgrade to WebSocket", "err", err)
			return
		}

		client := &newsClient{
			conn:     conn,
			send:     make(chan []byte, config.SendBuffer),
			done:     make(chan struct{}),
			location: location,
			config:   config,
			logger:   logger,
		}

		subject := broker.LocationSubject(location)
		unsub, err := subscriber.Subscribe(subject, client.enqueue)
		if err != nil {
			logger.Error("failed to subscribe", "subject", subject, "err", err)
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription failed"))
			conn.Close()
			return
		}
		client.unsub = unsub

		go client.writePump()
		go client.readPump()

		client.enqueueJSON(map[string]interface{}{
			"type":     "welcome",
			"location": location,
			"subject":  subject,
			"time":     time.Now(),
		})

		if snapshots != nil {
			client.sendLatestSnapshot(r.Context(), snapshots)
		}

		logger.Debug("websocket connected", "location", location)
	}
}

func (c *newsClient) sendLatestSnapshot(ctx context.Context, snapshots SnapshotLister) {
	snaps, err := snapshots.RecentSnapshots(ctx, c.location, 1)
	if err != nil {
		c.logger.Warn("failed to load snapshot", "location", c.location, "err", err)
		return
	}
	if len(snaps) == 0 {
		return
	}

	c.enqueueJSON(map[string]interface{}{
		"type":     "snapshot",
		"snapshot": snaps[0],
	})
}

// enqueue drops the message when the client is gone or too slow
func (c *newsClient) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Warn("dropping message for slow client", "location", c.location)
	}
}

func (c *newsClient) enqueueJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("failed to marshal websocket message", "err", err)
		return
	}
	c.enqueue(data)
}

// readPump keeps the read deadline fresh and answers ping messages
func (c *newsClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket error", "err", err)
			}
			return
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			c.enqueueJSON(map[string]interface{}{"type": "pong", "time": time.Now()})
		}
	}
}

// writePump forwards queued messages and keeps the connection alive
func (c *newsClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close unsubscribes and closes the connection once
func (c *newsClient) close() {
	c.once.Do(func() {
		close(c.done)
		if c.unsub != nil {
			if err := c.unsub(); err != nil {
				c.logger.Debug("unsubscribe failed", "err", err)
			}
		}
		c.conn.Close()
		c.logger.Debug("websocket closed", "location", c.location)
	})
}
