package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/pcparts/notify-relay/internal/notify"
	"go.uber.org/zap"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	writeTimeout       = 10 * time.Second
	pongTimeout        = 60 * time.Second
	pingInterval       = 30 * time.Second
)

var errNotConnected = errors.New("not connected")

// WSClient subscribes to a relay channel and reconnects when it drops.
type WSClient struct {
	url string
	log *zap.Logger

	mu       sync.Mutex
	writeMu  sync.Mutex
	conn     *websocket.Conn
	stopPing context.CancelFunc
	delay    time.Duration
}

// NewWSClient creates a client that connects to the given WebSocket URL,
// normally ws://host:3003/admin.
func NewWSClient(url string, log *zap.Logger) *WSClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSClient{url: url, log: log, delay: reconnectBaseDelay}
}

// ConnectedMsg is sent when the connection is established.
type ConnectedMsg struct{}

// DisconnectedMsg is sent when the connection drops.
type DisconnectedMsg struct{ Err error }

// OrderMsg delivers a new-order event.
type OrderMsg struct{ Event notify.OrderEvent }

// PromotionsMsg delivers an expiring-promotions event.
type PromotionsMsg struct{ Event notify.PromotionExpiryEvent }

// Listen returns a Bubble Tea command that dials until it succeeds or ctx is
// cancelled. Failed attempts back off exponentially up to 30s.
func (c *WSClient) Listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		for {
			if ctx.Err() != nil {
				return nil
			}

			conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
			if err != nil {
				c.mu.Lock()
				delay := c.delay
				c.delay = min(c.delay*2, reconnectMaxDelay)
				c.mu.Unlock()

				c.log.Debug("ws dial failed", zap.String("url", c.url), zap.Duration("retry", delay), zap.Error(err))
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(delay):
				}
				continue
			}

			c.mu.Lock()
			if c.stopPing != nil {
				c.stopPing()
			}
			pingCtx, cancel := context.WithCancel(ctx)
			c.conn = conn
			c.stopPing = cancel
			c.delay = reconnectBaseDelay
			c.mu.Unlock()

			go c.pingLoop(pingCtx, conn)
			return ConnectedMsg{}
		}
	}
}

// ReadLoop returns a command that blocks until the next notification frame.
// Start it after ConnectedMsg and again after every notification message.
func (c *WSClient) ReadLoop(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return DisconnectedMsg{Err: errNotConnected}
		}

		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongTimeout))
			return nil
		})
		conn.SetReadDeadline(time.Now().Add(pongTimeout))

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				c.drop(conn)
				return DisconnectedMsg{Err: err}
			}

			if msg := c.dispatch(data); msg != nil {
				return msg
			}
		}
	}
}

// Close drops the current connection, if any.
func (c *WSClient) Close() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		c.drop(conn)
	}
}

func (c *WSClient) drop(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		if c.stopPing != nil {
			c.stopPing()
			c.stopPing = nil
		}
	}
	c.mu.Unlock()
	conn.Close()
}

func (c *WSClient) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (c *WSClient) dispatch(data []byte) tea.Msg {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		c.log.Debug("ws bad frame", zap.Error(err))
		return nil
	}

	switch f.Event {
	case notify.EventNewOrder:
		var e notify.OrderEvent
		if json.Unmarshal(f.Data, &e) == nil {
			return OrderMsg{Event: e}
		}
	case notify.EventExpiringPromotions:
		var e notify.PromotionExpiryEvent
		if json.Unmarshal(f.Data, &e) == nil {
			return PromotionsMsg{Event: e}
		}
	default:
		c.log.Debug("ws unknown event", zap.String("event", f.Event))
	}
	return nil
}
