package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pcparts/notify-relay/internal/metrics"
	"github.com/pcparts/notify-relay/internal/notify"
	"github.com/pcparts/notify-relay/internal/registry"
	"go.uber.org/zap"
)

// ErrTooManyConnections is returned by Join when the hub is full.
var ErrTooManyConnections = errors.New("too many connections")

const (
	defaultSendBuffer   = 64
	defaultWriteTimeout = 10 * time.Second

	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxInbound = 4096
)

// Membership is notified when sessions join or leave a hub.
type Membership interface {
	Register(s registry.Session)
	Unregister(id string)
}

// HubOptions tunes per-connection buffering.
type HubOptions struct {
	SendBuffer     int
	WriteTimeout   time.Duration
	MaxConnections int // 0 means unlimited
}

func (o HubOptions) withDefaults() HubOptions {
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaultWriteTimeout
	}
	return o
}

type client struct {
	id          string
	conn        *websocket.Conn
	hub         *Hub
	send        chan []byte
	connectedAt time.Time
}

// writePump is the only writer for the connection, which keeps frames to one
// session in broadcast order.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.Leave(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.opts.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.log.Debug("write failed", zap.String("session", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and returns when the peer goes away.
func (c *client) readPump() {
	defer c.hub.Leave(c)

	c.conn.SetReadLimit(maxInbound)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Hub holds the live connections of one channel.
type Hub struct {
	channel    notify.Channel
	opts       HubOptions
	membership Membership
	log        *zap.Logger

	mu      sync.RWMutex
	clients map[*client]bool
}

func NewHub(channel notify.Channel, opts HubOptions, membership Membership, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		channel:    channel,
		opts:       opts.withDefaults(),
		membership: membership,
		log:        log.With(zap.String("channel", string(channel))),
		clients:    make(map[*client]bool),
	}
}

// Join adds a connection to the hub and starts its write pump. The caller
// runs c.readPump (or otherwise calls Leave) to detect disconnects.
func (h *Hub) Join(conn *websocket.Conn) (*client, error) {
	c := &client{
		id:          uuid.NewString(),
		conn:        conn,
		hub:         h,
		send:        make(chan []byte, h.opts.SendBuffer),
		connectedAt: time.Now(),
	}

	h.mu.Lock()
	if h.opts.MaxConnections > 0 && len(h.clients) >= h.opts.MaxConnections {
		h.mu.Unlock()
		return nil, ErrTooManyConnections
	}
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()

	metrics.OnlineSessions.WithLabelValues(string(h.channel)).Set(float64(n))
	if h.membership != nil {
		h.membership.Register(registry.Session{ID: c.id, Channel: h.channel, ConnectedAt: c.connectedAt})
	}

	go c.writePump()
	return c, nil
}

// Leave removes a connection. It is safe to call more than once.
func (h *Hub) Leave(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	metrics.OnlineSessions.WithLabelValues(string(h.channel)).Set(float64(n))
	if h.membership != nil {
		h.membership.Unregister(c.id)
	}
}

// Broadcast queues data to every current member and returns how many
// members it was queued for. Members whose buffer is full are disconnected.
func (h *Hub) Broadcast(data []byte) int {
	var slow []*client
	sent := 0

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
			sent++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("session too slow, disconnecting", zap.String("session", c.id))
		metrics.SlowClientsDropped.WithLabelValues(string(h.channel)).Inc()
		h.Leave(c)
	}
	return sent
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
