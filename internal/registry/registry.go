// Package registry tracks the live sessions of one channel.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/pcparts/notify-relay/internal/metrics"
	"github.com/pcparts/notify-relay/internal/notify"
	"go.uber.org/zap"
)

// Session is one live persistent connection.
type Session struct {
	ID          string         `json:"id"`
	Channel     notify.Channel `json:"channel"`
	ConnectedAt time.Time      `json:"connectedAt"`
}

// Registry is an in-memory set of sessions. It lives as long as the process
// and is never persisted; the count is used for observability only.
type Registry struct {
	mu       sync.RWMutex
	channel  notify.Channel
	sessions map[string]Session
	log      *zap.Logger
}

func New(channel notify.Channel, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		channel:  channel,
		sessions: make(map[string]Session),
		log:      log.With(zap.String("channel", string(channel))),
	}
}

// Register adds a session. Registering an id twice keeps a single entry.
func (r *Registry) Register(s Session) {
	if s.Channel == "" {
		s.Channel = r.channel
	}
	if s.ConnectedAt.IsZero() {
		s.ConnectedAt = time.Now()
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.RegisteredSessions.WithLabelValues(string(r.channel)).Set(float64(n))
	r.log.Info("session registered", zap.String("session", s.ID), zap.Int("online", n))
}

// Unregister removes a session. Unknown ids are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return
	}
	metrics.RegisteredSessions.WithLabelValues(string(r.channel)).Set(float64(n))
	r.log.Info("session unregistered", zap.String("session", id), zap.Int("online", n))
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sessions returns a snapshot ordered by connection time.
func (r *Registry) Sessions() []Session {
	r.mu.RLock()
	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ConnectedAt.Before(out[j].ConnectedAt)
	})
	return out
}
