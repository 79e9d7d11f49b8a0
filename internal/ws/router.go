package ws

import (
	"encoding/json"

	"github.com/pcparts/notify-relay/internal/metrics"
	"github.com/pcparts/notify-relay/internal/notify"
	"go.uber.org/zap"
)

// Router multiplexes the client and admin channels over one process. An
// event broadcast to one channel never reaches sessions of the other.
type Router struct {
	hubs map[notify.Channel]*Hub
	log  *zap.Logger
}

// NewRouter creates one hub per channel. Sessions of a channel found in
// members are reported to that Membership as they join and leave.
func NewRouter(opts HubOptions, members map[notify.Channel]Membership, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{
		hubs: make(map[notify.Channel]*Hub, len(notify.Channels)),
		log:  log,
	}
	for _, ch := range notify.Channels {
		r.hubs[ch] = NewHub(ch, opts, members[ch], log)
	}
	return r
}

func (r *Router) Hub(ch notify.Channel) (*Hub, bool) {
	h, ok := r.hubs[ch]
	return h, ok
}

// Broadcast wraps data in an envelope and pushes it to every session of the
// channel. It returns the number of sessions the frame was queued for; zero
// members is a successful no-op.
func (r *Router) Broadcast(ch notify.Channel, event string, data any) int {
	h, ok := r.hubs[ch]
	if !ok {
		r.log.Error("broadcast to unknown channel", zap.String("channel", string(ch)))
		return 0
	}

	frame, err := json.Marshal(notify.Envelope{Event: event, Data: data})
	if err != nil {
		r.log.Error("broadcast marshal error", zap.String("event", event), zap.Error(err))
		return 0
	}

	n := h.Broadcast(frame)
	metrics.FramesSent.WithLabelValues(string(ch), event).Add(float64(n))
	r.log.Debug("broadcast",
		zap.String("channel", string(ch)),
		zap.String("event", event),
		zap.Int("sessions", n),
	)
	return n
}

// Counts reports the number of connected sessions per channel.
func (r *Router) Counts() map[notify.Channel]int {
	out := make(map[notify.Channel]int, len(r.hubs))
	for ch, h := range r.hubs {
		out[ch] = h.Count()
	}
	return out
}
