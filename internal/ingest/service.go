// Package ingest is the write path into the relay: it validates events
// submitted by backend services, stamps server metadata and hands them to
// the broadcaster.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pcparts/notify-relay/internal/metrics"
	"github.com/pcparts/notify-relay/internal/notify"
	"go.uber.org/zap"
)

// Broadcaster pushes an event to every session of a channel.
type Broadcaster interface {
	Broadcast(ch notify.Channel, event string, data any) int
}

// Counter reports how many admin sessions are registered.
type Counter interface {
	Count() int
}

type OrderResult struct {
	Event     notify.OrderEvent
	Delivered int
}

type PromotionResult struct {
	Event      notify.PromotionExpiryEvent
	AdminCount int
	Delivered  int
}

type Service struct {
	broadcaster Broadcaster
	admins      Counter
	log         *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewService(b Broadcaster, admins Counter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		broadcaster: b,
		admins:      admins,
		log:         log,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// SubmitOrder validates body and broadcasts a new-order event to the admin
// channel. Once validation passes the call succeeds regardless of how many
// admins receive the event.
func (s *Service) SubmitOrder(ctx context.Context, body []byte) (OrderResult, error) {
	req, err := notify.DecodeOrderRequest(body)
	if err != nil {
		metrics.EventsRejected.WithLabelValues(notify.EventNewOrder).Inc()
		return OrderResult{}, err
	}

	ev := notify.NewOrderEvent(req, s.now())
	n := s.broadcaster.Broadcast(notify.ChannelAdmin, notify.EventNewOrder, ev)
	metrics.EventsIngested.WithLabelValues(notify.TypeOrder).Inc()

	s.log.Info("new order notified",
		zap.String("order", ev.OrderID()),
		zap.Int("delivered", n),
	)
	return OrderResult{Event: ev, Delivered: n}, nil
}

// SubmitPromotions validates body and broadcasts an expiring-promotions event
// to the admin channel. AdminCount is read before the broadcast and is only
// informational.
func (s *Service) SubmitPromotions(ctx context.Context, body []byte) (PromotionResult, error) {
	req, err := notify.DecodePromotionRequest(body)
	if err != nil {
		metrics.EventsRejected.WithLabelValues(notify.EventExpiringPromotions).Inc()
		return PromotionResult{}, err
	}

	ev := notify.NewPromotionExpiryEvent(req, s.now(), s.newID())
	admins := s.admins.Count()
	n := s.broadcaster.Broadcast(notify.ChannelAdmin, notify.EventExpiringPromotions, ev)
	metrics.EventsIngested.WithLabelValues(notify.TypePromotion).Inc()

	s.log.Info("expiring promotions notified",
		zap.Int("promotions", len(ev.Promotions)),
		zap.Int("admins", admins),
		zap.Int("delivered", n),
	)
	return PromotionResult{Event: ev, AdminCount: admins, Delivered: n}, nil
}
