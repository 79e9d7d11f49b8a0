package ingest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/pcparts/notify-relay/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type broadcastCall struct {
	Channel notify.Channel
	Event   string
	Data    any
}

// spyBroadcaster records every broadcast and pretends `members` sessions
// received it.
type spyBroadcaster struct {
	mu      sync.Mutex
	calls   []broadcastCall
	members int
}

func (s *spyBroadcaster) Broadcast(ch notify.Channel, event string, data any) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, broadcastCall{Channel: ch, Event: event, Data: data})
	return s.members
}

func (s *spyBroadcaster) Calls() []broadcastCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]broadcastCall(nil), s.calls...)
}

type fixedCounter int

func (c fixedCounter) Count() int { return int(c) }

func newTestService(t *testing.T, members int) (*Service, *spyBroadcaster) {
	t.Helper()
	spy := &spyBroadcaster{members: members}
	svc := NewService(spy, fixedCounter(members), zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2024, 1, 13, 1, 30, 0, 0, time.UTC) }
	svc.newID = func() string { return "evt-fixed" }
	return svc, spy
}

func TestSubmitOrder_BroadcastsToAdmin(t *testing.T) {
	svc, spy := newTestService(t, 1)

	res, err := svc.SubmitOrder(context.Background(), []byte(`{"orderId":501,"contactPhone":"0901234567","customerName":"Nguyen Van A","orderTotal":1500000}`))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Delivered)

	calls := spy.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, notify.ChannelAdmin, calls[0].Channel)
	assert.Equal(t, notify.EventNewOrder, calls[0].Event)

	data, err := json.Marshal(calls[0].Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 501,
		"contactPhone": "0901234567",
		"customerName": "Nguyen Van A",
		"orderTotal": 1500000,
		"type": "order",
		"read": false,
		"time": "2024-01-13T01:30:00.000Z"
	}`, string(data))
}

func TestSubmitOrder_InvalidDoesNotBroadcast(t *testing.T) {
	svc, spy := newTestService(t, 3)

	for _, body := range []string{`{}`, `{"contactPhone":"0901234567"}`, `not json`, ``} {
		_, err := svc.SubmitOrder(context.Background(), []byte(body))
		assert.ErrorIs(t, err, notify.ErrInvalidRequest, "body %q", body)
	}
	assert.Empty(t, spy.Calls())
}

func TestSubmitOrder_NoAdminsStillSucceeds(t *testing.T) {
	svc, spy := newTestService(t, 0)

	res, err := svc.SubmitOrder(context.Background(), []byte(`{"orderId":1}`))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Delivered)
	assert.Len(t, spy.Calls(), 1)
}

func TestSubmitPromotions(t *testing.T) {
	svc, spy := newTestService(t, 2)

	res, err := svc.SubmitPromotions(context.Background(), []byte(`{"promotions":[{"id":7,"name":"Tet Sale","code":"TET24","expiryDate":"2024-01-15","daysRemaining":2,"discountValue":50000}]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, res.AdminCount)
	assert.Equal(t, "evt-fixed", res.Event.ID)
	require.Len(t, res.Event.Promotions, 1)

	calls := spy.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, notify.ChannelAdmin, calls[0].Channel)
	assert.Equal(t, notify.EventExpiringPromotions, calls[0].Event)

	ev, ok := calls[0].Data.(notify.PromotionExpiryEvent)
	require.True(t, ok)
	assert.Equal(t, notify.TypePromotion, ev.Type)
	assert.False(t, ev.Read)
	assert.Equal(t, "2024-01-13T01:30:00.000Z", ev.Time)
}

func TestSubmitPromotions_InvalidDoesNotBroadcast(t *testing.T) {
	svc, spy := newTestService(t, 2)

	for _, body := range []string{`{}`, `{"promotions":null}`, `{"promotions":[]}`, `{"promotions":"x"}`} {
		_, err := svc.SubmitPromotions(context.Background(), []byte(body))
		assert.ErrorIs(t, err, notify.ErrInvalidRequest, "body %q", body)
	}
	assert.Empty(t, spy.Calls())
}

func TestSubmitOrder_SequentialCallsKeepOrder(t *testing.T) {
	svc, spy := newTestService(t, 1)

	for _, id := range []string{"1", "2", "3"} {
		_, err := svc.SubmitOrder(context.Background(), []byte(`{"orderId":`+id+`}`))
		require.NoError(t, err)
	}

	calls := spy.Calls()
	require.Len(t, calls, 3)
	for i, want := range []string{"1", "2", "3"} {
		ev := calls[i].Data.(notify.OrderEvent)
		assert.Equal(t, want, ev.OrderID())
	}
}
