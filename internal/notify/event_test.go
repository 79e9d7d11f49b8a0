package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderEvent_Scenario(t *testing.T) {
	req, err := DecodeOrderRequest([]byte(`{"orderId":501,"contactPhone":"0901234567","customerName":"Nguyen Van A","orderTotal":1500000}`))
	require.NoError(t, err)

	now := time.Date(2024, 1, 13, 8, 30, 0, 123456789, time.FixedZone("ICT", 7*3600))
	ev := NewOrderEvent(req, now)

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 501,
		"contactPhone": "0901234567",
		"customerName": "Nguyen Van A",
		"orderTotal": 1500000,
		"type": "order",
		"read": false,
		"time": "2024-01-13T01:30:00.123Z"
	}`, string(data))
}

func TestNewOrderEvent_GuestName(t *testing.T) {
	for _, body := range []string{
		`{"orderId":1}`,
		`{"orderId":1,"customerName":null}`,
		`{"orderId":1,"customerName":"  "}`,
	} {
		req, err := DecodeOrderRequest([]byte(body))
		require.NoError(t, err)
		ev := NewOrderEvent(req, time.Now())
		assert.Equal(t, GuestCustomerName, ev.CustomerName, "body %s", body)
	}
}

func TestNewOrderEvent_OptionalFields(t *testing.T) {
	req, err := DecodeOrderRequest([]byte(`{"orderId":"A1","customerEmail":"a@b.vn","userId":42,"items":3,"status":"pending","type":"spoofed","read":true,"time":"1999-01-01T00:00:00Z"}`))
	require.NoError(t, err)

	now := time.Now()
	ev := NewOrderEvent(req, now)

	assert.Equal(t, "A1", ev.OrderID())
	assert.Equal(t, "a@b.vn", ev.CustomerEmail.String())
	assert.JSONEq(t, `42`, string(ev.UserID))
	assert.JSONEq(t, `3`, string(ev.Items))
	assert.Equal(t, "pending", ev.Status.String())

	// Caller-supplied metadata is ignored.
	assert.Equal(t, TypeOrder, ev.Type)
	assert.False(t, ev.Read)
	assert.Equal(t, FormatTime(now), ev.Time)
}

func TestNewPromotionExpiryEvent(t *testing.T) {
	req, err := DecodePromotionRequest([]byte(`{"promotions":[{"id":7,"name":"Tet Sale","code":"TET24","expiryDate":"2024-01-15","daysRemaining":2,"discountValue":50000},{"id":8,"name":"Flash","code":"FL"}]}`))
	require.NoError(t, err)

	now := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
	ev := NewPromotionExpiryEvent(req, now, "evt-1")

	assert.Equal(t, "evt-1", ev.ID)
	assert.Equal(t, TypePromotion, ev.Type)
	assert.False(t, ev.Read)
	assert.Equal(t, "2024-01-13T00:00:00.000Z", ev.Time)
	require.Len(t, ev.Promotions, 2)
	assert.Empty(t, ev.Promotions[1].DaysRemaining)

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "evt-1",
		"promotions": [
			{"id":7,"name":"Tet Sale","code":"TET24","expiryDate":"2024-01-15","daysRemaining":2,"discountValue":50000},
			{"id":8,"name":"Flash","code":"FL","expiryDate":null,"daysRemaining":null,"discountValue":null}
		],
		"type": "promotion",
		"read": false,
		"time": "2024-01-13T00:00:00.000Z"
	}`, string(data))
}

func TestFormatParseTime(t *testing.T) {
	now := time.Now()
	parsed, err := ParseTime(FormatTime(now))
	require.NoError(t, err)
	assert.Equal(t, now.Truncate(time.Millisecond).UnixMilli(), parsed.UnixMilli())
}

func TestNewOrderEvent_PassesFieldsThrough(t *testing.T) {
	req, err := DecodeOrderRequest([]byte(`{"orderId":9,"contactPhone":901234567,"orderTotal":"1500000.00","status":2}`))
	require.NoError(t, err)

	ev := NewOrderEvent(req, time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC))
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 9,
		"contactPhone": 901234567,
		"customerName": "Khách vãng lai",
		"orderTotal": "1500000.00",
		"status": 2,
		"type": "order",
		"read": false,
		"time": "2024-01-13T00:00:00.000Z"
	}`, string(data))
}

func TestChannelPath(t *testing.T) {
	assert.Equal(t, "/admin", ChannelAdmin.Path())
	assert.Equal(t, "/client", ChannelClient.Path())
}
