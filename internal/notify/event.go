package notify

import (
	"encoding/json"
	"strings"
	"time"
)

// Event names emitted on the admin channel.
const (
	EventNewOrder           = "new-order"
	EventExpiringPromotions = "expiring-promotions"
)

// Discriminant tags carried in every event payload.
const (
	TypeOrder     = "order"
	TypePromotion = "promotion"
)

// GuestCustomerName is used when an order arrives without a customer name.
const GuestCustomerName = "Khách vãng lai"

// TimeLayout is ISO-8601 in UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Envelope is the frame written to a persistent connection.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// OrderEvent announces a newly placed order to admin sessions.
type OrderEvent struct {
	ID            json.RawMessage `json:"id"`
	ContactPhone  Value           `json:"contactPhone"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail Value           `json:"customerEmail,omitempty"`
	UserID        json.RawMessage `json:"userId,omitempty"`
	OrderTotal    Value           `json:"orderTotal,omitempty"`
	Items         json.RawMessage `json:"items,omitempty"`
	Status        Value           `json:"status,omitempty"`
	Type          string          `json:"type"`
	Read          bool            `json:"read"`
	Time          string          `json:"time"`
}

// Key identifies the event for de-duplication on the receiving side.
func (e OrderEvent) Key() string {
	return e.Type + ":" + rawID(e.ID) + "@" + e.Time
}

// PromotionSummary is the fixed shape each expiring promotion is reduced to.
type PromotionSummary struct {
	ID            json.RawMessage `json:"id"`
	Name          Value           `json:"name"`
	Code          Value           `json:"code"`
	ExpiryDate    Value           `json:"expiryDate"`
	DaysRemaining Value           `json:"daysRemaining"`
	DiscountValue Value           `json:"discountValue"`
}

// PromotionExpiryEvent announces promotions that are about to expire.
type PromotionExpiryEvent struct {
	ID         string             `json:"id"`
	Promotions []PromotionSummary `json:"promotions"`
	Type       string             `json:"type"`
	Read       bool               `json:"read"`
	Time       string             `json:"time"`
}

func (e PromotionExpiryEvent) Key() string {
	return e.Type + ":" + e.ID + "@" + e.Time
}

// NewOrderEvent stamps a validated order request with server metadata.
func NewOrderEvent(req *OrderRequest, now time.Time) OrderEvent {
	name := strings.TrimSpace(req.CustomerName.String())
	if name == "" {
		name = GuestCustomerName
	}

	return OrderEvent{
		ID:            req.OrderID,
		ContactPhone:  req.ContactPhone,
		CustomerName:  name,
		CustomerEmail: req.CustomerEmail,
		UserID:        nonNull(req.UserID),
		OrderTotal:    req.OrderTotal,
		Items:         nonNull(req.Items),
		Status:        req.Status,
		Type:          TypeOrder,
		Read:          false,
		Time:          FormatTime(now),
	}
}

// NewPromotionExpiryEvent builds the event for a validated promotion sweep.
func NewPromotionExpiryEvent(req *PromotionRequest, now time.Time, id string) PromotionExpiryEvent {
	promos := make([]PromotionSummary, len(req.Promotions))
	for i, p := range req.Promotions {
		p.ID = nonNull(p.ID)
		promos[i] = p
	}
	return PromotionExpiryEvent{
		ID:         id,
		Promotions: promos,
		Type:       TypePromotion,
		Read:       false,
		Time:       FormatTime(now),
	}
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nonNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

func rawID(raw json.RawMessage) string {
	return strings.Trim(string(raw), `"`)
}

// OrderID returns the order identifier as text, without JSON quoting.
func (e OrderEvent) OrderID() string {
	return rawID(e.ID)
}
