// Package inbox is the admin-side notification list: newest first, capped,
// with read state that survives console restarts.
package inbox

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pcparts/notify-relay/internal/notify"
)

// MaxItems is how many notifications are kept. Older ones fall off the end.
const MaxItems = 20

// Item is one notification as the admin sees it.
type Item struct {
	Key       string                       `json:"key"`
	Type      string                       `json:"type"`
	Time      string                       `json:"time"`
	Read      bool                         `json:"read"`
	Order     *notify.OrderEvent           `json:"order,omitempty"`
	Promotion *notify.PromotionExpiryEvent `json:"promotion,omitempty"`
}

func FromOrder(e notify.OrderEvent) Item {
	return Item{Key: e.Key(), Type: e.Type, Time: e.Time, Read: e.Read, Order: &e}
}

func FromPromotions(e notify.PromotionExpiryEvent) Item {
	return Item{Key: e.Key(), Type: e.Type, Time: e.Time, Read: e.Read, Promotion: &e}
}

// Title is the one-line summary shown in the list.
func (it Item) Title() string {
	switch {
	case it.Order != nil:
		return fmt.Sprintf("New order #%s from %s", it.Order.OrderID(), it.Order.CustomerName)
	case it.Promotion != nil:
		n := len(it.Promotion.Promotions)
		if n == 1 {
			return fmt.Sprintf("Promotion %s is expiring", it.Promotion.Promotions[0].Code.String())
		}
		codes := make([]string, 0, n)
		for _, p := range it.Promotion.Promotions {
			codes = append(codes, p.Code.String())
		}
		return fmt.Sprintf("%d promotions expiring: %s", n, strings.Join(codes, ", "))
	}
	return it.Type
}

// Inbox is safe for concurrent use.
type Inbox struct {
	mu    sync.Mutex
	items []Item
}

func New() *Inbox {
	return &Inbox{}
}

// Restore replaces the contents with items, keeping at most MaxItems.
func (b *Inbox) Restore(items []Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	b.items = append([]Item(nil), items...)
}

// Add puts it at the front. It reports false when an item with the same key
// is already present.
func (b *Inbox) Add(it Item) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.items {
		if existing.Key == it.Key {
			return false
		}
	}
	b.items = append([]Item{it}, b.items...)
	if len(b.items) > MaxItems {
		b.items = b.items[:MaxItems]
	}
	return true
}

// MarkRead flags the item with key as read. Marking an unknown or already
// read item is a no-op and reports false.
func (b *Inbox) MarkRead(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Key == key {
			if b.items[i].Read {
				return false
			}
			b.items[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead returns how many items changed.
func (b *Inbox) MarkAllRead() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for i := range b.items {
		if !b.items[i].Read {
			b.items[i].Read = true
			n++
		}
	}
	return n
}

func (b *Inbox) UnreadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, it := range b.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// Items returns a copy, newest first.
func (b *Inbox) Items() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Item(nil), b.items...)
}

func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
