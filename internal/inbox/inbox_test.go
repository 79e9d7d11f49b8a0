package inbox

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pcparts/notify-relay/internal/notify"
)

func orderItem(id int, time string) Item {
	return FromOrder(notify.OrderEvent{
		ID:           json.RawMessage(fmt.Sprint(id)),
		ContactPhone: notify.Text("0901234567"),
		CustomerName: notify.GuestCustomerName,
		Type:         notify.TypeOrder,
		Time:         time,
	})
}

func TestAdd_NewestFirst(t *testing.T) {
	b := New()
	b.Add(orderItem(1, "2024-01-13T01:30:00.000Z"))
	b.Add(orderItem(2, "2024-01-13T01:31:00.000Z"))

	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Order.OrderID() != "2" || items[1].Order.OrderID() != "1" {
		t.Errorf("order = %s,%s, want 2,1", items[0].Order.OrderID(), items[1].Order.OrderID())
	}
	if b.UnreadCount() != 2 {
		t.Errorf("UnreadCount = %d, want 2", b.UnreadCount())
	}
}

func TestAdd_Cap(t *testing.T) {
	b := New()
	for i := 0; i < MaxItems+5; i++ {
		b.Add(orderItem(i, fmt.Sprintf("2024-01-13T01:%02d:00.000Z", i)))
	}
	items := b.Items()
	if len(items) != MaxItems {
		t.Fatalf("len = %d, want %d", len(items), MaxItems)
	}
	if got := items[0].Order.OrderID(); got != fmt.Sprint(MaxItems+4) {
		t.Errorf("newest = %s, want %d", got, MaxItems+4)
	}
	if got := items[MaxItems-1].Order.OrderID(); got != "5" {
		t.Errorf("oldest kept = %s, want 5", got)
	}
}

func TestAdd_Duplicate(t *testing.T) {
	b := New()
	it := orderItem(1, "2024-01-13T01:30:00.000Z")
	if !b.Add(it) {
		t.Fatal("first Add should succeed")
	}
	if b.Add(it) {
		t.Error("exact duplicate should be ignored")
	}
	// Same order id at a different time is a separate notification.
	if !b.Add(orderItem(1, "2024-01-13T01:35:00.000Z")) {
		t.Error("same id with a new timestamp should be added")
	}
	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2", b.Len())
	}
}

func TestMarkRead(t *testing.T) {
	b := New()
	it := orderItem(1, "2024-01-13T01:30:00.000Z")
	b.Add(it)
	b.Add(orderItem(2, "2024-01-13T01:31:00.000Z"))

	if !b.MarkRead(it.Key) {
		t.Error("MarkRead should report a change")
	}
	if b.MarkRead(it.Key) {
		t.Error("second MarkRead should be a no-op")
	}
	if b.MarkRead("order:missing@x") {
		t.Error("unknown key should be a no-op")
	}
	if b.UnreadCount() != 1 {
		t.Errorf("UnreadCount = %d, want 1", b.UnreadCount())
	}
}

func TestMarkAllRead(t *testing.T) {
	b := New()
	b.Add(orderItem(1, "2024-01-13T01:30:00.000Z"))
	b.Add(orderItem(2, "2024-01-13T01:31:00.000Z"))

	if n := b.MarkAllRead(); n != 2 {
		t.Errorf("MarkAllRead = %d, want 2", n)
	}
	if n := b.MarkAllRead(); n != 0 {
		t.Errorf("second MarkAllRead = %d, want 0", n)
	}
	if b.UnreadCount() != 0 {
		t.Errorf("UnreadCount = %d, want 0", b.UnreadCount())
	}
}

func TestItemsIsCopy(t *testing.T) {
	b := New()
	b.Add(orderItem(1, "2024-01-13T01:30:00.000Z"))
	items := b.Items()
	items[0].Read = true
	if b.UnreadCount() != 1 {
		t.Error("mutating Items() result changed the inbox")
	}
}

func TestTitle(t *testing.T) {
	it := orderItem(42, "2024-01-13T01:30:00.000Z")
	if got, want := it.Title(), "New order #42 from "+notify.GuestCustomerName; got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}

	one := FromPromotions(notify.PromotionExpiryEvent{
		ID:         "p-1",
		Promotions: []notify.PromotionSummary{{Code: notify.Text("TET24")}},
		Type:       notify.TypePromotion,
	})
	if got := one.Title(); got != "Promotion TET24 is expiring" {
		t.Errorf("Title = %q", got)
	}

	two := FromPromotions(notify.PromotionExpiryEvent{
		ID:         "p-2",
		Promotions: []notify.PromotionSummary{{Code: notify.Text("A")}, {Code: notify.Text("B")}},
		Type:       notify.TypePromotion,
	})
	if got := two.Title(); got != "2 promotions expiring: A, B" {
		t.Errorf("Title = %q", got)
	}
}

func TestRestore_Truncates(t *testing.T) {
	var items []Item
	for i := 0; i < MaxItems+3; i++ {
		items = append(items, orderItem(i, "t"))
	}
	b := New()
	b.Restore(items)
	if b.Len() != MaxItems {
		t.Errorf("Len = %d, want %d", b.Len(), MaxItems)
	}
}
