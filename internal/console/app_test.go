package console

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pcparts/notify-relay/internal/client"
	"github.com/pcparts/notify-relay/internal/inbox"
	"github.com/pcparts/notify-relay/internal/notify"
)

func newTestModel() Model {
	m := New(nil, nil, nil)
	m.width = 100
	m.height = 30
	m.render = func(md string, _ int) string { return md }
	return m
}

func orderMsg(id string, time string) client.OrderMsg {
	return client.OrderMsg{Event: notify.OrderEvent{
		ID:           json.RawMessage(id),
		ContactPhone: notify.Text("0901234567"),
		CustomerName: "Nguyen Van A",
		Type:         notify.TypeOrder,
		Time:         time,
	}}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNotificationsAddedNewestFirst(t *testing.T) {
	m := newTestModel()
	m = update(t, m, orderMsg("1", "2024-01-13T01:30:00.000Z"))
	m = update(t, m, orderMsg("2", "2024-01-13T01:31:00.000Z"))

	items := m.inbox.Items()
	if len(items) != 2 || items[0].Order.OrderID() != "2" {
		t.Fatalf("items = %+v, want newest first", items)
	}
	if m.inbox.UnreadCount() != 2 {
		t.Errorf("unread = %d, want 2", m.inbox.UnreadCount())
	}
}

func TestDuplicateNotificationIgnored(t *testing.T) {
	m := newTestModel()
	msg := orderMsg("1", "2024-01-13T01:30:00.000Z")
	m = update(t, m, msg)
	m = update(t, m, msg)
	if m.inbox.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.inbox.Len())
	}
}

func TestOpenMarksRead(t *testing.T) {
	m := newTestModel()
	m = update(t, m, orderMsg("1", "2024-01-13T01:30:00.000Z"))
	m = update(t, m, orderMsg("2", "2024-01-13T01:31:00.000Z"))

	// Cursor follows the first item as new ones arrive on top.
	if m.selected != 1 {
		t.Fatalf("selected = %d, want 1", m.selected)
	}
	m = update(t, m, keyMsg("k"))
	m = update(t, m, keyMsg("enter"))

	if !m.detailOpen {
		t.Error("enter should open the detail pane")
	}
	items := m.inbox.Items()
	if !items[0].Read || items[1].Read {
		t.Errorf("read flags = %v,%v, want true,false", items[0].Read, items[1].Read)
	}
	if !strings.Contains(m.View(), "# Order #2") {
		t.Error("detail pane should show the selected order")
	}

	m = update(t, m, keyMsg("esc"))
	if m.detailOpen {
		t.Error("esc should close the detail pane")
	}
}

func TestMarkAllRead(t *testing.T) {
	m := newTestModel()
	m = update(t, m, orderMsg("1", "2024-01-13T01:30:00.000Z"))
	m = update(t, m, client.PromotionsMsg{Event: notify.PromotionExpiryEvent{
		ID:         "p-1",
		Promotions: []notify.PromotionSummary{{Code: notify.Text("TET24"), Name: notify.Text("Tet Sale")}},
		Type:       notify.TypePromotion,
		Time:       "2024-01-13T01:31:00.000Z",
	}})
	m = update(t, m, keyMsg("a"))
	if m.inbox.UnreadCount() != 0 {
		t.Errorf("unread = %d, want 0", m.inbox.UnreadCount())
	}
	if !strings.Contains(m.View(), "0 unread") {
		t.Error("status bar should show 0 unread")
	}
}

func TestNavigationWraps(t *testing.T) {
	m := newTestModel()
	m = update(t, m, orderMsg("1", "2024-01-13T01:30:00.000Z"))
	m = update(t, m, orderMsg("2", "2024-01-13T01:31:00.000Z"))
	m.selected = 0

	m = update(t, m, keyMsg("k"))
	if m.selected != 1 {
		t.Errorf("selected = %d, want 1 after wrapping up", m.selected)
	}
	m = update(t, m, keyMsg("j"))
	if m.selected != 0 {
		t.Errorf("selected = %d, want 0 after wrapping down", m.selected)
	}
}

func TestConnectionState(t *testing.T) {
	m := newTestModel()
	if !strings.Contains(m.View(), "Connecting") {
		t.Error("status bar should show connecting before the first connection")
	}
	m = update(t, m, client.ConnectedMsg{})
	if !strings.Contains(m.View(), "Connected") {
		t.Error("status bar should show connected")
	}
	m = update(t, m, client.DisconnectedMsg{Err: errors.New("eof")})
	if m.connected {
		t.Error("disconnect should clear connected")
	}
}

func TestSavePersistsInbox(t *testing.T) {
	store := inbox.NewStore(t.TempDir())
	m := New(nil, nil, store)
	next, cmd := m.Update(orderMsg("7", "2024-01-13T01:30:00.000Z"))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	runCmd(cmd)

	items, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 1 || items[0].Order.OrderID() != "7" {
		t.Errorf("saved items = %+v", items)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[float64]string{
		0:       "0 ₫",
		999:     "999 ₫",
		1000:    "1.000 ₫",
		1500000: "1.500.000 ₫",
	}
	for in, want := range cases {
		if got := formatMoney(in); got != want {
			t.Errorf("formatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestDetailMarkdown_LooseTypes(t *testing.T) {
	order := notify.OrderEvent{
		ID:           []byte(`7`),
		ContactPhone: notify.Value(`901234567`),
		CustomerName: "An",
		OrderTotal:   notify.Text("1500000.00"),
		Status:       notify.Value(`2`),
		Type:         notify.TypeOrder,
	}
	md := detailMarkdown(inbox.FromOrder(order))
	for _, want := range []string{"| Phone | 901234567 |", "| Total | 1.500.000 ₫ |", "| Status | 2 |"} {
		if !strings.Contains(md, want) {
			t.Errorf("order detail missing %q:\n%s", want, md)
		}
	}

	promos := notify.PromotionExpiryEvent{
		Promotions: []notify.PromotionSummary{{
			Code:          notify.Text("TET24"),
			DaysRemaining: notify.Number(2.5),
			DiscountValue: notify.Text("50000.00"),
		}},
		Type: notify.TypePromotion,
	}
	md = detailMarkdown(inbox.FromPromotions(promos))
	if !strings.Contains(md, "| TET24 |  |  | 2.5 | 50.000 ₫ |") {
		t.Errorf("promotion detail:\n%s", md)
	}
}

// runCmd executes cmd and any batched commands it expands to.
func runCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmd(c)
		}
	}
}
