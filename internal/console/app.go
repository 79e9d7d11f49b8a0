// Package console is the admin terminal dashboard: it subscribes to the
// admin channel and keeps an inbox of recent notifications.
package console

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pcparts/notify-relay/internal/client"
	"github.com/pcparts/notify-relay/internal/inbox"
	"github.com/pcparts/notify-relay/internal/theme"
)

// saveErrMsg reports a failed inbox write.
type saveErrMsg struct{ err error }

// Model is the root Bubble Tea model.
type Model struct {
	ws     *client.WSClient
	store  *inbox.Store
	inbox  *inbox.Inbox
	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	selected   int
	detailOpen bool
	connected  bool
	lastErr    string

	render func(md string, width int) string
}

// New creates the root model. ws and store may be nil, which disables the
// subscription and persistence respectively.
func New(ws *client.WSClient, box *inbox.Inbox, store *inbox.Store) Model {
	if box == nil {
		box = inbox.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		ws:     ws,
		store:  store,
		inbox:  box,
		ctx:    ctx,
		cancel: cancel,
		keys:   DefaultKeyMap(),
		render: renderMarkdown,
	}
}

// Init starts the WebSocket connection.
func (m Model) Init() tea.Cmd {
	return m.listen()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case client.ConnectedMsg:
		m.connected = true
		return m, m.readNext()

	case client.DisconnectedMsg:
		m.connected = false
		return m, m.listen()

	case client.OrderMsg:
		save := m.add(inbox.FromOrder(msg.Event))
		return m, tea.Batch(save, m.readNext())

	case client.PromotionsMsg:
		save := m.add(inbox.FromPromotions(msg.Event))
		return m, tea.Batch(save, m.readNext())

	case saveErrMsg:
		m.lastErr = msg.err.Error()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancel()
		if m.ws != nil {
			m.ws.Close()
		}
		return m, tea.Quit
	}

	n := m.inbox.Len()
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.detailOpen = false

	case key.Matches(msg, m.keys.Down):
		if n > 0 {
			m.selected = (m.selected + 1) % n
		}

	case key.Matches(msg, m.keys.Up):
		if n > 0 {
			m.selected = (m.selected - 1 + n) % n
		}

	case key.Matches(msg, m.keys.Open):
		items := m.inbox.Items()
		if m.selected >= len(items) {
			return m, nil
		}
		m.detailOpen = true
		if m.inbox.MarkRead(items[m.selected].Key) {
			return m, m.save()
		}

	case key.Matches(msg, m.keys.MarkAll):
		if m.inbox.MarkAllRead() > 0 {
			return m, m.save()
		}
	}
	return m, nil
}

// add stores it and keeps the cursor on the item it was on.
func (m *Model) add(it inbox.Item) tea.Cmd {
	if !m.inbox.Add(it) {
		return nil
	}
	if n := m.inbox.Len(); n > 1 {
		m.selected = min(m.selected+1, n-1)
	}
	return m.save()
}

func (m Model) save() tea.Cmd {
	if m.store == nil {
		return nil
	}
	items := m.inbox.Items()
	store := m.store
	return func() tea.Msg {
		if err := store.Save(items); err != nil {
			return saveErrMsg{err: err}
		}
		return nil
	}
}

func (m Model) listen() tea.Cmd {
	if m.ws == nil {
		return nil
	}
	return m.ws.Listen(m.ctx)
}

func (m Model) readNext() tea.Cmd {
	if m.ws == nil {
		return nil
	}
	return m.ws.ReadLoop(m.ctx)
}

// View renders the full console.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	items := m.inbox.Items()
	bar := statusBar{
		Connected: m.connected,
		Unread:    m.inbox.UnreadCount(),
		Total:     len(items),
		Width:     m.width,
	}

	sections := []string{bar.View(), m.renderList(items)}
	if m.detailOpen && m.selected < len(items) {
		sections = append(sections, theme.StyleBorder.Render(m.render(detailMarkdown(items[m.selected]), m.width-4)))
	}
	if m.lastErr != "" {
		sections = append(sections, theme.StyleError.Render("  save failed: "+m.lastErr))
	}
	sections = append(sections, theme.StyleDimmed.Render("  "+m.keys.helpLine()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderList(items []inbox.Item) string {
	lines := []string{theme.StyleHeader.Render("NOTIFICATIONS")}
	if len(items) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("  No notifications yet"))
	}

	for i, it := range items {
		prefix := "  "
		if i == m.selected {
			prefix = "> "
		}
		dot := " "
		if !it.Read {
			dot = theme.StyleUnread.Render("●")
		}
		glyph := lipgloss.NewStyle().Foreground(theme.TypeColor(it.Type)).Render(theme.TypeGlyph(it.Type))
		title := it.Title()
		if i == m.selected {
			title = theme.StyleSelected.Render(title)
		}
		when := theme.StyleDimmed.Render(localTime(it.Time, "15:04:05"))
		lines = append(lines, prefix+dot+" "+glyph+" "+when+"  "+title)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
