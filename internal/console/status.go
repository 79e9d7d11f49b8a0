package console

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/pcparts/notify-relay/internal/theme"
)

// statusBar shows connection state and inbox counts.
type statusBar struct {
	Connected bool
	Unread    int
	Total     int
	Width     int
}

func (s statusBar) View() string {
	width := s.Width
	if width < 40 {
		width = 40
	}

	var conn string
	if s.Connected {
		conn = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Connected")
	} else {
		conn = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Connecting...")
	}

	unread := fmt.Sprintf("%d unread", s.Unread)
	if s.Unread > 0 {
		unread = theme.StyleUnread.Render(unread)
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := conn + sep + unread + sep + fmt.Sprintf("%d notifications", s.Total)

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
