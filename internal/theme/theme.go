// Package theme provides the Lip Gloss palette and shared styles for the
// admin console. It is a leaf package with no internal imports.
package theme

import "github.com/charmbracelet/lipgloss"

// Notification type colors.
var (
	ColorOrder     = lipgloss.Color("#3b82f6")
	ColorPromotion = lipgloss.Color("#d97706")
	ColorDefault   = lipgloss.Color("#9ca3af")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorUnread  = lipgloss.Color("#22d3ee")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// TypeColor returns the color for a notification type tag.
func TypeColor(typ string) lipgloss.Color {
	switch typ {
	case "order":
		return ColorOrder
	case "promotion":
		return ColorPromotion
	default:
		return ColorDefault
	}
}

// TypeGlyph returns a short marker for a notification type tag.
func TypeGlyph(typ string) string {
	switch typ {
	case "order":
		return "$"
	case "promotion":
		return "%"
	default:
		return "·"
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleUnread = lipgloss.NewStyle().
			Foreground(ColorUnread)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)
)
