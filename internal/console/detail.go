package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pcparts/notify-relay/internal/inbox"
	"github.com/pcparts/notify-relay/internal/notify"
)

// detailMarkdown describes an item as Markdown for the detail pane.
func detailMarkdown(it inbox.Item) string {
	var b strings.Builder
	switch {
	case it.Order != nil:
		o := it.Order
		fmt.Fprintf(&b, "# Order #%s\n\n", o.OrderID())
		b.WriteString("| Field | Value |\n|---|---|\n")
		row(&b, "Customer", o.CustomerName)
		row(&b, "Phone", o.ContactPhone.String())
		row(&b, "Email", o.CustomerEmail.String())
		row(&b, "Total", money(o.OrderTotal))
		row(&b, "Status", o.Status.String())
		row(&b, "Received", localTime(o.Time, "2006-01-02 15:04:05"))
	case it.Promotion != nil:
		p := it.Promotion
		fmt.Fprintf(&b, "# Expiring promotions (%d)\n\n", len(p.Promotions))
		b.WriteString("| Code | Name | Expires | Days left | Discount |\n|---|---|---|---|---|\n")
		for _, s := range p.Promotions {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				cell(s.Code.String()), cell(s.Name.String()), cell(s.ExpiryDate.String()),
				cell(s.DaysRemaining.String()), cell(money(s.DiscountValue)))
		}
		fmt.Fprintf(&b, "\nReceived %s\n", localTime(p.Time, "2006-01-02 15:04:05"))
	default:
		fmt.Fprintf(&b, "# %s\n", it.Type)
	}
	return b.String()
}

func row(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "| %s | %s |\n", label, cell(value))
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// money formats numeric amounts, including decimal strings, and shows
// anything else as sent.
func money(v notify.Value) string {
	if f, ok := v.Float(); ok {
		return formatMoney(f)
	}
	return v.String()
}

// formatMoney renders an amount in VND with dot thousands separators.
func formatMoney(v float64) string {
	n := int64(v)
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprint(n)
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out) + " ₫"
	}
	return string(out) + " ₫"
}

func localTime(s, layout string) string {
	t, err := notify.ParseTime(s)
	if err != nil {
		return s
	}
	return t.Local().Format(layout)
}

// renderMarkdown renders md with glamour, falling back to the raw text.
func renderMarkdown(md string, width int) string {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
