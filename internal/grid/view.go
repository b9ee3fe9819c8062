package grid

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/ordergrid/ordergrid/internal/order"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#333333")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	headerRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Bold(true)

	activeCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#555555"))

	awaitingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF9500")).
			Bold(true)

	notificationSuccess = lipgloss.NewStyle().
				Background(lipgloss.Color("#04B575")).
				Foreground(lipgloss.Color("#FFF")).
				Padding(0, 1).
				Bold(true)

	notificationError = lipgloss.NewStyle().
				Background(lipgloss.Color("#FF4444")).
				Foreground(lipgloss.Color("#FFF")).
				Padding(0, 1).
				Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(1, 2)
)

// column layout: label and width per grid column.
var gridColumns = []struct {
	field order.Field
	label string
	width int
}{
	{order.FieldCode, "Code", 12},
	{order.FieldQuantity, "Qty", 8},
	{order.FieldBonus, "Bonus", 8},
	{order.FieldBatch, "Batch", 10},
	{order.FieldPrice, "Price", 10},
	{order.FieldDiscount, "Disc", 10},
	{order.FieldAmount, "Amount", 12},
}

// numText renders a decimal for an editor cell; zero shows as empty so a
// fresh cell is not pre-filled with "0".
func numText(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// pad fits s into a fixed display width, truncating on rune boundaries so
// multibyte names keep the columns aligned.
func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func (m Model) View() string {
	if m.nav.InputSuppressed() {
		return m.picker.View()
	}
	if m.headerForm {
		return m.renderHeaderForm()
	}

	var b strings.Builder

	docType := "Sale"
	if m.header.Type == order.DocumentPurchase {
		docType = "Purchase"
	}
	title := fmt.Sprintf(" %s — %s %s ", m.brand, docType, m.header.DocumentNumber)
	b.WriteString(titleStyle.Render(title) + "\n")
	if m.header.PartyName != "" || m.header.CurrencyName != "" {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  %s | %s", m.header.PartyName, m.header.CurrencyName)) + "\n")
	}
	b.WriteString("\n")

	// Column headers
	head := " #  " + pad("Name", 20)
	for _, col := range gridColumns {
		head += pad(col.label, col.width)
	}
	b.WriteString(headerRowStyle.Render(head) + "\n")

	for i, line := range m.store.Snapshot() {
		b.WriteString(m.renderRow(i, line) + "\n")
	}

	b.WriteString("\n" + m.renderTotals() + "\n")

	if m.busy || m.saving {
		b.WriteString(m.spinner.View() + " " + awaitingStyle.Render("working...") + "\n")
	}
	if m.showNotification {
		style := notificationSuccess
		if m.notificationType == "error" {
			style = notificationError
		}
		b.WriteString(style.Render(m.notification) + "\n")
	}

	b.WriteString(statusBarStyle.Render("tab/enter next · shift+tab back · f3 find item · f9 location · f8 unit · f6 header · ctrl+d del row · ctrl+s save · esc quit"))
	return b.String()
}

func (m Model) renderRow(i int, line order.Line) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%2d  ", line.Serial))
	name := line.ItemName
	if !line.Resolved() {
		name = "(new)"
	}
	b.WriteString(pad(name, 20))

	for _, col := range gridColumns {
		active := i == m.nav.Row && col.field == m.nav.Col
		text := cellValue(line, col.field)
		switch {
		case active && m.nav.AwaitingCell():
			b.WriteString(awaitingStyle.Render(pad(m.input.Value(), col.width)))
		case active:
			b.WriteString(activeCellStyle.Render(pad(m.input.Value(), col.width)))
		case !line.Resolved():
			b.WriteString(placeholderStyle.Render(pad(text, col.width)))
		default:
			b.WriteString(pad(text, col.width))
		}
	}

	if line.StorageLocationName != "" || line.UnitName != "" {
		b.WriteString(helpStyle.Render(fmt.Sprintf(" %s %s", line.UnitName, line.StorageLocationName)))
	}
	return b.String()
}

func (m Model) renderTotals() string {
	return helpStyle.Render(fmt.Sprintf(
		"  Subtotal %s   Discount %s   Tax %s   Grand %s",
		m.totals.Subtotal.StringFixed(2),
		m.totals.Discount.StringFixed(2),
		m.totals.Tax.StringFixed(2),
		m.totals.GrandTotal.StringFixed(2),
	))
}

func (m Model) renderHeaderForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" Order Header ") + "\n\n")
	for i, in := range m.inputs {
		b.WriteString(fmt.Sprintf("  %s:\n", headerFormLabels[i]))
		b.WriteString(fmt.Sprintf("  %s\n\n", in.View()))
	}
	b.WriteString(helpStyle.Render("  suffix % on discount for percent of subtotal · enter apply · esc cancel"))
	return boxStyle.Render(b.String())
}
