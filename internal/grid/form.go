package grid

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ordergrid/ordergrid/internal/order"
)

// Header form: discount, tax rate, shipping and other charges, edited in a
// small overlay. Committing any of them recomputes the totals.

var headerFormLabels = []string{"Discount", "Tax rate", "Shipping", "Other charges"}

func (m *Model) initHeaderForm() {
	m.inputs = make([]textinput.Model, 4)
	values := []string{
		numText(m.header.DiscountValue),
		numText(m.header.TaxRate),
		numText(m.header.Shipping),
		numText(m.header.OtherCharges),
	}
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.SetValue(values[i])
		m.inputs[i] = in
	}
	m.inputs[0].Focus()
	m.focusIndex = 0
	m.headerForm = true
}

func (m *Model) updateFormFocus() {
	for i := range m.inputs {
		if i == m.focusIndex {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m Model) updateHeaderForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.focusIndex++
		if m.focusIndex >= len(m.inputs) {
			m.focusIndex = 0
		}
		m.updateFormFocus()
		return m, nil

	case "shift+tab", "up":
		m.focusIndex--
		if m.focusIndex < 0 {
			m.focusIndex = len(m.inputs) - 1
		}
		m.updateFormFocus()
		return m, nil

	case "enter":
		return m.commitHeaderForm()

	case "esc":
		m.headerForm = false
		return m, nil
	}

	if msg.Type == tea.KeyRunes {
		for _, r := range msg.Runes {
			if !(r >= '0' && r <= '9') && r != '.' && r != '%' {
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m Model) commitHeaderForm() (tea.Model, tea.Cmd) {
	// A trailing % on the discount switches the header to percent mode.
	rawDiscount := strings.TrimSpace(m.inputs[0].Value())
	mode := order.DiscountFixed
	if strings.HasSuffix(rawDiscount, "%") {
		mode = order.DiscountPercent
		rawDiscount = strings.TrimSuffix(rawDiscount, "%")
	}

	discount, err := order.ParseCell(order.FieldDiscount, rawDiscount)
	if err != nil {
		return m, m.notify("error", err.Error())
	}
	tax, err := order.ParseCell(order.FieldPrice, m.inputs[1].Value())
	if err != nil {
		return m, m.notify("error", err.Error())
	}
	shipping, err := order.ParseCell(order.FieldPrice, m.inputs[2].Value())
	if err != nil {
		return m, m.notify("error", err.Error())
	}
	other, err := order.ParseCell(order.FieldPrice, m.inputs[3].Value())
	if err != nil {
		return m, m.notify("error", err.Error())
	}

	m.header.DiscountMode = mode
	m.header.DiscountValue = discount
	m.header.TaxRate = tax
	m.header.Shipping = shipping
	m.header.OtherCharges = other
	m.headerForm = false
	m.recalc()
	return m, nil
}
