package grid

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ordergrid/ordergrid/internal/order"
)

func (m *Model) newPicker(title string, entries []list.Item) {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = selectedStyle

	w, h := m.width-8, m.height-10
	if w < 30 {
		w = 30
	}
	if h < 8 {
		h = 8
	}
	m.picker = list.New(entries, delegate, w, h)
	m.picker.Title = title
	m.picker.SetShowStatusBar(false)
	m.picker.SetFilteringEnabled(false)
	m.picker.Styles.Title = titleStyle
}

func (m *Model) openLocationPicker(locations []order.Location) {
	entries := make([]list.Item, 0, len(locations))
	for _, loc := range locations {
		entries = append(entries, pickerEntry{name: loc.Name, details: fmt.Sprintf("location #%d", loc.ID), location: loc})
	}
	m.newPicker("Storage Location", entries)
	m.pickerKind = LookupLocation
	m.nav = m.nav.OpenLookup(LookupLocation)
}

func (m *Model) openUnitPicker(units []order.UnitVariant) {
	entries := make([]list.Item, 0, len(units))
	for _, u := range units {
		details := fmt.Sprintf("price %s, x%s base", u.Price.StringFixed(2), u.ToBaseRatio.String())
		entries = append(entries, pickerEntry{name: u.UnitName, details: details, unit: u})
	}
	m.newPicker("Unit", entries)
	m.pickerKind = LookupUnit
	m.nav = m.nav.OpenLookup(LookupUnit)
}

// updatePicker routes keys to the open modal. Escape cancels and restores
// focus to the originating cell; Enter applies the highlighted match.
func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.nav = m.nav.CloseLookup()
		m.syncInput()
		return m, nil

	case "enter":
		entry, ok := m.picker.SelectedItem().(pickerEntry)
		m.nav = m.nav.CloseLookup()
		if !ok {
			m.syncInput()
			return m, nil
		}
		switch m.pickerKind {
		case LookupLocation:
			m.store.InsertOrUpdateAt(m.nav.Row, func(l *order.Line) {
				l.StorageLocationID = entry.location.ID
				l.StorageLocationName = entry.location.Name
			})
		case LookupUnit:
			m.store.InsertOrUpdateAt(m.nav.Row, func(l *order.Line) {
				l.ApplyUnit(entry.unit)
			})
			m.recalc()
		}
		m.syncInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}
