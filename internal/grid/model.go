package grid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ordergrid/ordergrid/internal/catalog"
	"github.com/ordergrid/ordergrid/internal/order"
)

// Backend is the slice of the catalog client the grid needs. Tests swap in
// fakes with function fields.
type Backend interface {
	SearchItem(ctx context.Context, query string, priceCategory int64) (order.Item, error)
	ItemUnits(ctx context.Context, itemID int64) ([]order.UnitVariant, error)
	StorageLocations(ctx context.Context) ([]order.Location, error)
	SaveOrder(ctx context.Context, h order.Header, lines []order.Line) (catalog.SavedOrder, error)
	DeleteOrder(ctx context.Context, id int64) error
	GenerateNumber(ctx context.Context, book string, docType order.DocumentType) (catalog.GeneratedNumber, error)
}

// Messages
type itemResolvedMsg struct {
	row   int
	token int
	item  order.Item
}

type lookupFailedMsg struct {
	row   int
	token int
	err   error
}

type unitsLoadedMsg struct {
	row   int
	token int
	units []order.UnitVariant
	err   error
}

type locationsLoadedMsg struct {
	locations []order.Location
	err       error
}

type numberGeneratedMsg struct {
	gen catalog.GeneratedNumber
	err error
}

type orderSavedMsg struct {
	saved catalog.SavedOrder
	err   error
}

type orderDeletedMsg struct {
	err error
}

type clearNotificationMsg struct{}

// pickerEntry is one row of a modal lookup picker.
type pickerEntry struct {
	name     string
	details  string
	location order.Location
	unit     order.UnitVariant
}

func (e pickerEntry) Title() string       { return e.name }
func (e pickerEntry) Description() string { return e.details }
func (e pickerEntry) FilterValue() string { return e.name }

// Model is the order-entry grid: the line store, the focus state machine
// and the async lookup plumbing, rendered as one bubbletea program.
type Model struct {
	backend       Backend
	brand         string
	priceCategory int64

	store  *order.Store
	header order.Header
	totals order.Totals

	nav    Controller
	input  textinput.Model
	revert string // committed value to restore on a failed cell edit

	// One monotonically increasing token per row; a lookup result is
	// honored only when its token still matches the row's current one.
	tokens map[int]int

	picker     list.Model
	pickerKind LookupKind

	headerForm bool
	inputs     []textinput.Model
	focusIndex int

	spinner spinner.Model
	busy    bool
	saving  bool

	confirmDelete bool

	notification     string
	notificationType string
	showNotification bool

	width  int
	height int
}

// New builds a grid model over the given store and header.
func New(backend Backend, brand string, priceCategory int64, h order.Header, store *order.Store) Model {
	in := textinput.New()
	in.Prompt = ""
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	m := Model{
		backend:       backend,
		brand:         brand,
		priceCategory: priceCategory,
		store:         store,
		header:        h,
		nav:           NewController(),
		input:         in,
		tokens:        make(map[int]int),
		spinner:       s,
	}
	m.recalc()
	m.syncInput()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.header.DocumentNumber == "" && m.header.Book != "" {
		cmds = append(cmds, m.generateNumber())
	}
	return tea.Batch(cmds...)
}

// Run starts the grid as a full-screen program.
func Run(backend Backend, brand string, priceCategory int64, h order.Header, store *order.Store) error {
	p := tea.NewProgram(New(backend, brand, priceCategory, h, store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) recalc() {
	m.totals = order.OrderTotals(m.store.Snapshot(), m.header)
}

// cellValue is the committed text of a cell, what the editor shows when
// focus lands on it.
func cellValue(l order.Line, f order.Field) string {
	switch f {
	case order.FieldCode:
		return l.ItemCode
	case order.FieldQuantity:
		return numText(l.Quantity)
	case order.FieldBonus:
		return numText(l.BonusQuantity)
	case order.FieldBatch:
		return l.BatchNumber
	case order.FieldPrice:
		return numText(l.UnitPrice)
	case order.FieldDiscount:
		return numText(l.LineDiscount)
	case order.FieldAmount:
		return l.LineAmount.StringFixed(2)
	}
	return ""
}

func (m *Model) syncInput() {
	line, _ := m.store.Line(m.nav.Row)
	m.revert = cellValue(line, m.nav.Col)
	m.input.SetValue(m.revert)
	m.input.CursorEnd()
}

// clampFocus forces focus onto the code column of unresolved rows so a
// placeholder can never take numeric edits.
func (m *Model) clampFocus() {
	if m.nav.Row >= m.store.Len() {
		m.nav.Row = m.store.Len() - 1
	}
	if m.nav.Row < 0 {
		m.nav.Row = 0
	}
	line, _ := m.store.Line(m.nav.Row)
	if !line.Resolved() && !EditableWhenUnresolved(m.nav.Col) {
		m.nav.Col = order.FieldCode
	}
}

// retireRow invalidates any lookup still in flight for a row. Moving focus
// off a row retires its request for good; focus coming back later must not
// revive a result that was issued for a different edit.
func (m *Model) retireRow(row int) {
	m.tokens[row]++
}

// retireRowsFrom retires every row at or past the given index. Deleting a
// row shifts its successors left, so results keyed to the old indexes must
// never land.
func (m *Model) retireRowsFrom(row int) {
	for r := range m.tokens {
		if r >= row {
			m.tokens[r]++
		}
	}
}

func (m *Model) notify(kind, text string) tea.Cmd {
	m.notification = text
	m.notificationType = kind
	m.showNotification = true
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearNotificationMsg{} })
}

// Commands

func (m Model) resolveItem(row, token int, query string) tea.Cmd {
	return func() tea.Msg {
		item, err := m.backend.SearchItem(context.Background(), query, m.priceCategory)
		if err != nil {
			return lookupFailedMsg{row: row, token: token, err: err}
		}
		return itemResolvedMsg{row: row, token: token, item: item}
	}
}

func (m Model) loadUnits(row, token int, itemID int64) tea.Cmd {
	return func() tea.Msg {
		units, err := m.backend.ItemUnits(context.Background(), itemID)
		return unitsLoadedMsg{row: row, token: token, units: units, err: err}
	}
}

func (m Model) loadLocations() tea.Cmd {
	return func() tea.Msg {
		locations, err := m.backend.StorageLocations(context.Background())
		return locationsLoadedMsg{locations: locations, err: err}
	}
}

func (m Model) generateNumber() tea.Cmd {
	return func() tea.Msg {
		gen, err := m.backend.GenerateNumber(context.Background(), m.header.Book, m.header.Type)
		return numberGeneratedMsg{gen: gen, err: err}
	}
}

func (m Model) saveOrder() tea.Cmd {
	h := m.header
	lines := m.store.ResolvedLines()
	return func() tea.Msg {
		saved, err := m.backend.SaveOrder(context.Background(), h, lines)
		return orderSavedMsg{saved: saved, err: err}
	}
}

func (m Model) deleteOrder() tea.Cmd {
	id := m.header.ID
	return func() tea.Msg {
		return orderDeletedMsg{err: m.backend.DeleteOrder(context.Background(), id)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.busy && !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clearNotificationMsg:
		m.showNotification = false
		return m, nil

	case itemResolvedMsg:
		return m.handleItemResolved(msg)

	case lookupFailedMsg:
		if msg.token != m.tokens[msg.row] {
			return m, nil // stale response, a newer request owns the row
		}
		m.busy = false
		m.nav = m.nav.Resume()
		m.input.SetValue(m.revert)
		m.input.CursorEnd()
		if errors.Is(msg.err, catalog.ErrNotFound) {
			return m, m.notify("error", "no item matches that code")
		}
		return m, m.notify("error", msg.err.Error())

	case unitsLoadedMsg:
		m.busy = false
		if msg.token != m.tokens[msg.row] || msg.row != m.nav.Row {
			return m, nil // stale response, the grid moved on while it was in flight
		}
		if msg.err != nil {
			return m, m.notify("error", msg.err.Error())
		}
		line, ok := m.store.Line(msg.row)
		if !ok || !line.Resolved() {
			return m, nil
		}
		m.store.InsertOrUpdateAt(msg.row, func(l *order.Line) { l.AvailableUnits = msg.units })
		m.openUnitPicker(msg.units)
		return m, nil

	case locationsLoadedMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.notify("error", msg.err.Error())
		}
		if len(msg.locations) == 0 {
			return m, m.notify("error", "no storage locations defined")
		}
		m.openLocationPicker(msg.locations)
		return m, nil

	case numberGeneratedMsg:
		if msg.err != nil {
			return m, m.notify("error", fmt.Sprintf("number generation failed: %s", msg.err))
		}
		m.header.DocumentNumber = msg.gen.OrderNumber
		m.header.AutoNumbering = msg.gen.AutoNumbering
		return m, nil

	case orderSavedMsg:
		m.saving = false
		if msg.err != nil {
			var saveErr *catalog.SaveError
			if errors.As(msg.err, &saveErr) {
				return m, m.notify("error", saveErr.Message)
			}
			return m, m.notify("error", fmt.Sprintf("save failed: %s", msg.err))
		}
		m.header.ID = msg.saved.ID
		if msg.saved.DocumentNumber != "" {
			m.header.DocumentNumber = msg.saved.DocumentNumber
		}
		return m, m.notify("success", fmt.Sprintf("order %s saved", m.header.DocumentNumber))

	case orderDeletedMsg:
		if msg.err != nil {
			return m, m.notify("error", fmt.Sprintf("delete failed: %s", msg.err))
		}
		m.header.ID = 0
		return m, m.notify("success", "order deleted")

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleItemResolved(msg itemResolvedMsg) (tea.Model, tea.Cmd) {
	if msg.token != m.tokens[msg.row] {
		return m, nil // stale response
	}
	m.busy = false
	m.nav = m.nav.Resume()

	m.store.InsertOrUpdateAt(msg.row, func(l *order.Line) {
		l.ApplyItem(msg.item)
	})
	m.store.EnsureTrailingPlaceholder()
	m.recalc()

	m.nav = m.nav.FocusCell(msg.row, order.FieldQuantity)
	m.syncInput()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.nav.InputSuppressed() {
		return m.updatePicker(msg)
	}
	if m.headerForm {
		return m.updateHeaderForm(msg)
	}

	key := msg.String()

	// A lookup is outstanding for the focused cell: only quit gets
	// through until it settles, so a stale response cannot race a fresh
	// keystroke.
	if m.nav.AwaitingCell() && key != "ctrl+c" {
		return m, nil
	}

	if key != "ctrl+x" {
		m.confirmDelete = false
	}

	switch key {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter", "tab":
		return m.commitAndAdvance()

	case "shift+tab":
		prev := m.nav.Row
		m.nav = m.nav.Retreat()
		if m.nav.Row != prev {
			m.retireRow(prev)
		}
		m.clampFocus()
		m.syncInput()
		return m, nil

	case "up":
		if m.nav.Row > 0 {
			next, cmd, ok := m.commitCell()
			if !ok {
				return next, cmd
			}
			m = next
			m.retireRow(m.nav.Row)
			m.nav.Row--
			m.clampFocus()
			m.syncInput()
			return m, cmd
		}
		return m, nil

	case "down":
		if m.nav.Row < m.store.Len()-1 {
			next, cmd, ok := m.commitCell()
			if !ok {
				return next, cmd
			}
			m = next
			m.retireRow(m.nav.Row)
			m.nav.Row++
			m.clampFocus()
			m.syncInput()
			return m, cmd
		}
		return m, nil

	case "f3":
		// Search key: on the code column it fires resolution of the
		// typed text, the single-match endpoint needs no picker.
		if m.nav.Col == order.FieldCode && strings.TrimSpace(m.input.Value()) != "" {
			return m.resolveCode()
		}
		return m, nil

	case "f9":
		line, _ := m.store.Line(m.nav.Row)
		if !line.Resolved() {
			return m, m.notify("error", "resolve an item before picking a location")
		}
		m.busy = true
		return m, tea.Batch(m.loadLocations(), m.spinner.Tick)

	case "f10", "f8":
		return m.openUnits()

	case "ctrl+d":
		line, _ := m.store.Line(m.nav.Row)
		if !line.Resolved() {
			return m, nil
		}
		m.retireRowsFrom(m.nav.Row)
		m.store.DeleteAt(m.nav.Row)
		m.recalc()
		m.nav.Col = order.FieldCode
		m.clampFocus()
		m.syncInput()
		return m, m.notify("success", "row deleted")

	case "f6":
		m.initHeaderForm()
		return m, nil

	case "ctrl+s":
		return m.save()

	case "ctrl+x":
		if m.header.ID == 0 {
			return m, m.notify("error", "order is not persisted")
		}
		if !m.confirmDelete {
			m.confirmDelete = true
			return m, m.notify("error", "press ctrl+x again to delete this order")
		}
		m.confirmDelete = false
		return m, m.deleteOrder()
	}

	// Plain typing: reject keystrokes the column does not accept and any
	// edit outside the code column of an unresolved row.
	if msg.Type == tea.KeyRunes || key == "backspace" || key == "left" || key == "right" {
		line, _ := m.store.Line(m.nav.Row)
		if !line.Resolved() && !EditableWhenUnresolved(m.nav.Col) {
			m.nav.Col = order.FieldCode
			m.syncInput()
			return m, m.notify("error", "resolve the item code first")
		}
		if msg.Type == tea.KeyRunes {
			for _, r := range msg.Runes {
				if !AcceptsRune(m.nav.Col, r) {
					return m, nil
				}
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

// commitCell parses and validates the focused cell, writing it into the
// store on success. On failure the cell reverts to its committed value and
// focus stays put.
func (m Model) commitCell() (Model, tea.Cmd, bool) {
	row, col := m.nav.Row, m.nav.Col
	line, _ := m.store.Line(row)
	raw := strings.TrimSpace(m.input.Value())

	switch {
	case col == order.FieldCode:
		// Code commits are handled by resolution; unchanged code is a
		// no-op commit.
		return m, nil, true

	case col == order.FieldBatch:
		m.store.InsertOrUpdateAt(row, func(l *order.Line) { l.BatchNumber = raw })
		return m, nil, true

	case col == order.FieldAmount:
		return m, nil, true // derived, nothing to commit

	default:
		value, err := order.ParseCell(col, raw)
		if err != nil {
			m.input.SetValue(m.revert)
			m.input.CursorEnd()
			return m, m.notify("error", err.Error()), false
		}
		if verr := order.ValidateField(row, col, value, line); verr != nil {
			m.input.SetValue(m.revert)
			m.input.CursorEnd()
			return m, m.notify("error", verr.Reason), false
		}
		m.store.InsertOrUpdateAt(row, func(l *order.Line) {
			switch col {
			case order.FieldQuantity:
				l.Quantity = value
			case order.FieldBonus:
				l.BonusQuantity = value
			case order.FieldPrice:
				l.UnitPrice = value
			case order.FieldDiscount:
				l.LineDiscount = value
			}
		})
		m.recalc()
		return m, nil, true
	}
}

func (m Model) commitAndAdvance() (tea.Model, tea.Cmd) {
	line, _ := m.store.Line(m.nav.Row)

	if m.nav.Col == order.FieldCode {
		raw := strings.TrimSpace(m.input.Value())
		if raw == "" {
			return m, nil
		}
		if line.Resolved() && raw == line.ItemCode {
			m.nav, _ = m.nav.Advance()
			m.syncInput()
			return m, nil
		}
		return m.resolveCode()
	}

	next, cmd, ok := m.commitCell()
	if !ok {
		return next, cmd
	}
	m = next

	// Leaving the last editable column is row completion: the row rules
	// gate the wrap to a fresh row.
	nav, wrapped := m.nav.Advance()
	if wrapped {
		line, _ := m.store.Line(m.nav.Row)
		if rerr := order.ValidateRow(m.nav.Row, line, m.header.Type, m.store.Snapshot()); rerr != nil {
			m.nav = m.nav.FocusCell(rerr.Row, rerr.Field)
			m.syncInput()
			return m, m.notify("error", rerr.Reason)
		}
		m.store.EnsureTrailingPlaceholder()
		m.retireRow(m.nav.Row)
	}
	m.nav = nav
	m.clampFocus()
	m.syncInput()
	return m, cmd
}

// resolveCode launches item resolution for the typed code and parks the
// cell until the result arrives.
func (m Model) resolveCode() (tea.Model, tea.Cmd) {
	row := m.nav.Row
	query := strings.TrimSpace(m.input.Value())

	line, _ := m.store.Line(row)
	m.revert = line.ItemCode

	m.tokens[row]++
	m.nav = m.nav.Await()
	m.busy = true
	return m, tea.Batch(m.resolveItem(row, m.tokens[row], query), m.spinner.Tick)
}

func (m Model) openUnits() (tea.Model, tea.Cmd) {
	line, _ := m.store.Line(m.nav.Row)
	if !line.Resolved() {
		return m, m.notify("error", "resolve an item before picking a unit")
	}
	if len(line.AvailableUnits) > 0 {
		m.openUnitPicker(line.AvailableUnits)
		return m, nil
	}
	m.tokens[m.nav.Row]++
	m.busy = true
	return m, tea.Batch(m.loadUnits(m.nav.Row, m.tokens[m.nav.Row], line.ItemID), m.spinner.Tick)
}

func (m Model) save() (tea.Model, tea.Cmd) {
	next, cmd, ok := m.commitCell()
	if !ok {
		return next, cmd
	}
	m = next

	if err := order.ValidateOrder(m.header, m.store.Snapshot()); err != nil {
		var rowErr *order.RowError
		if errors.As(err, &rowErr) {
			m.nav = m.nav.FocusCell(rowErr.Row, rowErr.Field)
			m.syncInput()
		}
		return m, m.notify("error", err.Error())
	}

	m.saving = true
	return m, tea.Batch(m.saveOrder(), m.spinner.Tick)
}
