package grid

import "github.com/ordergrid/ordergrid/internal/order"

// Mode is the navigation controller's state. Input suppression is a pure
// function of the mode; there is no side-channel "hotkeys enabled" flag.
type Mode int

const (
	// ModeIdle means no cell is being edited.
	ModeIdle Mode = iota
	// ModeEditing means keystrokes go to the focused cell.
	ModeEditing
	// ModeAwaiting means the focused cell has a lookup in flight and
	// ignores keystrokes until it settles.
	ModeAwaiting
	// ModeLookup means a modal picker owns the keyboard.
	ModeLookup
)

// LookupKind identifies which modal picker is open.
type LookupKind int

const (
	LookupNone LookupKind = iota
	LookupItem
	LookupLocation
	LookupUnit
)

// columnOrder is the fixed focus cycle across a row.
var columnOrder = [...]order.Field{
	order.FieldCode,
	order.FieldQuantity,
	order.FieldBonus,
	order.FieldBatch,
	order.FieldPrice,
	order.FieldDiscount,
	order.FieldAmount,
}

func columnIndex(f order.Field) int {
	for i, c := range columnOrder {
		if c == f {
			return i
		}
	}
	return 0
}

// Controller is the keyboard focus state machine: the focused cell plus
// the mode. It is a value; transitions return the next state.
type Controller struct {
	Row    int
	Col    order.Field
	Mode   Mode
	Lookup LookupKind
}

// NewController starts editing the code column of the first row.
func NewController() Controller {
	return Controller{Col: order.FieldCode, Mode: ModeEditing}
}

// InputSuppressed reports whether grid keystrokes must be ignored because
// a modal picker owns the keyboard.
func (c Controller) InputSuppressed() bool { return c.Mode == ModeLookup }

// AwaitingCell reports whether the focused cell is waiting on a lookup.
func (c Controller) AwaitingCell() bool { return c.Mode == ModeAwaiting }

// Advance moves focus to the next column in the fixed order. Committing
// the amount column wraps to the next row's code column; the second return
// reports that wrap.
func (c Controller) Advance() (Controller, bool) {
	idx := columnIndex(c.Col)
	if idx == len(columnOrder)-1 {
		c.Row++
		c.Col = order.FieldCode
		return c, true
	}
	c.Col = columnOrder[idx+1]
	return c, false
}

// Retreat moves focus to the previous column, or onto the previous row's
// amount column from the start of a row.
func (c Controller) Retreat() Controller {
	idx := columnIndex(c.Col)
	if idx == 0 {
		if c.Row > 0 {
			c.Row--
			c.Col = columnOrder[len(columnOrder)-1]
		}
		return c
	}
	c.Col = columnOrder[idx-1]
	return c
}

// FocusCell pins focus to a specific cell, used to force focus back onto
// a failing cell.
func (c Controller) FocusCell(row int, col order.Field) Controller {
	c.Row = row
	c.Col = col
	c.Mode = ModeEditing
	return c
}

// Await enters the in-flight-lookup state for the focused cell.
func (c Controller) Await() Controller {
	c.Mode = ModeAwaiting
	return c
}

// Resume returns to plain editing after a lookup settles.
func (c Controller) Resume() Controller {
	c.Mode = ModeEditing
	return c
}

// OpenLookup hands the keyboard to a modal picker.
func (c Controller) OpenLookup(k LookupKind) Controller {
	c.Mode = ModeLookup
	c.Lookup = k
	return c
}

// CloseLookup returns the keyboard to the grid.
func (c Controller) CloseLookup() Controller {
	c.Mode = ModeEditing
	c.Lookup = LookupNone
	return c
}

// NumericField reports whether the column holds a number.
func NumericField(f order.Field) bool {
	switch f {
	case order.FieldQuantity, order.FieldBonus, order.FieldPrice, order.FieldDiscount:
		return true
	}
	return false
}

// AcceptsRune filters keystrokes before they reach the cell editor:
// numeric columns take digits and one decimal point, the amount column is
// derived and takes nothing, text columns take anything printable.
func AcceptsRune(f order.Field, r rune) bool {
	switch {
	case f == order.FieldAmount:
		return false
	case NumericField(f):
		return (r >= '0' && r <= '9') || r == '.'
	}
	return true
}

// EditableWhenUnresolved reports whether the column may be edited on a row
// whose item is not resolved yet. Only the code column is, which keeps
// numeric edits off placeholder rows.
func EditableWhenUnresolved(f order.Field) bool {
	return f == order.FieldCode
}
