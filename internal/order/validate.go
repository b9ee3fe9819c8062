package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RowError is a validation failure pinned to one cell so the grid can put
// focus back on it. It blocks the transition that triggered it and nothing
// else; the store keeps its last committed values.
type RowError struct {
	Row    int
	Field  Field
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, %s: %s", e.Row+1, e.Field, e.Reason)
}

// OrderError is a save-blocking failure at the order level.
type OrderError struct {
	Reason string
}

func (e *OrderError) Error() string { return e.Reason }

// ParseCell parses raw input for a numeric column. Empty input is zero.
func ParseCell(f Field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s is not a number", raw)
	}
	return d, nil
}

// ValidateField checks a committed numeric value against the row it lands
// on. The row argument carries the already-committed sibling fields, so the
// discount bound sees the current quantity and price — and a quantity or
// price edit that would shrink the gross below an already-committed
// discount is rejected the same way.
func ValidateField(row int, f Field, value decimal.Decimal, line Line) *RowError {
	if value.IsNegative() {
		return &RowError{Row: row, Field: f, Reason: "value cannot be negative"}
	}
	switch f {
	case FieldDiscount:
		if value.GreaterThan(line.Gross()) {
			return &RowError{Row: row, Field: f, Reason: "discount exceeds line amount"}
		}
	case FieldQuantity, FieldPrice:
		q, p := line.Quantity, line.UnitPrice
		if f == FieldQuantity {
			q = value
		} else {
			p = value
		}
		if line.LineDiscount.GreaterThan(q.Mul(p)) {
			return &RowError{Row: row, Field: f, Reason: "discount exceeds line amount"}
		}
	}
	return nil
}

// ValidateRow runs the row-completion rules: the item must be resolved,
// something must be ordered, and batch-tracked purchase lines need a batch
// number that no sibling row already uses.
func ValidateRow(row int, line Line, doc DocumentType, siblings []Line) *RowError {
	if !line.Resolved() {
		return &RowError{Row: row, Field: FieldCode, Reason: "item is not resolved"}
	}
	if !line.Quantity.IsPositive() && !line.BonusQuantity.IsPositive() {
		return &RowError{Row: row, Field: FieldQuantity, Reason: "quantity or bonus must be positive"}
	}
	if line.LineDiscount.GreaterThan(line.Gross()) {
		return &RowError{Row: row, Field: FieldDiscount, Reason: "discount exceeds line amount"}
	}
	if batchRequired(line, doc) && line.BatchNumber == "" {
		return &RowError{Row: row, Field: FieldBatch, Reason: "batch number is required"}
	}
	if line.BatchNumber != "" && line.HasBatchTracking {
		for i, sib := range siblings {
			if i == row || !sib.Resolved() {
				continue
			}
			if sib.BatchNumber == line.BatchNumber {
				return &RowError{Row: row, Field: FieldBatch, Reason: fmt.Sprintf("batch %s already used on row %d", line.BatchNumber, sib.Serial)}
			}
		}
	}
	return nil
}

func batchRequired(line Line, doc DocumentType) bool {
	return line.HasBatchTracking && doc == DocumentPurchase
}

// ValidateOrder runs the whole-order save gate. Rows are re-checked even if
// they passed on commit, since non-sequential edits can invalidate them.
func ValidateOrder(h Header, lines []Line) error {
	if strings.TrimSpace(h.DocumentNumber) == "" {
		return &OrderError{Reason: "document number is required"}
	}
	if h.CurrencyID == 0 || !h.ExchangeRate.IsPositive() {
		return &OrderError{Reason: "currency with a positive exchange rate is required"}
	}
	if h.PartyID == 0 {
		return &OrderError{Reason: "customer or supplier is required"}
	}

	resolved := 0
	for i, l := range lines {
		if !l.Resolved() {
			continue
		}
		resolved++
		if err := ValidateRow(i, l, h.Type, lines); err != nil {
			return err
		}
	}
	if resolved == 0 {
		return &OrderError{Reason: "order needs at least one resolved line"}
	}

	if OrderTotals(lines, h).GrandTotal.IsNegative() {
		return &OrderError{Reason: "grand total cannot be negative"}
	}
	return nil
}
