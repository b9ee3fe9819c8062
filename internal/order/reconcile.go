package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mode selects where reconciled lines land in the store.
type Mode int

const (
	// Append adds every external line after the existing rows.
	Append Mode = iota
	// Overwrite replaces existing rows from the top, appending once the
	// batch runs past them.
	Overwrite
)

// ExternalLine is one row of an imported spreadsheet or a multi-select
// catalog pick, before resolution.
type ExternalLine struct {
	ItemCode      string
	Quantity      decimal.Decimal
	BonusQuantity decimal.Decimal
	UnitPrice     decimal.Decimal
	LineDiscount  decimal.Decimal
	BatchNumber   string
}

// UnitSource resolves an item code to a catalog item with its unit
// variants. The grid's backend client satisfies it; tests use fakes.
type UnitSource interface {
	ResolveItem(ctx context.Context, codeOrBarcode string) (Item, error)
}

// FailedLine records one external line that could not be applied.
type FailedLine struct {
	Position int
	ItemCode string
	Reason   string
}

// Report summarises one reconciliation run.
type Report struct {
	ID      string
	Applied int
	Failed  []FailedLine
	// LastRow is the store index of the last affected row, -1 when the
	// whole batch failed. Focus moves to its quantity column.
	LastRow int
}

// Reconcile merges the external lines into the store. Unresolvable lines
// are recorded and skipped rather than aborting the batch; serials are
// re-sequenced once at the end and the trailing placeholder is restored.
func Reconcile(ctx context.Context, store *Store, src UnitSource, rows []ExternalLine, mode Mode) Report {
	rep := Report{ID: uuid.NewString(), LastRow: -1}

	cursor := 0
	if mode == Append {
		cursor = store.Len()
		// Land on the trailing placeholder instead of after it.
		if last, ok := store.Line(cursor - 1); ok && !last.Resolved() {
			cursor--
		}
	}

	for i, ext := range rows {
		item, err := src.ResolveItem(ctx, ext.ItemCode)
		if err != nil {
			rep.Failed = append(rep.Failed, FailedLine{Position: i + 1, ItemCode: ext.ItemCode, Reason: err.Error()})
			continue
		}

		store.InsertOrUpdateAt(cursor, func(l *Line) {
			*l = Line{Serial: l.Serial}
			l.ApplyItem(item)
			l.Quantity = ext.Quantity
			l.BonusQuantity = ext.BonusQuantity
			if ext.UnitPrice.IsPositive() {
				l.UnitPrice = ext.UnitPrice
			}
			l.LineDiscount = ext.LineDiscount
			l.BatchNumber = ext.BatchNumber
		})
		rep.Applied++
		rep.LastRow = cursor
		cursor++
	}

	store.Reindex()
	store.EnsureTrailingPlaceholder()
	return rep
}
