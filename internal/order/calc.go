package order

import "github.com/shopspring/decimal"

// Amounts are rounded to two places at the line level only; totals add the
// already-rounded line amounts. This is the one canonical rounding rule for
// both the edit path and the save path.
const amountPlaces = 2

// LineAmount is quantity*unitPrice - discount, rounded to two places. A
// negative result is reported as-is; rejecting it is validation's job, not
// the calculator's.
func LineAmount(quantity, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Sub(discount).Round(amountPlaces)
}

// Totals are the derived order-level figures. They are recomputed from the
// store snapshot on every commit and never stored independently.
type Totals struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// OrderTotals derives the totals from the resolved lines and the header
// discount/tax/shipping settings. The header discount is clamped to
// [0, subtotal] whether given as a percentage or a fixed amount.
func OrderTotals(lines []Line, h Header) Totals {
	var t Totals
	for _, l := range lines {
		if !l.Resolved() {
			continue
		}
		t.Subtotal = t.Subtotal.Add(l.LineAmount)
	}

	switch h.DiscountMode {
	case DiscountPercent:
		t.Discount = t.Subtotal.Mul(h.DiscountValue).Div(decimal.NewFromInt(100)).Round(amountPlaces)
	case DiscountFixed:
		t.Discount = h.DiscountValue
	}
	if t.Discount.IsNegative() {
		t.Discount = decimal.Zero
	}
	if t.Discount.GreaterThan(t.Subtotal) {
		t.Discount = t.Subtotal
	}

	t.Tax = t.Subtotal.Sub(t.Discount).Mul(h.TaxRate).Round(amountPlaces)
	t.GrandTotal = t.Subtotal.Sub(t.Discount).Add(t.Tax).Add(h.Shipping).Add(h.OtherCharges)
	return t
}
