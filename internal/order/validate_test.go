package order

import (
	"errors"
	"testing"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"3", "3", true},
		{"10.50", "10.5", true},
		{"  7 ", "7", true},
		{"", "0", true},
		{"abc", "", false},
		{"1,5", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseCell(FieldQuantity, tt.raw)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseCell(%q): err = %v, want ok=%v", tt.raw, err, tt.ok)
			}
			if tt.ok && !got.Equal(dec(tt.want)) {
				t.Errorf("ParseCell(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

// Scenario: discount 40 on a 3x10 line is rejected, discount 5 passes.
func TestValidateFieldDiscount(t *testing.T) {
	line := Line{ItemID: 1, Quantity: dec("3"), UnitPrice: dec("10")}

	if err := ValidateField(0, FieldDiscount, dec("5"), line); err != nil {
		t.Fatalf("discount 5 rejected: %v", err)
	}
	err := ValidateField(0, FieldDiscount, dec("40"), line)
	if err == nil {
		t.Fatal("discount 40 on a gross of 30 should be rejected")
	}
	if err.Field != FieldDiscount {
		t.Errorf("error field = %s, want discount", err.Field)
	}
}

// A committed discount stays bounded by the gross even when quantity or
// price shrink afterwards: the shrinking edit is the one rejected.
func TestValidateFieldShrinkBelowDiscount(t *testing.T) {
	line := Line{ItemID: 1, Quantity: dec("3"), UnitPrice: dec("10"), LineDiscount: dec("25")}

	if err := ValidateField(0, FieldPrice, dec("5"), line); err == nil {
		t.Error("price 5 would put the gross (15) under the discount (25)")
	}
	if err := ValidateField(0, FieldQuantity, dec("2"), line); err == nil {
		t.Error("quantity 2 would put the gross (20) under the discount (25)")
	}
	if err := ValidateField(0, FieldQuantity, dec("2.5"), line); err != nil {
		t.Errorf("quantity 2.5 keeps the gross at the discount, got %v", err)
	}
	if err := ValidateField(0, FieldPrice, dec("20"), line); err != nil {
		t.Errorf("raising the price cannot strand the discount, got %v", err)
	}
}

func TestValidateFieldNegative(t *testing.T) {
	if err := ValidateField(0, FieldQuantity, dec("-1"), Line{}); err == nil {
		t.Error("negative quantity should be rejected")
	}
}

func TestValidateRow(t *testing.T) {
	base := Line{ItemID: 1, ItemCode: "P001", Quantity: dec("1"), UnitPrice: dec("10")}

	tests := []struct {
		name      string
		mutate    func(*Line)
		doc       DocumentType
		wantField Field
		wantOK    bool
	}{
		{"valid sale line", func(l *Line) {}, DocumentSale, 0, true},
		{"unresolved", func(l *Line) { l.ItemID = 0 }, DocumentSale, FieldCode, false},
		{"nothing ordered", func(l *Line) { l.Quantity = dec("0") }, DocumentSale, FieldQuantity, false},
		{"bonus only is enough", func(l *Line) { l.Quantity = dec("0"); l.BonusQuantity = dec("2") }, DocumentSale, 0, true},
		{"missing batch on tracked purchase", func(l *Line) { l.HasBatchTracking = true }, DocumentPurchase, FieldBatch, false},
		{"tracked sale needs no batch", func(l *Line) { l.HasBatchTracking = true }, DocumentSale, 0, true},
		{"discount above gross", func(l *Line) { l.LineDiscount = dec("11") }, DocumentSale, FieldDiscount, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base
			tt.mutate(&l)
			err := ValidateRow(0, l, tt.doc, []Line{l})
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected a row error")
			}
			if err.Field != tt.wantField {
				t.Errorf("error field = %s, want %s", err.Field, tt.wantField)
			}
		})
	}
}

// Scenario: two rows sharing batch B1 under batch tracking fail on save.
func TestValidateOrderDuplicateBatch(t *testing.T) {
	h := validHeader(DocumentPurchase)
	lines := []Line{
		{Serial: 1, ItemID: 1, Quantity: dec("1"), UnitPrice: dec("5"), LineAmount: dec("5"), HasBatchTracking: true, BatchNumber: "B1"},
		{Serial: 2, ItemID: 2, Quantity: dec("1"), UnitPrice: dec("5"), LineAmount: dec("5"), HasBatchTracking: true, BatchNumber: "B1"},
	}

	err := ValidateOrder(h, lines)
	if err == nil {
		t.Fatal("duplicate batch numbers should fail order validation")
	}
	var rowErr *RowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("want *RowError, got %T", err)
	}
	if rowErr.Field != FieldBatch {
		t.Errorf("error field = %s, want batch", rowErr.Field)
	}
}

func validHeader(doc DocumentType) Header {
	return Header{
		DocumentNumber: "A-0001",
		Type:           doc,
		PartyID:        7,
		CurrencyID:     1,
		ExchangeRate:   dec("1"),
	}
}

func TestValidateOrder(t *testing.T) {
	okLine := Line{Serial: 1, ItemID: 1, Quantity: dec("2"), UnitPrice: dec("10"), LineAmount: dec("20")}

	tests := []struct {
		name   string
		header Header
		lines  []Line
		wantOK bool
	}{
		{"valid order", validHeader(DocumentSale), []Line{okLine}, true},
		{"placeholder tolerated", validHeader(DocumentSale), []Line{okLine, {Serial: 2}}, true},
		{"missing document number", func() Header { h := validHeader(DocumentSale); h.DocumentNumber = " "; return h }(), []Line{okLine}, false},
		{"unresolved currency", func() Header { h := validHeader(DocumentSale); h.CurrencyID = 0; return h }(), []Line{okLine}, false},
		{"zero exchange rate", func() Header { h := validHeader(DocumentSale); h.ExchangeRate = dec("0"); return h }(), []Line{okLine}, false},
		{"missing party", func() Header { h := validHeader(DocumentSale); h.PartyID = 0; return h }(), []Line{okLine}, false},
		{"no resolved lines", validHeader(DocumentSale), []Line{{Serial: 1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrder(tt.header, tt.lines)
			if tt.wantOK && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("expected an error")
			}
		})
	}
}
