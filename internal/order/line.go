package order

import (
	"github.com/shopspring/decimal"
)

// DocumentType distinguishes sale from purchase documents. Batch numbers
// are mandatory on purchase documents for batch-tracked items.
type DocumentType int

const (
	DocumentSale DocumentType = iota
	DocumentPurchase
)

// Field identifies one editable column of an order line.
type Field int

const (
	FieldCode Field = iota
	FieldQuantity
	FieldBonus
	FieldBatch
	FieldPrice
	FieldDiscount
	FieldAmount
)

func (f Field) String() string {
	switch f {
	case FieldCode:
		return "code"
	case FieldQuantity:
		return "quantity"
	case FieldBonus:
		return "bonus"
	case FieldBatch:
		return "batch"
	case FieldPrice:
		return "price"
	case FieldDiscount:
		return "discount"
	case FieldAmount:
		return "amount"
	}
	return "unknown"
}

// UnitVariant is one selling/buying unit of an item with its price.
type UnitVariant struct {
	UnitID      int64           `json:"unitId"`
	UnitName    string          `json:"unitName"`
	Price       decimal.Decimal `json:"price"`
	Barcode     string          `json:"barcode"`
	ToBaseRatio decimal.Decimal `json:"toBaseRatio"`
}

// Item is a resolved catalog item as the grid consumes it.
type Item struct {
	ID               int64         `json:"itemId"`
	Code             string        `json:"itemCode"`
	Name             string        `json:"itemName"`
	Barcode          string        `json:"barcode"`
	HasBatchTracking bool          `json:"hasBatchTracking"`
	Units            []UnitVariant `json:"units,omitempty"`
}

// Location is a storage location reference.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Line is one row of the order grid. A Line with ItemID zero is the
// trailing placeholder that the next keyed-in item lands on.
type Line struct {
	Serial              int             `json:"serial"`
	ItemID              int64           `json:"itemId"`
	ItemCode            string          `json:"itemCode"`
	ItemName            string          `json:"itemName"`
	Barcode             string          `json:"barcode,omitempty"`
	StorageLocationID   int64           `json:"storageLocationId,omitempty"`
	StorageLocationName string          `json:"storageLocationName,omitempty"`
	UnitID              int64           `json:"unitId,omitempty"`
	UnitName            string          `json:"unitName,omitempty"`
	UnitToBaseRatio     decimal.Decimal `json:"unitToBaseRatio"`
	Quantity            decimal.Decimal `json:"quantity"`
	BonusQuantity       decimal.Decimal `json:"bonusQuantity"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	LineDiscount        decimal.Decimal `json:"lineDiscount"`
	LineAmount          decimal.Decimal `json:"lineAmount"`
	BatchNumber         string          `json:"batchNumber,omitempty"`
	ExpiryDate          string          `json:"expiryDate,omitempty"`
	HasBatchTracking    bool            `json:"hasBatchTracking"`
	AvailableUnits      []UnitVariant   `json:"-"`
}

// Resolved reports whether the line refers to a catalog item.
func (l Line) Resolved() bool { return l.ItemID != 0 }

// Gross is quantity times unit price before the line discount.
func (l Line) Gross() decimal.Decimal { return l.Quantity.Mul(l.UnitPrice) }

// ApplyItem copies the resolved item and its default unit onto the line.
func (l *Line) ApplyItem(it Item) {
	l.ItemID = it.ID
	l.ItemCode = it.Code
	l.ItemName = it.Name
	l.Barcode = it.Barcode
	l.HasBatchTracking = it.HasBatchTracking
	l.AvailableUnits = it.Units
	if len(it.Units) > 0 {
		l.ApplyUnit(it.Units[0])
	}
}

// ApplyUnit switches the line to the given unit variant and its price.
func (l *Line) ApplyUnit(u UnitVariant) {
	l.UnitID = u.UnitID
	l.UnitName = u.UnitName
	l.UnitToBaseRatio = u.ToBaseRatio
	l.UnitPrice = u.Price
}

// DiscountMode selects how the header discount is interpreted.
type DiscountMode int

const (
	DiscountPercent DiscountMode = iota
	DiscountFixed
)

// Header carries the order-level fields that feed totals and save
// validation. Dates use the 2006-01-02 format end to end.
type Header struct {
	ID             int64           `json:"id,omitempty"`
	DocumentNumber string          `json:"documentNumber"`
	AutoNumbering  bool            `json:"autoNumbering,omitempty"`
	Book           string          `json:"book,omitempty"`
	Type           DocumentType    `json:"type"`
	Date           string          `json:"date,omitempty"`
	PartyID        int64           `json:"partyId"`
	PartyName      string          `json:"partyName,omitempty"`
	CurrencyID     int64           `json:"currencyId"`
	CurrencyName   string          `json:"currencyName,omitempty"`
	ExchangeRate   decimal.Decimal `json:"exchangeRate"`
	PriceCategory  int64           `json:"priceCategory,omitempty"`
	DiscountMode   DiscountMode    `json:"discountMode"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	TaxRate        decimal.Decimal `json:"taxRate"`
	Shipping       decimal.Decimal `json:"shipping"`
	OtherCharges   decimal.Decimal `json:"otherCharges"`
}
