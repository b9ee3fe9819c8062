package order

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// ReadExternalCSV reads spreadsheet rows for bulk reconciliation. The first
// record is a header; item_code and quantity are required columns, the rest
// are optional in any order.
func ReadExternalCSV(r io.Reader) ([]ExternalLine, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV file is empty or has no data rows")
	}

	codeIdx, qtyIdx := -1, -1
	bonusIdx, priceIdx, discountIdx, batchIdx := -1, -1, -1, -1
	for i, col := range records[0] {
		switch col {
		case "item_code":
			codeIdx = i
		case "quantity":
			qtyIdx = i
		case "bonus":
			bonusIdx = i
		case "price":
			priceIdx = i
		case "discount":
			discountIdx = i
		case "batch":
			batchIdx = i
		}
	}
	if codeIdx == -1 || qtyIdx == -1 {
		return nil, fmt.Errorf("CSV must have 'item_code' and 'quantity' columns")
	}

	var lines []ExternalLine
	for rowNum, record := range records[1:] {
		cell := func(idx int) string {
			if idx >= 0 && idx < len(record) {
				return record[idx]
			}
			return ""
		}
		num := func(idx int) (decimal.Decimal, error) {
			raw := cell(idx)
			if raw == "" {
				return decimal.Zero, nil
			}
			return decimal.NewFromString(raw)
		}

		ext := ExternalLine{ItemCode: cell(codeIdx), BatchNumber: cell(batchIdx)}
		if ext.ItemCode == "" {
			return nil, fmt.Errorf("row %d: missing item_code", rowNum+2)
		}
		for _, f := range []struct {
			idx int
			dst *decimal.Decimal
		}{
			{qtyIdx, &ext.Quantity},
			{bonusIdx, &ext.BonusQuantity},
			{priceIdx, &ext.UnitPrice},
			{discountIdx, &ext.LineDiscount},
		} {
			v, err := num(f.idx)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rowNum+2, err)
			}
			*f.dst = v
		}
		lines = append(lines, ext)
	}
	return lines, nil
}
