package normalize

import (
	"folio/internal/models"

	"github.com/shopspring/decimal"
)

// Column aliases accepted in holding rows, first match wins.
var (
	holdingNameKeys   = []string{"股名", "股票名稱"}
	holdingSymbolKeys = []string{"股票代碼", "代號"}
	holdingQtyKeys    = []string{"股數"}
	holdingPriceKeys  = []string{"股價", "現價"}
	holdingValueKeys  = []string{"個股現值", "市值"}
)

// canonicalHoldingKeys marks columns consumed by the mapping; everything
// else is passed through under Extra.
var canonicalHoldingKeys = map[string]bool{}

func init() {
	for _, ks := range [][]string{holdingNameKeys, holdingSymbolKeys, holdingQtyKeys, holdingPriceKeys, holdingValueKeys} {
		for _, k := range ks {
			canonicalHoldingKeys[k] = true
		}
	}
}

// Holdings maps raw sheet rows onto canonical holdings. Rows that fail
// numeric coercion get zeroes, never an error; nil rows are skipped.
func Holdings(rows []models.RawRow) []models.Holding {
	out := make([]models.Holding, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		qty := pickDecimal(row, holdingQtyKeys...)
		price := pickDecimal(row, holdingPriceKeys...)

		mv := qty.Mul(price)
		if v, ok := pick(row, holdingValueKeys...); ok {
			if d, ok := toDecimal(v); ok && !d.IsZero() {
				mv = d
			}
		}
		if mv.IsNegative() {
			mv = decimal.Zero
		}

		h := models.Holding{
			Name:        pickString(row, "Unknown", holdingNameKeys...),
			Symbol:      pickString(row, "0000", holdingSymbolKeys...),
			Quantity:    qty,
			Price:       price,
			MarketValue: mv,
		}
		for k, v := range row {
			if canonicalHoldingKeys[k] {
				continue
			}
			if h.Extra == nil {
				h.Extra = map[string]any{}
			}
			h.Extra[k] = v
		}
		out = append(out, h)
	}
	return out
}
