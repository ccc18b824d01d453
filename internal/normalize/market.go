package normalize

import (
	"fmt"

	"folio/internal/models"
)

// Market tab columns written by the sheet's GOOGLEFINANCE formulas.
var (
	marketNameKeys   = []string{"名稱"}
	marketPriceKeys  = []string{"指數", "價格"}
	marketChangeKeys = []string{"漲跌"}
	marketPctKeys    = []string{"漲跌幅"}
)

// Market maps sheet market rows onto quote records. The 漲跌幅 cell is a
// ratio (the sheet divides changepct by 100), rendered here with an
// explicit sign.
func Market(rows []models.RawRow) []models.QuoteRecord {
	out := make([]models.QuoteRecord, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		rec := models.QuoteRecord{
			Name:   pickString(row, "Unknown", marketNameKeys...),
			Price:  pickFloat(row, marketPriceKeys...),
			Change: pickFloat(row, marketChangeKeys...),
		}
		if v, ok := pick(row, marketPctKeys...); ok {
			if s, isStr := v.(string); isStr {
				rec.ChangePercent = s
			} else if d, isNum := toDecimal(v); isNum {
				f, _ := d.Float64()
				sign := "+"
				if f < 0 {
					sign = ""
				}
				rec.ChangePercent = fmt.Sprintf("%s%.2f%%", sign, f*100)
			}
		}
		out = append(out, rec)
	}
	return out
}
