package normalize

import (
	"fmt"
	"strings"
	"time"

	"folio/internal/models"
)

// All history dates resolve to the sheet's calendar, not the server's.
var taipei = mustLoadTaipei()

func mustLoadTaipei() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		return time.FixedZone("CST", 8*3600)
	}
	return loc
}

var (
	historyDateKeys       = []string{"日期", "Date", "date"}
	historyTotalKeys      = []string{"總值", "總現值", "總資產"}
	historyCumGrowthKeys  = []string{"累積成長"}
	historyDailyKeys      = []string{"當日成長", "日成長"}
	historyAnnualizedKeys = []string{"年化報酬", "年化報酬率"}
	historyDrawdownKeys   = []string{"回撤", "最大回撤", "最大回撤 (MDD)"}
	historySharpeKeys     = []string{"夏普", "夏普比率"}
	historyVolatilityKeys = []string{"波動", "波動率", "年化波動率"}
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
}

// canonicalDate renders a raw cell as YYYY-MM-DD in the Taipei calendar.
// Unparsable input yields "Unknown"; the row is still kept.
func canonicalDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.In(taipei).Format("2006-01-02")
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.In(taipei).Format("2006-01-02")
			}
		}
	}
	return "Unknown"
}

// growthString renders a growth cell. Numeric cells are ratios
// (0.15 -> "15.00%"); strings pass through untouched.
func growthString(v any, ok bool, fallback string) string {
	if !ok {
		return fallback
	}
	if s, isStr := v.(string); isStr {
		return s
	}
	if d, isNum := toDecimal(v); isNum {
		f, _ := d.Float64()
		return fmt.Sprintf("%.2f%%", f*100)
	}
	return fallback
}

// History maps raw snapshot rows onto the canonical series and derives
// the latest performance stats. Rows whose total is not a positive number
// are sentinel rows from the sheet and are dropped. statsPayload, when the
// endpoint supplies one, wins over deriving from the history tail.
func History(rows []models.RawRow, statsPayload models.RawRow) ([]models.HistoryPoint, models.PerformanceStats) {
	points := make([]models.HistoryPoint, 0, len(rows))
	var lastKept models.RawRow

	for _, row := range rows {
		if row == nil {
			continue
		}
		total := pickDecimal(row, historyTotalKeys...)
		if !total.IsPositive() {
			continue
		}

		p := models.HistoryPoint{
			TotalValue: total,
			Drawdown:   pickFloat(row, historyDrawdownKeys...),
			Sharpe:     pickFloat(row, historySharpeKeys...),
			Volatility: pickFloat(row, historyVolatilityKeys...),
		}
		if v, ok := pick(row, historyDateKeys...); ok {
			p.Date = canonicalDate(v)
		} else {
			p.Date = "Unknown"
		}
		cum, cumOK := pick(row, historyCumGrowthKeys...)
		p.CumulativeGrowth = growthString(cum, cumOK, "0%")
		if v, ok := pick(row, historyDailyKeys...); ok {
			p.DailyGrowth = growthString(v, true, "")
		}
		if v, ok := pick(row, historyAnnualizedKeys...); ok {
			p.AnnualizedReturn = growthString(v, true, "")
		}

		points = append(points, p)
		lastKept = row
	}

	stats := models.PerformanceStats(nil)
	switch {
	case len(statsPayload) > 0:
		stats = models.PerformanceStats(statsPayload)
	case lastKept != nil:
		stats = models.PerformanceStats{}
		for k, v := range lastKept {
			stats[k] = v
		}
	}
	return points, stats
}

// Location reports the calendar used for date resolution.
func Location() *time.Location {
	return taipei
}
