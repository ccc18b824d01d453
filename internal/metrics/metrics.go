// Package metrics computes roll-ups over normalized holdings and history.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"folio/internal/models"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

const tradingDaysPerYear = 252

func TotalValue(holdings []models.Holding) decimal.Decimal {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.MarketValue)
	}
	return total
}

// TodayChange compares the current total against the most recent history
// point strictly before today (in the given calendar). With no earlier
// point the earliest one is used; with no history at all the baseline is
// the total itself, so the change is zero.
func TodayChange(total decimal.Decimal, history []models.HistoryPoint, now time.Time, loc *time.Location) (change decimal.Decimal, changePercent float64) {
	today := now.In(loc).Format("2006-01-02")

	baseline := total
	if len(history) > 0 {
		baseline = history[0].TotalValue
		for i := len(history) - 1; i >= 0; i-- {
			if history[i].Date < today && history[i].Date != "Unknown" {
				baseline = history[i].TotalValue
				break
			}
		}
	}

	change = total.Sub(baseline)
	if baseline.IsZero() {
		return change, 0
	}
	pct, _ := change.Div(baseline).Float64()
	return change, pct * 100
}

// TopHoldings returns the n largest positions by market value, stable for
// equal values.
func TopHoldings(holdings []models.Holding, n int) []models.Holding {
	out := make([]models.Holding, len(holdings))
	copy(out, holdings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MarketValue.GreaterThan(out[j].MarketValue)
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// ComputeStats derives performance statistics from the history series for
// sheets that carry no stats columns of their own. Returns nil when the
// series is too short to say anything.
func ComputeStats(history []models.HistoryPoint) models.PerformanceStats {
	if len(history) < 2 {
		return nil
	}

	values := make([]float64, 0, len(history))
	for _, p := range history {
		v, _ := p.TotalValue.Float64()
		if v > 0 {
			values = append(values, v)
		}
	}
	if len(values) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		returns = append(returns, values[i]/values[i-1]-1)
	}

	meanRet := stat.Mean(returns, nil)
	annualizedReturn := meanRet * tradingDaysPerYear
	vol := 0.0
	if len(returns) > 1 {
		vol = stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
	}
	sharpe := 0.0
	if vol > 0 {
		sharpe = annualizedReturn / vol
	}

	// max drawdown against the running peak
	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if dd := v/peak - 1; dd < maxDD {
			maxDD = dd
		}
	}

	cumulative := values[len(values)-1]/values[0] - 1

	return models.PerformanceStats{
		"累積成長":       fmt.Sprintf("%.2f%%", cumulative*100),
		"年化報酬率":      annualizedReturn,
		"年化波動率":      vol,
		"夏普比率":       round2(sharpe),
		"最大回撤 (MDD)": maxDD,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
