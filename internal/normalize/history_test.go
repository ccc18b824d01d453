package normalize

import (
	"testing"

	"folio/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestHistory_DropsNonPositiveTotals(t *testing.T) {
	rows := []models.RawRow{
		{"日期": "2024-01-01", "總值": float64(100)},
		{"日期": "2024-01-02", "總值": float64(0)},
		{"日期": "2024-01-03", "總值": float64(-5)},
		{"日期": "2024-01-04", "總值": float64(200)},
	}
	points, _ := History(rows, nil)
	require.Len(t, points, 2)
	assert.True(t, points[0].TotalValue.Equal(dec(t, "100")))
	assert.True(t, points[1].TotalValue.Equal(dec(t, "200")))
	assert.Equal(t, "2024-01-01", points[0].Date)
	assert.Equal(t, "2024-01-04", points[1].Date)
}

func TestHistory_GrowthRatioFormatting(t *testing.T) {
	rows := []models.RawRow{
		{"日期": "2024-01-01", "總值": float64(100), "累積成長": float64(0.1525)},
	}
	points, _ := History(rows, nil)
	require.Len(t, points, 1)
	assert.Equal(t, "15.25%", points[0].CumulativeGrowth)
}

func TestHistory_GrowthStringPassThrough(t *testing.T) {
	rows := []models.RawRow{
		{"日期": "2024-01-01", "總值": float64(100), "累積成長": "+3.2%"},
	}
	points, _ := History(rows, nil)
	require.Len(t, points, 1)
	assert.Equal(t, "+3.2%", points[0].CumulativeGrowth)
}

func TestHistory_MissingGrowthDefaults(t *testing.T) {
	points, _ := History([]models.RawRow{{"日期": "2024-01-01", "總值": float64(1)}}, nil)
	require.Len(t, points, 1)
	assert.Equal(t, "0%", points[0].CumulativeGrowth)
	assert.Zero(t, points[0].Drawdown)
	assert.Zero(t, points[0].Sharpe)
	assert.Zero(t, points[0].Volatility)
}

func TestHistory_UnparsableDateKept(t *testing.T) {
	rows := []models.RawRow{
		{"日期": "first quarter", "總值": float64(100)},
	}
	points, _ := History(rows, nil)
	require.Len(t, points, 1)
	assert.Equal(t, "Unknown", points[0].Date)
}

func TestHistory_TimestampDateInTaipei(t *testing.T) {
	// 16:00 UTC is already the next day in UTC+8
	rows := []models.RawRow{
		{"日期": "2024-01-05T16:00:00.000Z", "總值": float64(100)},
	}
	points, _ := History(rows, nil)
	require.Len(t, points, 1)
	assert.Equal(t, "2024-01-06", points[0].Date)
}

func TestHistory_RiskMetricsCoerced(t *testing.T) {
	rows := []models.RawRow{
		{"日期": "2024-01-01", "總值": float64(100), "回撤": "-0.12", "夏普": float64(1.4), "波動": "bad"},
	}
	points, _ := History(rows, nil)
	require.Len(t, points, 1)
	assert.InDelta(t, -0.12, points[0].Drawdown, 1e-9)
	assert.InDelta(t, 1.4, points[0].Sharpe, 1e-9)
	assert.Zero(t, points[0].Volatility)
}

func TestHistory_StatsFromLastKeptRow(t *testing.T) {
	rows := []models.RawRow{
		{"日期": "2024-01-01", "總值": float64(100), "夏普比率": float64(1.1)},
		{"日期": "2024-01-02", "總值": float64(200), "夏普比率": float64(1.8), "Calmar Ratio": float64(0.9)},
		{"日期": "2024-01-03", "總值": float64(0), "夏普比率": float64(9.9)},
	}
	_, stats := History(rows, nil)
	require.NotNil(t, stats)
	assert.Equal(t, float64(1.8), stats["夏普比率"], "stats must come from the last retained row, not the dropped tail")
	assert.Equal(t, float64(0.9), stats["Calmar Ratio"])
}

func TestHistory_ExplicitStatsPayloadWins(t *testing.T) {
	rows := []models.RawRow{
		{"日期": "2024-01-01", "總值": float64(100), "夏普比率": float64(1.1)},
	}
	payload := models.RawRow{"夏普比率": float64(2.5), "年化報酬率": float64(0.18)}
	_, stats := History(rows, payload)
	assert.Equal(t, float64(2.5), stats["夏普比率"])
	assert.Equal(t, float64(0.18), stats["年化報酬率"])
}

func TestHistory_EmptyInput(t *testing.T) {
	points, stats := History(nil, nil)
	assert.Empty(t, points)
	assert.Nil(t, stats)
}
