package quote

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartBody(price, prevClose string) []byte {
	return []byte(fmt.Sprintf(`{"chart":{"result":[{"meta":{"regularMarketPrice":%s,"previousClose":%s}}]}}`, price, prevClose))
}

func TestParse_ComputesChange(t *testing.T) {
	rec, err := Parse(chartBody("23250.5", "23000"), "^TWII", "台股加權")
	require.NoError(t, err)
	assert.Equal(t, "^TWII", rec.Code)
	assert.Equal(t, "台股加權", rec.Name)
	assert.InDelta(t, 23250.5, rec.Price, 1e-9)
	assert.InDelta(t, 250.5, rec.Change, 1e-9)
	assert.Equal(t, "+1.09%", rec.ChangePercent)
}

func TestParse_NegativeChangeKeepsMinus(t *testing.T) {
	rec, err := Parse(chartBody("31.2", "32.0"), "USDTWD=X", "美金")
	require.NoError(t, err)
	assert.Equal(t, "-2.50%", rec.ChangePercent)
}

func TestParse_FlatQuoteGetsPlusSign(t *testing.T) {
	rec, err := Parse(chartBody("100", "100"), "EURTWD=X", "歐元")
	require.NoError(t, err)
	assert.Equal(t, "+0.00%", rec.ChangePercent)
}

func TestParse_ZeroPreviousCloseIsSoftFailure(t *testing.T) {
	_, err := Parse(chartBody("100", "0"), "^TWII", "台股加權")
	assert.True(t, errors.Is(err, ErrNoQuote))
}

func TestParse_MissingPreviousCloseFallsBackToChartClose(t *testing.T) {
	body := []byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":104,"chartPreviousClose":100}}]}}`)
	rec, err := Parse(body, "JPYTWD=X", "日圓")
	require.NoError(t, err)
	assert.InDelta(t, 4, rec.Change, 1e-9)
	assert.Equal(t, "+4.00%", rec.ChangePercent)
}

func TestParse_MissingMeta(t *testing.T) {
	_, err := Parse([]byte(`{"chart":{"result":[{"meta":{}}]}}`), "^TWII", "台股加權")
	assert.True(t, errors.Is(err, ErrNoQuote))

	_, err = Parse([]byte(`{"chart":{"result":[]}}`), "^TWII", "台股加權")
	assert.True(t, errors.Is(err, ErrNoQuote))
}
