package fred

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"folio/internal/proxy"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func passthroughProxy(t *testing.T, handler http.HandlerFunc) (*proxy.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	relays := []proxy.Relay{{
		Name:   "test",
		Encode: func(target string) string { return srv.URL + "?url=" + url.QueryEscape(target) },
		Decode: func(b []byte) ([]byte, error) { return b, nil },
	}}
	return proxy.NewWithRelays(&http.Client{Timeout: time.Second}, relays, testLogger()), srv
}

func TestObservations_NotConfigured(t *testing.T) {
	var hits int32
	p, srv := passthroughProxy(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})
	defer srv.Close()

	c := New("", p, testLogger())
	assert.False(t, c.Configured())

	_, err := c.Observations(context.Background(), "M2SL", time.Now())
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits), "no call must be attempted without a key")
}

func TestObservations_ParsesAndSkipsMissing(t *testing.T) {
	p, srv := passthroughProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"observations":[
			{"date":"2024-01-01","value":"20789.5"},
			{"date":"2024-02-01","value":"."},
			{"date":"2024-03-01","value":"20841.2"}
		]}`))
	})
	defer srv.Close()

	c := New("key", p, testLogger())
	obs, err := c.Observations(context.Background(), "M2SL", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, obs, 2)
	assert.InDelta(t, 20789.5, obs["2024-01-01"], 1e-9)
	assert.InDelta(t, 20841.2, obs["2024-03-01"], 1e-9)
}

func TestObservations_MissingListIsError(t *testing.T) {
	p, srv := passthroughProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error_code":400,"error_message":"Bad Request"}`))
	})
	defer srv.Close()

	c := New("key", p, testLogger())
	_, err := c.Observations(context.Background(), "M2SL", time.Now())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotConfigured))
}
