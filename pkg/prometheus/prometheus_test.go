package prometheus

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(&Config{Namespace: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "pigfarm", cfg.Namespace)
	assert.False(t, cfg.HTTPServer.Enabled)
	assert.Equal(t, ":9090", cfg.HTTPServer.Addr)
	assert.Equal(t, "/metrics", cfg.HTTPServer.Path)
	assert.True(t, cfg.EnableGoCollector)
	assert.True(t, cfg.EnableProcessCollector)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{name: "default", config: DefaultConfig()},
		{name: "empty namespace", config: &Config{}, wantErr: true},
		{
			name: "http server enabled without addr",
			config: &Config{
				Namespace:  "test",
				HTTPServer: HTTPServerConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "http server enabled fills path",
			config: &Config{
				Namespace:  "test",
				HTTPServer: HTTPServerConfig{Enabled: true, Addr: ":0"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewCounterDuplicate(t *testing.T) {
	c := newTestClient(t)

	counter, err := c.NewCounter("commands_total", "Commands handled", []string{"command"})
	require.NoError(t, err)
	counter.WithLabelValues("grow").Inc()

	_, err = c.NewCounter("commands_total", "Commands handled", []string{"command"})
	assert.True(t, errors.Is(err, ErrMetricExists), "got %v", err)

	got, ok := c.GetCounter("commands_total")
	require.True(t, ok)
	assert.Same(t, counter, got)

	_, ok = c.GetGauge("commands_total")
	assert.False(t, ok)
}

func TestMetricKinds(t *testing.T) {
	c := newTestClient(t)

	gauge := c.MustNewGauge("creatures", "Creatures per chat", []string{"chat"})
	gauge.WithLabelValues("1").Set(3)

	hist := c.MustNewHistogram("handle_seconds", "Update latency", []string{"kind"}, nil)
	hist.WithLabelValues("message").Observe(0.02)

	summary := c.MustNewSummary("delta", "Weight delta", nil, nil)
	summary.WithLabelValues().Observe(12)

	_, ok := c.GetHistogram("handle_seconds")
	assert.True(t, ok)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := newTestClient(t)
	c.MustNewCounter("grow_total", "Grow cycles", nil).WithLabelValues().Add(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "test_grow_total 2"), string(body))
}

func TestRegisterCollector(t *testing.T) {
	c := newTestClient(t)

	gf := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Namespace: "test", Name: "uptime"}, func() float64 { return 1 })
	require.NoError(t, c.RegisterCollector(gf))
	assert.Error(t, c.RegisterCollector(gf))
}

func TestClientClose(t *testing.T) {
	c, err := New(&Config{Namespace: "test"})
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.True(t, c.IsClosed())
	assert.ErrorIs(t, c.Close(), ErrClientClosed)

	_, err = c.NewCounter("after_close", "after close", nil)
	assert.ErrorIs(t, err, ErrClientClosed)
}
