package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/growth"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/service"
	"github.com/lk2023060901/pigfarm/pkg/app"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/lk2023060901/pigfarm/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newEngine(t *testing.T, pinger Pinger, opts ...Option) (*gin.Engine, *service.TunablesProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tunables, err := service.NewTunablesProvider(growth.DefaultTunables(), logger.NewNoop())
	require.NoError(t, err)

	r := gin.New()
	NewHandler(pinger, tunables, logger.NewNoop(), opts...).Register(r)
	return r, tunables
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) web.Response {
	t.Helper()
	resp := web.Response{Data: data}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	r, _ := newEngine(t, stubPinger{})
	w := do(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ready", nil, http.StatusOK},
		{"storage down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newEngine(t, stubPinger{err: tt.err})
			w := do(r, http.MethodGet, "/readyz", "")
			if w.Code != tt.want {
				t.Errorf("GET /readyz = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestTunablesRoundTrip(t *testing.T) {
	r, provider := newEngine(t, stubPinger{})

	var got growth.Tunables
	w := do(r, http.MethodGet, "/debug/tunables", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	assert.Equal(t, growth.DefaultTunables(), got)

	w = do(r, http.MethodPut, "/debug/tunables", `{"base_growth": 1.5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, growth.Tunables{BaseGrowth: 1.5, RankFactor: 0.5, WeightFactor: 0.5}, provider.Get())
}

func TestPutTunablesRejectsInvalid(t *testing.T) {
	r, provider := newEngine(t, stubPinger{})

	w := do(r, http.MethodPut, "/debug/tunables", `{"rank_factor": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w, nil)
	assert.Equal(t, web.CodeInvalidParams, resp.Code)
	assert.Equal(t, growth.DefaultTunables(), provider.Get())

	w = do(r, http.MethodPut, "/debug/tunables", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsRouteOptional(t *testing.T) {
	r, _ := newEngine(t, stubPinger{})
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/metrics", "").Code)

	exporter := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pigfarm_updates_total 1\n"))
	})
	r, _ = newEngine(t, stubPinger{}, WithExporter(exporter))
	w := do(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pigfarm_updates_total")
}

func TestPools(t *testing.T) {
	r, _ := newEngine(t, stubPinger{})
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/debug/pools", "").Code)

	r, _ = newEngine(t, stubPinger{}, WithPoolStats("postgres", func() any {
		return map[string]int{"total_conns": 3}
	}))
	w := do(r, http.MethodGet, "/debug/pools", "")
	require.Equal(t, http.StatusOK, w.Code)

	var pools map[string]map[string]int
	decode(t, w, &pools)
	assert.Equal(t, 3, pools["postgres"]["total_conns"])
}

func TestVersion(t *testing.T) {
	r, _ := newEngine(t, stubPinger{})
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/version", "").Code)

	r, _ = newEngine(t, stubPinger{}, WithVersion(app.Info{AppName: "pigbot", Version: "v1.2.0"}))
	w := do(r, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, w.Code)

	var info app.Info
	decode(t, w, &info)
	assert.Equal(t, "pigbot", info.AppName)
	assert.Equal(t, "v1.2.0", info.Version)
}
