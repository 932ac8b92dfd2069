package web

import (
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/pigfarm/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: *DefaultConfig()},
		{name: "empty addr", cfg: Config{Mode: gin.ReleaseMode}, wantErr: true},
		{name: "bad mode", cfg: Config{Addr: ":1", Mode: "loud"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerStartStop(t *testing.T) {
	s, err := NewServer(&Config{Addr: "127.0.0.1:0", Mode: gin.TestMode}, WithLogger(logger.NewNoop()))
	require.NoError(t, err)

	s.Router().GET("/ping", func(c *gin.Context) { Success(c, "pong") })

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrServerAlreadyStarted)

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + s.Addr() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"code":0,"message":"ok","data":"pong"}`, string(body))

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}
