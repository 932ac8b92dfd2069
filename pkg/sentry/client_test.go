package sentry

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDSN = "https://public@example.com/1"

type eventSink struct {
	mu     sync.Mutex
	events []*sentry.Event
}

// capture 记录事件后丢弃，避免真正发送
func (s *eventSink) capture(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *eventSink) all() []*sentry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*sentry.Event(nil), s.events...)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "disabled without dsn", cfg: Config{}},
		{name: "enabled without dsn", cfg: Config{Enabled: true}, wantErr: true},
		{name: "bad sample rate", cfg: Config{Enabled: true, DSN: testDSN, SampleRate: 2}, wantErr: true},
		{name: "enabled", cfg: Config{Enabled: true, DSN: testDSN, SampleRate: 1}},
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

func TestDisabledClientIsNoop(t *testing.T) {
	c, err := New(&Config{})
	require.NoError(t, err)

	assert.False(t, c.Enabled())
	assert.Nil(t, c.CaptureException(errors.New("boom")))
	assert.Nil(t, c.RecoverWithContext(context.Background(), "panic", nil))
	assert.True(t, c.Flush(0))
	assert.Equal(t, Stats{}, c.Stats())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Close(), ErrClientClosed)
}

func TestCaptureErrorCarriesTags(t *testing.T) {
	sink := &eventSink{}
	c, err := New(&Config{
		Enabled: true,
		DSN:     testDSN,
		Tags:    map[string]string{"service": "pigbot"},
	}, WithBeforeSend(sink.capture))
	require.NoError(t, err)
	defer c.Close()

	c.CaptureError(errors.New("db down"), map[string]string{"chat_id": "42"})
	c.CaptureException(errors.New("plain"))

	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, "42", events[0].Tags["chat_id"])
	assert.Equal(t, "pigbot", events[0].Tags["service"])
	_, leaked := events[1].Tags["chat_id"]
	assert.False(t, leaked)

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.EventsTotal)
	assert.Equal(t, uint64(2), stats.EventsDropped)
}

func TestRecoverWithContext(t *testing.T) {
	sink := &eventSink{}
	c, err := New(&Config{Enabled: true, DSN: testDSN}, WithBeforeSend(sink.capture))
	require.NoError(t, err)
	defer c.Close()

	func() {
		defer func() {
			c.RecoverWithContext(context.Background(), recover(), map[string]string{"update": "7"})
		}()
		panic("handler exploded")
	}()

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, sentry.LevelFatal, events[0].Level)
	assert.Equal(t, "7", events[0].Tags["update"])
}
