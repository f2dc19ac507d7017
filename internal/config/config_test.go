package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stringcalc/internal"
	"stringcalc/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "PEER_URL", "TABLE_ID", "PAGE_TEMPLATE",
		"RECONNECT_TIMEOUT", "WRITE_TIMEOUT", "PONG_WAIT", "SEND_BUFFER", "METRICS_ENABLED", "SHUTDOWN_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.Equal(t, "ws://localhost:5000/socket", cfg.Peer.URL)
	assert.Equal(t, 5*time.Second, cfg.Peer.ReconnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.Peer.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Peer.PongWait)
	assert.Equal(t, 32, cfg.Peer.SendBuffer)
	assert.Equal(t, "string_table", cfg.Page.TableID)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("PEER_URL", "wss://calc.example.com/socket")
	t.Setenv("RECONNECT_TIMEOUT", "250ms")
	t.Setenv("PONG_WAIT", "15s")
	t.Setenv("SEND_BUFFER", "4")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "wss://calc.example.com/socket", cfg.Peer.URL)
	assert.Equal(t, 250*time.Millisecond, cfg.Peer.ReconnectTimeout)
	assert.Equal(t, 15*time.Second, cfg.Peer.PongWait)
	assert.Equal(t, 4, cfg.Peer.SendBuffer)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "http"},
		{"GIN_MODE", "loud"},
		{"PEER_URL", "http://localhost:5000"},
		{"SEND_BUFFER", "0"},
		{"PONG_WAIT", "-1s"},
		{"PAGE_TEMPLATE", "/definitely/not/here.html"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, internal.LogLevelDebug, cfg.Log.Level)

	t.Setenv("LOG_LEVEL", "chatty")
	_, err = Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
