package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	for _, key := range []string{
		"MONITOR_HOST", "MONITOR_PORT", "MONITOR_AUTO_START", "MONITOR_EVENT_BUFFER",
		"MONITOR_RATE_INTERVAL", "HTTP_ADDR", "NATS_URL", "MQTT_BROKER", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Monitor.Host)
	assert.Equal(t, 8080, cfg.Monitor.Port)
	assert.True(t, cfg.Monitor.AutoStart)
	assert.Equal(t, 1024, cfg.Monitor.EventBuffer)
	assert.Equal(t, time.Second, cfg.Monitor.RateInterval)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, "vitals", cfg.NATS.SubjectPrefix)
	assert.Empty(t, cfg.MQTT.Broker)
	assert.Equal(t, "vitals-monitor", cfg.MQTT.ClientID)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("MONITOR_HOST", "127.0.0.1")
	t.Setenv("MONITOR_PORT", "9090")
	t.Setenv("MONITOR_AUTO_START", "false")
	t.Setenv("MONITOR_RATE_INTERVAL", "500ms")
	t.Setenv("NATS_URL", "nats://broker:4222")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Monitor.Host)
	assert.Equal(t, 9090, cfg.Monitor.Port)
	assert.False(t, cfg.Monitor.AutoStart)
	assert.Equal(t, 500*time.Millisecond, cfg.Monitor.RateInterval)
	assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct{ key, value string }{
		{"MONITOR_PORT", "eighty"},
		{"MONITOR_PORT", "70000"},
		{"MONITOR_AUTO_START", "maybe"},
		{"MONITOR_EVENT_BUFFER", "x"},
		{"MONITOR_RATE_INTERVAL", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")
	assert.Equal(t, "test-value", getEnv("TEST_VAR", "default"))
	assert.Equal(t, "default-value", getEnv("NON_EXISTENT_VAR", "default-value"))
}
