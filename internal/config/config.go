package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// MonitorConfig configures the sensor listener.
type MonitorConfig struct {
	Host         string
	Port         int
	AutoStart    bool
	EventBuffer  int
	RateInterval time.Duration
}

// NATSConfig configures event export over NATS. An empty URL disables it.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// MQTTConfig configures event export over MQTT. An empty broker disables it.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// Config is the process configuration.
type Config struct {
	Monitor  MonitorConfig
	HTTPAddr string
	NATS     NATSConfig
	MQTT     MQTTConfig

	Log struct {
		Level  string
		Format string
	}
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Monitor.Host = getEnv("MONITOR_HOST", "0.0.0.0")

	var err error
	if cfg.Monitor.Port, err = getEnvInt("MONITOR_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Monitor.Port < 0 || cfg.Monitor.Port > 65535 {
		return nil, fmt.Errorf("MONITOR_PORT out of range: %d", cfg.Monitor.Port)
	}
	if cfg.Monitor.AutoStart, err = getEnvBool("MONITOR_AUTO_START", true); err != nil {
		return nil, err
	}
	if cfg.Monitor.EventBuffer, err = getEnvInt("MONITOR_EVENT_BUFFER", 1024); err != nil {
		return nil, err
	}
	if cfg.Monitor.RateInterval, err = getEnvDuration("MONITOR_RATE_INTERVAL", time.Second); err != nil {
		return nil, err
	}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8000")

	cfg.NATS.URL = getEnv("NATS_URL", "")
	cfg.NATS.SubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", "vitals")

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "vitals-monitor")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", "vitals")
	cfg.MQTT.QoS = 0

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
