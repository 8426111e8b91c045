package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nowcast-alerts/internal/domain"
)

const defaultBroker = "localhost:9092"

func withTerminal(t *testing.T, tty bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func() bool { return tty }
	t.Cleanup(func() { isTerminal = orig })
}

func TestLoad_Defaults(t *testing.T) {
	withTerminal(t, false)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultFeedURL, cfg.FeedURL)
	assert.Empty(t, cfg.Regions)
	assert.Empty(t, cfg.UnknownRegions)
	assert.Equal(t, "Europe/Bucharest", cfg.Timezone)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "Europe/Bucharest", cfg.Location.String())
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.PollTimeout)
	assert.Equal(t, 10*time.Second, cfg.ValidateTimeout)
	assert.Equal(t, int64(5<<20), cfg.MaxBytes)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "nowcast-region-states", cfg.KafkaSinkTopic)
}

func TestLoad_TextFormatOnTerminal(t *testing.T) {
	withTerminal(t, true)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_ExplicitFormatWinsOverTerminal(t *testing.T) {
	withTerminal(t, true)
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_CustomEnv(t *testing.T) {
	withTerminal(t, false)
	t.Setenv("FEED_URL", "http://localhost:8081/feed.xml")
	t.Setenv("FEED_REGIONS", "cluj, Timis ,Bistrița-Năsăud")
	t.Setenv("FEED_TIMEZONE", "UTC")
	t.Setenv("POLL_INTERVAL", "1m")
	t.Setenv("FEED_POLL_TIMEOUT", "5s")
	t.Setenv("FEED_VALIDATE_TIMEOUT", "2s")
	t.Setenv("FEED_MAX_BYTES", "1024")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8081/feed.xml", cfg.FeedURL)
	assert.Equal(t, []string{"Cluj", "Timiș", "Bistrița-Năsăud"}, cfg.Regions)
	assert.Empty(t, cfg.UnknownRegions)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.PollTimeout)
	assert.Equal(t, 2*time.Second, cfg.ValidateTimeout)
	assert.Equal(t, int64(1024), cfg.MaxBytes)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"shutdown timeout", "SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-1s"},
		{"poll interval", "POLL_INTERVAL", "often"},
		{"zero poll interval", "POLL_INTERVAL", "0s"},
		{"poll timeout", "FEED_POLL_TIMEOUT", "soon"},
		{"negative poll timeout", "FEED_POLL_TIMEOUT", "-5s"},
		{"validate timeout", "FEED_VALIDATE_TIMEOUT", "x"},
		{"max bytes", "FEED_MAX_BYTES", "lots"},
		{"zero max bytes", "FEED_MAX_BYTES", "0"},
		{"feed url", "FEED_URL", "not a url"},
		{"timezone", "FEED_TIMEZONE", "Europe/Atlantis"},
		{"log format", "LOG_FORMAT", "xml"},
		{"kafka enabled", "KAFKA_ENABLED", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withTerminal(t, false)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func validConfig() *Config {
	return &Config{
		FeedURL:         DefaultFeedURL,
		Timezone:        "UTC",
		PollInterval:    time.Minute,
		PollTimeout:     time.Second,
		ValidateTimeout: time.Second,
		MaxBytes:        1024,
		HTTPAddr:        ":8080",
		LogFormat:       "json",
	}
}

func TestValidate_KafkaRequiresTopicWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.KafkaEnabled = true
	cfg.KafkaBrokers = []string{defaultBroker}

	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_SINK_TOPIC")

	cfg.KafkaSinkTopic = "states"
	require.NoError(t, validate(cfg))
}

func TestValidate_KafkaRequiresBrokersWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.KafkaEnabled = true
	cfg.KafkaSinkTopic = "states"

	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaBrokerAddress(t *testing.T) {
	withTerminal(t, false)
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-without-port")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaBrokersIgnoredWhenDisabled(t *testing.T) {
	withTerminal(t, false)
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("KAFKA_BROKERS", "broker")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestValidate_KafkaBrokerAddressWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.KafkaBrokers = []string{"broker"}
	require.NoError(t, validate(cfg))

	cfg.KafkaEnabled = true
	cfg.KafkaSinkTopic = "states"
	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid KAFKA_BROKERS: failed "hostname_port" check`)

	cfg.KafkaBrokers = []string{"broker:9092"}
	require.NoError(t, validate(cfg))
}

func TestResolveRegions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		regions []string
		unknown []string
	}{
		{"empty", "", nil, nil},
		{"blank entries", " , ,", nil, nil},
		{"all", "Cluj,ALL", nil, nil},
		{"ascii spelling", "iasi,bucuresti", []string{"Iași", "București"}, nil},
		{"duplicates", "Cluj,cluj, CLUJ", []string{"Cluj"}, nil},
		{"unknown sentinel", "necunoscut", []string{domain.UnknownRegion}, nil},
		{"unmatched name", "Cluj,Oltenia", []string{"Cluj", "Oltenia"}, []string{"Oltenia"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions, unknown := ResolveRegions(tt.raw)
			assert.Equal(t, tt.regions, regions)
			assert.Equal(t, tt.unknown, unknown)
		})
	}
}
