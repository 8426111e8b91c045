package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // FEED_TIMEZONE must resolve without system zoneinfo

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/couchcryptid/nowcast-alerts/internal/domain"
)

// DefaultFeedURL is the public ANM nowcasting feed.
const DefaultFeedURL = "https://www.meteoromania.ro/xml/avertizari-nowcasting.xml"

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL         string        `env:"FEED_URL" validate:"required,url"`
	Timezone        string        `env:"FEED_TIMEZONE" validate:"required"`
	PollInterval    time.Duration `env:"POLL_INTERVAL" validate:"gt=0"`
	PollTimeout     time.Duration `env:"FEED_POLL_TIMEOUT" validate:"gt=0"`
	ValidateTimeout time.Duration `env:"FEED_VALIDATE_TIMEOUT" validate:"gt=0"`
	MaxBytes        int64         `env:"FEED_MAX_BYTES" validate:"gt=0"`

	// Regions are canonical gazetteer names; empty means the whole country.
	Regions []string `env:"FEED_REGIONS"`
	// UnknownRegions are configured names with no gazetteer match. They are
	// kept in Regions verbatim and always project no-alert.
	UnknownRegions []string
	Location       *time.Location

	HTTPAddr        string        `env:"HTTP_ADDR" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	KafkaEnabled   bool     `env:"KAFKA_ENABLED"`
	KafkaBrokers   []string `env:"KAFKA_BROKERS" validate:"required_if=KafkaEnabled true"`
	KafkaSinkTopic string   `env:"KAFKA_SINK_TOPIC" validate:"required_if=KafkaEnabled true"`
}

// isTerminal reports whether stdout is attached to a terminal.
var isTerminal = func() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Load reads configuration from environment variables and an optional .env
// file, applying defaults where unset.
func Load() (*Config, error) {
	// A missing .env file is not an error; real environment variables win.
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	pollInterval, err := parseDuration("POLL_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	pollTimeout, err := parseDuration("FEED_POLL_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	validateTimeout, err := parseDuration("FEED_VALIDATE_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	maxBytes, err := strconv.ParseInt(sharedcfg.EnvOrDefault("FEED_MAX_BYTES", "5242880"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_MAX_BYTES: %w", err)
	}
	kafkaEnabled, err := strconv.ParseBool(sharedcfg.EnvOrDefault("KAFKA_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid KAFKA_ENABLED: %w", err)
	}

	cfg := &Config{
		FeedURL:         sharedcfg.EnvOrDefault("FEED_URL", DefaultFeedURL),
		Timezone:        sharedcfg.EnvOrDefault("FEED_TIMEZONE", "Europe/Bucharest"),
		PollInterval:    pollInterval,
		PollTimeout:     pollTimeout,
		ValidateTimeout: validateTimeout,
		MaxBytes:        maxBytes,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", defaultLogFormat())),
		ShutdownTimeout: shutdownTimeout,
		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "nowcast-region-states"),
	}
	cfg.Regions, cfg.UnknownRegions = ResolveRegions(os.Getenv("FEED_REGIONS"))

	if err := validate(cfg); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

func defaultLogFormat() string {
	if isTerminal() {
		return "text"
	}
	return "json"
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// ResolveRegions splits a comma-separated region list and resolves each name
// against the county gazetteer. Unmatched names are returned verbatim in both
// lists. "all" or an empty list selects the whole country.
func ResolveRegions(raw string) (regions, unknown []string) {
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		key := domain.FoldKey(name)
		if key == domain.AllRegions {
			return nil, nil
		}

		canonical, ok := domain.Counties.Lookup(name)
		switch {
		case ok:
		case key == domain.FoldKey(domain.UnknownRegion):
			canonical = domain.UnknownRegion
		default:
			canonical = name
			unknown = append(unknown, name)
		}
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		regions = append(regions, canonical)
	}
	return regions, unknown
}

var validate = func() func(*Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	v.RegisterStructValidation(validateKafka, Config{})
	return func(cfg *Config) error {
		err := v.Struct(cfg)
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("invalid %s: failed %q check", fe.Field(), fe.Tag()))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
}()

// validateKafka checks broker addresses only when the sink is enabled.
func validateKafka(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if !cfg.KafkaEnabled {
		return
	}
	for _, b := range cfg.KafkaBrokers {
		if err := sl.Validator().Var(b, "hostname_port"); err != nil {
			sl.ReportError(cfg.KafkaBrokers, "KAFKA_BROKERS", "KafkaBrokers", "hostname_port", "")
			return
		}
	}
}
