package config

import (
	"errors"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HydrometBaseURL string
	HydrometTimeout time.Duration
	ScrapeInterval  time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka report publishing configuration.
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	hydrometTimeout, err := parsePositiveDuration("HYDROMET_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	scrapeInterval, err := parsePositiveDuration("SCRAPE_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HydrometBaseURL: sharedcfg.EnvOrDefault("HYDROMET_BASE_URL", "https://hydromet.lcra.org"),
		HydrometTimeout: hydrometTimeout,
		ScrapeInterval:  scrapeInterval,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		KafkaBrokers:    brokers,
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "flood-status-reports"),
		KafkaEnabled:    kafkaEnabled,
	}

	if cfg.HydrometBaseURL == "" {
		return nil, errors.New("HYDROMET_BASE_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when Kafka publishing is enabled")
	}

	return cfg, nil
}

func parsePositiveDuration(name, fallback string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(name, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return d, nil
}
