package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	CatalogPath string
	OutputDir   string

	// Catalog filters; empty matches everything.
	Variable   string
	Experiment string
	MemberID   string

	// Reference period the EOF modes are fitted over.
	RefStart time.Time
	RefEnd   time.Time

	// HTTPAddr serves /healthz, /readyz, and /metrics while the batch
	// runs. Empty disables the endpoints entirely.
	HTTPAddr string

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. The default reference period is 1979-2009, the satellite-era
// window used throughout the E/C index literature.
func Load() (*Config, error) {
	refStart, err := parseDate("REF_PERIOD_START", "1979-01-01")
	if err != nil {
		return nil, err
	}
	refEnd, err := parseDate("REF_PERIOD_END", "2009-12-31")
	if err != nil {
		return nil, err
	}
	if refEnd.Before(refStart) {
		return nil, errors.New("REF_PERIOD_END is before REF_PERIOD_START")
	}

	shutdownTimeout, err := parseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CatalogPath: envOrDefault("CATALOG_PATH", "data/catalog.csv"),
		OutputDir:   envOrDefault("OUTPUT_DIR", "out"),

		Variable:   envOrDefault("VARIABLE", "sst"),
		Experiment: os.Getenv("EXPERIMENT"),
		MemberID:   os.Getenv("MEMBER_ID"),

		RefStart: refStart,
		RefEnd:   refEnd,

		HTTPAddr: os.Getenv("HTTP_ADDR"),

		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.CatalogPath == "" {
		return nil, errors.New("CATALOG_PATH is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDate(key, def string) (time.Time, error) {
	s := envOrDefault(key, def)
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q is not a YYYY-MM-DD date", key, s)
	}
	return t, nil
}

func parseShutdownTimeout() (time.Duration, error) {
	s := envOrDefault("SHUTDOWN_TIMEOUT", "10s")
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	return d, nil
}
