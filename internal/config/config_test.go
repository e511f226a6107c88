package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/catalog.csv", cfg.CatalogPath)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "sst", cfg.Variable)
	assert.Empty(t, cfg.Experiment)
	assert.Empty(t, cfg.MemberID)
	assert.Equal(t, time.Date(1979, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.RefStart)
	assert.Equal(t, time.Date(2009, time.December, 31, 0, 0, 0, 0, time.UTC), cfg.RefEnd)
	assert.Empty(t, cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("CATALOG_PATH", "/data/cesm2-lens.csv")
	t.Setenv("OUTPUT_DIR", "/results")
	t.Setenv("VARIABLE", "tos")
	t.Setenv("EXPERIMENT", "historical")
	t.Setenv("MEMBER_ID", "r10i1p1f1")
	t.Setenv("REF_PERIOD_START", "1950-01-01")
	t.Setenv("REF_PERIOD_END", "1999-12-31")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/cesm2-lens.csv", cfg.CatalogPath)
	assert.Equal(t, "/results", cfg.OutputDir)
	assert.Equal(t, "tos", cfg.Variable)
	assert.Equal(t, "historical", cfg.Experiment)
	assert.Equal(t, "r10i1p1f1", cfg.MemberID)
	assert.Equal(t, time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.RefStart)
	assert.Equal(t, time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC), cfg.RefEnd)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_InvalidRefDate(t *testing.T) {
	t.Setenv("REF_PERIOD_START", "January 1979")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REF_PERIOD_START")
}

func TestLoad_RefEndBeforeStart(t *testing.T) {
	t.Setenv("REF_PERIOD_START", "2000-01-01")
	t.Setenv("REF_PERIOD_END", "1990-12-31")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REF_PERIOD_END")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-5s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}
