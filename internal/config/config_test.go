package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"host-metrics/internal/util"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:5001", cfg.Addr())
	assert.Equal(t, time.Second, cfg.CPUInterval)
	assert.Equal(t, "/", cfg.RootPath)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.ReloadTemplates())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"port zero", func(c *Config) { c.Port = 0 }, ErrInvalidPort},
		{"port too large", func(c *Config) { c.Port = 70000 }, ErrInvalidPort},
		{"zero interval", func(c *Config) { c.CPUInterval = 0 }, ErrInvalidCPUInterval},
		{"blank root path", func(c *Config) { c.RootPath = "  " }, ErrEmptyRootPath},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, util.ErrUnknownLogLevel},
		{"prometheus shadows json view", func(c *Config) { c.PrometheusPath = "/metrics" }, ErrInvalidPrometheusPath},
		{"prometheus relative", func(c *Config) { c.PrometheusPath = "prom" }, ErrInvalidPrometheusPath},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, tc.want), "got %v, want %v", err, tc.want)
		})
	}

	cfg := Default()
	cfg.PrometheusPath = ""
	assert.NoError(t, cfg.Validate(), "empty prometheus path disables telemetry")
}

func TestAddrIPv6(t *testing.T) {
	cfg := Default()
	cfg.Host = "::1"
	cfg.Port = 8080

	assert.Equal(t, "[::1]:8080", cfg.Addr())
}

func TestReloadTemplates(t *testing.T) {
	cfg := Default()
	cfg.TemplatesDir = "./templates"
	assert.False(t, cfg.ReloadTemplates(), "reload only applies in debug mode")

	cfg.Debug = true
	assert.True(t, cfg.ReloadTemplates())
}
