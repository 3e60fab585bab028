package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"host-metrics/internal/collector"
	"host-metrics/internal/util"
)

const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 5001
	DefaultLogLevel       = "info"
	DefaultPrometheusPath = "/debug/prometheus"
	LogFileName           = "webService.log"
)

var DefaultLogDir = ".." + string(os.PathSeparator) + "log"

var (
	ErrInvalidPort           = errors.New("port must be between 1 and 65535")
	ErrInvalidCPUInterval    = errors.New("cpu interval must be positive")
	ErrEmptyRootPath         = errors.New("root path must not be empty")
	ErrInvalidPrometheusPath = errors.New("prometheus path must start with / and not shadow / or /metrics")
)

// Config is built once at startup from command line flags.
type Config struct {
	Host  string
	Port  int
	Debug bool

	CPUInterval time.Duration
	RootPath    string

	LogDir   string
	LogLevel string

	// TemplatesDir, when set together with Debug, makes the HTML views
	// re-read their templates from disk on every request.
	TemplatesDir string

	// PrometheusPath is where request telemetry is exposed. Empty disables it.
	PrometheusPath string
}

func Default() *Config {
	return &Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		CPUInterval:    collector.DefaultCPUInterval,
		RootPath:       collector.DefaultRootPath,
		LogDir:         DefaultLogDir,
		LogLevel:       DefaultLogLevel,
		PrometheusPath: DefaultPrometheusPath,
	}
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.CPUInterval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCPUInterval, c.CPUInterval)
	}
	if strings.TrimSpace(c.RootPath) == "" {
		return ErrEmptyRootPath
	}
	if _, err := util.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.PrometheusPath != "" {
		p := c.PrometheusPath
		if !strings.HasPrefix(p, "/") || p == "/" || p == "/metrics" {
			return fmt.Errorf("%w: %q", ErrInvalidPrometheusPath, p)
		}
	}
	return nil
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ReloadTemplates reports whether HTML templates should be read from disk per request.
func (c *Config) ReloadTemplates() bool {
	return c.Debug && c.TemplatesDir != ""
}
