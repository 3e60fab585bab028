package endpoints

import (
	"context"
	"errors"
	"net/http"
	"time"

	"host-metrics/internal/domain"
	"host-metrics/internal/telemetry"
	"host-metrics/internal/util"
)

type Option func(*snapshotSource)

// WithTelemetry counts collection failures in t.
func WithTelemetry(t *telemetry.Metrics) Option {
	return func(s *snapshotSource) { s.telemetry = t }
}

// WithVerboseErrors exposes the failing resource and cause to clients.
func WithVerboseErrors(verbose bool) Option {
	return func(s *snapshotSource) { s.verbose = verbose }
}

// snapshotSource is shared by both views: every request takes a new sample.
type snapshotSource struct {
	collector domain.Collector
	logger    *util.ServiceLogger
	telemetry *telemetry.Metrics
	verbose   bool
}

func (s *snapshotSource) init(collector domain.Collector, logger *util.ServiceLogger, opts []Option) {
	s.collector = collector
	s.logger = logger
	for _, opt := range opts {
		opt(s)
	}
}

func (s *snapshotSource) collect(r *http.Request) (domain.MetricsSnapshot, error) {
	start := time.Now()

	snapshot, err := s.collector.Collect(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) || r.Context().Err() != nil {
			s.logger.LogEvent(util.LOG_LEVEL_WARN, "Context cancelled while sampling", r.URL.Path)
			return domain.MetricsSnapshot{}, ErrRequestCancelled
		}
		s.telemetry.ObserveCollectionError(err)
		s.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while Collect(). Err -", err)
		return domain.MetricsSnapshot{}, err
	}

	s.logger.LogEvent(util.LOG_LEVEL_DEBUG, "Collected snapshot in", time.Since(start).Round(time.Millisecond), snapshot)
	return snapshot, nil
}

// Metrics serves the JSON view.
type Metrics struct {
	snapshotSource
	Response APIResponse
}

func (m *Metrics) Init(collector domain.Collector, logger *util.ServiceLogger, opts ...Option) {
	m.init(collector, logger, opts)
	m.Response = APIResponse{Verbose: m.verbose}
}

func (m *Metrics) GetMetricsHandler(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodGet {
		m.logger.LogEvent(util.LOG_LEVEL_ERROR, "Method Not Allowed. Only GET requests are supported", http.StatusMethodNotAllowed)
		m.Response.WriteErrorResponse(w, ErrMethodNotAllowed)
		return
	}

	snapshot, err := m.collect(r)
	if err != nil {
		m.Response.WriteErrorResponse(w, err)
		return
	}

	m.Response.WriteResultResponse(w, snapshot)
}
