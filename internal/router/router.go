package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"

	"host-metrics/internal/domain"
	"host-metrics/internal/endpoints"
	"host-metrics/internal/telemetry"
	"host-metrics/internal/util"
)

const (
	shutdownTimeout     = 25 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Options wires the router. Telemetry and Pages may be nil.
type Options struct {
	Collector      domain.Collector
	Logger         *util.ServiceLogger
	Telemetry      *telemetry.Metrics
	Pages          *endpoints.Pages
	Debug          bool
	PrometheusPath string
}

func NewRouter(opts Options) *mux.Router {
	r := mux.NewRouter()

	addRoutes(r, opts)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		opts.Logger.LogEvent(util.LOG_LEVEL_WARN, fmt.Sprintf("Method not allowed: %s %s", req.Method, req.RequestURI))
		endpoints.APIResponse{}.WriteErrorResponse(w, endpoints.ErrMethodNotAllowed)
	})

	r.Use(loggingMiddleware(opts.Logger))
	if opts.Telemetry != nil {
		r.Use(opts.Telemetry.Middleware(routeTemplate))
	}
	r.Use(recoveryMiddleware(opts.Logger, opts.Debug))

	return r
}

func addRoutes(r *mux.Router, opts Options) {
	handlerOpts := []endpoints.Option{endpoints.WithVerboseErrors(opts.Debug)}
	if opts.Telemetry != nil {
		handlerOpts = append(handlerOpts, endpoints.WithTelemetry(opts.Telemetry))
	}

	dashboard := &endpoints.Dashboard{}
	dashboard.Init(opts.Collector, opts.Logger, opts.Pages, handlerOpts...)

	metricsHandler := &endpoints.Metrics{}
	metricsHandler.Init(opts.Collector, opts.Logger, handlerOpts...)

	r.HandleFunc("/", dashboard.GetIndexHandler).Methods(http.MethodGet)
	r.HandleFunc("/metrics", metricsHandler.GetMetricsHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	if opts.Telemetry != nil && opts.PrometheusPath != "" {
		r.Handle(opts.PrometheusPath, opts.Telemetry.Handler()).Methods(http.MethodGet)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// NewServer sizes the write timeout to outlast one CPU sampling window.
func NewServer(addr string, handler http.Handler, cpuInterval time.Duration) *http.Server {
	writeTimeout := defaultWriteTimeout
	if cpuInterval+5*time.Second > writeTimeout {
		writeTimeout = cpuInterval + 5*time.Second
	}
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}
}

// Run serves until ctx is done, then shuts the server down gracefully.
func Run(ctx context.Context, server *http.Server, logger *util.ServiceLogger) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", server.Addr, err)
	}
	return Serve(ctx, server, ln, logger)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, server *http.Server, ln net.Listener, logger *util.ServiceLogger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.LogEvent(util.LOG_LEVEL_INFO, "Listening on", ln.Addr().String())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.LogEvent(util.LOG_LEVEL_INFO, "Shutting down server...")
	if err := gracefulShutdown(server, shutdownTimeout); err != nil {
		logger.LogEvent(util.LOG_LEVEL_ERROR, "Server stopped with error:", err)
		return err
	}
	logger.LogEvent(util.LOG_LEVEL_INFO, "Server stopped gracefully.")
	return nil
}

func gracefulShutdown(server *http.Server, maximumTime time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), maximumTime)
	defer cancel()

	return server.Shutdown(ctx)
}

func loggingMiddleware(logger *util.ServiceLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.LogEvent(util.LOG_LEVEL_INFO, fmt.Sprintf("Request: %s %s", r.Method, r.RequestURI))
			next.ServeHTTP(w, r)
		})
	}
}

// recoveryMiddleware turns a handler panic into a 500. In debug mode the
// response carries the stack trace.
func recoveryMiddleware(logger *util.ServiceLogger, verbose bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				stack := debug.Stack()
				logger.LogEvent(util.LOG_LEVEL_ERROR, fmt.Sprintf("panic serving %s: %v\n%s", r.URL.Path, rec, stack))

				msg := http.StatusText(http.StatusInternalServerError)
				if verbose {
					msg = fmt.Sprintf("panic: %v\n\n%s", rec, stack)
				}
				http.Error(w, msg, http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
