package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Outcome labels for TransitionsTotal.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry          *prometheus.Registry
	TransitionsTotal  *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	SideEffectErrors  *prometheus.CounterVec
	LockWaitSeconds   prometheus.Histogram
}

// NewMetricsManager registers the collectors on a private registry.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Lifecycle operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Latency of lifecycle operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	sideEffects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "side_effect_errors_total",
		Help:      "Failed post-commit side effects (events, cache, mail).",
	}, []string{"kind"})

	lockWait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "property_lock_wait_seconds",
		Help:      "Time spent acquiring the distributed property lock.",
		Buckets:   prometheus.DefBuckets,
	})

	registry.MustRegister(
		transitions,
		duration,
		sideEffects,
		lockWait,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:          registry,
		TransitionsTotal:  transitions,
		OperationDuration: duration,
		SideEffectErrors:  sideEffects,
		LockWaitSeconds:   lockWait,
	}
}

// Observe records one finished operation. rejected classifies domain
// rejections separately from infrastructure failures.
func (m *MetricsManager) Observe(operation string, started time.Time, err error, rejected func(error) bool) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
		if rejected != nil && rejected(err) {
			outcome = OutcomeRejected
		}
	}
	m.TransitionsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// SideEffectFailed counts a failed post-commit side effect.
func (m *MetricsManager) SideEffectFailed(kind string) {
	if m == nil {
		return
	}
	m.SideEffectErrors.WithLabelValues(kind).Inc()
}

// Server exposes /metrics on its own port.
type Server struct {
	srv *http.Server
	log *logger.Logger
}

func NewServer(port string, registry *prometheus.Registry, log *logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &Server{
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log.Named("metrics"),
	}
}

// Start blocks until the server stops. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.log.Info("Prometheus metrics server starting", zap.String("addr", s.srv.Addr), zap.String("path", "/metrics"))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
