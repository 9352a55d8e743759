// Package observability exposes Prometheus metrics for survey processing and
// the HTTP surface.
package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Processing outcomes
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Emitter kinds
const (
	EmitterInBounds = "in_bounds"
	EmitterPlaced   = "placed"
	EmitterExternal = "external"
)

// SurveyCollector bundles the Prometheus metrics of the survey service
type SurveyCollector struct {
	gatherer prometheus.Gatherer

	Analyses      *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	Emitters      *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
}

// NewSurveyCollector registers the survey metrics against reg, defaulting to
// the global Prometheus registry when nil.
func NewSurveyCollector(reg prometheus.Registerer) (*SurveyCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	analyses, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wlansurvey_analyses_total",
		Help: "Processed survey analyses, labeled by outcome.",
	}, []string{"outcome"}), "wlansurvey_analyses_total")
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wlansurvey_stage_duration_seconds",
		Help:    "Duration of survey processing stages in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"stage"}), "wlansurvey_stage_duration_seconds")
	if err != nil {
		return nil, err
	}

	emitters, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wlansurvey_emitters_total",
		Help: "Emitters located by processing, labeled by kind.",
	}, []string{"kind"}), "wlansurvey_emitters_total")
	if err != nil {
		return nil, err
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wlansurvey_http_requests_total",
		Help: "Handled HTTP requests, labeled by method, route and status code.",
	}, []string{"method", "route", "code"}), "wlansurvey_http_requests_total")
	if err != nil {
		return nil, err
	}

	return &SurveyCollector{
		gatherer:      gatherer,
		Analyses:      analyses,
		StageDuration: durations,
		Emitters:      emitters,
		HTTPRequests:  requests,
	}, nil
}

// RecordOutcome counts a finished analysis
func (c *SurveyCollector) RecordOutcome(outcome string) {
	if c == nil {
		return
	}
	c.Analyses.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long a processing stage took
func (c *SurveyCollector) ObserveStage(stage string, d time.Duration) {
	if c == nil {
		return
	}
	c.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordEmitters counts located emitters of a kind
func (c *SurveyCollector) RecordEmitters(kind string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.Emitters.WithLabelValues(kind).Add(float64(n))
}

// Middleware counts requests by their chi route pattern so path parameters
// do not explode label cardinality.
func (c *SurveyCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if c == nil {
			return
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}

// Handler exposes a ready-to-use /metrics handler
func (c *SurveyCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register adds a collector, reusing an identical one registered earlier
func register[T prometheus.Collector](reg prometheus.Registerer, collector T, name string) (T, error) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return collector, nil
}
