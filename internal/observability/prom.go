package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// Cutoff finalizer
	FinalizeDuration   *prometheus.HistogramVec
	FinalizeResults    *prometheus.CounterVec
	ResponsesFinalized prometheus.Counter
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lunchboard",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lunchboard",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				// Sane initial defaults
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "lunchboard",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lunchboard",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "DB operation latency (logical op, not raw SQL)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lunchboard",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op and class.",
			},
			[]string{"op", "class"},
		),

		FinalizeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lunchboard",
				Subsystem: "cutoff",
				Name:      "duration_seconds",
				Help:      "Cutoff finalizer run duration by trigger and result",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"trigger", "result"}, // result=done|skipped|failed
		),
		FinalizeResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lunchboard",
				Subsystem: "cutoff",
				Name:      "results_total",
				Help:      "Cutoff finalizer outcomes by trigger and result.",
			},
			[]string{"trigger", "result"},
		),
		ResponsesFinalized: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "lunchboard",
				Subsystem: "cutoff",
				Name:      "responses_finalized_total",
				Help:      "Responses auto-created for non-responders at cutoff.",
			},
		),
	}
	reg.MustRegister(p.RequestsTotal, p.RequestsDuration, p.InFlight, p.DbQueryDuration, p.DbErrorsTotal, p.FinalizeDuration, p.FinalizeResults, p.ResponsesFinalized)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

// ObserveFinalize records one finalizer run.
func (p *Prom) ObserveFinalize(trigger, result string, processed int, took time.Duration) {
	p.FinalizeDuration.WithLabelValues(trigger, result).Observe(took.Seconds())
	p.FinalizeResults.WithLabelValues(trigger, result).Inc()

	if processed > 0 {
		p.ResponsesFinalized.Add(float64(processed))
	}
}
