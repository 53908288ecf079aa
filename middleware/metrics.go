package middleware

import (
	"time"

	"github.com/pdef/pdef-go"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded by Metrics.
const (
	OutcomeOK        = "ok"
	OutcomeException = "exception"
	OutcomeError     = "error"
)

// Metrics holds Prometheus collectors for pdef calls.
type Metrics struct {
	CallsTotal    *prometheus.CounterVec
	CallDuration  *prometheus.HistogramVec
	CallsInFlight prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		CallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pdef",
				Name:      "calls_total",
				Help:      "Total number of invocation chains executed",
			},
			[]string{"endpoint", "outcome"},
		),
		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pdef",
				Name:      "call_duration_seconds",
				Help:      "Invocation chain execution time in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		),
		CallsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "pdef",
				Name:      "calls_in_flight",
				Help:      "Number of invocation chains currently executing",
			},
		),
	}
	reg.MustRegister(m.CallsTotal, m.CallDuration, m.CallsInFlight)
	return m
}

// Interceptor returns an interceptor recording every call. Calls are
// labeled by endpoint, the interface and method names of the chain.
func (m *Metrics) Interceptor() pdef.UnaryInterceptor {
	return func(ctx *pdef.Context, inv *pdef.Invocation, handler pdef.HandlerFunc) (any, error) {
		endpoint := ctx.EndpointID()
		start := time.Now()

		m.CallsInFlight.Inc()
		defer m.CallsInFlight.Dec()

		res, err := handler(ctx, inv)

		outcome := OutcomeOK
		if err != nil {
			outcome = OutcomeError
			if isDeclared(inv, err) {
				outcome = OutcomeException
			}
		}
		m.CallsTotal.WithLabelValues(endpoint, outcome).Inc()
		m.CallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		return res, err
	}
}
