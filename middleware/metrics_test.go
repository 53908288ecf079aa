package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/pdef/pdef-go"
	"github.com/pdef/pdef-go/internal/testfixtures"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Interceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	interceptor := m.Interceptor()
	ctx, inv := remoteCall(t)

	outcomes := []error{nil, nil, &testfixtures.TestException{Text: "x"}, errors.New("boom")}
	for _, outcome := range outcomes {
		interceptor(ctx, inv, func(ctx context.Context, inv *pdef.Invocation) (any, error) {
			if m.CallsInFlight != nil && testutil.ToFloat64(m.CallsInFlight) != 1 {
				t.Errorf("expected one call in flight")
			}
			return nil, outcome
		})
	}

	const endpoint = "TestInterface.testRemote"
	tests := []struct {
		outcome string
		want    float64
	}{
		{OutcomeOK, 2},
		{OutcomeException, 1},
		{OutcomeError, 1},
	}
	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			got := testutil.ToFloat64(m.CallsTotal.WithLabelValues(endpoint, tt.outcome))
			if got != tt.want {
				t.Errorf("expected %v calls, got %v", tt.want, got)
			}
		})
	}

	if got := testutil.ToFloat64(m.CallsInFlight); got != 0 {
		t.Errorf("expected no calls in flight, got %v", got)
	}
	if got := testutil.CollectAndCount(m.CallDuration); got != 1 {
		t.Errorf("expected one duration series, got %d", got)
	}
}

func TestMetrics_Server(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	schema := testfixtures.New()

	srv := pdef.NewServer(schema.TestInterface, pdef.Singleton(&testfixtures.Service{})).
		WithUnaryInterceptor(m.Interceptor())

	req := pdef.NewRestRequest("/testExc")
	req.Query["text"] = "x"
	srv.Handle(context.Background(), req)
	srv.Handle(context.Background(), pdef.NewRestRequest("/testRemote"))

	if got := testutil.ToFloat64(m.CallsTotal.WithLabelValues("TestInterface.testExc", OutcomeException)); got != 1 {
		t.Errorf("expected 1 exception, got %v", got)
	}
	if got := testutil.ToFloat64(m.CallsTotal.WithLabelValues("TestInterface.testRemote", OutcomeOK)); got != 1 {
		t.Errorf("expected 1 ok call, got %v", got)
	}
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewMetrics(reg)
}
