package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/whiteflags26/turfmania-sub000/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	requestCounter prometheus.Counter
	authzDecisions *prometheus.CounterVec
}

// Attach configures telemetry exporters and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	counter := promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "access",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	})

	decisions := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "access",
		Name:      "authz_decisions_total",
		Help:      "Authorization check outcomes by permission and decision",
	}, []string{"permission", "decision"})

	return &Provider{
		requestCounter: counter,
		authzDecisions: decisions,
	}, nil
}

// RequestCounter exposes the HTTP request metric.
func (p *Provider) RequestCounter() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.requestCounter
}

// RecordAuthzDecision counts the outcome of a permission check.
func (p *Provider) RecordAuthzDecision(permission string, allowed bool) {
	if p == nil || p.authzDecisions == nil {
		return
	}
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	p.authzDecisions.WithLabelValues(permission, decision).Inc()
}
