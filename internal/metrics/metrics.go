// Package metrics exposes Prometheus instrumentation for the AR core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(func() *prometheus.Registry {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		return registry
	}),
	fx.Provide(New),
)

type Metrics struct {
	applyRequests    *prometheus.CounterVec
	appliedAmount    prometheus.Counter
	paymentsRecorded prometheus.Counter
	httpRequests     *prometheus.CounterVec
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		applyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collecta_apply_requests_total",
			Help: "Reconciliation apply attempts by outcome.",
		}, []string{"result"}),
		appliedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collecta_applied_amount_minor_units_total",
			Help: "Total amount allocated to invoices, in minor currency units.",
		}),
		paymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collecta_payments_recorded_total",
			Help: "Payments recorded from bank receipts.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collecta_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
	}
	registry.MustRegister(m.applyRequests, m.appliedAmount, m.paymentsRecorded, m.httpRequests)
	return m
}

// RecordApply counts one apply attempt; result is "applied" or the rejection kind.
func (m *Metrics) RecordApply(result string, amount int64) {
	if m == nil {
		return
	}
	m.applyRequests.WithLabelValues(result).Inc()
	if amount > 0 {
		m.appliedAmount.Add(float64(amount))
	}
}

func (m *Metrics) RecordPayment() {
	if m == nil {
		return
	}
	m.paymentsRecorded.Inc()
}

func (m *Metrics) RecordHTTPRequest(route, method, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
}
