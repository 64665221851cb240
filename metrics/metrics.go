// Package metrics exposes the runtime counters and gauges an operator
// dashboard needs to watch this core from the outside: pending fan-out
// load per adult, local capacity usage, and how often adults get
// proposed offline. It wires github.com/prometheus/client_golang,
// the only metrics dependency present across the retrieved examples.
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xornet-io/vault/cluster/meta"
)

const namespace = "vault"

// Registry bundles every metric this core produces. A process
// constructs exactly one and registers it with its own
// *prometheus.Registry (or the default one via MustRegister).
type Registry struct {
	PendingOps        *prometheus.GaugeVec
	UsedSpaceRatio    prometheus.Gauge
	UnresponsiveTotal prometheus.Counter
	FullAdultsTotal   prometheus.Gauge
	ReplicationTotal  *prometheus.CounterVec
}

// NewRegistry builds a fresh, unregistered Registry. Callers typically
// follow with reg.MustRegister(prometheus.DefaultRegisterer) or pass a
// *prometheus.Registry of their own to Register.
func NewRegistry() *Registry {
	return &Registry{
		PendingOps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "liveness",
			Name:      "pending_ops",
			Help:      "Number of in-flight fan-out operations currently addressed to this adult.",
		}, []string{"adult"}),
		UsedSpaceRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chunk",
			Name:      "used_space_ratio",
			Help:      "Fraction of this adult's configured max capacity currently used.",
		}),
		UnresponsiveTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "liveness",
			Name:      "unresponsive_adults_total",
			Help:      "Total number of times an adult was proposed offline for unresponsiveness.",
		}),
		FullAdultsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "full_adults",
			Help:      "Number of adults this section currently considers full.",
		}),
		ReplicationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "republish_total",
			Help:      "Total number of chunk republish fan-outs issued, by trigger.",
		}, []string{"trigger"}),
	}
}

// MustRegister registers every metric with reg, panicking on
// duplicate registration - a programmer error, not a runtime one.
func (r *Registry) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(r.PendingOps, r.UsedSpaceRatio, r.UnresponsiveTotal, r.FullAdultsTotal, r.ReplicationTotal)
}

// ObservePendingOps refreshes the pending_ops gauge for name.
func (r *Registry) ObservePendingOps(name meta.XorName, count int) {
	r.PendingOps.WithLabelValues(name.String()).Set(float64(count))
}

// ObserveUsedSpaceRatio refreshes the local capacity gauge.
func (r *Registry) ObserveUsedSpaceRatio(ratio float64) {
	r.UsedSpaceRatio.Set(ratio)
}

// ObserveUnresponsive increments the proposed-offline counter by n.
func (r *Registry) ObserveUnresponsive(n int) {
	r.UnresponsiveTotal.Add(float64(n))
}

// ObserveFullAdults refreshes the full-adult gauge.
func (r *Registry) ObserveFullAdults(count int) {
	r.FullAdultsTotal.Set(float64(count))
}

// ObserveRepublish increments the republish counter for trigger (e.g.
// "churn" or "manual").
func (r *Registry) ObserveRepublish(trigger string) {
	r.ReplicationTotal.WithLabelValues(trigger).Inc()
}
