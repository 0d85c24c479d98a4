// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in cmd/api is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OpenCheckins = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fieldtrak_open_checkins",
			Help: "Number of check-ins currently open across all employees.",
		})

	CheckinTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldtrak_checkin_total",
			Help: "Cumulative number of successful check-ins.",
		})

	CheckinConflictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldtrak_checkin_conflict_total",
			Help: "Cumulative number of check-ins rejected because one was already open.",
		})

	CheckoutTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldtrak_checkout_total",
			Help: "Cumulative number of successful checkouts.",
		})

	CheckoutNoopTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldtrak_checkout_noop_total",
			Help: "Cumulative number of checkouts that matched no open record.",
		})

	LoginFailureTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldtrak_login_failure_total",
			Help: "Cumulative number of rejected login attempts.",
		})
)

func init() {
	prometheus.MustRegister(
		OpenCheckins,
		CheckinTotal,
		CheckinConflictTotal,
		CheckoutTotal,
		CheckoutNoopTotal,
		LoginFailureTotal,
	)
}
