// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xensor/potholemap/reports"
	"github.com/xensor/potholemap/suburbs"
)

type metrics struct {
	registry *prometheus.Registry
	lookups  *prometheus.CounterVec
	reports  *prometheus.CounterVec
}

func newMetrics(directorySize int) *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &metrics{
		registry: reg,
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "potholemap",
			Name:      "suburb_lookups_total",
			Help:      "Suburb searches by outcome.",
		}, []string{"status"}),
		reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "potholemap",
			Name:      "reports_total",
			Help:      "Pothole report submissions by outcome.",
		}, []string{"outcome"}),
	}

	factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "potholemap",
		Name:      "suburbs_loaded",
		Help:      "Number of suburbs in the directory.",
	}).Set(float64(directorySize))

	return m
}

func (m *metrics) observeLookup(status suburbs.Status) {
	m.lookups.WithLabelValues(status.String()).Inc()
}

func (m *metrics) observeReport(err error) {
	outcome := "accepted"

	switch {
	case err == nil:
	case reports.IsMissingSuburb(err):
		outcome = reports.ErrorTypeMissingSuburb.String()
	case reports.IsMissingCoordinates(err):
		outcome = reports.ErrorTypeMissingCoordinates.String()
	default:
		outcome = "error"
	}

	m.reports.WithLabelValues(outcome).Inc()
}

// observeInvalidInput counts submissions that could not be decoded.
func (m *metrics) observeInvalidInput() {
	m.reports.WithLabelValues("invalid_input").Inc()
}

func (m *metrics) handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
