// Package metrics exports heartbeat and uplink metrics to Prometheus.
package metrics // import "go.jonnrb.io/natmon/metrics"

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.jonnrb.io/natmon/ha"
	"go.jonnrb.io/natmon/log"
)

var (
	metricScrapeInterval = flag.Duration(
		"metrics.scrape_interval",
		5*time.Second,
		"How often to scrape uplink metrics from the kernel.")
)

// An ha.Observer that records every tick.
type Metrics struct {
	outcomes    *prometheus.CounterVec
	failures    *prometheus.CounterVec
	isMaster    prometheus.Gauge
	duration    prometheus.Histogram
	unreachable prometheus.Gauge

	receiveBytes  prometheus.Gauge
	transmitBytes prometheus.Gauge
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "natmon_tick_outcomes_total",
			Help: "Heartbeats by what they decided.",
		}, []string{"outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "natmon_tick_failures_total",
			Help: "Failed heartbeats by kind of failure.",
		}, []string{"kind"}),
		isMaster: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "natmon_is_master",
			Help: "1 if the default route pointed here after the last successful heartbeat.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "natmon_tick_duration_seconds",
			Help:    "How long heartbeats take, probing included.",
			Buckets: prometheus.DefBuckets,
		}),
		unreachable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "natmon_unreachable_peers",
			Help: "Peers that didn't answer during the last probe round.",
		}),
		receiveBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "uplink_network_receive_bytes",
			Help: "Counter reporting receive bytes on the uplink interface.",
		}),
		transmitBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "uplink_network_transmit_bytes",
			Help: "Counter reporting transmit bytes on the uplink interface.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.outcomes, m.failures, m.isMaster, m.duration, m.unreachable,
		m.receiveBytes, m.transmitBytes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Observe(res ha.Result, err error) {
	m.duration.Observe(res.Duration.Seconds())

	if err != nil {
		kind := "unknown"
		var te *ha.TickError
		if errors.As(err, &te) {
			kind = te.Kind.String()
		}
		m.failures.WithLabelValues(kind).Inc()
		return
	}

	m.outcomes.WithLabelValues(res.Outcome.String()).Inc()
	if res.Outcome.IsMaster() {
		m.isMaster.Set(1)
	} else {
		m.isMaster.Set(0)
	}
	// Masters don't probe.
	if res.Outcome != ha.AlreadyMaster {
		m.unreachable.Set(float64(len(res.Unreachable)))
	}
}

// Scrapes uplink byte counters until ctx is done.
func (m *Metrics) ScrapeUplink(ctx context.Context, uplinkName string) {
	log.V(2).Infof("scraping metrics every %v", *metricScrapeInterval)

	t := time.NewTicker(*metricScrapeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.doMetricsScrape(uplinkName)
		}
	}
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
