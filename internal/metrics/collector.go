package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the run-level Prometheus instruments. It registers on its
// own registry so tests can construct collectors freely.
type Collector struct {
	registry *prometheus.Registry

	pagesFetched    *prometheus.CounterVec
	probeDuration   prometheus.Histogram
	domainsProbed   prometheus.Counter
	domainsAccepted prometheus.Counter
	domainsRejected *prometheus.CounterVec
	searchRequests  *prometheus.CounterVec
	psiRequests     *prometheus.CounterVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		pagesFetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadscout_pages_fetched_total",
				Help: "Pages fetched during domain probes",
			},
			[]string{"outcome"},
		),
		probeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "leadscout_probe_duration_seconds",
				Help:    "Duration of full domain probes",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		domainsProbed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leadscout_domains_probed_total",
				Help: "Domains probed this run",
			},
		),
		domainsAccepted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leadscout_domains_accepted_total",
				Help: "Domains admitted as leads",
			},
		),
		domainsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadscout_domains_rejected_total",
				Help: "Domains rejected, by reason class",
			},
			[]string{"reason"},
		),
		searchRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadscout_search_requests_total",
				Help: "Search API requests issued",
			},
			[]string{"outcome"},
		),
		psiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadscout_psi_requests_total",
				Help: "PageSpeed Insights requests issued",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		c.pagesFetched, c.probeDuration, c.domainsProbed,
		c.domainsAccepted, c.domainsRejected, c.searchRequests, c.psiRequests,
	)
	return c
}

func (c *Collector) RecordPageFetch(ok bool) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	c.pagesFetched.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordProbe(duration time.Duration) {
	c.domainsProbed.Inc()
	c.probeDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordAccepted() {
	c.domainsAccepted.Inc()
}

func (c *Collector) RecordRejected(reason string) {
	c.domainsRejected.WithLabelValues(reasonClass(reason)).Inc()
}

func (c *Collector) RecordSearch(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.searchRequests.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordPSI(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.psiRequests.WithLabelValues(outcome).Inc()
}

// Handler exposes the run's metrics for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// reasonClass collapses parameterized rejection reasons so the label set
// stays bounded.
func reasonClass(reason string) string {
	switch {
	case len(reason) >= 9 && reason[:9] == "low_score":
		return "low_score"
	case len(reason) >= 15 && reason[:15] == "spam_confidence":
		return "spam_confidence"
	case len(reason) >= 16 && reason[:16] == "processing_error":
		return "processing_error"
	default:
		return reason
	}
}
