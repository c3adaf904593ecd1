package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// flood status scraper.
type Metrics struct {
	ScrapeRequests *prometheus.CounterVec   // labels: endpoint, outcome={success,error}
	ScrapeDuration *prometheus.HistogramVec // labels: endpoint
	RecordsScraped *prometheus.CounterVec   // labels: kind={lake_level,river_condition,floodgate_operation}

	SectionFailures  *prometheus.CounterVec // labels: section
	ReportsPublished prometheus.Counter
	ScraperRunning   prometheus.Gauge
	LastReportTime   prometheus.Gauge
}

// NewMetrics creates and registers all scraper metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ScrapeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_status",
			Name:      "scrape_requests_total",
			Help:      "Hydromet API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		ScrapeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flood_status",
			Name:      "scrape_duration_seconds",
			Help:      "Hydromet API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		RecordsScraped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_status",
			Name:      "records_scraped_total",
			Help:      "Assembled records by kind.",
		}, []string{"kind"}),
		SectionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_status",
			Name:      "report_section_failures_total",
			Help:      "Report sections that failed to scrape and were left empty.",
		}, []string{"section"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_status",
			Name:      "reports_published_total",
			Help:      "Total reports written to the sink topic.",
		}),
		ScraperRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_status",
			Name:      "scraper_running",
			Help:      "1 when the scrape loop is active, 0 when shut down.",
		}),
		LastReportTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_status",
			Name:      "last_report_timestamp_seconds",
			Help:      "Unix time of the most recently assembled report.",
		}),
	}

	prometheus.MustRegister(
		m.ScrapeRequests,
		m.ScrapeDuration,
		m.RecordsScraped,
		m.SectionFailures,
		m.ReportsPublished,
		m.ScraperRunning,
		m.LastReportTime,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ScrapeRequests:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flood_status", Name: "scrape_requests_total"}, []string{"endpoint", "outcome"}),
		ScrapeDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "flood_status", Name: "scrape_duration_seconds"}, []string{"endpoint"}),
		RecordsScraped:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flood_status", Name: "records_scraped_total"}, []string{"kind"}),
		SectionFailures:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "flood_status", Name: "report_section_failures_total"}, []string{"section"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "flood_status", Name: "reports_published_total"}),
		ScraperRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flood_status", Name: "scraper_running"}),
		LastReportTime:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "flood_status", Name: "last_report_timestamp_seconds"}),
	}
}
