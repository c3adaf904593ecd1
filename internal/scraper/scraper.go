package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/flood-status-service/internal/domain"
	"github.com/couchcryptid/flood-status-service/internal/observability"
)

// Client fetches raw payloads from the hydromet API.
type Client interface {
	LakeLevelsGateOps(ctx context.Context) ([]map[string]any, error)
	ForecastReferences(ctx context.Context) ([]map[string]any, error)
	NarrativeSummary(ctx context.Context) ([]map[string]any, error)
}

// Publisher delivers assembled reports to downstream consumers.
type Publisher interface {
	PublishReport(ctx context.Context, report domain.FloodOperationsReport) error
}

// Service scrapes the hydromet API, assembles flood status reports, and keeps
// the most recent one available for the HTTP layer. Pass a nil publisher to
// disable report publishing.
type Service struct {
	client    Client
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	interval  time.Duration

	mu     sync.RWMutex
	latest *domain.FloodOperationsReport
}

// New creates a Service scraping at the given interval.
func New(client Client, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Service {
	return &Service{
		client:    client,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		interval:  interval,
	}
}

// LakeLevels fetches and assembles the current lake level records.
func (s *Service) LakeLevels(ctx context.Context) ([]domain.LakeLevel, error) {
	records, err := s.client.LakeLevelsGateOps(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch lake levels: %w", err)
	}

	levels := make([]domain.LakeLevel, 0, len(records))
	for _, rec := range records {
		levels = append(levels, domain.LakeLevelFromRecord(rec))
	}
	s.metrics.RecordsScraped.WithLabelValues("lake_level").Add(float64(len(levels)))
	return levels, nil
}

// RiverConditions fetches and assembles the current river gauge records.
func (s *Service) RiverConditions(ctx context.Context) ([]domain.RiverCondition, error) {
	sites, err := s.client.ForecastReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch river conditions: %w", err)
	}

	conditions := make([]domain.RiverCondition, 0, len(sites))
	for _, site := range sites {
		conditions = append(conditions, domain.RiverConditionFromSite(site))
	}
	s.metrics.RecordsScraped.WithLabelValues("river_condition").Add(float64(len(conditions)))
	return conditions, nil
}

// FloodgateOperations fetches and assembles the current gate operation
// records. These come from the same endpoint as lake levels; the feed serves
// both views in one payload.
func (s *Service) FloodgateOperations(ctx context.Context) ([]domain.FloodgateOperation, error) {
	records, err := s.client.LakeLevelsGateOps(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch floodgate operations: %w", err)
	}

	ops := make([]domain.FloodgateOperation, 0, len(records))
	for _, rec := range records {
		ops = append(ops, domain.FloodgateOperationFromRecord(rec))
	}
	s.metrics.RecordsScraped.WithLabelValues("floodgate_operation").Add(float64(len(ops)))
	return ops, nil
}

// Narrative fetches the operations narrative and its last-update time.
func (s *Service) Narrative(ctx context.Context) (*time.Time, string, error) {
	records, err := s.client.NarrativeSummary(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("fetch narrative summary: %w", err)
	}
	lastUpdate, narrative := domain.NarrativeFromRecords(records)
	return lastUpdate, narrative, nil
}

// FullReport scrapes every section and assembles a report. Sections degrade
// independently: a failed fetch logs, counts a metric, and leaves its section
// empty rather than failing the whole report.
func (s *Service) FullReport(ctx context.Context) domain.FloodOperationsReport {
	lastUpdate, narrative, err := s.Narrative(ctx)
	if err != nil {
		s.sectionFailed("narrative", err)
	}

	lakes, err := s.LakeLevels(ctx)
	if err != nil {
		s.sectionFailed("lake_levels", err)
	}

	rivers, err := s.RiverConditions(ctx)
	if err != nil {
		s.sectionFailed("river_conditions", err)
	}

	gates, err := s.FloodgateOperations(ctx)
	if err != nil {
		s.sectionFailed("floodgate_operations", err)
	}

	return domain.AssembleReport(lastUpdate, narrative, lakes, rivers, gates)
}

func (s *Service) sectionFailed(section string, err error) {
	s.logger.Warn("report section scrape failed", "section", section, "error", err)
	s.metrics.SectionFailures.WithLabelValues(section).Inc()
}

// Backoff bounds for scrape cycles that produce no data.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Run executes the scrape loop until the context is cancelled. Each cycle
// assembles a full report, stores it as the latest, and publishes it when a
// publisher is configured. A cycle where every endpoint failed retries on an
// exponential backoff (200ms doubling to a 5s cap) instead of waiting out the
// full interval; the backoff resets on the first cycle that yields data.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("scraper started", "interval", s.interval)
	s.metrics.ScraperRunning.Set(1)
	defer s.metrics.ScraperRunning.Set(0)

	backoff := initialBackoff

	for {
		delay := s.interval
		if s.scrapeOnce(ctx) {
			backoff = initialBackoff
		} else {
			delay = backoff
			backoff = nextBackoff(backoff, maxBackoff)
		}

		if !sleepWithContext(ctx, delay) {
			s.logger.Info("scraper stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// scrapeOnce runs one scrape cycle. Returns true when a report was stored.
func (s *Service) scrapeOnce(ctx context.Context) bool {
	report := s.FullReport(ctx)
	if ctx.Err() != nil {
		return false
	}

	// An entirely empty report means every endpoint failed; keep the
	// previous one so readers see the last good data.
	if report.Empty() {
		s.logger.Error("scrape cycle produced no data, keeping previous report")
		return false
	}

	s.mu.Lock()
	s.latest = &report
	s.mu.Unlock()
	s.metrics.LastReportTime.Set(float64(report.ReportTime.Unix()))

	s.logger.Info("report assembled",
		"lake_levels", len(report.LakeLevels),
		"river_conditions", len(report.RiverConditions),
		"floodgate_operations", len(report.FloodgateOperations),
	)

	if s.publisher == nil {
		return true
	}
	if err := s.publisher.PublishReport(ctx, report); err != nil {
		s.logger.Error("publish report failed", "error", err)
		return true
	}
	s.metrics.ReportsPublished.Inc()
	return true
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

// Latest returns the most recently assembled report, if any.
func (s *Service) Latest() (domain.FloodOperationsReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return domain.FloodOperationsReport{}, false
	}
	return *s.latest, true
}

// CheckReadiness returns nil once the first report has been assembled, or an
// error describing why the service is not yet ready.
func (s *Service) CheckReadiness(_ context.Context) error {
	if _, ok := s.Latest(); !ok {
		return errors.New("no report assembled yet")
	}
	return nil
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
