package scraper_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/flood-status-service/internal/domain"
	"github.com/couchcryptid/flood-status-service/internal/observability"
	"github.com/couchcryptid/flood-status-service/internal/scraper"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- mocks ---

type mockClient struct {
	mu        sync.Mutex
	records   []map[string]any
	sites     []map[string]any
	narrative []map[string]any

	recordsErr   error
	sitesErr     error
	narrativeErr error

	// cycleCount tracks narrative fetches, which happen once per full
	// report cycle.
	cycleCount int
}

func (m *mockClient) LakeLevelsGateOps(_ context.Context) ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records, m.recordsErr
}

func (m *mockClient) ForecastReferences(_ context.Context) ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sites, m.sitesErr
}

func (m *mockClient) NarrativeSummary(_ context.Context) ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycleCount++
	return m.narrative, m.narrativeErr
}

func (m *mockClient) cycles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycleCount
}

func (m *mockClient) setErrors(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordsErr = err
	m.sitesErr = err
	m.narrativeErr = err
}

type mockPublisher struct {
	mu      sync.Mutex
	reports []domain.FloodOperationsReport
	err     error
}

func (m *mockPublisher) PublishReport(_ context.Context, report domain.FloodOperationsReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.reports = append(m.reports, report)
	return nil
}

func (m *mockPublisher) published() []domain.FloodOperationsReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.FloodOperationsReport(nil), m.reports...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fullClient() *mockClient {
	return &mockClient{
		records: []map[string]any{
			{"dam": "Mansfield", "lake": "Travis", "head": "681.3 ft", "tail": 492.1,
				"lastDataUpdate": "2024-01-05T13:45:00-06:00", "lastUpdate": "1/5/2024 1:45 PM",
				"inflows": "3,400", "gateOps": "No floodgates open", "forecast": "steady"},
		},
		sites: []map[string]any{
			{"location": "Colorado River at Austin", "stage": "4.2", "flow": 1250,
				"bankfull": 12, "floodStage": "21", "dateTime": "2024-01-05 13:45"},
		},
		narrative: []map[string]any{
			{"lastUpdate": "2024-01-05T13:45:00Z", "narrive_sum": "Operations normal."},
		},
	}
}

// --- tests ---

func TestService_LakeLevels(t *testing.T) {
	svc := scraper.New(fullClient(), nil, discardLogger(), observability.NewMetricsForTesting(), time.Minute)

	levels, err := svc.LakeLevels(context.Background())
	require.NoError(t, err)

	require.Len(t, levels, 1)
	assert.Equal(t, "Mansfield/Travis", levels[0].DamLakeName)
	require.NotNil(t, levels[0].HeadElevation)
	assert.Equal(t, 681.3, *levels[0].HeadElevation)
}

func TestService_LakeLevels_FetchError(t *testing.T) {
	client := &mockClient{recordsErr: errors.New("connection refused")}
	svc := scraper.New(client, nil, discardLogger(), observability.NewMetricsForTesting(), time.Minute)

	_, err := svc.LakeLevels(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch lake levels")
}

func TestService_RiverConditions(t *testing.T) {
	svc := scraper.New(fullClient(), nil, discardLogger(), observability.NewMetricsForTesting(), time.Minute)

	conditions, err := svc.RiverConditions(context.Background())
	require.NoError(t, err)

	require.Len(t, conditions, 1)
	assert.Equal(t, "Colorado River at Austin", conditions[0].Location)
	assert.Equal(t, domain.DataSourceLCRA, conditions[0].DataSource)
	require.NotNil(t, conditions[0].CurrentFlow)
	assert.Equal(t, 1250.0, *conditions[0].CurrentFlow)
}

func TestService_FloodgateOperations(t *testing.T) {
	svc := scraper.New(fullClient(), nil, discardLogger(), observability.NewMetricsForTesting(), time.Minute)

	ops, err := svc.FloodgateOperations(context.Background())
	require.NoError(t, err)

	require.Len(t, ops, 1)
	assert.Equal(t, "Mansfield", ops[0].DamName)
	require.NotNil(t, ops[0].Inflows)
	assert.Equal(t, 3400.0, *ops[0].Inflows)
	assert.Equal(t, "No floodgates open", ops[0].GateOperations)
}

func TestService_FullReport(t *testing.T) {
	fixedTime := time.Date(2024, 1, 5, 14, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixedTime))
	defer domain.SetClock(nil)

	svc := scraper.New(fullClient(), nil, discardLogger(), observability.NewMetricsForTesting(), time.Minute)

	report := svc.FullReport(context.Background())

	assert.Equal(t, fixedTime, report.ReportTime)
	assert.Equal(t, "Operations normal.", report.NarrativeSummary)
	require.NotNil(t, report.LastUpdate)
	assert.Len(t, report.LakeLevels, 1)
	assert.Len(t, report.RiverConditions, 1)
	assert.Len(t, report.FloodgateOperations, 1)
	assert.Empty(t, report.RiverForecasts)
}

func TestService_FullReport_SectionDegrades(t *testing.T) {
	client := fullClient()
	client.sitesErr = errors.New("gateway timeout")
	svc := scraper.New(client, nil, discardLogger(), observability.NewMetricsForTesting(), time.Minute)

	report := svc.FullReport(context.Background())

	assert.Empty(t, report.RiverConditions)
	assert.Len(t, report.LakeLevels, 1)
	assert.Len(t, report.FloodgateOperations, 1)
	assert.False(t, report.Empty())
}

func TestService_Run_StoresAndPublishes(t *testing.T) {
	publisher := &mockPublisher{}
	svc := scraper.New(fullClient(), publisher, discardLogger(), observability.NewMetricsForTesting(), time.Hour)

	require.Error(t, svc.CheckReadiness(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := svc.Latest()
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)

	require.NoError(t, svc.CheckReadiness(context.Background()))

	report, ok := svc.Latest()
	require.True(t, ok)
	assert.Len(t, report.LakeLevels, 1)

	published := publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, report.ReportTime, published[0].ReportTime)
}

func TestService_Run_KeepsPreviousReportOnTotalFailure(t *testing.T) {
	client := fullClient()
	svc := scraper.New(client, nil, discardLogger(), observability.NewMetricsForTesting(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := svc.Latest()
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)
	first, _ := svc.Latest()

	// Every endpoint starts failing; the stored report must survive.
	client.setErrors(errors.New("down"))

	ctx2, cancel2 := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel2()
	require.NoError(t, svc.Run(ctx2))

	second, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, first.ReportTime, second.ReportTime)
}

func TestService_Run_BacksOffWhileFeedIsDown(t *testing.T) {
	client := fullClient()
	client.setErrors(errors.New("connection refused"))
	svc := scraper.New(client, nil, discardLogger(), observability.NewMetricsForTesting(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	// With an hour-long interval, repeated cycles can only come from the
	// failure backoff.
	require.Eventually(t, func() bool {
		return client.cycles() >= 3
	}, 5*time.Second, 10*time.Millisecond)
	_, ok := svc.Latest()
	require.False(t, ok)

	// The feed recovers; the next backed-off retry stores a report.
	client.setErrors(nil)
	require.Eventually(t, func() bool {
		_, ok := svc.Latest()
		return ok
	}, 10*time.Second, 10*time.Millisecond)

	// After a successful cycle the loop is back on the regular interval,
	// so the cycle count stays put.
	settled := client.cycles()
	time.Sleep(300 * time.Millisecond)
	assert.LessOrEqual(t, client.cycles(), settled+1)

	cancel()
	require.NoError(t, <-errCh)
}

func TestService_Run_PublishFailureKeepsReport(t *testing.T) {
	publisher := &mockPublisher{err: errors.New("broker unreachable")}
	svc := scraper.New(fullClient(), publisher, discardLogger(), observability.NewMetricsForTesting(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := svc.Latest()
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errCh)
	assert.Empty(t, publisher.published())
}
