// Command genmock generates mock hydromet API fixtures and the assembled
// report fixture for the test suites. It runs the synthetic payloads through
// the actual domain package so the fixtures match real assembly behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -raw-dir data/mock/hydromet \
//	  -report-out data/mock/flood_operations_report.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/flood-status-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rawDir := flag.String("raw-dir", "", "output directory for raw hydromet endpoint fixtures")
	reportOut := flag.String("report-out", "", "output path for the assembled report fixture")
	flag.Parse()

	if *rawDir == "" || *reportOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-dir, -report-out")
	}

	// Set a fixed clock for a reproducible ReportTime.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.January, 5, 14, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	lakeRecords := mockLakeRecords()
	sites := mockForecastSites()
	narrative := mockNarrativeRecords()

	raw := map[string]any{
		"lake_levels_gate_ops.json": map[string]any{"records": lakeRecords},
		"forecast_references.json":  map[string]any{"sites": sites},
		"narrative_summary.json":    narrative,
	}
	for name, payload := range raw {
		path := filepath.Join(*rawDir, name)
		if err := writeJSON(path, payload); err != nil {
			return fmt.Errorf("writing raw fixture %s: %w", name, err)
		}
		log.Printf("wrote raw fixture: %s", path)
	}

	lakes := make([]domain.LakeLevel, 0, len(lakeRecords))
	gates := make([]domain.FloodgateOperation, 0, len(lakeRecords))
	for _, rec := range lakeRecords {
		lakes = append(lakes, domain.LakeLevelFromRecord(rec))
		gates = append(gates, domain.FloodgateOperationFromRecord(rec))
	}
	rivers := make([]domain.RiverCondition, 0, len(sites))
	for _, site := range sites {
		rivers = append(rivers, domain.RiverConditionFromSite(site))
	}
	lastUpdate, summary := domain.NarrativeFromRecords(narrative)

	report := domain.AssembleReport(lastUpdate, summary, lakes, rivers, gates)

	if err := writeJSON(*reportOut, report); err != nil {
		return fmt.Errorf("writing report fixture: %w", err)
	}
	log.Printf("wrote report fixture: %s", *reportOut)

	printStats(report)
	return nil
}

// mockLakeRecords mirrors the shapes the lake levels endpoint actually serves:
// numbers arrive as strings with units, timestamps in the slash format, and
// missing values as the "/" sentinel.
func mockLakeRecords() []map[string]any {
	return []map[string]any{
		{
			"dam":            "Mansfield",
			"lake":           "Travis",
			"lastDataUpdate": "1/5/2024 1:45:00 PM",
			"lastUpdate":     "1/5/2024 1:45:00 PM",
			"head":           "681.32 ft",
			"tail":           "492.10 ft",
			"inflows":        "1,250",
			"gateOps":        "No gates open",
			"forecast":       "Lake Travis is expected to remain steady.",
		},
		{
			"dam":            "Buchanan",
			"lake":           "Buchanan",
			"lastDataUpdate": "1/5/2024 1:30 PM",
			"lastUpdate":     "1/5/2024 1:30 PM",
			"head":           1018.4,
			"tail":           "/",
			"inflows":        "/",
			"gateOps":        "2 gates open 1 ft",
			"forecast":       "Floodgate operations continue at Buchanan Dam.",
		},
		{
			"dam":            "",
			"lake":           "Inks",
			"lastDataUpdate": "/",
			"lastUpdate":     "/",
			"head":           "N/A",
			"tail":           "N/A",
			"inflows":        nil,
			"gateOps":        "",
			"forecast":       "",
		},
	}
}

func mockForecastSites() []map[string]any {
	return []map[string]any{
		{
			"location":   "Colorado River at Austin",
			"stage":      "4.32",
			"flow":       "1,120",
			"bankfull":   21.0,
			"floodStage": "25",
			"dateTime":   "2024-01-05 13:45:00",
		},
		{
			"location":   "Llano River at Llano",
			"stage":      6.1,
			"flow":       "/",
			"bankfull":   "10.0",
			"floodStage": "--",
			"dateTime":   "2024-01-05T13:30:00-06:00",
		},
	}
}

func mockNarrativeRecords() []map[string]any {
	return []map[string]any{
		{
			"lastUpdate":  "1/5/2024 1:45:00 PM",
			"narrive_sum": "LCRA is conducting floodgate operations at Buchanan Dam.",
		},
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(report domain.FloodOperationsReport) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("ReportTime: %s\n", report.ReportTime.Format(time.RFC3339))
	if report.LastUpdate != nil {
		fmt.Printf("LastUpdate: %s\n", report.LastUpdate.Format(time.RFC3339))
	}
	fmt.Printf("Lake levels: %d\n", len(report.LakeLevels))
	fmt.Printf("River conditions: %d\n", len(report.RiverConditions))
	fmt.Printf("Floodgate operations: %d\n", len(report.FloodgateOperations))

	var timestamps, elevations int
	for i := range report.LakeLevels {
		if report.LakeLevels[i].MeasurementTime != nil {
			timestamps++
		}
		if report.LakeLevels[i].HeadElevation != nil {
			elevations++
		}
	}
	fmt.Printf("Lake levels with timestamp: %d, with head elevation: %d\n", timestamps, elevations)
}
