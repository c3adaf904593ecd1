package domain

import "time"

// DataSource identifies the agency a river condition reading came from.
type DataSource string

// DataSourceLCRA marks readings scraped from the LCRA hydromet API.
const DataSourceLCRA DataSource = "LCRA"

// LakeLevel is one dam/lake row from the lake levels endpoint. Measurement
// fields are pointers because the feed frequently leaves them blank or fills
// them with a no-data sentinel; nil means the value was absent upstream.
type LakeLevel struct {
	DamLakeName     string     `json:"dam_lake_name"`
	MeasurementTime *time.Time `json:"measurement_time"`
	HeadElevation   *float64   `json:"head_elevation"`
	TailElevation   *float64   `json:"tail_elevation"`
	GateOperations  string     `json:"gate_operations,omitempty"`
}

// RiverCondition is one gauge site row from the forecast references endpoint.
type RiverCondition struct {
	Location        string     `json:"location"`
	CurrentStage    *float64   `json:"current_stage"`
	CurrentFlow     *float64   `json:"current_flow"`
	BankfullStage   *float64   `json:"bankfull_stage"`
	FloodStage      *float64   `json:"flood_stage"`
	ActionStage     *float64   `json:"action_stage"`
	MeasurementTime *time.Time `json:"measurement_time"`
	DataSource      DataSource `json:"data_source"`
}

// FloodgateOperation is the gate-operation view of a lake levels row.
type FloodgateOperation struct {
	DamName           string     `json:"dam_name"`
	LastUpdate        *time.Time `json:"last_update"`
	Inflows           *float64   `json:"inflows"`
	GateOperations    string     `json:"gate_operations,omitempty"`
	LakeLevelForecast string     `json:"lake_level_forecast,omitempty"`
	CurrentElevation  *float64   `json:"current_elevation"`
}

// RiverForecast is a placeholder for forecast rows; the feed does not
// currently expose them, so reports carry an empty slice.
type RiverForecast struct {
	Location      string     `json:"location"`
	ForecastTime  *time.Time `json:"forecast_time"`
	ForecastStage *float64   `json:"forecast_stage"`
}

// FloodOperationsReport is the full assembled snapshot of flood status data.
type FloodOperationsReport struct {
	ReportTime          time.Time            `json:"report_time"`
	LastUpdate          *time.Time           `json:"last_update"`
	NarrativeSummary    string               `json:"narrative_summary,omitempty"`
	LakeLevels          []LakeLevel          `json:"lake_levels"`
	RiverConditions     []RiverCondition     `json:"river_conditions"`
	RiverForecasts      []RiverForecast      `json:"river_forecasts"`
	FloodgateOperations []FloodgateOperation `json:"floodgate_operations"`
}

// Empty reports whether the report carries no scraped data at all, which is
// how a cycle with every endpoint down presents itself.
func (r FloodOperationsReport) Empty() bool {
	return len(r.LakeLevels) == 0 &&
		len(r.RiverConditions) == 0 &&
		len(r.FloodgateOperations) == 0 &&
		r.LastUpdate == nil &&
		r.NarrativeSummary == ""
}
