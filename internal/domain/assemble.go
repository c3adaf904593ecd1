package domain

import "time"

// LakeLevelFromRecord maps one record from the lake levels endpoint into a
// LakeLevel. The dam and lake names are joined the way the hydromet site
// displays them ("Mansfield/Travis").
func LakeLevelFromRecord(rec map[string]any) LakeLevel {
	return LakeLevel{
		DamLakeName:     stringField(rec, "dam") + "/" + stringField(rec, "lake"),
		MeasurementTime: ParseTimestamp(rec["lastDataUpdate"]),
		HeadElevation:   ParseNumber(rec["head"]),
		TailElevation:   ParseNumber(rec["tail"]),
		GateOperations:  stringField(rec, "gateOps"),
	}
}

// RiverConditionFromSite maps one gauge site from the forecast references
// endpoint into a RiverCondition.
func RiverConditionFromSite(site map[string]any) RiverCondition {
	return RiverCondition{
		Location:      stringField(site, "location"),
		CurrentStage:  ParseNumber(site["stage"]),
		CurrentFlow:   ParseNumber(site["flow"]),
		BankfullStage: ParseNumber(site["bankfull"]),
		FloodStage:    ParseNumber(site["floodStage"]),
		// The feed has no distinct action-stage field; bankfull doubles as
		// the action stage until LCRA publishes one.
		ActionStage:     ParseNumber(site["bankfull"]),
		MeasurementTime: ParseTimestamp(site["dateTime"]),
		DataSource:      DataSourceLCRA,
	}
}

// FloodgateOperationFromRecord maps one record from the lake levels endpoint
// into its gate-operation view.
func FloodgateOperationFromRecord(rec map[string]any) FloodgateOperation {
	dam := stringField(rec, "dam")
	if dam == "" {
		dam = "Unknown Dam"
	}
	return FloodgateOperation{
		DamName:           dam,
		LastUpdate:        ParseTimestamp(rec["lastUpdate"]),
		Inflows:           ParseNumber(rec["inflows"]),
		GateOperations:    stringField(rec, "gateOps"),
		LakeLevelForecast: stringField(rec, "forecast"),
		CurrentElevation:  ParseNumber(rec["head"]),
	}
}

// NarrativeFromRecords extracts the last-update time and narrative text from
// the narrative summary payload. The endpoint returns an array; the first
// element is the current narrative.
func NarrativeFromRecords(records []map[string]any) (*time.Time, string) {
	if len(records) == 0 {
		return nil, ""
	}
	rec := records[0]
	// "narrive_sum" is the field name the feed actually serves.
	return ParseTimestamp(rec["lastUpdate"]), stringField(rec, "narrive_sum")
}

// AssembleReport builds the full report from its scraped sections, stamping
// it with the current clock time. Section slices are normalized to non-nil so
// the JSON form always carries arrays.
func AssembleReport(lastUpdate *time.Time, narrative string, lakes []LakeLevel, rivers []RiverCondition, gates []FloodgateOperation) FloodOperationsReport {
	if lakes == nil {
		lakes = []LakeLevel{}
	}
	if rivers == nil {
		rivers = []RiverCondition{}
	}
	if gates == nil {
		gates = []FloodgateOperation{}
	}
	return FloodOperationsReport{
		ReportTime:          clock.Now(),
		LastUpdate:          lastUpdate,
		NarrativeSummary:    narrative,
		LakeLevels:          lakes,
		RiverConditions:     rivers,
		RiverForecasts:      []RiverForecast{},
		FloodgateOperations: gates,
	}
}

// stringField returns the value under key as a string, or "" when the key is
// missing, null, or holds a non-string value.
func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
