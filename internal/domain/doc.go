// Package domain models LCRA (Lower Colorado River Authority) flood status
// data scraped from the public hydromet API.
//
// # Data Source
//
// The hydromet site at https://hydromet.lcra.org serves JSON endpoints backing
// its flood status pages:
//
//	FloodStatus/GetLakeLevelsGateOps  →  {"records": [...]}, one row per dam,
//	  carrying lake levels and floodgate operation fields together.
//	GetForecastReferences             →  {"sites": [...]}, one row per river
//	  gauge site with stage/flow readings.
//	FloodStatus/GetNarrativeSummary   →  top-level array whose first element
//	  holds the operations narrative (field name "narrive_sum", sic) and its
//	  last-update time.
//
// # Field Conventions
//
// The feed is third-party and uncontracted: the same logical field shows up
// as a JSON number on one endpoint and as text on another, and its textual
// shape drifts over time. Assembly therefore runs every timestamp through
// [ParseTimestamp] and every measurement through [ParseNumber], both of which
// are total functions: malformed input becomes nil, never an error.
//
// Timestamp shapes observed:
//
//	2024-01-05T13:45:00-06:00   ISO combined, offset discarded
//	2024-01-05T13:45:00Z        ISO combined, Z discarded
//	1/5/2024 1:45:30 PM         slash date, 12-hour with meridiem
//	1/5/2024 13:45              slash date, 24-hour
//	2024-01-05 13:45:00         dash date, 24-hour
//
// The feed never reliably supplies timezone offsets, so parsed times are
// timezone-naive local readings with any offset suffix dropped.
//
// No-data sentinels:
//
//	"/"     used in both timestamp and measurement fields
//	"N/A"   any letter case, measurement fields
//	"--"    measurement fields
//
// Measurement text may embed units and separators ("681.3 ft", "1,234.5");
// everything that is not a digit, decimal point, or minus sign is stripped
// before parsing.
package domain
