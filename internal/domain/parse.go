package domain

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// noData is the slash sentinel the hydromet feed uses for "no data available".
const noData = "/"

// noDataTokens are the remaining sentinel spellings observed in measurement
// fields. Compared case-insensitively ("N/A" and "n/a" both occur).
var noDataTokens = []string{noData, "N/A", "--"}

var (
	// timestampPatterns are the textual timestamp shapes the feed emits,
	// tried in order; the first regexp that matches decides the layout.
	// Slash dates may carry an optional AM/PM meridiem, dash dates are
	// always 24-hour.
	timestampPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,2}/\d{1,2}/\d{4})\s+(\d{1,2}:\d{2}:\d{2})\s*(AM|PM)?`),
		regexp.MustCompile(`(?i)(\d{1,2}/\d{1,2}/\d{4})\s+(\d{1,2}:\d{2})\s*(AM|PM)?`),
		regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s+(\d{2}:\d{2}:\d{2})`),
		regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s+(\d{2}:\d{2})`),
	}

	// isoLayouts parse the date+time remainder of a T-separated timestamp
	// once the offset suffix has been stripped.
	isoLayouts = []string{
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04",
	}

	// nonNumericRe strips everything a measurement string may embed around
	// the number itself: units ("681.3 ft"), thousands separators
	// ("1,234.5"), and stray symbols.
	nonNumericRe = regexp.MustCompile(`[^0-9.-]`)
)

// ParseTimestamp converts a raw timestamp field into a point in time.
// The feed emits the same logical field in several shapes across endpoints:
// ISO combined timestamps with or without an offset, slash dates with 12- or
// 24-hour times, and dash dates with 24-hour times. Offsets are discarded
// because the feed does not supply them reliably; the result is the local
// wall-clock reading. Returns nil for absent, sentinel, or unparseable
// input, never an error.
func ParseTimestamp(raw any) *time.Time {
	s, ok := raw.(string)
	if !ok {
		return nil
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == noData {
		return nil
	}

	if strings.Contains(s, "T") {
		if t := parseCombined(s); t != nil {
			return t
		}
	}

	for _, re := range timestampPatterns {
		if t := parsePattern(re, s); t != nil {
			return t
		}
	}

	return nil
}

// parseCombined handles T-separated timestamps like
// "2024-01-05T13:45:00-06:00" or "2024-01-05T13:45:00Z" by splitting on the
// marker and cutting any offset suffix off the time portion. Returns nil when
// the remainder is not an ISO date+time, so the caller can fall back to
// pattern matching.
func parseCombined(s string) *time.Time {
	datePart, timePart, found := strings.Cut(s, "T")
	if !found {
		return nil
	}
	timePart, _, _ = strings.Cut(timePart, "+")
	timePart, _, _ = strings.Cut(timePart, "-")
	timePart, _, _ = strings.Cut(timePart, "Z")

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, datePart+" "+timePart); err == nil {
			return &t
		}
	}
	return nil
}

// parsePattern applies one timestamp regexp and, on a match, parses the
// captured groups with the layout implied by the date style, the number of
// time components, and the presence of a meridiem. A match that fails strict
// parsing (e.g. "13:45 PM") yields nil so the next pattern gets a turn.
func parsePattern(re *regexp.Regexp, s string) *time.Time {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	datePart, timePart := m[1], m[2]
	meridiem := ""
	if len(m) > 3 {
		meridiem = strings.ToUpper(m[3])
	}

	dateLayout := "2006-01-02"
	if strings.Contains(datePart, "/") {
		dateLayout = "1/2/2006"
	}

	withSeconds := strings.Count(timePart, ":") == 2
	var timeLayout string
	switch {
	case meridiem != "" && withSeconds:
		timeLayout = "3:04:05 PM"
	case meridiem != "":
		timeLayout = "3:04 PM"
	case withSeconds:
		timeLayout = "15:04:05"
	default:
		timeLayout = "15:04"
	}

	value := datePart + " " + timePart
	if meridiem != "" {
		value += " " + meridiem
	}

	t, err := time.Parse(dateLayout+" "+timeLayout, value)
	if err != nil {
		return nil
	}
	return &t
}

// ParseNumber converts a raw measurement field into a float. The feed emits
// measurements as JSON numbers on some endpoints and as text on others, with
// the text sometimes carrying units, thousands separators, or a no-data
// sentinel. Returns nil for absent, sentinel, or non-numeric input, never
// an error.
func ParseNumber(raw any) *float64 {
	switch v := raw.(type) {
	case nil:
		return nil
	case float64:
		return &v
	case float32:
		return floatPtr(float64(v))
	case int:
		return floatPtr(float64(v))
	case int64:
		return floatPtr(float64(v))
	case int32:
		return floatPtr(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		return parseNumberString(v)
	default:
		return nil
	}
}

func parseNumberString(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, tok := range noDataTokens {
		if strings.EqualFold(s, tok) {
			return nil
		}
	}

	cleaned := nonNumericRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return nil
	}

	// Stripping can leave junk like "1.2.3" or "5-"; strconv rejects it.
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

func floatPtr(v float64) *float64 { return &v }
