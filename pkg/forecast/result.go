package forecast

import (
	"fmt"
	"sort"
	"time"
)

// unknownValue is substituted for absent optional string fields so consumers
// never see an empty category or pollutant name.
const unknownValue = "unknown"

// RawReading mirrors one loosely-typed reading as produced by the prediction
// pipeline. AQI is a pointer so a missing value can be told apart from zero.
type RawReading struct {
	Datetime          string             `json:"datetime"`
	AQI               *int               `json:"aqi"`
	Category          string             `json:"category"`
	DominantPollutant string             `json:"dominant_pollutant"`
	Pollutants        map[string]float64 `json:"pollutants"`
	Weather           map[string]float64 `json:"weather"`
}

// RawResult mirrors the full forecast payload of a finished prediction job.
type RawResult struct {
	Error             string       `json:"error,omitempty"`
	CurrentConditions *RawReading  `json:"current_conditions"`
	Forecast          []RawReading `json:"forecast"`
}

// BuildResult normalizes a raw prediction payload into a Result. Forecast
// points missing a parseable datetime or an AQI value are dropped rather than
// failing the whole result; each drop is reported as a warning. The forecast
// series of the returned Result is sorted ascending by datetime.
func BuildResult(raw *RawResult) (*Result, []string) {
	var warnings []string

	result := &Result{}

	if raw.CurrentConditions == nil {
		warnings = append(warnings, "current conditions missing from prediction result")
	} else {
		reading, warn := buildReading(*raw.CurrentConditions, false)
		if warn != "" {
			warnings = append(warnings, "current conditions: "+warn)
		}
		if reading != nil {
			result.CurrentConditions = *reading
		}
	}

	result.Forecast = make([]ConditionReading, 0, len(raw.Forecast))
	for i, r := range raw.Forecast {
		reading, warn := buildReading(r, true)
		if warn != "" {
			warnings = append(warnings, fmt.Sprintf("forecast point %d dropped: %s", i, warn))
		}
		if reading != nil {
			result.Forecast = append(result.Forecast, *reading)
		}
	}

	sort.Slice(result.Forecast, func(i, j int) bool {
		return result.Forecast[i].Datetime.Before(result.Forecast[j].Datetime)
	})

	return result, warnings
}

// buildReading converts one raw reading. With requireDatetime set, a missing
// or unparseable datetime discards the reading; a missing or negative AQI
// always does.
func buildReading(raw RawReading, requireDatetime bool) (*ConditionReading, string) {
	if raw.AQI == nil {
		return nil, "missing aqi"
	}
	if *raw.AQI < 0 {
		return nil, fmt.Sprintf("negative aqi %d", *raw.AQI)
	}

	var ts time.Time
	if raw.Datetime != "" {
		parsed, err := ParseTimestamp(raw.Datetime)
		if err != nil {
			if requireDatetime {
				return nil, fmt.Sprintf("unparseable datetime %q", raw.Datetime)
			}
		} else {
			ts = parsed
		}
	} else if requireDatetime {
		return nil, "missing datetime"
	}

	reading := &ConditionReading{
		Datetime:          ts,
		AQI:               *raw.AQI,
		Category:          raw.Category,
		DominantPollutant: raw.DominantPollutant,
		Pollutants:        copyMetrics(raw.Pollutants),
		Weather:           copyMetrics(raw.Weather),
	}
	if reading.Category == "" {
		reading.Category = unknownValue
	}
	if reading.DominantPollutant == "" {
		reading.DominantPollutant = unknownValue
	}
	return reading, ""
}

// copyMetrics clones a metric map so the built Result never aliases the raw
// payload.
func copyMetrics(in map[string]float64) map[string]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// timestampLayouts are the accepted request and payload timestamp formats,
// most specific first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a timestamp string in any of the accepted layouts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
