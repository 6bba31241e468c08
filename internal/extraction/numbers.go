package extraction

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// metricRe matches a number with an optional magnitude suffix, either a
// shorthand letter (1.2K, 3M, 1B) or a spelled-out word (5 million).
var metricRe = regexp.MustCompile(`(?i)([0-9][0-9,]*(?:\.[0-9]+)?)\s*(thousand|million|billion|k|m|b)?`)

var magnitudes = map[string]float64{
	"k":        1_000,
	"thousand": 1_000,
	"m":        1_000_000,
	"million":  1_000_000,
	"b":        1_000_000_000,
	"billion":  1_000_000_000,
}

// ParseMetric coerces a human-written metric ("5 million", "1.2K", "500k",
// "12,345") to an integer. An unparseable or empty value returns nil, never
// zero: absence must stay distinguishable from a genuine zero count.
func ParseMetric(raw string) *int64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	m := metricRe.FindStringSubmatch(trimmed)
	if m == nil || m[1] == "" {
		return nil
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	if suffix := strings.ToLower(m[2]); suffix != "" {
		value *= magnitudes[suffix]
	}

	n := int64(math.Round(value))
	return &n
}
