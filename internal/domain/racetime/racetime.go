// Package racetime converts recorded race times to comparable durations.
package racetime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const secondsPerMinute = 60

// Slowest is returned for any time that cannot be parsed. It orders after
// every parseable time.
var Slowest = math.Inf(1)

// Parse converts "MM:SS" or "MM:SS.ff" into seconds. It never fails: a
// string that does not split into exactly two parts, or whose parts are not
// numeric, yields Slowest. Minutes are not bounds checked.
func Parse(s string) float64 {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Slowest
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Slowest
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Slowest
	}
	return float64(minutes)*secondsPerMinute + seconds
}

// Unparseable reports whether v is the sentinel produced for a malformed time.
func Unparseable(v float64) bool {
	return math.IsInf(v, 1)
}

// Format renders seconds as M:SS.ff, or "--" for the unparseable sentinel.
func Format(seconds float64) string {
	if math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return "--"
	}
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	hundredths := int64(math.Round(seconds * 100))
	minutes := hundredths / (secondsPerMinute * 100)
	rem := hundredths - minutes*secondsPerMinute*100
	return fmt.Sprintf("%s%d:%02d.%02d", sign, minutes, rem/100, rem%100)
}
