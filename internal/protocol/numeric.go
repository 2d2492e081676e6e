package protocol

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Numeric fields are parsed leniently from the longest numeric prefix, the
// way the device's own web client reads them ("87.500000" -> 87.5,
// "12abc" -> 12). Anything without a numeric prefix is a parse failure.

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// ParseFloat parses the numeric prefix of s. It returns NaN and false when s
// has no numeric prefix.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\r\n")

	switch {
	case strings.HasPrefix(s, "Infinity"), strings.HasPrefix(s, "+Infinity"):
		return math.Inf(1), true
	case strings.HasPrefix(s, "-Infinity"):
		return math.Inf(-1), true
	}

	m := floatPrefix.FindString(s)
	if m == "" {
		return math.NaN(), false
	}
	// out of range prefixes come back as ±Inf or 0
	v, _ := strconv.ParseFloat(m, 64)
	return v, true
}

// ParseInt parses the base-10 integer prefix of s. It returns 0 and false when
// s has no integer prefix.
func ParseInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	m := intPrefix.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatShortest renders f with the fewest digits that round-trip
// (87.5 -> "87.5", 87.0 -> "87").
func FormatShortest(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
