package display

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Defaults the device's own web page applies at load time
const (
	DefaultColorScheme      = 2
	DefaultDecimalPointType = 2
	DefaultDecimalPlaces    = 2
	DefaultDigitCount       = 3
)

// Color schemes the segment display understands (the device cycles 1..6)
const (
	MinColorScheme = 1
	MaxColorScheme = 6
)

// GaugeDotSize is the dot size passed to the signal gauge on every status update
const GaugeDotSize = 8

// State is the value object consumed by the segment display widget
type State struct {
	Value            float64
	ColorScheme      int
	DecimalPointType int
	DecimalPlaces    int
	DigitCount       int
}

// DefaultState returns the state a freshly loaded page starts with
func DefaultState() State {
	return State{
		Value:            0,
		ColorScheme:      DefaultColorScheme,
		DecimalPointType: DefaultDecimalPointType,
		DecimalPlaces:    DefaultDecimalPlaces,
		DigitCount:       DefaultDigitCount,
	}
}

// IsValid reports whether the value can be drawn (not NaN or infinite)
func (s State) IsValid() bool {
	return !math.IsNaN(s.Value) && !math.IsInf(s.Value, 0)
}

// FormatValue renders the value with the configured decimal places.
// Invalid values render as dashes across every digit position.
func (s State) FormatValue() string {
	if !s.IsValid() {
		width := s.DigitCount + s.DecimalPlaces
		if width <= 0 {
			width = 1
		}
		return strings.Repeat("-", width)
	}
	places := s.DecimalPlaces
	if places < 0 {
		places = 0
	}
	return strconv.FormatFloat(s.Value, 'f', places, 64)
}

// String returns a debug representation of the state
func (s State) String() string {
	return fmt.Sprintf("State{value=%v, color=%d, dp_type=%d, places=%d, digits=%d}",
		s.Value, s.ColorScheme, s.DecimalPointType, s.DecimalPlaces, s.DigitCount)
}
