package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/fmremote/internal/display"
)

// seven-segment glyphs, three rows each
var glyphs = map[rune][3]string{
	'0': {" _ ", "| |", "|_|"},
	'1': {"   ", "  |", "  |"},
	'2': {" _ ", " _|", "|_ "},
	'3': {" _ ", " _|", " _|"},
	'4': {"   ", "|_|", "  |"},
	'5': {" _ ", "|_ ", " _|"},
	'6': {" _ ", "|_ ", "|_|"},
	'7': {" _ ", "  |", "  |"},
	'8': {" _ ", "|_|", "|_|"},
	'9': {" _ ", "|_|", " _|"},
	'-': {"   ", " _ ", "   "},
	' ': {"   ", "   ", "   "},
	'.': {" ", " ", "."},
	',': {" ", " ", ","},
}

// Decimal point types
const (
	DecimalPointNone  = 0
	DecimalPointComma = 1
	DecimalPointDot   = 2
)

// segmentText lays the display value out for the segments: the integer part
// right-aligned to DigitCount, then the separator chosen by DecimalPointType
func segmentText(st display.State) string {
	text := st.FormatValue()

	intPart, frac, hasFrac := strings.Cut(text, ".")
	if !st.IsValid() {
		intPart, frac, hasFrac = text, "", false
	}
	if n := st.DigitCount - len(intPart); n > 0 {
		intPart = strings.Repeat(" ", n) + intPart
	}
	if !hasFrac {
		return intPart
	}

	switch st.DecimalPointType {
	case DecimalPointNone:
		return intPart + frac
	case DecimalPointComma:
		return intPart + "," + frac
	default:
		return intPart + "." + frac
	}
}

// RenderSegments renders the display value as three rows of seven-segment
// digits in the state's color scheme
func RenderSegments(st display.State) string {
	var rows [3]strings.Builder
	for _, r := range segmentText(st) {
		g, ok := glyphs[r]
		if !ok {
			g = glyphs[' ']
		}
		for i := range rows {
			rows[i].WriteString(g[i])
		}
	}

	style := lipgloss.NewStyle().Foreground(SchemeColor(st.ColorScheme)).Bold(true)
	lines := make([]string, len(rows))
	for i := range rows {
		lines[i] = style.Render(rows[i].String())
	}
	return strings.Join(lines, "\n")
}

// GaugeDots is the number of dots in the signal gauge
const GaugeDots = 15

// lowDots are drawn red when lit; the rest are blue
const lowDots = 7

// RenderGauge draws the signal gauge: the first level dots filled, dots
// 0..6 red and 7..14 blue, unfilled dots as cyan outlines
func RenderGauge(level int) string {
	var b strings.Builder
	for i := 0; i < GaugeDots; i++ {
		switch {
		case i < level && i < lowDots:
			b.WriteString(gaugeLowStyle.Render("●"))
		case i < level:
			b.WriteString(gaugeHighStyle.Render("●"))
		default:
			b.WriteString(gaugeEmptyStyle.Render("○"))
		}
		if i < GaugeDots-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// RenderStereo renders the stereo lamp
func RenderStereo(on bool) string {
	if on {
		return stereoOnStyle.Render("◉ STEREO")
	}
	return stereoOffStyle.Render("○ MONO")
}
