package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/fmremote/internal/display"
	"github.com/muurk/fmremote/internal/version"
)

// Application branding constants
const (
	AppName   = "FM REMOTE"
	GitHubURL = "github.com/muurk/fmremote"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 120
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF0000") // Red

	TextColor       = lipgloss.Color("#FFFFFF")
	SubtleColor     = lipgloss.Color("#626262")
	BorderColor     = lipgloss.Color("#7D56F4")
	HighlightColor  = lipgloss.Color("#43BF6D")
	BackgroundColor = lipgloss.Color("#1A1A1A")
)

// schemeColors are the segment colors for color schemes 1..6
var schemeColors = [...]lipgloss.Color{
	lipgloss.Color("#FF3B30"), // 1 red
	lipgloss.Color("#30D158"), // 2 green
	lipgloss.Color("#0A84FF"), // 3 blue
	lipgloss.Color("#FFD60A"), // 4 yellow
	lipgloss.Color("#64D2FF"), // 5 cyan
	lipgloss.Color("#F2F2F7"), // 6 white
}

// SchemeColor maps a display color scheme to a segment color. Out-of-range
// schemes use the default scheme's color.
func SchemeColor(scheme int) lipgloss.Color {
	if scheme < display.MinColorScheme || scheme > display.MaxColorScheme {
		scheme = display.DefaultColorScheme
	}
	return schemeColors[scheme-display.MinColorScheme]
}

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(1, 0)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	SelectedMenuItemStyle = lipgloss.NewStyle().
				Foreground(HighlightColor).
				Bold(true)

	MenuItemStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// DisplayBoxStyle frames the segment display, gauge and stereo lamp
	DisplayBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	PresetBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Padding(0, 1)

	gaugeLowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	gaugeHighStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0000FF"))
	gaugeEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))

	stereoOnStyle  = lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)
	stereoOffStyle = lipgloss.NewStyle().Foreground(SubtleColor)
)

// RenderTitle renders a title with consistent styling
func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

// RenderError renders an error message
func RenderError(text string) string {
	return ErrorStyle.Render("✗ " + text)
}

// BuildHeaderContent creates header content with app name and GitHub URL
func BuildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + AppVersion())

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(GitHubURL)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

// RenderApplicationContainer wraps every screen: application header, the
// screen content, and a footer with context-sensitive help, inside a border
// that fills the terminal.
func RenderApplicationContainer(content string, footerText string, terminalWidth int, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}
	if terminalHeight < 3 {
		terminalHeight = 24
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4). // outer border
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(BuildHeaderContent()),
		lipgloss.NewStyle().Width(terminalWidth-4).Render(content),
		footerStyle.Render(StatusStyle.Render(footerText)),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}
