// Package ui provides styled terminal output for the fmremote CLI commands.
//
// This package uses Lipgloss to render command output. Unlike the interactive
// dashboard in internal/tui, these components follow a "print and move on"
// pattern: scan, analyze and monitor print headers, tables and result boxes
// to stdout without taking over the terminal.
//
// # Components
//
//   - Header: Command banner showing operation name and parameters
//   - Result: Success/failure/warning boxes with details and troubleshooting
//   - Table: Column listing for discovered devices and capture summaries
//   - Printer: Writes the above to an io.Writer at the terminal width
//
// Terminal width comes from golang.org/x/term and is clamped to
// [MinTerminalWidth, MaxContentWidth].
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Device Scan", "fmremote scan", ui.Field{Key: "Timeout", Value: "5s"})
//
//	t := ui.NewTable("INSTANCE", "ADDRESS", "URL")
//	t.AddRow("kitchen", "192.168.1.40:80", "ws://192.168.1.40:80/")
//	p.PrintTable(t)
//
// # Logging Integration
//
// Logging is controlled via the FMREMOTE_LOG_LEVEL environment variable.
// When unset or empty, zap logging is silent, leaving the curated output clean.
package ui
