// Package logging provides structured logging for fmremote.
//
// This package wraps a global zap logger with convenience functions for the
// patterns used throughout the client and the simulator. Logging is silent by
// default so CLI output and the dashboard stay clean; set FMREMOTE_LOG_LEVEL or
// pass --log-level to turn it on.
//
// # Log Levels
//
//   - Debug: frame dumps (hex and printable ASCII), dropped messages
//   - Info: connection lifecycle, commands sent, presets announced
//   - Warn: malformed numeric fields, sends while the channel is not open
//   - Error: transport failures
//
// # Frame Logging
//
// Inbound frames use the EOT byte (0x04) as field separator, which is
// invisible in plain text. LogFrame renders it as '.' in the ascii dump:
//
//	logging.LogFrame("inbound", "STATUS\x0487.500000\x041\x049")
//	// ascii=STATUS.87.500000.1.9
//
// # Configuration
//
//	if err := logging.InitializeWithOutput("debug", []string{"/tmp/fmremote.log"}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
package logging
