// Package display projects decoded telemetry onto the numeric display model.
//
// The Projector owns a State value (frequency, color scheme and the segment
// layout settings) and is the only writer of it. STATUS and COLOR messages
// change it; Initialize sets the layout once at startup. Drawing is delegated
// to three collaborators the caller supplies: a Widget for the segment
// display, a Gauge for signal strength, and a StereoIndicator.
//
// Malformed numbers are not corrected: a non-numeric frequency reaches the
// widget as NaN (State.FormatValue renders it as dashes) and a non-numeric
// integer field becomes 0.
package display
