// Package capture records the frames exchanged with a device to a JSON Lines
// file and summarizes such files afterwards.
//
// Every record carries the direction, the tag (inbound) or command id
// (outbound), and the payload as hex and printable ASCII, with the EOT field
// separator shown as '.'. Captures are meant for protocol work on new
// firmware: unknown tags are recorded like any other.
package capture
