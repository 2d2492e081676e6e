package session

import "fmt"

// ConnectionState is the lifecycle state of the device channel
type ConnectionState int

const (
	Connecting ConnectionState = iota
	Open
	Closed
	Errored
)

// String returns the lowercase state name
func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("ConnectionState(%d)", int(s))
	}
}
