package transport

import "fmt"

// Error describes a failed transport operation
type Error struct {
	Op  string // dial, read, write or close
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}
