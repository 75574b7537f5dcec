package session

import (
	"errors"
	"fmt"
)

// ErrNotFound reports an operation against a session id that is not in the
// registry. It is a caller error; nothing is retried.
var ErrNotFound = errors.New("session not found")

// ConnectError reports a failed or timed-out transport open. No session is
// registered when it is returned.
type ConnectError struct {
	Host string
	Port int
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connection failed: %s:%d: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
