package memcbin

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAddr is returned when Options.Addr is empty.
	ErrNoAddr = errors.New("memcbin: no backend address configured")
)

// ConnectError reports a failed connection attempt: socket creation,
// the connect call itself, or a verified failure once the socket became
// writable. The attempt is not retried; every queued request fails with
// StatusNetworkError.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("memcbin: connect to %s failed: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// TransportError reports a read or write failure, including peer EOF,
// on an established connection. It always forces a full disconnect.
type TransportError struct {
	Op  string // "read" or "write"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("memcbin: %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
