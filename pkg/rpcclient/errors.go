package rpcclient

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is matched (via errors.Is) by every TransportError.
	ErrTransport = errors.New("transport error")
	// ErrTimeout is returned when a request or a connection acquisition
	// doesn't complete in time.
	ErrTimeout = errors.New("timeout")
	// ErrPoolTimeout is returned when no pooled connection becomes available
	// within the connection timeout. It matches ErrTimeout.
	ErrPoolTimeout = fmt.Errorf("%w: no free connection in the pool", ErrTimeout)
	// ErrCircuitOpen is returned without any request made when the circuit
	// breaker of the endpoint is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrClosed is returned for requests made after Close.
	ErrClosed = errors.New("client is closed")

	errNoResult = errors.New("no result returned")
)

// TransportError is a network-level failure: the node couldn't be reached or
// its answer couldn't be read. Dial is set when the connection has never been
// established, such requests can't have reached the node.
type TransportError struct {
	Endpoint string
	Method   string
	Dial     bool
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is makes TransportError match ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
