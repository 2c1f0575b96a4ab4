package hibiscus

import (
	"errors"
	"fmt"
	"log"
)

// Sentinel errors for client and handler state. These are returned
// directly (via errors.Is) rather than wrapped in a typed error, since
// they carry no extra data.
var (
	// ErrClosedClient is returned by every public Client operation once the
	// client has entered Closing or Closed.
	ErrClosedClient = errors.New("hibiscus: client is closed")

	// ErrNotConnected is returned by I/O operations on a Disconnected
	// handler.
	ErrNotConnected = errors.New("hibiscus: not connected")

	// ErrAlreadyConnected is returned by DoConnect on a Connected handler.
	ErrAlreadyConnected = errors.New("hibiscus: already connected")
)

// TimeoutError is returned by SendAndWait when the deadline elapses before
// a correlated response arrives. The pending correlation entry has already
// been removed by the time this is returned; the transport remains usable.
type TimeoutError struct {
	MessageID ID
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("hibiscus: timed out waiting for response to %s", e.MessageID)
}

// ReceiveQueueOverflowError is returned when the bounded correlation
// receive queue rejects an uncorrelated message because it is full. It is
// fatal for the SendAndWait call in progress; the transport remains usable
// and the caller should drain it with Receive.
type ReceiveQueueOverflowError struct {
	Capacity int
}

func (e *ReceiveQueueOverflowError) Error() string {
	return fmt.Sprintf("hibiscus: receive queue overflow (capacity %d)", e.Capacity)
}

// ClosedTransportError wraps a lower-level I/O error observed on a
// transport that has already been closed, or reports closure with no
// underlying cause.
type ClosedTransportError struct {
	Cause error
}

func (e *ClosedTransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("hibiscus: transport closed: %v", e.Cause)
	}
	return "hibiscus: transport closed"
}

func (e *ClosedTransportError) Unwrap() error { return e.Cause }

// ProtocolError reports a response payload that decoded but was
// semantically malformed — an unexpected shape during the login handshake,
// for example.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("hibiscus: protocol error: %s", e.Reason)
}

// ErrorKind classifies an SDKError reported through an ErrorHandler —
// SDK-level failures that have nowhere else to go because no caller is
// waiting on them.
type ErrorKind int

const (
	// ErrDisconnectFailed marks an error swallowed from the best-effort
	// disconnect() that Connect performs before reconnecting.
	ErrDisconnectFailed ErrorKind = iota
	// ErrHandshakeCleanup marks an error swallowed while Connect closes the
	// Connected handler of a handshake that succeeded after the client had
	// begun closing. Errors from closing the transport of a rejected or
	// failed handshake inside DoConnect are discarded and not reported.
	ErrHandshakeCleanup
	// ErrPublishDropped marks a state value that could not be delivered to
	// a slow subscriber and was dropped per the publisher's best-effort
	// delivery guarantee.
	ErrPublishDropped
	// ErrRouterDispatch marks an error a router.Serve loop swallowed while
	// receiving or dispatching a message, since no caller is blocked on an
	// inbound message the way SendAndWait blocks on an outbound one.
	ErrRouterDispatch
)

var errorKindNames = [...]string{
	ErrDisconnectFailed: "ErrDisconnectFailed",
	ErrHandshakeCleanup: "ErrHandshakeCleanup",
	ErrPublishDropped:   "ErrPublishDropped",
	ErrRouterDispatch:   "ErrRouterDispatch",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// SDKError is routed to the ErrorHandler supplied at Client construction.
// It never reaches a caller directly.
type SDKError struct {
	Kind  ErrorKind
	Cause error
}

func (e *SDKError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *SDKError) Unwrap() error { return e.Cause }

// ErrorHandler is invoked for every SDKError. It must not block; slow
// handlers delay whichever goroutine produced the error.
type ErrorHandler func(SDKError)

// LogErrors returns an ErrorHandler that logs every SDKError to logger.
func LogErrors(logger *log.Logger) ErrorHandler {
	return func(e SDKError) {
		logger.Printf("[hibiscus] %s", e.Error())
	}
}

func discardErrors(SDKError) {}
