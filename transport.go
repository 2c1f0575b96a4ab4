package hibiscus

import (
	"context"
	"time"
)

// Params is the opaque connection configuration passed through to a
// Dialer and a Handshake. Concrete transports define their own
// parameter structs; the core only ever needs the connect timeout out of
// them.
type Params interface {
	// ConnectTimeout bounds how long the login handshake's SendAndWait is
	// allowed to take. The dial itself is bounded only by the context and
	// by whatever dial timeout the concrete transport applies.
	ConnectTimeout() time.Duration
}

// Transport is the byte-level I/O contract every concrete wire protocol
// implements. A closed transport is permanent: every method fails with a
// *ClosedTransportError once Close has returned.
//
// Receive must be safe to call concurrently with Send and SendAndForget.
type Transport interface {
	// Receive blocks up to timeout for one ReadOutcome. It returns Nothing
	// if no data arrived in time.
	Receive(ctx context.Context, timeout time.Duration) (ReadOutcome, error)

	// Send dispatches msg and remembers the pairing so that a later
	// Receive may report a correlated ReadResponse for it. It does not
	// wait for a reply.
	Send(ctx context.Context, msg Message) error

	// SendAndForget dispatches msg without remembering any pairing. Any
	// reply that arrives later surfaces as ReadReceived.
	SendAndForget(ctx context.Context, msg Message) error

	// SendAndWait dispatches msg and blocks until a correlated response
	// arrives or timeout elapses. Uncorrelated messages observed while
	// waiting are preserved for a later Receive, not dropped.
	SendAndWait(ctx context.Context, msg Message, timeout time.Duration) (Message, error)

	// IsClosed reports whether Close has been called.
	IsClosed() bool

	// Close tears the transport down. It is idempotent.
	Close() error
}

// Dialer constructs a fresh Transport from Params. A Disconnected handler
// calls Dial exactly once per connect attempt; on any failure from Dial
// onward the handler reports ConnectError and never hands the transport
// to a Connected handler.
type Dialer interface {
	Dial(ctx context.Context, params Params) (Transport, error)
}

// DialerFunc adapts a function to a Dialer.
type DialerFunc func(ctx context.Context, params Params) (Transport, error)

// Dial implements Dialer.
func (f DialerFunc) Dial(ctx context.Context, params Params) (Transport, error) {
	return f(ctx, params)
}

// Handshake builds the login message a Disconnected handler sends during
// DoConnect and classifies the correlated response. It is the seam that
// keeps the core ignorant of any concrete wire format.
type Handshake interface {
	// LoginMessage builds the request to send as the login attempt.
	LoginMessage(params Params) Message

	// Classify interprets resp, the message SendAndWait correlated to the
	// login request. ok=true means the login succeeded; ok=false means the
	// server rejected it (not a transport error — ConnectFailed, not
	// ConnectError).
	Classify(resp Message) (ok bool)
}
