package hibiscus

import (
	"context"
	"time"
)

// ConnectOutcomeKind distinguishes the three shapes DoConnect can return.
type ConnectOutcomeKind int

const (
	// ConnectSucceeded means the login handshake completed and a Connected
	// handler now owns the transport.
	ConnectSucceeded ConnectOutcomeKind = iota
	// ConnectFailed means the server answered the login request but
	// rejected it. The transport has already been closed.
	ConnectFailed
	// ConnectError means the handshake could not complete at all — a dial
	// failure, a timeout, or an I/O error. The transport has already been
	// closed, if one was ever opened.
	ConnectError
)

func (k ConnectOutcomeKind) String() string {
	switch k {
	case ConnectSucceeded:
		return "Succeeded"
	case ConnectFailed:
		return "Failed"
	case ConnectError:
		return "Error"
	default:
		return "ConnectOutcomeKind(?)"
	}
}

// ConnectResult is the tagged-union result of Handler.DoConnect.
type ConnectResult struct {
	Kind ConnectOutcomeKind

	// Response holds the login response for ConnectSucceeded and
	// ConnectFailed.
	Response Message

	// NewHandler holds the Connected handler to install for
	// ConnectSucceeded.
	NewHandler Handler

	// Cause holds the failure cause for ConnectError.
	Cause error
}

// Handler owns a Transport (once Connected) and implements the connection
// negotiation step. Exactly one Handler is current on a Client at a time.
// Handler is a closed, two-variant type: the Disconnected variant only
// implements DoConnect meaningfully and fails every I/O method with
// ErrNotConnected; the Connected variant delegates I/O to its transport
// and fails DoConnect with ErrAlreadyConnected.
type Handler interface {
	Transport

	// DoConnect attempts the login negotiation described by dialer and
	// handshake. On success it returns a new Connected handler that owns
	// the freshly dialed transport; ownership transfers to the caller.
	DoConnect(ctx context.Context, params Params, dialer Dialer, handshake Handshake) ConnectResult

	// IsConnected reports which variant this is.
	IsConnected() bool
}

// disconnectedHandler is the Disconnected variant. It owns no transport.
type disconnectedHandler struct{}

// disconnected is the shared singleton Disconnected handler — it carries
// no state, so one instance suffices for every Client.
var disconnected Handler = disconnectedHandler{}

func (disconnectedHandler) DoConnect(ctx context.Context, params Params, dialer Dialer, handshake Handshake) ConnectResult {
	transport, err := dialer.Dial(ctx, params)
	if err != nil {
		return ConnectResult{Kind: ConnectError, Cause: err}
	}

	login := handshake.LoginMessage(params)
	resp, err := transport.SendAndWait(ctx, login, params.ConnectTimeout())
	if err != nil {
		transport.Close()
		return ConnectResult{Kind: ConnectError, Cause: err}
	}

	if !handshake.Classify(resp) {
		transport.Close()
		return ConnectResult{Kind: ConnectFailed, Response: resp}
	}

	return ConnectResult{
		Kind:       ConnectSucceeded,
		Response:   resp,
		NewHandler: &connectedHandler{transport: transport},
	}
}

func (disconnectedHandler) IsConnected() bool { return false }

func (disconnectedHandler) Receive(ctx context.Context, timeout time.Duration) (ReadOutcome, error) {
	return ReadOutcome{}, ErrNotConnected
}

func (disconnectedHandler) Send(ctx context.Context, msg Message) error {
	return ErrNotConnected
}

func (disconnectedHandler) SendAndForget(ctx context.Context, msg Message) error {
	return ErrNotConnected
}

func (disconnectedHandler) SendAndWait(ctx context.Context, msg Message, timeout time.Duration) (Message, error) {
	return nil, ErrNotConnected
}

func (disconnectedHandler) IsClosed() bool { return true }

func (disconnectedHandler) Close() error { return nil }

// connectedHandler is the Connected variant. It owns exactly one
// transport and delegates every I/O method to it.
type connectedHandler struct {
	transport Transport
}

func (h *connectedHandler) DoConnect(ctx context.Context, params Params, dialer Dialer, handshake Handshake) ConnectResult {
	return ConnectResult{Kind: ConnectError, Cause: ErrAlreadyConnected}
}

func (h *connectedHandler) IsConnected() bool { return true }

func (h *connectedHandler) Receive(ctx context.Context, timeout time.Duration) (ReadOutcome, error) {
	return h.transport.Receive(ctx, timeout)
}

func (h *connectedHandler) Send(ctx context.Context, msg Message) error {
	return h.transport.Send(ctx, msg)
}

func (h *connectedHandler) SendAndForget(ctx context.Context, msg Message) error {
	return h.transport.SendAndForget(ctx, msg)
}

func (h *connectedHandler) SendAndWait(ctx context.Context, msg Message, timeout time.Duration) (Message, error) {
	return h.transport.SendAndWait(ctx, msg, timeout)
}

func (h *connectedHandler) IsClosed() bool { return h.transport.IsClosed() }

func (h *connectedHandler) Close() error { return h.transport.Close() }
