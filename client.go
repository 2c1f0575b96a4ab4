package hibiscus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Client is the public facade of the runtime. It owns the current Handler,
// drives the lifecycle state machine described in spec.md §4.4.2, and
// publishes every transition to State subscribers.
//
// All public methods are safe to call from multiple goroutines.
type Client struct {
	dialer    Dialer
	handshake Handshake
	onError   ErrorHandler
	subBuf    int

	// connectMu serializes whole Connect calls so the emitted state
	// sequence of one call is never interleaved with another's.
	connectMu sync.Mutex

	// mu guards state and is the only goroutine allowed to write handler.
	// Critical sections under mu contain only the mutation and the
	// publisher submit, never blocking I/O.
	mu      sync.Mutex
	state   State
	handler atomic.Value // Handler

	pub *Publisher[State]
}

// NewClient returns a Client in the Disconnected state. dialer constructs
// a Transport from Params; handshake builds and classifies the login
// exchange. Neither is used until Connect is called.
func NewClient(dialer Dialer, handshake Handshake, opts ...ClientOption) *Client {
	o := clientDefaults()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		dialer:    dialer,
		handshake: handshake,
		onError:   o.onError,
		subBuf:    o.subscriberBuf,
		state:     disconnectedState(),
		pub:       NewPublisher[State](),
	}
	c.handler.Store(disconnected)
	return c
}

func (c *Client) currentHandler() Handler {
	return c.handler.Load().(Handler)
}

// StateNow returns a synchronous snapshot of the current lifecycle state.
func (c *Client) StateNow() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// States returns a hot subscription to lifecycle state transitions. bufSize
// overrides the client's default subscriber buffer when positive.
func (c *Client) States(bufSize int) *Subscription[State] {
	if bufSize <= 0 {
		bufSize = c.subBuf
	}
	return c.pub.Subscribe(bufSize)
}

// IsClosed reports whether the client has reached the terminal Closed
// state.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Kind == StateClosed
}

// disconnect closes the current handler, if it is Connected, and replaces
// it with the Disconnected singleton, publishing Disconnected. It is a
// no-op, without publishing anything, when the handler is already
// Disconnected — this is what lets Connect call it unconditionally as its
// opportunistic first step without producing a spurious leading
// Disconnected in the emitted sequence of a fresh connect.
func (c *Client) disconnect() error {
	c.mu.Lock()
	if c.state.IsClosingOrClosed() {
		c.mu.Unlock()
		return ErrClosedClient
	}
	old := c.currentHandler()
	if !old.IsConnected() {
		c.mu.Unlock()
		return nil
	}
	c.handler.Store(disconnected)
	c.state = disconnectedState()
	c.pub.Publish(c.state)
	c.mu.Unlock()

	return old.Close()
}

// Disconnect closes the current handler and returns to Disconnected. It
// fails with ErrClosedClient once the client is Closing or Closed.
func (c *Client) Disconnect() error {
	return c.disconnect()
}

// Connect runs the lifecycle described in spec.md §4.4.1: an opportunistic
// disconnect, a Connecting publication, delegation to the current
// handler's DoConnect, and a publication of the outcome. The full sequence
// is serialized against other Connect calls so two concurrent attempts
// never interleave their emitted states.
func (c *Client) Connect(ctx context.Context, params Params) ConnectResult {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	if c.StateNow().IsClosingOrClosed() {
		return ConnectResult{Kind: ConnectError, Cause: ErrClosedClient}
	}

	if err := c.disconnect(); err != nil {
		c.onError(SDKError{Kind: ErrDisconnectFailed, Cause: err})
	}

	c.mu.Lock()
	if c.state.IsClosingOrClosed() {
		c.mu.Unlock()
		return ConnectResult{Kind: ConnectError, Cause: ErrClosedClient}
	}
	c.state = connectingState(params)
	c.pub.Publish(c.state)
	handler := c.currentHandler()
	c.mu.Unlock()

	result := handler.DoConnect(ctx, params, c.dialer, c.handshake)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsClosingOrClosed() {
		if result.Kind == ConnectSucceeded {
			if err := result.NewHandler.Close(); err != nil {
				c.onError(SDKError{Kind: ErrHandshakeCleanup, Cause: err})
			}
		}
		return ConnectResult{Kind: ConnectError, Cause: ErrClosedClient}
	}

	switch result.Kind {
	case ConnectSucceeded:
		c.handler.Store(result.NewHandler)
		c.state = succeededState(result.Response)
		c.pub.Publish(c.state)
		c.state = connectedState()
		c.pub.Publish(c.state)
	case ConnectFailed:
		c.state = failedState(result.Response, nil)
		c.pub.Publish(c.state)
	case ConnectError:
		c.state = failedState(nil, result.Cause)
		c.pub.Publish(c.state)
	}

	return result
}

func (c *Client) guard() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.IsClosingOrClosed() {
		return ErrClosedClient
	}
	return nil
}

// Send forwards to the current handler's Send after the closing guard.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if err := c.guard(); err != nil {
		return err
	}
	return c.currentHandler().Send(ctx, msg)
}

// SendAndForget forwards to the current handler's SendAndForget after the
// closing guard.
func (c *Client) SendAndForget(ctx context.Context, msg Message) error {
	if err := c.guard(); err != nil {
		return err
	}
	return c.currentHandler().SendAndForget(ctx, msg)
}

// SendAndWait forwards to the current handler's SendAndWait after the
// closing guard.
func (c *Client) SendAndWait(ctx context.Context, msg Message, timeout time.Duration) (Message, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}
	return c.currentHandler().SendAndWait(ctx, msg, timeout)
}

// Receive forwards to the current handler's Receive after the closing
// guard.
func (c *Client) Receive(ctx context.Context, timeout time.Duration) (ReadOutcome, error) {
	if err := c.guard(); err != nil {
		return ReadOutcome{}, err
	}
	return c.currentHandler().Receive(ctx, timeout)
}

// Close is terminal: it moves the state machine through Closing to Closed,
// closes the current handler, and delivers one final Closed value to every
// State subscriber before completing the stream. Close is idempotent —
// every call after the first is a no-op returning nil.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state.IsClosingOrClosed() {
		c.mu.Unlock()
		return nil
	}
	c.state = closingState()
	c.pub.Publish(c.state)
	handler := c.currentHandler()
	c.mu.Unlock()

	err := handler.Close()

	c.mu.Lock()
	c.state = closedState()
	final := c.state
	c.mu.Unlock()

	c.pub.Close(final)

	return err
}
