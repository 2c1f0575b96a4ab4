package hibiscus

import (
	"context"
	"sync"
	"time"
)

// fakeParams is the Params used across the core's own tests. It never
// dials a real network; transports under test are fakeTransport below.
type fakeParams struct {
	timeout time.Duration
}

func (p fakeParams) ConnectTimeout() time.Duration {
	if p.timeout == 0 {
		return time.Second
	}
	return p.timeout
}

// fakeTransport is a minimal in-memory Transport used to exercise Handler
// and Client without a real socket. respond, if set, answers SendAndWait;
// inbox feeds Receive.
type fakeTransport struct {
	mu      sync.Mutex
	closed  bool
	sent    []Message
	respond func(Message) (Message, error)
	inbox   []ReadOutcome
}

func (t *fakeTransport) Send(ctx context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return &ClosedTransportError{}
	}
	t.sent = append(t.sent, msg)
	return nil
}

func (t *fakeTransport) SendAndForget(ctx context.Context, msg Message) error {
	return t.Send(ctx, msg)
}

func (t *fakeTransport) SendAndWait(ctx context.Context, msg Message, timeout time.Duration) (Message, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, &ClosedTransportError{}
	}
	t.sent = append(t.sent, msg)
	fn := t.respond
	t.mu.Unlock()

	if fn == nil {
		return nil, &TimeoutError{MessageID: msg.MessageID()}
	}
	return fn(msg)
}

func (t *fakeTransport) Receive(ctx context.Context, timeout time.Duration) (ReadOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ReadOutcome{}, &ClosedTransportError{}
	}
	if len(t.inbox) == 0 {
		return Nothing(), nil
	}
	out := t.inbox[0]
	t.inbox = t.inbox[1:]
	return out, nil
}

func (t *fakeTransport) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) sentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

// fakeDialer hands out a pre-built transport, or fails with err.
type fakeDialer struct {
	transport *fakeTransport
	err       error
}

func (d fakeDialer) Dial(ctx context.Context, params Params) (Transport, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.transport, nil
}

// fakeHandshake always builds a fresh request and classifies every
// response according to ok.
type fakeHandshake struct {
	ok bool
}

func (h fakeHandshake) LoginMessage(params Params) Message {
	return NewRequest()
}

func (h fakeHandshake) Classify(resp Message) bool {
	return h.ok
}
