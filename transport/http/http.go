package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/io7m-com/hibiscus-go"
)

// Transport is a reference hibiscus.Transport that POSTs every message to
// a single HTTP endpoint and reads the response body synchronously. It
// keeps no background reader: Send performs the round trip immediately and
// stashes the result for the next Receive, the way a caller that already
// has the reply in hand would expect.
type Transport struct {
	client  *http.Client
	baseURL string
	token   string

	mu     sync.Mutex
	closed bool
	ready  []hibiscus.ReadOutcome
	notify chan struct{}
}

// Dial implements hibiscus.Dialer for Params. No network connection is
// actually opened here — HTTP is connectionless in the Transport sense —
// but Dial is still where BaseURL and BearerToken are resolved and BaseURL
// is validated, so a client with no BaseURL fails at Connect rather than on
// the first request. An empty BearerToken is accepted.
var Dial hibiscus.DialerFunc = dial

func dial(ctx context.Context, params hibiscus.Params) (hibiscus.Transport, error) {
	p, ok := params.(Params)
	if !ok {
		return nil, fmt.Errorf("http: expected http.Params, got %T", params)
	}
	p, err := ResolveParams(p)
	if err != nil {
		return nil, err
	}

	return &Transport{
		client:  &http.Client{Timeout: p.ConnectTimeout()},
		baseURL: p.BaseURL,
		token:   p.BearerToken,
		notify:  make(chan struct{}, 1),
	}, nil
}

func (t *Transport) wake() {
	select {
	case t.notify <- struct{}{}:
	default:
	}
}

func (t *Transport) roundTrip(ctx context.Context, m Message) (Message, error) {
	body, err := encodeBody(m)
	if err != nil {
		return Message{}, fmt.Errorf("http: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL, bytes.NewReader(body))
	if err != nil {
		return Message{}, &hibiscus.ClosedTransportError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return Message{}, &hibiscus.ClosedTransportError{Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Message{}, &hibiscus.ClosedTransportError{Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return Message{}, &hibiscus.ProtocolError{Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	return decodeBody(data)
}

// Send implements hibiscus.Transport. The round trip happens immediately;
// the response is queued for the next Receive rather than returned here,
// matching the asynchronous Send/Receive contract the core expects.
func (t *Transport) Send(ctx context.Context, msg hibiscus.Message) error {
	m, ok := msg.(Message)
	if !ok {
		return fmt.Errorf("http: expected http.Message, got %T", msg)
	}
	if t.IsClosed() {
		return &hibiscus.ClosedTransportError{}
	}

	resp, err := t.roundTrip(ctx, m)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.ready = append(t.ready, hibiscus.Response(m, resp))
	t.mu.Unlock()
	t.wake()
	return nil
}

// SendAndForget implements hibiscus.Transport. The response, if any, is
// reported as an uncorrelated arrival since no pairing was recorded.
func (t *Transport) SendAndForget(ctx context.Context, msg hibiscus.Message) error {
	m, ok := msg.(Message)
	if !ok {
		return fmt.Errorf("http: expected http.Message, got %T", msg)
	}
	if t.IsClosed() {
		return &hibiscus.ClosedTransportError{}
	}

	resp, err := t.roundTrip(ctx, m)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.ready = append(t.ready, hibiscus.Received(resp))
	t.mu.Unlock()
	t.wake()
	return nil
}

// SendAndWait implements hibiscus.Transport.
func (t *Transport) SendAndWait(ctx context.Context, msg hibiscus.Message, timeout time.Duration) (hibiscus.Message, error) {
	m, ok := msg.(Message)
	if !ok {
		return nil, fmt.Errorf("http: expected http.Message, got %T", msg)
	}
	if t.IsClosed() {
		return nil, &hibiscus.ClosedTransportError{}
	}

	roundTripCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := t.roundTrip(roundTripCtx, m)
	if err != nil {
		if roundTripCtx.Err() != nil {
			return nil, &hibiscus.TimeoutError{MessageID: m.MessageID()}
		}
		return nil, err
	}
	return resp, nil
}

// Receive implements hibiscus.Transport. It reports whatever Send or
// SendAndForget already queued, or blocks until timeout elapses — nothing
// arrives here spontaneously, since no background reader exists.
func (t *Transport) Receive(ctx context.Context, timeout time.Duration) (hibiscus.ReadOutcome, error) {
	if out, ok := t.popReady(); ok {
		return out, nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case <-ctx.Done():
		return hibiscus.ReadOutcome{}, ctx.Err()
	case <-t.notify:
		if out, ok := t.popReady(); ok {
			return out, nil
		}
		return hibiscus.Nothing(), nil
	case <-deadline.C:
		return hibiscus.Nothing(), nil
	}
}

func (t *Transport) popReady() (hibiscus.ReadOutcome, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.ready) == 0 {
		return hibiscus.ReadOutcome{}, false
	}
	out := t.ready[0]
	t.ready = t.ready[1:]
	return out, true
}

// IsClosed implements hibiscus.Transport.
func (t *Transport) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Close implements hibiscus.Transport. There is no persistent connection
// to tear down; Close only latches the transport as unusable.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
