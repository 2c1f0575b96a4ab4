package udp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/io7m-com/hibiscus-go"
	"golang.org/x/sync/errgroup"
)

const maxDatagramSize = 64 * 1024

// pending tracks one outstanding request. waiter and errCh are non-nil
// only for a SendAndWait call; a plain Send leaves both nil and the
// eventual reply is surfaced through Receive instead.
type pending struct {
	original hibiscus.Message
	waiter   chan Message
	errCh    chan error
}

// Transport is a reference hibiscus.Transport over a connected UDP socket.
type Transport struct {
	conn net.Conn

	mu          sync.Mutex
	closed      bool
	outstanding map[hibiscus.ID]*pending
	ready       []hibiscus.ReadOutcome
	overflowErr error

	queue     *hibiscus.ReceiveQueue
	notify    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	group     *errgroup.Group
}

// Dial implements hibiscus.Dialer for Params.
var Dial hibiscus.DialerFunc = dial

func dial(ctx context.Context, params hibiscus.Params) (hibiscus.Transport, error) {
	p, ok := params.(Params)
	if !ok {
		return nil, fmt.Errorf("udp: expected udp.Params, got %T", params)
	}
	p, err := ResolveParams(p)
	if err != nil {
		return nil, err
	}

	conn, err := net.Dial("udp", p.Address)
	if err != nil {
		return nil, fmt.Errorf("udp: dial %s: %w", p.Address, err)
	}

	return newTransport(conn, p.QueueCapacity), nil
}

func newTransport(conn net.Conn, queueCapacity int) *Transport {
	group, ctx := errgroup.WithContext(context.Background())
	t := &Transport{
		conn:        conn,
		outstanding: make(map[hibiscus.ID]*pending),
		queue:       hibiscus.NewReceiveQueue(queueCapacity),
		notify:      make(chan struct{}, 1),
		done:        make(chan struct{}),
		group:       group,
	}
	group.Go(func() error {
		return t.readLoop(ctx)
	})
	return t
}

func (t *Transport) wake() {
	select {
	case t.notify <- struct{}{}:
	default:
	}
}

func (t *Transport) readLoop(ctx context.Context) error {
	buf := make([]byte, maxDatagramSize)
	for {
		n, err := t.conn.Read(buf)
		if err != nil {
			t.mu.Lock()
			wasClosed := t.closed
			t.closed = true
			t.mu.Unlock()
			t.closeOnce.Do(func() { close(t.done) })
			t.wake()
			if wasClosed {
				return nil
			}
			return err
		}

		msg, err := decodeDatagram(buf[:n])
		if err != nil {
			// A malformed datagram from an unrelated sender is dropped, not
			// fatal to the transport.
			continue
		}

		if msg.IsCorrID {
			t.mu.Lock()
			entry, found := t.outstanding[msg.CorrID]
			if found {
				delete(t.outstanding, msg.CorrID)
			}
			t.mu.Unlock()

			if found {
				if entry.waiter != nil {
					entry.waiter <- msg
					continue
				}
				t.mu.Lock()
				t.ready = append(t.ready, hibiscus.Response(entry.original, msg))
				t.mu.Unlock()
				t.wake()
				continue
			}
		}

		if err := t.queue.Push(msg); err != nil {
			t.mu.Lock()
			t.overflowErr = err
			// A waiter already blocked in SendAndWait will never drain the
			// queue itself — it only watches its own correlation — so it
			// must be failed directly, not left to time out.
			for id, entry := range t.outstanding {
				if entry.waiter != nil {
					select {
					case entry.errCh <- err:
					default:
					}
					delete(t.outstanding, id)
				}
			}
			t.mu.Unlock()
		}
		t.wake()
	}
}

// Receive implements hibiscus.Transport.
func (t *Transport) Receive(ctx context.Context, timeout time.Duration) (hibiscus.ReadOutcome, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if out, ok := t.popReady(); ok {
			return out, nil
		}

		t.mu.Lock()
		overflow := t.overflowErr
		t.overflowErr = nil
		t.mu.Unlock()
		if overflow != nil {
			return hibiscus.ReadOutcome{}, overflow
		}

		select {
		case <-t.done:
			return hibiscus.ReadOutcome{}, &hibiscus.ClosedTransportError{}
		case <-ctx.Done():
			return hibiscus.ReadOutcome{}, ctx.Err()
		case <-t.notify:
			continue
		case <-deadline.C:
			return hibiscus.Nothing(), nil
		}
	}
}

func (t *Transport) popReady() (hibiscus.ReadOutcome, bool) {
	t.mu.Lock()
	if len(t.ready) > 0 {
		out := t.ready[0]
		t.ready = t.ready[1:]
		t.mu.Unlock()
		return out, true
	}
	t.mu.Unlock()

	if msg, ok := t.queue.Pop(); ok {
		return hibiscus.Received(msg), true
	}
	return hibiscus.ReadOutcome{}, false
}

// Send implements hibiscus.Transport.
func (t *Transport) Send(ctx context.Context, msg hibiscus.Message) error {
	m, ok := msg.(Message)
	if !ok {
		return fmt.Errorf("udp: expected udp.Message, got %T", msg)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return &hibiscus.ClosedTransportError{}
	}
	t.outstanding[m.MessageID()] = &pending{original: m}
	t.mu.Unlock()

	return t.write(m)
}

// SendAndForget implements hibiscus.Transport.
func (t *Transport) SendAndForget(ctx context.Context, msg hibiscus.Message) error {
	m, ok := msg.(Message)
	if !ok {
		return fmt.Errorf("udp: expected udp.Message, got %T", msg)
	}
	return t.write(m)
}

// SendAndWait implements hibiscus.Transport.
func (t *Transport) SendAndWait(ctx context.Context, msg hibiscus.Message, timeout time.Duration) (hibiscus.Message, error) {
	m, ok := msg.(Message)
	if !ok {
		return nil, fmt.Errorf("udp: expected udp.Message, got %T", msg)
	}

	waiter := make(chan Message, 1)
	errCh := make(chan error, 1)
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, &hibiscus.ClosedTransportError{}
	}
	t.outstanding[m.MessageID()] = &pending{original: m, waiter: waiter, errCh: errCh}
	t.mu.Unlock()

	if err := t.write(m); err != nil {
		t.mu.Lock()
		delete(t.outstanding, m.MessageID())
		t.mu.Unlock()
		return nil, err
	}

	select {
	case resp := <-waiter:
		return resp, nil
	case err := <-errCh:
		return nil, err
	case <-t.done:
		return nil, &hibiscus.ClosedTransportError{}
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.outstanding, m.MessageID())
		t.mu.Unlock()
		return nil, ctx.Err()
	case <-time.After(timeout):
		t.mu.Lock()
		delete(t.outstanding, m.MessageID())
		t.mu.Unlock()
		return nil, &hibiscus.TimeoutError{MessageID: m.MessageID()}
	}
}

func (t *Transport) write(m Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return &hibiscus.ClosedTransportError{}
	}
	data, err := encodeDatagram(m)
	if err != nil {
		return fmt.Errorf("udp: %w", err)
	}
	if _, err := t.conn.Write(data); err != nil {
		return &hibiscus.ClosedTransportError{Cause: err}
	}
	return nil
}

// IsClosed implements hibiscus.Transport.
func (t *Transport) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Close implements hibiscus.Transport.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	t.closeOnce.Do(func() { close(t.done) })

	err := t.conn.Close()
	_ = t.group.Wait()
	return err
}
