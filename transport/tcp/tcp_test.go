package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/io7m-com/hibiscus-go"
)

// mockTCPServer accepts one connection and replies to every frame it
// receives with a canned handler, mirroring the login/echo shape real
// servers for this transport implement.
type mockTCPServer struct {
	ln net.Listener

	mu      sync.Mutex
	respond func(Message) (Message, bool) // bool = send a reply at all
}

func newMockTCPServer(t *testing.T) *mockTCPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &mockTCPServer{ln: ln}
	go s.acceptLoop()
	return s
}

func (s *mockTCPServer) acceptLoop() {
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	for {
		msg, err := decodeFrame(conn)
		if err != nil {
			return
		}
		s.mu.Lock()
		handler := s.respond
		s.mu.Unlock()
		if handler == nil {
			continue
		}
		reply, ok := handler(msg)
		if !ok {
			continue
		}
		if err := encodeFrame(conn, reply); err != nil {
			return
		}
	}
}

func (s *mockTCPServer) setRespond(fn func(Message) (Message, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond = fn
}

func (s *mockTCPServer) addr() string {
	return s.ln.Addr().String()
}

func (s *mockTCPServer) close() {
	s.ln.Close()
}

func dialTest(t *testing.T, addr string) *Transport {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return newTransport(conn, 4)
}

func TestTransport_SendAndWait_Correlates(t *testing.T) {
	server := newMockTCPServer(t)
	defer server.close()
	server.setRespond(func(m Message) (Message, bool) {
		reply, _ := NewResponse(m, map[string]string{"echo": "ok"})
		return reply, true
	})

	transport := dialTest(t, server.addr())
	defer transport.Close()

	req, _ := NewMessage(map[string]string{"hello": "world"})
	resp, err := transport.SendAndWait(context.Background(), req, time.Second)
	if err != nil {
		t.Fatalf("SendAndWait() error: %v", err)
	}
	if !resp.IsResponseFor(req) {
		t.Error("response does not correlate to request")
	}
}

func TestTransport_SendAndWait_Timeout(t *testing.T) {
	server := newMockTCPServer(t)
	defer server.close()
	server.setRespond(func(Message) (Message, bool) { return Message{}, false })

	transport := dialTest(t, server.addr())
	defer transport.Close()

	req, _ := NewMessage(nil)
	_, err := transport.SendAndWait(context.Background(), req, 50*time.Millisecond)
	var timeoutErr *hibiscus.TimeoutError
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if !isTimeoutError(err, &timeoutErr) {
		t.Errorf("SendAndWait() error = %v, want *hibiscus.TimeoutError", err)
	}
}

func isTimeoutError(err error, target **hibiscus.TimeoutError) bool {
	te, ok := err.(*hibiscus.TimeoutError)
	if ok {
		*target = te
	}
	return ok
}

func TestTransport_Send_ThenReceive_ReportsResponse(t *testing.T) {
	server := newMockTCPServer(t)
	defer server.close()
	server.setRespond(func(m Message) (Message, bool) {
		reply, _ := NewResponse(m, nil)
		return reply, true
	})

	transport := dialTest(t, server.addr())
	defer transport.Close()

	req, _ := NewMessage(nil)
	if err := transport.Send(context.Background(), req); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	out, err := transport.Receive(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Receive() error: %v", err)
	}
	if out.Kind != hibiscus.ReadResponse {
		t.Fatalf("Receive() Kind = %v, want ReadResponse", out.Kind)
	}
	if !out.Response.IsResponseFor(req) {
		t.Error("reported response does not correlate to the original request")
	}
}

func TestTransport_SendAndForget_UnclaimedReplyIsReceived(t *testing.T) {
	server := newMockTCPServer(t)
	defer server.close()
	server.setRespond(func(m Message) (Message, bool) {
		reply, _ := NewResponse(m, nil)
		return reply, true
	})

	transport := dialTest(t, server.addr())
	defer transport.Close()

	req, _ := NewMessage(nil)
	if err := transport.SendAndForget(context.Background(), req); err != nil {
		t.Fatalf("SendAndForget() error: %v", err)
	}

	out, err := transport.Receive(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Receive() error: %v", err)
	}
	if out.Kind != hibiscus.ReadReceived {
		t.Fatalf("Receive() Kind = %v, want ReadReceived (SendAndForget tracks no pairing)", out.Kind)
	}
}

func TestTransport_Receive_Nothing_OnTimeout(t *testing.T) {
	server := newMockTCPServer(t)
	defer server.close()

	transport := dialTest(t, server.addr())
	defer transport.Close()

	out, err := transport.Receive(context.Background(), 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Receive() error: %v", err)
	}
	if out.Kind != hibiscus.ReadNothing {
		t.Fatalf("Receive() Kind = %v, want ReadNothing", out.Kind)
	}
}

func TestTransport_Close_IsIdempotentAndFailsSubsequentOps(t *testing.T) {
	server := newMockTCPServer(t)
	defer server.close()

	transport := dialTest(t, server.addr())
	if err := transport.Close(); err != nil {
		t.Fatalf("first Close() error: %v", err)
	}
	if err := transport.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if !transport.IsClosed() {
		t.Error("IsClosed() should be true after Close()")
	}

	req, _ := NewMessage(nil)
	if err := transport.Send(context.Background(), req); err == nil {
		t.Error("Send() after Close() should fail")
	}
}

// TestTransport_SendAndWait_ReceiveQueueOverflow drives the real reader
// loop and queue end to end: the server floods more uncorrelated messages
// than the transport's queue capacity allows while a SendAndWait is still
// outstanding, and that waiter must fail with ReceiveQueueOverflowError
// rather than block until its own timeout.
func TestTransport_SendAndWait_ReceiveQueueOverflow(t *testing.T) {
	const capacity = 4

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		if _, err := decodeFrame(conn); err != nil {
			return
		}
		// Flood past capacity and never answer the outstanding request.
		for i := 0; i < capacity+1; i++ {
			extra, _ := NewMessage(map[string]int{"n": i})
			if err := encodeFrame(conn, extra); err != nil {
				return
			}
		}
	}()

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	transport := newTransport(conn, capacity)
	defer transport.Close()

	req, _ := NewMessage(nil)
	_, err = transport.SendAndWait(context.Background(), req, 2*time.Second)
	var overflow *hibiscus.ReceiveQueueOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("SendAndWait() error = %v, want *hibiscus.ReceiveQueueOverflowError", err)
	}
}

func TestLoginHandshake_ClassifiesReply(t *testing.T) {
	h := LoginHandshake{}
	ok, _ := NewResponse(NewMessageForTest(), loginReply{OK: true})
	reject, _ := NewResponse(NewMessageForTest(), loginReply{OK: false, Reason: "bad password"})

	if !h.Classify(ok) {
		t.Error("Classify() = false, want true for an OK reply")
	}
	if h.Classify(reject) {
		t.Error("Classify() = true, want false for a rejected reply")
	}
}

// NewMessageForTest returns a throwaway request used only to build
// responses for handshake classification tests.
func NewMessageForTest() Message {
	m, _ := NewMessage(nil)
	return m
}
