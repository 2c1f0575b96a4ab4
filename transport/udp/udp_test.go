package udp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/io7m-com/hibiscus-go"
)

// mockUDPServer replies to every datagram it receives from the most
// recently seen peer address.
type mockUDPServer struct {
	conn    *net.UDPConn
	respond func(Message) (Message, bool)
}

func newMockUDPServer(t *testing.T) *mockUDPServer {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &mockUDPServer{conn: conn}
	go s.loop()
	return s
}

func (s *mockUDPServer) loop() {
	buf := make([]byte, maxDatagramSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		msg, err := decodeDatagram(buf[:n])
		if err != nil || s.respond == nil {
			continue
		}
		reply, ok := s.respond(msg)
		if !ok {
			continue
		}
		data, err := encodeDatagram(reply)
		if err != nil {
			continue
		}
		s.conn.WriteToUDP(data, addr)
	}
}

func (s *mockUDPServer) addr() string {
	return s.conn.LocalAddr().String()
}

func (s *mockUDPServer) close() {
	s.conn.Close()
}

func dialTest(t *testing.T, addr string) *Transport {
	t.Helper()
	conn, err := net.Dial("udp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return newTransport(conn, 4)
}

func TestTransport_SendAndWait_Correlates(t *testing.T) {
	server := newMockUDPServer(t)
	defer server.close()
	server.respond = func(m Message) (Message, bool) {
		reply, _ := NewResponse(m, map[string]string{"echo": "ok"})
		return reply, true
	}

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
	server := newMockUDPServer(t)
	defer server.close()

	transport := dialTest(t, server.addr())
	defer transport.Close()

	req, _ := NewMessage(nil)
	_, err := transport.SendAndWait(context.Background(), req, 50*time.Millisecond)
	if _, ok := err.(*hibiscus.TimeoutError); !ok {
		t.Errorf("SendAndWait() error = %v, want *hibiscus.TimeoutError", err)
	}
}

func TestTransport_Receive_Nothing_OnTimeout(t *testing.T) {
	server := newMockUDPServer(t)
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

func TestTransport_Close_IsIdempotent(t *testing.T) {
	server := newMockUDPServer(t)
	defer server.close()

	transport := dialTest(t, server.addr())
	if err := transport.Close(); err != nil {
		t.Fatalf("first Close() error: %v", err)
	}
	if err := transport.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}

func TestLoginHandshake_ClassifiesReply(t *testing.T) {
	h := LoginHandshake{}
	base, _ := NewMessage(nil)
	ok, _ := NewResponse(base, loginReply{OK: true})
	reject, _ := NewResponse(base, loginReply{OK: false, Reason: "bad password"})

	if !h.Classify(ok) {
		t.Error("Classify() = false, want true for an OK reply")
	}
	if h.Classify(reject) {
		t.Error("Classify() = true, want false for a rejected reply")
	}
}
