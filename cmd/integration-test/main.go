// Command integration-test drives a real hibiscus.Client against an
// in-process tcp server through the concrete scenarios this module's
// design is built to satisfy, instead of requiring a live cluster. Each
// scenario prints PASS or FAIL; the process exits non-zero if any fail.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/io7m-com/hibiscus-go"
	"github.com/io7m-com/hibiscus-go/transport/tcp"
)

type loginReply struct {
	OK bool `json:"ok"`
}

// testServer is a minimal, per-scenario-configurable tcp server: it
// accepts one connection and hands every decoded frame to onFrame.
type testServer struct {
	ln net.Listener
}

func newTestServer(t *testing) *testServer {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.fatalf("listen: %v", err)
	}
	return &testServer{ln: ln}
}

func (s *testServer) addr() string { return s.ln.Addr().String() }
func (s *testServer) close()       { s.ln.Close() }

func (s *testServer) serveOnce(onFrame func(net.Conn, tcp.Message) bool) {
	go func() {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			msg, err := tcp.DecodeFrame(conn)
			if err != nil {
				return
			}
			if !onFrame(conn, msg) {
				return
			}
		}
	}()
}

// testing is a tiny stand-in for *testing.T so scenarios can share the
// PASS/FAIL bookkeeping pattern without importing the testing package
// into a main binary.
type testing struct {
	name   string
	failed bool
}

func (t *testing) fatalf(format string, args ...any) {
	fmt.Printf("FAIL %s: %s\n", t.name, fmt.Sprintf(format, args...))
	t.failed = true
}

func run(name string, fn func(*testing)) bool {
	t := &testing{name: name}
	fn(t)
	if !t.failed {
		fmt.Printf("PASS %s\n", name)
	}
	return !t.failed
}

func main() {
	results := []bool{
		run("connect and ask three times", scenarioConnectAndAskThreeTimes),
		run("connect with wrong password", scenarioWrongPassword),
		run("connect to unreachable endpoint", scenarioUnreachable),
		run("operations while disconnected", scenarioOperationsWhileDisconnected),
		run("reconnect while connected", scenarioReconnectWhileConnected),
		run("receive-queue overflow", scenarioReceiveQueueOverflow),
	}

	for _, ok := range results {
		if !ok {
			os.Exit(1)
		}
	}
}

func loginOK(conn net.Conn, msg tcp.Message) bool {
	reply, _ := tcp.NewResponse(msg, loginReply{OK: true})
	return tcp.EncodeFrame(conn, reply) == nil
}

func loginRejected(conn net.Conn, msg tcp.Message) bool {
	reply, _ := tcp.NewResponse(msg, loginReply{OK: false})
	tcp.EncodeFrame(conn, reply)
	return false
}

// scenarioConnectAndAskThreeTimes is spec.md §8 scenario 1.
func scenarioConnectAndAskThreeTimes(t *testing) {
	server := newTestServer(t)
	defer server.close()

	first := true
	server.serveOnce(func(conn net.Conn, msg tcp.Message) bool {
		if first {
			first = false
			return loginOK(conn, msg)
		}
		reply, _ := tcp.NewResponse(msg, map[string]string{"ack": "ok"})
		return tcp.EncodeFrame(conn, reply) == nil
	})

	client := hibiscus.NewClient(tcp.Dial, tcp.LoginHandshake{})
	defer client.Close()
	sub := client.States(8)
	defer sub.Unsubscribe()

	ctx := context.Background()
	result := client.Connect(ctx, tcp.Params{Address: server.addr()})
	if result.Kind != hibiscus.ConnectSucceeded {
		t.fatalf("Connect() = %v, want ConnectSucceeded", result.Kind)
		return
	}

	for i := 0; i < 3; i++ {
		req, _ := tcp.NewMessage(nil)
		resp, err := client.SendAndWait(ctx, req, time.Second)
		if err != nil {
			t.fatalf("SendAndWait() #%d error: %v", i, err)
			return
		}
		if !resp.IsResponseFor(req) {
			t.fatalf("SendAndWait() #%d response does not correlate", i)
			return
		}
	}

	wantStates := []hibiscus.StateKind{hibiscus.StateConnecting, hibiscus.StateConnectionSucceeded, hibiscus.StateConnected}
	if err := expectStates(sub, wantStates); err != nil {
		t.fatalf("%v", err)
	}
}

// scenarioWrongPassword is spec.md §8 scenario 2.
func scenarioWrongPassword(t *testing) {
	server := newTestServer(t)
	defer server.close()
	server.serveOnce(loginRejected)

	client := hibiscus.NewClient(tcp.Dial, tcp.LoginHandshake{})
	defer client.Close()
	sub := client.States(8)
	defer sub.Unsubscribe()

	ctx := context.Background()
	result := client.Connect(ctx, tcp.Params{Address: server.addr()})
	if result.Kind != hibiscus.ConnectFailed {
		t.fatalf("Connect() = %v, want ConnectFailed", result.Kind)
		return
	}

	wantStates := []hibiscus.StateKind{hibiscus.StateConnecting, hibiscus.StateConnectionFailed}
	if err := expectStates(sub, wantStates); err != nil {
		t.fatalf("%v", err)
		return
	}

	req, _ := tcp.NewMessage(nil)
	if err := client.Send(ctx, req); !errors.Is(err, hibiscus.ErrNotConnected) {
		t.fatalf("Send() after rejected connect = %v, want ErrNotConnected", err)
	}
}

// scenarioUnreachable is spec.md §8 scenario 3.
func scenarioUnreachable(t *testing) {
	client := hibiscus.NewClient(tcp.Dial, tcp.LoginHandshake{})
	defer client.Close()
	sub := client.States(8)
	defer sub.Unsubscribe()

	// Port 1 is reserved and nothing listens there in a test environment.
	result := client.Connect(context.Background(), tcp.Params{Address: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	if result.Kind != hibiscus.ConnectError {
		t.fatalf("Connect() = %v, want ConnectError", result.Kind)
		return
	}

	wantStates := []hibiscus.StateKind{hibiscus.StateConnecting, hibiscus.StateConnectionFailed}
	if err := expectStates(sub, wantStates); err != nil {
		t.fatalf("%v", err)
	}
}

// scenarioOperationsWhileDisconnected is spec.md §8 scenario 4.
func scenarioOperationsWhileDisconnected(t *testing) {
	client := hibiscus.NewClient(tcp.Dial, tcp.LoginHandshake{})
	defer client.Close()

	ctx := context.Background()
	if _, err := client.Receive(ctx, 0); !errors.Is(err, hibiscus.ErrNotConnected) {
		t.fatalf("Receive() = %v, want ErrNotConnected", err)
	}
	req, _ := tcp.NewMessage(nil)
	if err := client.Send(ctx, req); !errors.Is(err, hibiscus.ErrNotConnected) {
		t.fatalf("Send() = %v, want ErrNotConnected", err)
	}
	if _, err := client.SendAndWait(ctx, req, time.Second); !errors.Is(err, hibiscus.ErrNotConnected) {
		t.fatalf("SendAndWait() = %v, want ErrNotConnected", err)
	}
}

// scenarioReconnectWhileConnected is spec.md §8 scenario 5.
func scenarioReconnectWhileConnected(t *testing) {
	server := newTestServer(t)
	defer server.close()
	server.serveOnce(loginOK)
	server.serveOnce(loginOK)

	client := hibiscus.NewClient(tcp.Dial, tcp.LoginHandshake{})
	defer client.Close()
	sub := client.States(8)
	defer sub.Unsubscribe()

	ctx := context.Background()
	params := tcp.Params{Address: server.addr()}
	if result := client.Connect(ctx, params); result.Kind != hibiscus.ConnectSucceeded {
		t.fatalf("first Connect() = %v, want ConnectSucceeded", result.Kind)
		return
	}
	if result := client.Connect(ctx, params); result.Kind != hibiscus.ConnectSucceeded {
		t.fatalf("second Connect() = %v, want ConnectSucceeded", result.Kind)
		return
	}

	if client.StateNow().Kind != hibiscus.StateConnected {
		t.fatalf("StateNow() = %v, want Connected", client.StateNow().Kind)
		return
	}

	want := []hibiscus.StateKind{
		hibiscus.StateConnecting, hibiscus.StateConnectionSucceeded, hibiscus.StateConnected,
		hibiscus.StateDisconnected,
		hibiscus.StateConnecting, hibiscus.StateConnectionSucceeded, hibiscus.StateConnected,
	}
	if err := expectStates(sub, want); err != nil {
		t.fatalf("%v", err)
	}
}

// scenarioReceiveQueueOverflow is spec.md §8 scenario 6.
func scenarioReceiveQueueOverflow(t *testing) {
	server := newTestServer(t)
	defer server.close()

	const capacity = 10
	first := true
	server.serveOnce(func(conn net.Conn, msg tcp.Message) bool {
		if first {
			first = false
			return loginOK(conn, msg)
		}
		// H1 has arrived: flood 11 uncorrelated messages before ever
		// answering it, so the client's bounded queue overflows while
		// SendAndWait(H1) is still pending. H1 itself is never answered;
		// the overflow should fail the wait first.
		for i := 0; i < capacity+1; i++ {
			extra, _ := tcp.NewMessage(map[string]int{"n": i})
			if err := tcp.EncodeFrame(conn, extra); err != nil {
				return false
			}
		}
		return true
	})

	client := hibiscus.NewClient(tcp.Dial, tcp.LoginHandshake{})
	defer client.Close()

	ctx := context.Background()
	params := tcp.Params{Address: server.addr(), QueueCapacity: capacity}
	if result := client.Connect(ctx, params); result.Kind != hibiscus.ConnectSucceeded {
		t.fatalf("Connect() = %v, want ConnectSucceeded", result.Kind)
		return
	}

	req, _ := tcp.NewMessage(nil)
	_, err := client.SendAndWait(ctx, req, 2*time.Second)
	var overflow *hibiscus.ReceiveQueueOverflowError
	if !errors.As(err, &overflow) {
		t.fatalf("SendAndWait() error = %v, want *hibiscus.ReceiveQueueOverflowError", err)
	}
}

func expectStates(sub *hibiscus.Subscription[hibiscus.State], want []hibiscus.StateKind) error {
	got := make([]hibiscus.StateKind, 0, len(want))
	for i := 0; i < len(want); i++ {
		select {
		case s, ok := <-sub.C:
			if !ok {
				return fmt.Errorf("state channel closed early, got %v, want %v", got, want)
			}
			got = append(got, s.Kind)
		case <-time.After(2 * time.Second):
			return fmt.Errorf("timed out waiting for states, got %v, want %v", got, want)
		}
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("emitted states = %v, want %v", got, want)
		}
	}
	return nil
}
