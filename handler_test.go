package hibiscus

import (
	"context"
	"errors"
	"testing"
)

func TestDisconnectedHandler_IOFailsWithNotConnected(t *testing.T) {
	h := disconnected
	ctx := context.Background()

	if _, err := h.Receive(ctx, 0); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Receive() error = %v, want ErrNotConnected", err)
	}
	if err := h.Send(ctx, NewRequest()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send() error = %v, want ErrNotConnected", err)
	}
	if err := h.SendAndForget(ctx, NewRequest()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SendAndForget() error = %v, want ErrNotConnected", err)
	}
	if _, err := h.SendAndWait(ctx, NewRequest(), 0); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SendAndWait() error = %v, want ErrNotConnected", err)
	}
}

func TestDisconnectedHandler_DoConnect_Succeeded(t *testing.T) {
	transport := &fakeTransport{}
	transport.respond = func(m Message) (Message, error) {
		return NewResponseTo(m), nil
	}

	h := disconnected
	result := h.DoConnect(context.Background(), fakeParams{}, fakeDialer{transport: transport}, fakeHandshake{ok: true})

	if result.Kind != ConnectSucceeded {
		t.Fatalf("DoConnect() Kind = %v, want ConnectSucceeded", result.Kind)
	}
	if result.NewHandler == nil || !result.NewHandler.IsConnected() {
		t.Fatal("DoConnect() should return a Connected NewHandler on success")
	}
	if transport.IsClosed() {
		t.Error("transport should remain open after a successful handshake")
	}
	if result.Response == nil {
		t.Error("ConnectSucceeded should carry the login response")
	}
	if transport.sentCount() != 1 {
		t.Errorf("sentCount() = %d, want 1 (the login message)", transport.sentCount())
	}
}

func TestDisconnectedHandler_DoConnect_Failed(t *testing.T) {
	transport := &fakeTransport{
		respond: func(m Message) (Message, error) {
			return NewResponseTo(m), nil
		},
	}

	h := disconnected
	result := h.DoConnect(context.Background(), fakeParams{}, fakeDialer{transport: transport}, fakeHandshake{ok: false})

	if result.Kind != ConnectFailed {
		t.Fatalf("DoConnect() Kind = %v, want ConnectFailed", result.Kind)
	}
	if result.Response == nil {
		t.Error("ConnectFailed should carry the server's response")
	}
	if !transport.IsClosed() {
		t.Error("transport should be closed after a rejected login")
	}
}

func TestDisconnectedHandler_DoConnect_DialError(t *testing.T) {
	dialErr := errors.New("connection refused")
	h := disconnected
	result := h.DoConnect(context.Background(), fakeParams{}, fakeDialer{err: dialErr}, fakeHandshake{ok: true})

	if result.Kind != ConnectError {
		t.Fatalf("DoConnect() Kind = %v, want ConnectError", result.Kind)
	}
	if !errors.Is(result.Cause, dialErr) {
		t.Errorf("DoConnect() Cause = %v, want %v", result.Cause, dialErr)
	}
}

func TestDisconnectedHandler_DoConnect_HandshakeIOError(t *testing.T) {
	transport := &fakeTransport{} // no respond func -> SendAndWait times out
	h := disconnected
	result := h.DoConnect(context.Background(), fakeParams{}, fakeDialer{transport: transport}, fakeHandshake{ok: true})

	if result.Kind != ConnectError {
		t.Fatalf("DoConnect() Kind = %v, want ConnectError", result.Kind)
	}
	if !transport.IsClosed() {
		t.Error("transport should be closed after a handshake I/O error")
	}
}

func TestConnectedHandler_DelegatesIO(t *testing.T) {
	transport := &fakeTransport{}
	h := &connectedHandler{transport: transport}

	if err := h.Send(context.Background(), NewRequest()); err != nil {
		t.Errorf("Send() error = %v", err)
	}
	if transport.sentCount() != 1 {
		t.Errorf("sentCount() = %d, want 1", transport.sentCount())
	}
	if h.IsClosed() {
		t.Error("IsClosed() should be false before Close()")
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !h.IsClosed() {
		t.Error("IsClosed() should be true after Close()")
	}
}

func TestConnectedHandler_DoConnect_AlreadyConnected(t *testing.T) {
	h := &connectedHandler{transport: &fakeTransport{}}
	result := h.DoConnect(context.Background(), fakeParams{}, fakeDialer{}, fakeHandshake{})

	if result.Kind != ConnectError {
		t.Fatalf("DoConnect() Kind = %v, want ConnectError", result.Kind)
	}
	if !errors.Is(result.Cause, ErrAlreadyConnected) {
		t.Errorf("DoConnect() Cause = %v, want ErrAlreadyConnected", result.Cause)
	}
}
