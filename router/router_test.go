package router

import (
	"context"
	"errors"
	"testing"

	"github.com/io7m-com/hibiscus-go"
	"github.com/io7m-com/hibiscus-go/transport/tcp"
)

func TestRouter_RegisterAndDispatch(t *testing.T) {
	r := New()
	called := false
	err := r.Register("chat/v1/message", func(ctx context.Context, msg hibiscus.Message) (hibiscus.Message, error) {
		called = true
		reply, _ := tcp.NewTypedResponse(msg, "chat/v1/ack", nil)
		return reply, nil
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	req, _ := tcp.NewTypedMessage("chat/v1/message", map[string]string{"text": "hi"})
	reply, err := r.Dispatch(context.Background(), req)
	if err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	if !called {
		t.Error("handler was not invoked")
	}
	if !reply.IsResponseFor(req) {
		t.Error("reply does not correlate to the request")
	}
}

func TestRouter_Register_Duplicate(t *testing.T) {
	r := New()
	noop := func(context.Context, hibiscus.Message) (hibiscus.Message, error) { return nil, nil }
	if err := r.Register("chat/v1/message", noop); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}
	if err := r.Register("chat/v1/message", noop); err == nil {
		t.Fatal("second Register() for the same type should fail")
	}
}

func TestRouter_Dispatch_UnregisteredType(t *testing.T) {
	r := New()
	req, _ := tcp.NewTypedMessage("unknown/v1/ping", nil)
	_, err := r.Dispatch(context.Background(), req)
	if !errors.Is(err, ErrUnregisteredType) {
		t.Errorf("Dispatch() error = %v, want ErrUnregisteredType", err)
	}
}

func TestRouter_Dispatch_UntypedMessage(t *testing.T) {
	r := New()
	req := hibiscus.NewRequest()
	_, err := r.Dispatch(context.Background(), req)
	if !errors.Is(err, ErrUnregisteredType) {
		t.Errorf("Dispatch() error = %v, want ErrUnregisteredType for a non-Typed message", err)
	}
}

func TestRouter_Namespaces(t *testing.T) {
	r := New()
	noop := func(context.Context, hibiscus.Message) (hibiscus.Message, error) { return nil, nil }
	r.Register("chat/v1/message", noop)
	r.Register("chat/v1/ack", noop)
	r.Register("presence/v1/ping", noop)

	namespaces := r.Namespaces()
	want := map[string]bool{"chat/v1": false, "presence/v1": false}
	if len(namespaces) != len(want) {
		t.Fatalf("Namespaces() = %v, want 2 entries", namespaces)
	}
	for _, ns := range namespaces {
		if _, ok := want[ns]; !ok {
			t.Errorf("unexpected namespace %q", ns)
		}
		want[ns] = true
	}
	for ns, seen := range want {
		if !seen {
			t.Errorf("missing namespace %q", ns)
		}
	}
}
