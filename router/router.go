// Package router adapts the teacher SDK's message-type handler registry
// (layr8.handlerRegistry) to a transport-agnostic core: it dispatches a
// hibiscus.Message to a registered HandlerFunc keyed by the message's own
// notion of "type", independent of which concrete Transport delivered it.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/io7m-com/hibiscus-go"
)

// Typed narrows hibiscus.Message for wire message types that carry their
// own type tag. Every concrete message produced by this module's reference
// transports implements it via an embedded type field.
type Typed interface {
	hibiscus.Message
	MessageType() string
}

// HandlerFunc processes one inbound message. Returning a non-nil response
// tells the caller to send it back correlated to msg; returning (nil, nil)
// is a fire-and-forget handler.
type HandlerFunc func(ctx context.Context, msg hibiscus.Message) (hibiscus.Message, error)

// ErrUnregisteredType is returned by Dispatch for a message whose type has
// no registered handler.
var ErrUnregisteredType = fmt.Errorf("router: no handler registered for this message type")

// Router maps message types to handlers, the way the teacher's
// handlerRegistry maps DIDComm message types to protocol handlers.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// New returns an empty Router.
func New() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Register adds fn as the handler for msgType. It fails if msgType already
// has a handler, the same restriction the teacher's registry enforces.
func (r *Router) Register(msgType string, fn HandlerFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[msgType]; exists {
		return fmt.Errorf("router: handler already registered for message type %q", msgType)
	}
	r.handlers[msgType] = fn
	return nil
}

// Dispatch routes msg to its registered handler. msg must implement Typed;
// a message that does not is always ErrUnregisteredType.
func (r *Router) Dispatch(ctx context.Context, msg hibiscus.Message) (hibiscus.Message, error) {
	typed, ok := msg.(Typed)
	if !ok {
		return nil, ErrUnregisteredType
	}

	r.mu.RLock()
	fn, ok := r.handlers[typed.MessageType()]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnregisteredType
	}
	return fn(ctx, msg)
}

// Namespaces returns the unique namespace prefixes derived from registered
// message types, mirroring the teacher's protocols(): for a type like
// "chat/v1/message" the namespace is "chat/v1".
func (r *Router) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var namespaces []string
	for msgType := range r.handlers {
		ns := deriveNamespace(msgType)
		if _, ok := seen[ns]; !ok {
			seen[ns] = struct{}{}
			namespaces = append(namespaces, ns)
		}
	}
	return namespaces
}

func deriveNamespace(msgType string) string {
	idx := strings.LastIndex(msgType, "/")
	if idx == -1 {
		return msgType
	}
	return msgType[:idx]
}
