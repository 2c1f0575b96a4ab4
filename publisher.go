package hibiscus

import "sync"

// defaultSubscriberBuffer is the per-subscriber buffer size used when a
// caller does not ask for a specific one. It is deliberately small: state
// transitions are infrequent and a subscriber that falls this far behind
// is expected to miss values rather than stall the publisher.
const defaultSubscriberBuffer = 16

// Publisher is a hot, multicast stream. Every Subscribe call gets its own
// buffered channel; Publish fans a value out to all of them without
// blocking. A slow subscriber drops values once its buffer fills — it
// never delays the producer or other subscribers.
type Publisher[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	nextID int
	closed bool
}

// NewPublisher returns an empty, open publisher.
func NewPublisher[T any]() *Publisher[T] {
	return &Publisher[T]{subs: make(map[int]chan T)}
}

// Subscription is a handle returned by Subscribe. Values arrive on C;
// Unsubscribe stops delivery and releases the channel.
type Subscription[T any] struct {
	C           <-chan T
	unsubscribe func()
}

// Unsubscribe stops delivery to this subscription. Safe to call more than
// once.
func (s *Subscription[T]) Unsubscribe() {
	s.unsubscribe()
}

// Subscribe registers a new subscriber with the given buffer size (0 uses
// defaultSubscriberBuffer). A publisher that has already been closed
// returns a subscription whose channel is immediately closed, at the
// implementer's discretion per the no-further-emission guarantee.
func (p *Publisher[T]) Subscribe(bufSize int) *Subscription[T] {
	if bufSize <= 0 {
		bufSize = defaultSubscriberBuffer
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan T, bufSize)
	if p.closed {
		close(ch)
		return &Subscription[T]{C: ch, unsubscribe: func() {}}
	}

	id := p.nextID
	p.nextID++
	p.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if _, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(ch)
			}
		})
	}

	return &Subscription[T]{C: ch, unsubscribe: unsubscribe}
}

// Publish delivers v to every current subscriber, non-blockingly. Values
// are dropped for subscribers whose buffer is full rather than waiting.
// Publish after Close is a no-op.
func (p *Publisher[T]) Publish(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	for _, ch := range p.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Close delivers final to every current subscriber and then permanently
// closes every subscriber channel and marks the publisher closed. Any
// Publish or Close call after this one is a no-op.
func (p *Publisher[T]) Close(final T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	for id, ch := range p.subs {
		select {
		case ch <- final:
		default:
		}
		close(ch)
		delete(p.subs, id)
	}
	p.closed = true
}
