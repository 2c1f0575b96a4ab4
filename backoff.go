package hibiscus

import "time"

// Backoff implements exponential backoff with a maximum delay. It is not
// used by the core itself — spec.md's Non-goals exclude an automatic
// reconnect loop — and no reference transport calls it either; it is
// exported for callers that retry on their own (transport/udp's Params
// carry a Retries count for such callers, which the transport itself
// does not act on).
type Backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

// NewBackoff returns a Backoff starting at initial and capped at max.
func NewBackoff(initial, max time.Duration) *Backoff {
	return &Backoff{initial: initial, max: max, current: initial}
}

// Next returns the delay to wait before the next attempt and advances the
// internal state.
func (b *Backoff) Next() time.Duration {
	d := b.current
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	if d > b.max {
		d = b.max
	}
	return d
}

// Reset returns the backoff to its initial delay.
func (b *Backoff) Reset() {
	b.current = b.initial
}
