package udp

import (
	"fmt"
	"os"
	"time"
)

// Params holds the connection configuration for a UDP transport.
type Params struct {
	// Address is the "host:port" to send datagrams to.
	// Fallback: HIBISCUS_UDP_ADDRESS environment variable.
	Address string

	// Username and Password are sent in the login handshake.
	Username string
	Password string

	// Timeout bounds the login handshake's SendAndWait, and is what
	// ConnectTimeout reports to the core.
	Timeout time.Duration

	// Retries is how many times a Backoff-spaced SendAndWait may be
	// retried by callers before giving up on an unreliable link. The
	// transport itself does not retry; it only reports timeouts.
	Retries int

	// QueueCapacity bounds the transport's uncorrelated-message queue.
	QueueCapacity int
}

// ConnectTimeout implements hibiscus.Params.
func (p Params) ConnectTimeout() time.Duration {
	if p.Timeout <= 0 {
		return 10 * time.Second
	}
	return p.Timeout
}

// ResolveParams fills empty fields from environment variables and
// validates the required ones.
func ResolveParams(p Params) (Params, error) {
	if p.Address == "" {
		p.Address = os.Getenv("HIBISCUS_UDP_ADDRESS")
	}
	if p.Username == "" {
		p.Username = os.Getenv("HIBISCUS_UDP_USERNAME")
	}
	if p.Password == "" {
		p.Password = os.Getenv("HIBISCUS_UDP_PASSWORD")
	}
	if p.Retries <= 0 {
		p.Retries = 3
	}

	if p.Address == "" {
		return p, fmt.Errorf("udp: Address is required (set in Params or HIBISCUS_UDP_ADDRESS env)")
	}

	return p, nil
}
