package tcp

import (
	"fmt"
	"os"
	"time"
)

// Params holds the connection configuration for a TCP transport.
type Params struct {
	// Address is the "host:port" to dial.
	// Fallback: HIBISCUS_TCP_ADDRESS environment variable.
	Address string

	// Username and Password are sent in the login handshake.
	// Fallback: HIBISCUS_TCP_USERNAME / HIBISCUS_TCP_PASSWORD environment
	// variables.
	Username string
	Password string

	// DialTimeout bounds the initial TCP dial.
	DialTimeout time.Duration

	// Timeout bounds the login handshake's SendAndWait, and is what
	// ConnectTimeout reports to the core.
	Timeout time.Duration

	// QueueCapacity bounds the transport's uncorrelated-message queue.
	// Zero means unbounded.
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
		p.Address = os.Getenv("HIBISCUS_TCP_ADDRESS")
	}
	if p.Username == "" {
		p.Username = os.Getenv("HIBISCUS_TCP_USERNAME")
	}
	if p.Password == "" {
		p.Password = os.Getenv("HIBISCUS_TCP_PASSWORD")
	}
	if p.DialTimeout <= 0 {
		p.DialTimeout = 5 * time.Second
	}

	if p.Address == "" {
		return p, fmt.Errorf("tcp: Address is required (set in Params or HIBISCUS_TCP_ADDRESS env)")
	}

	return p, nil
}
