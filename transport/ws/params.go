package ws

import (
	"fmt"
	"os"
	"time"
)

// Params holds the connection configuration for a WebSocket transport.
type Params struct {
	// URL is the ws:// or wss:// endpoint to dial.
	// Fallback: HIBISCUS_WS_URL environment variable.
	URL string

	// Subject identifies the caller in the signed login claim.
	// Fallback: HIBISCUS_WS_SUBJECT environment variable.
	Subject string

	// SigningKey signs the JWT credential sent during the login handshake.
	// Fallback: HIBISCUS_WS_SIGNING_KEY environment variable.
	SigningKey []byte

	// HandshakeTimeout bounds the WebSocket upgrade itself.
	HandshakeTimeout time.Duration

	// Timeout bounds the login handshake's SendAndWait, and is what
	// ConnectTimeout reports to the core.
	Timeout time.Duration

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
	if p.URL == "" {
		p.URL = os.Getenv("HIBISCUS_WS_URL")
	}
	if p.Subject == "" {
		p.Subject = os.Getenv("HIBISCUS_WS_SUBJECT")
	}
	if len(p.SigningKey) == 0 {
		if key := os.Getenv("HIBISCUS_WS_SIGNING_KEY"); key != "" {
			p.SigningKey = []byte(key)
		}
	}
	if p.HandshakeTimeout <= 0 {
		p.HandshakeTimeout = 10 * time.Second
	}

	if p.URL == "" {
		return p, fmt.Errorf("ws: URL is required (set in Params or HIBISCUS_WS_URL env)")
	}
	if len(p.SigningKey) == 0 {
		return p, fmt.Errorf("ws: SigningKey is required (set in Params or HIBISCUS_WS_SIGNING_KEY env)")
	}

	return p, nil
}
