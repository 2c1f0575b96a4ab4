// Package hibiscus provides a transport-agnostic RPC client runtime.
//
// The runtime gives unrelated client implementations — one per wire
// protocol — a single connection lifecycle, a correlated request/response
// protocol, and a published stream of lifecycle transitions. A concrete
// transport (see the transport/tcp, transport/udp, transport/http, and
// transport/ws subpackages) supplies the byte-level I/O; hibiscus supplies
// everything above it.
//
// The shape is: a Message carries an opaque ID and knows how to recognize
// its own response. A Transport sends and receives messages and correlates
// responses to requests. A Handler owns exactly one Transport and is either
// Disconnected (only able to attempt a login) or Connected (able to do
// real I/O). A Client owns the current Handler, drives the lifecycle state
// machine, and publishes every state transition to subscribers.
//
// Basic usage:
//
//	client := hibiscus.NewClient(dialer, handshake)
//	result := client.Connect(ctx, params)
//	if result.Kind != hibiscus.ConnectSucceeded {
//	    log.Fatal(result.Cause)
//	}
//	defer client.Close()
//
//	resp, err := client.SendAndWait(ctx, request, 5*time.Second)
package hibiscus
