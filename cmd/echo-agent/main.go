// Command echo-agent is a deployable tcp-transport server: it accepts
// connections, answers the login exchange of tcp.LoginHandshake, and
// answers echo/v1/ping requests with echo/v1/pong. Configuration comes
// entirely from HIBISCUS_TCP_* environment variables plus
// HIBISCUS_ECHO_USERNAME / HIBISCUS_ECHO_PASSWORD for the credentials it
// accepts.
package main

import (
	"log"
	"net"
	"os"

	"github.com/io7m-com/hibiscus-go/transport/tcp"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginReply struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

type pingPayload struct {
	Sequence int `json:"sequence"`
}

type pongPayload struct {
	Sequence int `json:"sequence"`
}

func main() {
	logger := log.New(os.Stderr, "[echo-agent-server] ", log.LstdFlags)

	addr := envOr("HIBISCUS_TCP_ADDRESS", "127.0.0.1:9600")
	wantUser := os.Getenv("HIBISCUS_ECHO_USERNAME")
	wantPass := os.Getenv("HIBISCUS_ECHO_PASSWORD")

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatalf("listen %s: %v", addr, err)
	}
	logger.Printf("listening on %s", addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.Printf("accept: %v", err)
			continue
		}
		go serve(conn, wantUser, wantPass, logger)
	}
}

func serve(conn net.Conn, wantUser, wantPass string, logger *log.Logger) {
	defer conn.Close()

	login, err := tcp.DecodeFrame(conn)
	if err != nil {
		logger.Printf("decode login: %v", err)
		return
	}
	var creds loginRequest
	if err := login.Unmarshal(&creds); err != nil {
		logger.Printf("decode login payload: %v", err)
		return
	}

	ok := wantUser == "" || (creds.Username == wantUser && creds.Password == wantPass)
	reply, err := tcp.NewResponse(login, loginReply{OK: ok})
	if err != nil || tcp.EncodeFrame(conn, reply) != nil {
		return
	}
	if !ok {
		return
	}

	for {
		req, err := tcp.DecodeFrame(conn)
		if err != nil {
			return
		}

		var ping pingPayload
		if err := req.Unmarshal(&ping); err != nil {
			continue
		}

		resp, err := tcp.NewTypedResponse(req, "echo/v1/pong", pongPayload{Sequence: ping.Sequence})
		if err != nil {
			continue
		}
		if err := tcp.EncodeFrame(conn, resp); err != nil {
			return
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
