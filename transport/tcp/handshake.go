package tcp

import (
	"github.com/io7m-com/hibiscus-go"
)

// loginRequest and loginReply are this transport's own wire shapes for the
// handshake; the core never sees them, only the resulting ok/fail verdict.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginReply struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// LoginHandshake implements hibiscus.Handshake for tcp.Transport, sending
// a username/password pair and classifying the server's ok/reason reply.
type LoginHandshake struct{}

// LoginMessage implements hibiscus.Handshake.
func (LoginHandshake) LoginMessage(params hibiscus.Params) hibiscus.Message {
	p, _ := params.(Params)
	msg, err := NewMessage(loginRequest{Username: p.Username, Password: p.Password})
	if err != nil {
		// NewMessage only fails to marshal a loginRequest if json breaks
		// fundamentally; fall back to an empty-payload request rather than
		// panic so DoConnect still reports a normal ConnectFailed.
		msg = Message{BaseMessage: hibiscus.NewRequest()}
	}
	return msg
}

// Classify implements hibiscus.Handshake.
func (LoginHandshake) Classify(resp hibiscus.Message) bool {
	m, ok := resp.(Message)
	if !ok {
		return false
	}
	var reply loginReply
	if err := m.Unmarshal(&reply); err != nil {
		return false
	}
	return reply.OK
}
