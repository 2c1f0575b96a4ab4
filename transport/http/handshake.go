package http

import "github.com/io7m-com/hibiscus-go"

type loginRequest struct {
	Token string `json:"token"`
}

type loginReply struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// LoginHandshake implements hibiscus.Handshake for http.Transport, sending
// the bearer token as the login payload (on top of the Authorization
// header every request already carries) and classifying the server's
// ok/reason reply.
type LoginHandshake struct{}

// LoginMessage implements hibiscus.Handshake.
func (LoginHandshake) LoginMessage(params hibiscus.Params) hibiscus.Message {
	p, _ := params.(Params)
	msg, err := NewMessage(loginRequest{Token: p.BearerToken})
	if err != nil {
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
