package udp

import "github.com/io7m-com/hibiscus-go"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginReply struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// LoginHandshake implements hibiscus.Handshake for udp.Transport.
type LoginHandshake struct{}

// LoginMessage implements hibiscus.Handshake.
func (LoginHandshake) LoginMessage(params hibiscus.Params) hibiscus.Message {
	p, _ := params.(Params)
	msg, err := NewMessage(loginRequest{Username: p.Username, Password: p.Password})
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
