package ws

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/io7m-com/hibiscus-go"
)

type loginRequest struct {
	Credential string `json:"credential"`
}

type loginReply struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// LoginHandshake implements hibiscus.Handshake for ws.Transport. The login
// message carries an HS256 JWT asserting Params.Subject, signed with
// Params.SigningKey, so the server side can verify the caller without a
// separate out-of-band credential exchange.
type LoginHandshake struct{}

// LoginMessage implements hibiscus.Handshake.
func (LoginHandshake) LoginMessage(params hibiscus.Params) hibiscus.Message {
	p, _ := params.(Params)

	claims := jwt.RegisteredClaims{
		Subject:   p.Subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(p.ConnectTimeout())),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.SigningKey)
	if err != nil {
		// A signing failure here means a misconfigured key; surface it as a
		// login that the server will reject rather than panicking the
		// connect path.
		return Message{BaseMessage: hibiscus.NewRequest()}
	}

	msg, err := NewMessage(loginRequest{Credential: signed})
	if err != nil {
		return Message{BaseMessage: hibiscus.NewRequest()}
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

// VerifyCredential parses and validates a credential JWT produced by
// LoginMessage against key, returning the asserted subject. A server can
// use this to decide the loginReply it sends back.
func VerifyCredential(credential string, key []byte) (subject string, err error) {
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("ws: unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
