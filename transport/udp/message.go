// Package udp is a reference Transport over UDP datagrams. Each datagram
// carries exactly one JSON-encoded message; unlike transport/tcp there is
// no byte stream to frame, but also no delivery or ordering guarantee, so
// SendAndWait retries are left to the caller via the Backoff in the core.
package udp

import (
	"encoding/json"
	"fmt"

	"github.com/io7m-com/hibiscus-go"
)

// Message is the concrete wire message type this transport sends and
// receives.
type Message struct {
	hibiscus.BaseMessage
	MsgType string
	Payload json.RawMessage
}

// NewMessage returns a fresh, untyped request carrying payload. Use
// NewTypedMessage when the message needs to be routed by router.Router.
func NewMessage(payload any) (Message, error) {
	return NewTypedMessage("", payload)
}

// NewTypedMessage returns a fresh request tagged msgType and carrying
// payload, implementing router.Typed.
func NewTypedMessage(msgType string, payload any) (Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("udp: marshal payload: %w", err)
	}
	return Message{BaseMessage: hibiscus.NewRequest(), MsgType: msgType, Payload: body}, nil
}

// NewResponse returns a fresh, untyped response to req carrying payload.
func NewResponse(req hibiscus.Message, payload any) (Message, error) {
	return NewTypedResponse(req, "", payload)
}

// NewTypedResponse returns a fresh response to req, tagged msgType and
// carrying payload.
func NewTypedResponse(req hibiscus.Message, msgType string, payload any) (Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("udp: marshal payload: %w", err)
	}
	return Message{BaseMessage: hibiscus.NewResponseTo(req), MsgType: msgType, Payload: body}, nil
}

// Unmarshal decodes the message's payload into v.
func (m Message) Unmarshal(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// MessageType implements router.Typed.
func (m Message) MessageType() string { return m.MsgType }

type datagramEnvelope struct {
	ID      hibiscus.ID     `json:"id"`
	CorrID  hibiscus.ID     `json:"corr_id,omitempty"`
	HasCorr bool            `json:"has_corr,omitempty"`
	Type    string          `json:"type,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func encodeDatagram(m Message) ([]byte, error) {
	env := datagramEnvelope{ID: m.ID, CorrID: m.CorrID, HasCorr: m.IsCorrID, Type: m.MsgType, Payload: m.Payload}
	return json.Marshal(env)
}

func decodeDatagram(data []byte) (Message, error) {
	var env datagramEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, fmt.Errorf("udp: unmarshal datagram: %w", err)
	}
	return Message{
		BaseMessage: hibiscus.BaseMessage{ID: env.ID, CorrID: env.CorrID, IsCorrID: env.HasCorr},
		MsgType:     env.Type,
		Payload:     env.Payload,
	}, nil
}
