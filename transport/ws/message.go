// Package ws is a reference Transport over a gorilla/websocket connection,
// modeled directly on the teacher SDK's Phoenix Channel transport: a single
// reader goroutine owns the socket, writes are serialized by a mutex, and
// outstanding requests are tracked in a map keyed by message ID.
package ws

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
		return Message{}, fmt.Errorf("ws: marshal payload: %w", err)
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
		return Message{}, fmt.Errorf("ws: marshal payload: %w", err)
	}
	return Message{BaseMessage: hibiscus.NewResponseTo(req), MsgType: msgType, Payload: body}, nil
}

// Unmarshal decodes the message's payload into v.
func (m Message) Unmarshal(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// MessageType implements router.Typed.
func (m Message) MessageType() string { return m.MsgType }

type wireEnvelope struct {
	ID      hibiscus.ID     `json:"id"`
	CorrID  hibiscus.ID     `json:"corr_id,omitempty"`
	HasCorr bool            `json:"has_corr,omitempty"`
	Type    string          `json:"type,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeMessage serializes msg to this transport's wire JSON shape.
// Reference servers that speak the protocol directly (without going
// through Dial) use this instead of duplicating the envelope.
func EncodeMessage(m Message) ([]byte, error) {
	return marshalWS(m)
}

// DecodeMessage parses one wire JSON message.
func DecodeMessage(data []byte) (Message, error) {
	return unmarshalWS(data)
}

func marshalWS(m Message) ([]byte, error) {
	env := wireEnvelope{ID: m.ID, CorrID: m.CorrID, HasCorr: m.IsCorrID, Type: m.MsgType, Payload: m.Payload}
	return json.Marshal(env)
}

func unmarshalWS(data []byte) (Message, error) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, fmt.Errorf("ws: unmarshal frame: %w", err)
	}
	return Message{
		BaseMessage: hibiscus.BaseMessage{ID: env.ID, CorrID: env.CorrID, IsCorrID: env.HasCorr},
		MsgType:     env.Type,
		Payload:     env.Payload,
	}, nil
}
