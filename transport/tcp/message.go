// Package tcp is a reference Transport over a raw, length-prefixed TCP
// stream. It is one of the illustrative example transports spec.md §1
// calls out as external to the core: the wire format below is this
// package's own invention, not something the core or the Client cares
// about.
package tcp

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/io7m-com/hibiscus-go"
)

// Message is the concrete wire message type this transport sends and
// receives. It embeds hibiscus.BaseMessage for the id/correlation
// machinery and carries an opaque JSON payload.
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
		return Message{}, fmt.Errorf("tcp: marshal payload: %w", err)
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
		return Message{}, fmt.Errorf("tcp: marshal payload: %w", err)
	}
	return Message{BaseMessage: hibiscus.NewResponseTo(req), MsgType: msgType, Payload: body}, nil
}

// Unmarshal decodes the message's payload into v.
func (m Message) Unmarshal(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// MessageType implements router.Typed.
func (m Message) MessageType() string { return m.MsgType }

// wireEnvelope is the on-the-wire JSON shape, length-prefixed on the
// stream by a 4-byte big-endian frame length.
type wireEnvelope struct {
	ID      hibiscus.ID     `json:"id"`
	CorrID  hibiscus.ID     `json:"corr_id,omitempty"`
	HasCorr bool            `json:"has_corr,omitempty"`
	Type    string          `json:"type,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const maxFrameSize = 16 << 20 // 16 MiB

// EncodeFrame writes msg to w in this transport's length-prefixed wire
// format. Reference servers that don't go through Dial use this directly.
func EncodeFrame(w io.Writer, msg Message) error {
	return encodeFrame(w, msg)
}

// DecodeFrame reads one message from r in this transport's wire format.
func DecodeFrame(r io.Reader) (Message, error) {
	return decodeFrame(r)
}

func encodeFrame(w io.Writer, msg Message) error {
	env := wireEnvelope{
		ID:      msg.ID,
		CorrID:  msg.CorrID,
		HasCorr: msg.IsCorrID,
		Type:    msg.MsgType,
		Payload: msg.Payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("tcp: marshal frame: %w", err)
	}

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(body)))
	if _, err := w.Write(lenPrefix[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

func decodeFrame(r io.Reader) (Message, error) {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		return Message{}, err
	}
	size := binary.BigEndian.Uint32(lenPrefix[:])
	if size > maxFrameSize {
		return Message{}, fmt.Errorf("tcp: frame of %d bytes exceeds maximum %d", size, maxFrameSize)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return Message{}, err
	}

	var env wireEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Message{}, fmt.Errorf("tcp: unmarshal frame: %w", err)
	}

	return Message{
		BaseMessage: hibiscus.BaseMessage{ID: env.ID, CorrID: env.CorrID, IsCorrID: env.HasCorr},
		MsgType:     env.Type,
		Payload:     env.Payload,
	}, nil
}
