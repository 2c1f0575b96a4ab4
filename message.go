package hibiscus

import "github.com/google/uuid"

// ID is the 128-bit opaque identifier every Message carries.
type ID = uuid.UUID

// NewID returns a fresh unique ID. Concrete transports use this for both
// request IDs and correlation IDs; two distinct in-flight requests on the
// same Transport must never share one.
func NewID() ID {
	return uuid.New()
}

// ZeroID is the identifier's zero value, never assigned to a real message.
var ZeroID ID

// Message is the unit the core moves around. Payloads are opaque to the
// core — it only ever looks at the ID and the correlation predicate.
type Message interface {
	// MessageID returns this message's unique ID.
	MessageID() ID

	// IsResponseFor reports whether this message is a response correlated
	// to other. A request always returns false.
	IsResponseFor(other Message) bool
}

// ResponseMessage narrows Message for responses that expose the id of the
// request they answer. Not every correlated message needs this — transports
// are free to correlate however they like — but it is the common case and
// BaseMessage implements it directly.
type ResponseMessage interface {
	Message
	CorrelationID() ID
}

// BaseMessage is an embeddable implementation of the common case: a message
// with its own ID and, for responses, a CorrelationID equal to the ID of
// the request it answers. Concrete wire message types embed BaseMessage to
// get IsResponseFor and CorrelationID for free.
type BaseMessage struct {
	ID       ID
	CorrID   ID
	IsCorrID bool // true once CorrID has been set to something meaningful
}

// MessageID implements Message.
func (m BaseMessage) MessageID() ID { return m.ID }

// CorrelationID implements ResponseMessage.
func (m BaseMessage) CorrelationID() ID { return m.CorrID }

// IsResponseFor implements Message. A BaseMessage with no correlation id
// set is a request and is never a response to anything.
func (m BaseMessage) IsResponseFor(other Message) bool {
	if !m.IsCorrID {
		return false
	}
	return m.CorrID == other.MessageID()
}

// NewRequest returns a BaseMessage suitable for an outgoing request: a
// fresh ID and no correlation id.
func NewRequest() BaseMessage {
	return BaseMessage{ID: NewID()}
}

// NewResponseTo returns a BaseMessage suitable for a response to req: a
// fresh ID of its own, correlated back to req's ID.
func NewResponseTo(req Message) BaseMessage {
	return BaseMessage{ID: NewID(), CorrID: req.MessageID(), IsCorrID: true}
}

// ReadOutcomeKind distinguishes the three shapes Transport.Receive can
// return.
type ReadOutcomeKind int

const (
	// ReadNothing means the receive timeout elapsed with no data.
	ReadNothing ReadOutcomeKind = iota
	// ReadReceived means an uncorrelated message arrived.
	ReadReceived
	// ReadResponse means a message arrived that the transport was able to
	// pair with a previously sent request.
	ReadResponse
)

func (k ReadOutcomeKind) String() string {
	switch k {
	case ReadNothing:
		return "Nothing"
	case ReadReceived:
		return "Received"
	case ReadResponse:
		return "Response"
	default:
		return "ReadOutcomeKind(?)"
	}
}

// ReadOutcome is the result of one Transport.Receive call.
type ReadOutcome struct {
	Kind ReadOutcomeKind

	// Message holds the uncorrelated message for ReadReceived.
	Message Message

	// Original and Response hold the paired request/response for
	// ReadResponse. A transport that never correlates internally may
	// always return ReadReceived instead — that is a valid minimal
	// implementation per the transport contract.
	Original Message
	Response Message
}

// Nothing is the ReadOutcome for a timed-out receive.
func Nothing() ReadOutcome {
	return ReadOutcome{Kind: ReadNothing}
}

// Received wraps an uncorrelated arrival.
func Received(m Message) ReadOutcome {
	return ReadOutcome{Kind: ReadReceived, Message: m}
}

// Response wraps a correlated arrival.
func Response(original, response Message) ReadOutcome {
	return ReadOutcome{Kind: ReadResponse, Original: original, Response: response}
}
