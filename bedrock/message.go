// Package bedrock implements the Minecraft Bedrock Edition websocket
// protocol on top of the transport in package websocket.
//
// A game client connects with /wsserver (or /connect) and then multiplexes
// three logical streams over the one connection: asynchronous events the
// server subscribed to, correlated command request/response exchanges, and
// subscription control. Every message is a UTF-8 JSON envelope with a
// header and a body; the header's messagePurpose selects the routing.
package bedrock

import (
	"encoding/json"

	"github.com/gravitational/trace"
)

// ProtocolVersion is the header and command body version the Bedrock
// client speaks.
const ProtocolVersion = 1

// MessagePurpose routes an envelope. Outbound purposes are
// commandRequest, subscribe and unsubscribe; inbound are commandResponse,
// event and error.
type MessagePurpose string

const (
	PurposeCommandRequest  MessagePurpose = "commandRequest"
	PurposeCommandResponse MessagePurpose = "commandResponse"
	PurposeEvent           MessagePurpose = "event"
	PurposeError           MessagePurpose = "error"
	PurposeSubscribe       MessagePurpose = "subscribe"
	PurposeUnsubscribe     MessagePurpose = "unsubscribe"
)

// messageTypeCommandRequest is the messageType the client expects on every
// server-initiated envelope, subscriptions included.
const messageTypeCommandRequest = "commandRequest"

// Header is the envelope header common to every message.
type Header struct {
	Version        int            `json:"version"`
	RequestID      string         `json:"requestId"`
	MessagePurpose MessagePurpose `json:"messagePurpose"`
	MessageType    string         `json:"messageType,omitempty"`
}

// Message is a decoded inbound envelope. The body stays raw until the
// purpose-specific router knows its shape; unknown fields are ignored.
type Message struct {
	Header Header          `json:"header"`
	Body   json.RawMessage `json:"body"`
}

// decodeMessage parses and shape-checks one inbound envelope: it must be
// a JSON object whose header carries a messagePurpose string. Anything
// else is an envelope error; the caller logs and drops it, the connection
// survives.
func decodeMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, trace.BadParameter("invalid JSON envelope: %v", err)
	}
	if msg.Header.MessagePurpose == "" {
		return nil, trace.BadParameter("envelope header has no messagePurpose")
	}
	return &msg, nil
}

// CommandOrigin identifies who a command runs as. The websocket server
// always issues commands as the connected player.
type CommandOrigin struct {
	Type string `json:"type"`
}

// commandRequestBody is the body of an outbound commandRequest.
type commandRequestBody struct {
	Version     int           `json:"version"`
	CommandLine string        `json:"commandLine"`
	Origin      CommandOrigin `json:"origin"`
}

// subscriptionBody is the body of an outbound subscribe or unsubscribe.
type subscriptionBody struct {
	EventName string `json:"eventName"`
}

// statusBody is the body shared by commandResponse and error envelopes.
// statusCode zero means success.
type statusBody struct {
	StatusCode    int    `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

// eventBody is the body of an inbound event envelope.
type eventBody struct {
	EventName  string         `json:"eventName"`
	Properties map[string]any `json:"properties"`
}

// commandRequestMessage and subscriptionMessage are the only two envelope
// shapes this server emits. They carry exactly the documented fields.
type commandRequestMessage struct {
	Header Header             `json:"header"`
	Body   commandRequestBody `json:"body"`
}

type subscriptionMessage struct {
	Header Header           `json:"header"`
	Body   subscriptionBody `json:"body"`
}

// encodeCommandRequest builds the commandRequest envelope for one command
// line.
func encodeCommandRequest(requestID, commandLine string) ([]byte, error) {
	msg := commandRequestMessage{
		Header: Header{
			Version:        ProtocolVersion,
			RequestID:      requestID,
			MessagePurpose: PurposeCommandRequest,
			MessageType:    messageTypeCommandRequest,
		},
		Body: commandRequestBody{
			Version:     ProtocolVersion,
			CommandLine: commandLine,
			Origin:      CommandOrigin{Type: "player"},
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return data, nil
}

// encodeSubscription builds a subscribe or unsubscribe envelope for one
// event name.
func encodeSubscription(purpose MessagePurpose, requestID, eventName string) ([]byte, error) {
	msg := subscriptionMessage{
		Header: Header{
			Version:        ProtocolVersion,
			RequestID:      requestID,
			MessagePurpose: purpose,
			MessageType:    messageTypeCommandRequest,
		},
		Body: subscriptionBody{EventName: eventName},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return data, nil
}
