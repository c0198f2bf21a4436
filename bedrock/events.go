package bedrock

import (
	"encoding/json"

	"github.com/gravitational/trace"
)

// Event is the decoded view of one inbound event envelope.
type Event struct {
	// Name is the event name the client reported, e.g. "PlayerMessage".
	Name string
	// Properties is the event's property bag. Keys and value types vary
	// per event; see the typed views below for common events.
	Properties map[string]any
}

// parseEvent extracts the event from an envelope with purpose "event".
func parseEvent(msg *Message) (*Event, error) {
	var body eventBody
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		return nil, trace.BadParameter("invalid event body: %v", err)
	}
	if body.EventName == "" {
		return nil, trace.BadParameter("event body has no eventName")
	}
	return &Event{Name: body.EventName, Properties: body.Properties}, nil
}

// StringProperty returns the named property as a string, or "" when it is
// absent or not a string.
func (e *Event) StringProperty(name string) string {
	s, _ := e.Properties[name].(string)
	return s
}

// IntProperty returns the named property as an int, or 0 when absent.
// JSON numbers decode as float64, so the value is truncated.
func (e *Event) IntProperty(name string) int {
	f, _ := e.Properties[name].(float64)
	return int(f)
}

// PlayerMessage is the typed view of a PlayerMessage event.
type PlayerMessage struct {
	// Sender is the name of the player who sent the message.
	Sender string
	// Message is the chat text.
	Message string
	// Type is the message kind, e.g. "chat".
	Type string
}

// PlayerMessage projects the event's properties into the PlayerMessage
// view. Meaningful only for events named EventPlayerMessage.
func (e *Event) PlayerMessage() PlayerMessage {
	return PlayerMessage{
		Sender:  e.StringProperty("Sender"),
		Message: e.StringProperty("Message"),
		Type:    e.StringProperty("MessageType"),
	}
}
