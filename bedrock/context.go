package bedrock

import (
	"context"
	"fmt"
)

// Context is the immutable snapshot handed to an event handler: the
// decoded event, the raw envelope for anything the decoded view misses,
// and the session the event arrived on.
//
// A Context borrows its session for the duration of the handler call;
// handlers must not retain it past their own return.
type Context struct {
	session *Session

	// Event is the decoded event.
	Event *Event

	// Raw is the full envelope the event arrived in.
	Raw *Message
}

// Session returns the owning session.
func (c *Context) Session() *Session {
	return c.session
}

// Reply sends a chat message back to the player via the say command.
func (c *Context) Reply(ctx context.Context, message string) (*CommandResponse, error) {
	return c.RunCommand(ctx, fmt.Sprintf("say %s", message))
}

// RunCommand executes a command on the client that produced this event.
func (c *Context) RunCommand(ctx context.Context, commandLine string) (*CommandResponse, error) {
	return c.session.RunCommand(ctx, commandLine)
}

// Subscribe adds an event subscription on the owning session.
func (c *Context) Subscribe(event string) error {
	return c.session.Subscribe(event)
}

// Unsubscribe removes an event subscription on the owning session.
func (c *Context) Unsubscribe(event string) error {
	return c.session.Unsubscribe(event)
}

// String identifies the context in logs.
func (c *Context) String() string {
	return fmt.Sprintf("Context(event=%s, session=%s)", c.Event.Name, c.session.ID())
}
