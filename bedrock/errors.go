package bedrock

import (
	"errors"
	"fmt"
)

// ErrSessionClosed is returned by commands and subscriptions issued on a
// session after it closed, and delivered to every waiter still pending
// when the session goes away.
var ErrSessionClosed = errors.New("bedrock: session closed")

// CommandError reports a command the client executed and rejected:
// the response carried a non-zero statusCode. The session survives.
type CommandError struct {
	// Code is the statusCode from the response body.
	Code int
	// Message is the statusMessage from the response body.
	Message string
	// Command is the original command line.
	Command string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %s (code=%d)", e.Command, e.Message, e.Code)
}

// CommandTimeoutError reports a command that received no response within
// the command timeout. The pending entry is removed; a late reply is
// discarded. The session survives.
type CommandTimeoutError struct {
	Command string
}

func (e *CommandTimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out", e.Command)
}

// SubscriptionError reports a subscribe or unsubscribe that could not be
// transmitted. The subscription set is left unchanged.
type SubscriptionError struct {
	Event string
	Err   error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription for %q failed: %v", e.Event, e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

// IsCommandError reports whether err carries a *CommandError and returns
// it when so.
func IsCommandError(err error) (*CommandError, bool) {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr, true
	}
	return nil, false
}
