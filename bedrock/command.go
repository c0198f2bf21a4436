package bedrock

import (
	"encoding/json"
	"strings"
)

// CommandResponse is a successful reply to RunCommand.
type CommandResponse struct {
	// Code is the statusCode from the response body, zero on success.
	Code int
	// Message is the statusMessage from the response body.
	Message string
	// Raw is the whole response envelope, for fields the typed view does
	// not carry.
	Raw *Message
}

// commandResponseFrom extracts the typed view from a commandResponse or
// error envelope.
func commandResponseFrom(msg *Message) (*CommandResponse, error) {
	var body statusBody
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		return nil, err
	}
	return &CommandResponse{
		Code:    body.StatusCode,
		Message: body.StatusMessage,
		Raw:     msg,
	}, nil
}

// Command is a parsed command line: the command name and the remainder.
type Command struct {
	Name string
	Args string
}

// ParseCommand splits a command line into its name and arguments.
func ParseCommand(commandLine string) Command {
	parts := strings.SplitN(strings.TrimSpace(commandLine), " ", 2)
	cmd := Command{Name: parts[0]}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// String reassembles the command line.
func (c Command) String() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + " " + c.Args
}
