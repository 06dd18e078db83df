package model

import (
	"encoding/json"
	"net/url"
)

// Command is an xAPI command invocation, built once per run from the command string.
type Command struct {
	// Name is the dot separated command name, e.g. Audio.Volume.Set
	Name string `json:"command"`

	// Arguments are the optional command parameters.
	Arguments Arguments `json:"arguments,omitempty"`
}

// Path returns the command name escaped for the xAPI command URL path.
func (c *Command) Path() string {
	return url.PathEscape(c.Name)
}

// CommandPayload is the request body of an xAPI command.
type CommandPayload struct {
	DeviceID  string    `json:"deviceId"`
	Arguments Arguments `json:"arguments,omitempty"`
}

// Payload returns the request body to run the command on the given device,
// arguments are left out when there are none.
func (c *Command) Payload(deviceID string) CommandPayload {
	p := CommandPayload{DeviceID: deviceID}
	if len(c.Arguments) > 0 {
		p.Arguments = c.Arguments
	}

	return p
}

// ArgumentsJSON returns the command arguments as compact JSON, an empty string is returned when there are none.
func (c *Command) ArgumentsJSON() string {
	if len(c.Arguments) == 0 {
		return ""
	}

	b, err := json.Marshal(c.Arguments)
	if err != nil {
		return err.Error()
	}

	return string(b)
}
