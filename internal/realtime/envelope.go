package realtime

import (
	"encoding/json"
	"strings"
)

// Frame is the wire unit exchanged over a socket: an event name plus
// an arbitrary JSON payload. Outbound emission uses
// "<prefix>:<eventType>" names; inbound delivery happens on the bare
// "<prefix>" channel.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Envelope wraps a payload delivered on a bare prefix channel so the
// receiver can tell which event type produced it.
type Envelope struct {
	EventType string          `json:"eventType"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// SplitEvent separates "prefix:eventType" into its parts. A name
// without a colon is all prefix.
func SplitEvent(name string) (prefix, eventType string) {
	if i := strings.Index(name, ":"); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

// unwrapPayload returns the data sub-field when raw is an envelope,
// i.e. a JSON object whose eventType field is a non-empty string.
// Anything else is forwarded unchanged.
func unwrapPayload(raw json.RawMessage) json.RawMessage {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.EventType != "" {
		return env.Data
	}
	return raw
}
