package enums

import "fmt"

// MessageKind separates peer messages from system alerts by an explicit tag
// instead of a reserved sender id.
type MessageKind string

const (
	MessageKindPeer   MessageKind = "peer"
	MessageKindSystem MessageKind = "system"
)

var validMessageKinds = []MessageKind{
	MessageKindPeer,
	MessageKindSystem,
}

// IsValid reports whether the value is a known MessageKind.
func (m MessageKind) IsValid() bool {
	for _, candidate := range validMessageKinds {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMessageKind converts raw input into a MessageKind.
func ParseMessageKind(value string) (MessageKind, error) {
	for _, candidate := range validMessageKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid message kind %q", value)
}
