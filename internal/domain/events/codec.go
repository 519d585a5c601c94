package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownEvent is returned for messages with an unrecognised type.
	ErrUnknownEvent = errors.New("unknown event type")
	// ErrInvalidEvent is returned for messages that fail to decode or validate.
	ErrInvalidEvent = errors.New("invalid event")
)

type envelope struct {
	Type  Type     `json:"type"`
	Width *float64 `json:"width,omitempty"`
	ID    *string  `json:"id,omitempty"`
}

// Decode parses a client message such as {"type":"resize","width":640}.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	switch env.Type {
	case TypeResize:
		if env.Width == nil || *env.Width <= 0 {
			return nil, fmt.Errorf("%w: resize needs a positive width", ErrInvalidEvent)
		}
		return Resize{Width: *env.Width}, nil
	case TypeSection:
		if env.ID == nil || *env.ID == "" {
			return nil, fmt.Errorf("%w: section needs an id", ErrInvalidEvent)
		}
		return SectionChange{ID: *env.ID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
}

// Encode renders e in the client message format.
func Encode(e Event) ([]byte, error) {
	switch ev := e.(type) {
	case Resize:
		return json.Marshal(envelope{Type: TypeResize, Width: &ev.Width})
	case SectionChange:
		return json.Marshal(envelope{Type: TypeSection, ID: &ev.ID})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEvent, e)
	}
}
