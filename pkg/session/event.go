package session

import (
	"fmt"

	"github.com/matzehuels/nestboard/pkg/viewport"
)

// EventKind classifies session events.
type EventKind int

const (
	// EventView is emitted after the live view changed (pan, zoom, resize).
	EventView EventKind = iota
	// EventLayer is emitted after the content of the active layer changed.
	EventLayer
	// EventNavigate is emitted after the active node changed.
	EventNavigate
)

func (k EventKind) String() string {
	switch k {
	case EventView:
		return "view"
	case EventLayer:
		return "layer"
	case EventNavigate:
		return "navigate"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Event describes a change to the session. Active and View always carry
// the state after the change.
type Event struct {
	Kind   EventKind          `json:"kind"`
	Op     string             `json:"op,omitempty"`
	NodeID string             `json:"node,omitempty"`
	Active string             `json:"active"`
	View   viewport.ViewState `json:"view"`
}
