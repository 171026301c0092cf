package handle

import (
	"github.com/wippyai/anycodec/external"
	"github.com/wippyai/anycodec/reflection"
)

// Slot is a position in a backend. Slot 0 is reserved and always invalid.
type Slot uint32

// EventType identifies a handle lifecycle notification.
type EventType uint8

const (
	EventMinted EventType = iota
	EventReleased
	EventRefined
)

func (t EventType) String() string {
	switch t {
	case EventMinted:
		return "minted"
	case EventReleased:
		return "released"
	case EventRefined:
		return "refined"
	}
	return "unknown"
}

// Event describes one handle lifecycle change.
type Event struct {
	Ref    reflection.ObjectRef
	Handle external.Handle
	TypeID string
	Type   EventType
}

// Observer receives handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// Backend stores object references by slot.
type Backend interface {
	// Create stores ref with its known type and returns its slot.
	Create(typeID string, ref reflection.ObjectRef) (Slot, error)

	// Get returns the reference in a slot.
	Get(slot Slot) (reflection.ObjectRef, bool)

	// Drop frees a slot and returns the reference it held.
	Drop(slot Slot) (reflection.ObjectRef, bool)

	// Close frees every slot.
	Close() error
}

// Releaser is optionally implemented by references that hold resources
// to be freed when their handle is released.
type Releaser interface {
	Release()
}
