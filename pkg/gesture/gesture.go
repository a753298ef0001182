package gesture

import (
	"fmt"
	"math"
	"time"
)

// Default thresholds.
const (
	DefaultDeadZone            = 4.0 // pixels
	DefaultDoubleClickInterval = 400 * time.Millisecond
	DefaultDoubleClickDistance = 4.0 // pixels
)

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	}
	return fmt.Sprintf("Button(%d)", int(b))
}

// TargetKind classifies what was under the pointer when it went down.
type TargetKind int

const (
	TargetBackground TargetKind = iota
	TargetNode
	TargetResizeHandle
	TargetInteractive
)

// Target is the hit-test result for a pointer event.
type Target struct {
	Kind TargetKind
	ID   string // empty for the background
}

// Background is the empty canvas.
func Background() Target { return Target{Kind: TargetBackground} }

// Node is the body of the card with the given ID.
func Node(id string) Target { return Target{Kind: TargetNode, ID: id} }

// ResizeHandle is the resize grip of the card with the given ID.
func ResizeHandle(id string) Target { return Target{Kind: TargetResizeHandle, ID: id} }

// Interactive is editable content inside a card. It never starts a gesture.
func Interactive(id string) Target { return Target{Kind: TargetInteractive, ID: id} }

func (t Target) String() string {
	switch t.Kind {
	case TargetBackground:
		return "background"
	case TargetNode:
		return "node(" + t.ID + ")"
	case TargetResizeHandle:
		return "resize(" + t.ID + ")"
	case TargetInteractive:
		return "interactive(" + t.ID + ")"
	}
	return fmt.Sprintf("Target(%d, %s)", int(t.Kind), t.ID)
}

// Mode is what an active gesture does once it turns into a drag.
type Mode int

const (
	ModeNone Mode = iota
	ModePan
	ModeDrag
	ModeResize
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModePan:
		return "pan"
	case ModeDrag:
		return "drag"
	case ModeResize:
		return "resize"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// State is the phase of the machine.
type State int

const (
	StateIdle State = iota
	StatePointerDown
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePointerDown:
		return "pointer-down"
	case StateDragging:
		return "dragging"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ActionKind is the kind of output produced by the machine.
type ActionKind int

const (
	ActionPanBy ActionKind = iota
	ActionDragBy
	ActionResizeBy
	ActionClick
	ActionDoubleClick
	ActionEnd
)

func (k ActionKind) String() string {
	switch k {
	case ActionPanBy:
		return "pan-by"
	case ActionDragBy:
		return "drag-by"
	case ActionResizeBy:
		return "resize-by"
	case ActionClick:
		return "click"
	case ActionDoubleClick:
		return "double-click"
	case ActionEnd:
		return "end"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action is one instruction for the session. DX and DY are screen pixels
// since the previous action of the same gesture. X and Y are the pointer
// position that produced the action.
type Action struct {
	Kind   ActionKind
	Mode   Mode
	Target Target
	DX, DY float64
	X, Y   float64
}

// Config holds the machine thresholds.
type Config struct {
	DeadZone            float64       `toml:"dead_zone"`
	DoubleClickInterval time.Duration `toml:"double_click_interval"`
	DoubleClickDistance float64       `toml:"double_click_distance"`
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		DeadZone:            DefaultDeadZone,
		DoubleClickInterval: DefaultDoubleClickInterval,
		DoubleClickDistance: DefaultDoubleClickDistance,
	}
}

// Validate reports thresholds that would make gestures unusable.
func (c Config) Validate() error {
	if c.DeadZone < 0 || math.IsNaN(c.DeadZone) {
		return fmt.Errorf("dead zone must be >= 0, got %v", c.DeadZone)
	}
	if c.DoubleClickInterval < 0 {
		return fmt.Errorf("double-click interval must be >= 0, got %v", c.DoubleClickInterval)
	}
	if c.DoubleClickDistance < 0 || math.IsNaN(c.DoubleClickDistance) {
		return fmt.Errorf("double-click distance must be >= 0, got %v", c.DoubleClickDistance)
	}
	return nil
}

// ModeFor returns the gesture a press of b on t would start, or ModeNone
// when the press is ignored.
func ModeFor(b Button, t Target) Mode {
	if b == ButtonRight || t.Kind == TargetInteractive {
		return ModeNone
	}
	if b == ButtonMiddle {
		return ModePan
	}
	switch t.Kind {
	case TargetBackground:
		return ModePan
	case TargetNode:
		return ModeDrag
	case TargetResizeHandle:
		return ModeResize
	}
	return ModeNone
}
