package gesture

import (
	"math"
	"time"
)

// Event is a pointer event fed to [Machine.Handle].
type Event interface{ isEvent() }

// Down is a button press.
type Down struct {
	Button Button
	Target Target
	X, Y   float64
	At     time.Time
}

// Move is a pointer motion. Motion while idle is ignored.
type Move struct {
	X, Y float64
	At   time.Time
}

// Up is a button release.
type Up struct {
	X, Y float64
	At   time.Time
}

// Cancel drops the current gesture, as when pointer capture is lost.
type Cancel struct{}

func (Down) isEvent()   {}
func (Move) isEvent()   {}
func (Up) isEvent()     {}
func (Cancel) isEvent() {}

type click struct {
	target Target
	x, y   float64
	at     time.Time
}

// Machine is the pointer gesture state machine. It is not safe for
// concurrent use.
type Machine struct {
	cfg Config

	state  State
	mode   Mode
	button Button
	target Target
	startX float64
	startY float64
	lastX  float64
	lastY  float64

	lastClick *click
}

// New returns an idle machine. An invalid config falls back to the
// defaults.
func New(cfg Config) *Machine {
	if cfg.Validate() != nil {
		cfg = DefaultConfig()
	}
	return &Machine{cfg: cfg}
}

// Config returns the active thresholds.
func (m *Machine) Config() Config { return m.cfg }

// State returns the current phase.
func (m *Machine) State() State { return m.state }

// Mode returns the mode of the active gesture, or ModeNone when idle.
func (m *Machine) Mode() Mode { return m.mode }

// Target returns the target of the active gesture.
func (m *Machine) Target() Target { return m.target }

// Active reports whether a pointer is currently captured.
func (m *Machine) Active() bool { return m.state != StateIdle }

// Handle feeds one event and returns the resulting actions.
func (m *Machine) Handle(ev Event) []Action {
	switch e := ev.(type) {
	case Down:
		return m.down(e)
	case Move:
		return m.move(e)
	case Up:
		return m.up(e)
	case Cancel:
		return m.Cancel()
	}
	return nil
}

func (m *Machine) down(e Down) []Action {
	if m.state != StateIdle {
		return nil
	}
	mode := ModeFor(e.Button, e.Target)
	if mode == ModeNone {
		return nil
	}
	m.state = StatePointerDown
	m.mode = mode
	m.button = e.Button
	m.target = e.Target
	m.startX, m.startY = e.X, e.Y
	m.lastX, m.lastY = e.X, e.Y
	return nil
}

func (m *Machine) move(e Move) []Action {
	switch m.state {
	case StateIdle:
		return nil
	case StatePointerDown:
		if math.Hypot(e.X-m.startX, e.Y-m.startY) <= m.cfg.DeadZone {
			return nil
		}
		m.state = StateDragging
		// A drag breaks any pending double-click.
		m.lastClick = nil
	}
	if e.X == m.lastX && e.Y == m.lastY {
		return nil
	}
	a := Action{
		Kind:   m.dragKind(),
		Mode:   m.mode,
		Target: m.target,
		DX:     e.X - m.lastX,
		DY:     e.Y - m.lastY,
		X:      e.X,
		Y:      e.Y,
	}
	m.lastX, m.lastY = e.X, e.Y
	return []Action{a}
}

func (m *Machine) dragKind() ActionKind {
	switch m.mode {
	case ModeDrag:
		return ActionDragBy
	case ModeResize:
		return ActionResizeBy
	default:
		return ActionPanBy
	}
}

func (m *Machine) up(e Up) []Action {
	var out []Action
	switch m.state {
	case StateIdle:
		return nil
	case StateDragging:
		out = append(out, Action{Kind: ActionEnd, Mode: m.mode, Target: m.target, X: e.X, Y: e.Y})
	case StatePointerDown:
		if m.button == ButtonLeft {
			out = append(out, m.click(e))
		}
	}
	m.reset()
	return out
}

func (m *Machine) click(e Up) Action {
	a := Action{Kind: ActionClick, Mode: m.mode, Target: m.target, X: e.X, Y: e.Y}
	if p := m.lastClick; p != nil &&
		p.target == m.target &&
		e.At.Sub(p.at) <= m.cfg.DoubleClickInterval &&
		math.Hypot(e.X-p.x, e.Y-p.y) <= m.cfg.DoubleClickDistance {
		a.Kind = ActionDoubleClick
		m.lastClick = nil
		return a
	}
	m.lastClick = &click{target: m.target, x: e.X, y: e.Y, at: e.At}
	return a
}

// Cancel drops the active gesture. A gesture that had turned into a drag
// is closed with an End action so callers can finalize it.
func (m *Machine) Cancel() []Action {
	var out []Action
	if m.state == StateDragging {
		out = append(out, Action{Kind: ActionEnd, Mode: m.mode, Target: m.target, X: m.lastX, Y: m.lastY})
	}
	m.reset()
	m.lastClick = nil
	return out
}

func (m *Machine) reset() {
	m.state = StateIdle
	m.mode = ModeNone
	m.button = ButtonLeft
	m.target = Target{}
}
