package session

import (
	"io"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/nestboard/pkg/errors"
	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/gesture"
	"github.com/matzehuels/nestboard/pkg/viewport"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// DefaultSpawnOffset is subtracted from the view center when placing new
// cards, so a default-sized card appears roughly centered.
var DefaultSpawnOffset = geom.Point{X: 100, Y: 75}

// DefaultScreen is the screen size assumed until SetScreen is called.
var DefaultScreen = geom.Size{Width: 1280, Height: 800}

// Crumb is one entry of the navigation trail.
type Crumb struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Session is an editing session. Use New to create one.
type Session struct {
	tree     *workspace.Tree
	vp       *viewport.Viewport
	gestures *gesture.Machine
	logger   *log.Logger

	stack  []Crumb
	active string

	screen      geom.Size
	spawnOffset geom.Point
	selected    string

	listeners  []func(Event)
	navigating bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPolicy sets the zoom policy. Invalid policies are ignored.
func WithPolicy(p viewport.Policy) Option {
	return func(s *Session) { _ = s.vp.SetPolicy(p) }
}

// WithGestureConfig sets the pointer thresholds.
func WithGestureConfig(c gesture.Config) Option {
	return func(s *Session) { s.gestures = gesture.New(c) }
}

// WithScreen sets the initial screen size.
func WithScreen(size geom.Size) Option {
	return func(s *Session) { s.SetScreen(size) }
}

// WithSpawnOffset overrides DefaultSpawnOffset.
func WithSpawnOffset(p geom.Point) Option {
	return func(s *Session) { s.spawnOffset = p }
}

// WithListener registers fn to receive session events.
func WithListener(fn func(Event)) Option {
	return func(s *Session) { s.Subscribe(fn) }
}

// New starts a session on tree with the root active. A nil tree starts an
// empty workspace.
func New(tree *workspace.Tree, opts ...Option) *Session {
	if tree == nil {
		tree = workspace.New()
	}
	s := &Session{
		tree:        tree,
		vp:          viewport.New(viewport.DefaultPolicy()),
		gestures:    gesture.New(gesture.DefaultConfig()),
		logger:      log.NewWithOptions(io.Discard, log.Options{}),
		active:      workspace.RootID,
		screen:      DefaultScreen,
		spawnOffset: DefaultSpawnOffset,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restoreView(tree.Root())
	return s
}

// Tree returns the underlying tree. Structural edits should go through the
// session so that listeners and the active view stay consistent.
func (s *Session) Tree() *workspace.Tree { return s.tree }

// Logger returns the session logger.
func (s *Session) Logger() *log.Logger { return s.logger }

// Active returns the node whose children are currently shown.
func (s *Session) Active() *workspace.Node {
	n, _ := s.tree.Node(s.active)
	return n
}

// ActiveID returns the ID of the active node.
func (s *Session) ActiveID() string { return s.active }

// Layer returns the children of the active node in drawing order.
func (s *Session) Layer() []*workspace.Node {
	nodes, _ := s.tree.Children(s.active)
	return nodes
}

// Selected returns the ID of the last clicked card, or "".
func (s *Session) Selected() string { return s.selected }

// Select marks id as the current card. An empty id clears the selection.
func (s *Session) Select(id string) error {
	if id != "" {
		n, ok := s.tree.Node(id)
		if !ok {
			return errs.New(errs.ErrCodeNodeNotFound, "node %q does not exist", id)
		}
		if n.Parent() != s.active {
			return errs.New(errs.ErrCodeNotAChild, "node %q is not in the active layer", id)
		}
	}
	s.selected = id
	return nil
}

// Subscribe registers fn to receive events. Listeners run synchronously on
// the calling goroutine.
func (s *Session) Subscribe(fn func(Event)) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

func (s *Session) emit(e Event) {
	e.Active = s.active
	e.View = s.vp.State()
	for _, fn := range s.listeners {
		fn(e)
	}
}

// Flush writes the live view into the active node so that the tree alone
// describes the whole session, e.g. before taking a snapshot.
func (s *Session) Flush() {
	_ = s.tree.SaveView(s.active, s.vp.State())
}
