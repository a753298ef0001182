package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	errs "github.com/matzehuels/nestboard/pkg/errors"
	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/gesture"
	"github.com/matzehuels/nestboard/pkg/pipeline"
	"github.com/matzehuels/nestboard/pkg/session"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// Terminal cells are mapped onto screen pixels so the session's gesture
// thresholds and zoom limits behave as they do with a real pointer.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
	wheelDelta = 120.0 // one wheel notch, as browsers report it
	keyPanStep = 80.0  // pixels per arrow key press
	chromeRows = 3     // header, status and help lines
)

// Board styles
var (
	boardHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	boardCrumbStyle    = lipgloss.NewStyle().Foreground(colorGray)
	boardStatusStyle   = lipgloss.NewStyle().Foreground(colorDim)
	boardErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
	boardCardStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	boardTextCardStyle = lipgloss.NewStyle().Foreground(colorYellow)
	boardSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	boardSourceStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	boardCurveStyle    = lipgloss.NewStyle().Foreground(colorBlue)
	boardMutedStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Key Map
// =============================================================================

type boardKeyMap struct {
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Reset     key.Binding
	Fit       key.Binding
	NewCanvas key.Binding
	NewText   key.Binding
	Delete    key.Binding
	Connect   key.Binding
	Rename    key.Binding
	Enter     key.Binding
	Back      key.Binding
	Jump      key.Binding
	Next      key.Binding
	Save      key.Binding
	Quit      key.Binding
	Help      key.Binding
}

var boardKeys = boardKeyMap{
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
	ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Reset:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset view")),
	Fit:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit")),
	NewCanvas: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new folder")),
	NewText:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "new text")),
	Delete:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
	Connect:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect")),
	Rename:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
	Enter:     key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("⏎", "open")),
	Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "up")),
	Jump:      key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "breadcrumb")),
	Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next card")),
	Save:      key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewCanvas, k.NewText, k.Enter, k.Back, k.Connect, k.Save, k.Quit, k.Help}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.ZoomIn, k.ZoomOut, k.Reset, k.Fit},
		{k.NewCanvas, k.NewText, k.Rename, k.Delete, k.Connect},
		{k.Next, k.Enter, k.Back, k.Jump},
		{k.Save, k.Quit, k.Help},
	}
}

// =============================================================================
// BoardModel - Interactive canvas
// =============================================================================

type boardMode int

const (
	modeCanvas boardMode = iota
	modeRename
	modeConnect
	modeDocument
)

// BoardModel is the bubbletea model for editing a board in the terminal.
type BoardModel struct {
	sess *session.Session
	save func() error

	keys   boardKeyMap
	help   help.Model
	input  textinput.Model
	editor textarea.Model

	mode        boardMode
	connectFrom string
	width       int
	height      int
	dirty       bool
	quitting    bool
	status      string
	err         error

	now func() time.Time
}

// NewBoardModel creates a board model over sess. save persists the board;
// a nil save disables saving.
func NewBoardModel(sess *session.Session, save func() error) *BoardModel {
	input := textinput.New()
	input.Prompt = "name: "
	input.CharLimit = 120

	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.Placeholder = workspace.KindText.Spec().DefaultContent

	m := &BoardModel{
		sess:   sess,
		save:   save,
		keys:   boardKeys,
		help:   help.New(),
		input:  input,
		editor: editor,
		width:  80,
		height: 24,
		now:    time.Now,
	}
	sess.Subscribe(func(e session.Event) {
		if e.Kind == session.EventLayer {
			m.dirty = true
		}
	})
	m.resize(m.width, m.height)
	m.syncMode()
	return m
}

// Dirty reports whether the board has unsaved edits.
func (m *BoardModel) Dirty() bool { return m.dirty }

func (m *BoardModel) Init() tea.Cmd {
	return nil
}

func (m *BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		m.status, m.err = "", nil
		var cmd tea.Cmd
		switch m.mode {
		case modeRename:
			cmd = m.updateRename(msg)
		case modeDocument:
			cmd = m.updateDocument(msg)
		default:
			cmd = m.updateCanvas(msg)
		}
		m.syncMode()
		return m, cmd
	case tea.MouseMsg:
		if m.mode == modeCanvas || m.mode == modeConnect {
			m.report(m.updateMouse(msg))
			m.syncMode()
		}
		return m, nil
	}
	return m, nil
}

func (m *BoardModel) resize(w, h int) {
	m.width, m.height = w, h
	rows := max(h-chromeRows, 1)
	m.sess.SetScreen(geom.Size{Width: float64(w) * cellWidth, Height: float64(rows) * cellHeight})
	m.help.Width = w
	m.input.Width = max(w-len(m.input.Prompt)-2, 10)
	m.editor.SetWidth(w)
	m.editor.SetHeight(max(h-chromeRows, 3))
}

// syncMode opens the document editor when the active node expands into
// a document, and closes it when navigation left one.
func (m *BoardModel) syncMode() {
	doc := m.sess.Active().Kind.Spec().Expand == workspace.ExpandDocument
	switch {
	case doc && m.mode != modeDocument:
		m.mode = modeDocument
		m.editor.SetValue(m.sess.Active().Content)
		m.editor.Focus()
	case !doc && m.mode == modeDocument:
		m.mode = modeCanvas
		m.editor.Blur()
	}
}

func (m *BoardModel) updateCanvas(msg tea.KeyMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m.quit()
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.Left):
		m.sess.Pan(keyPanStep, 0)
	case key.Matches(msg, k.Right):
		m.sess.Pan(-keyPanStep, 0)
	case key.Matches(msg, k.Up):
		m.sess.Pan(0, keyPanStep)
	case key.Matches(msg, k.Down):
		m.sess.Pan(0, -keyPanStep)
	case key.Matches(msg, k.ZoomIn):
		m.sess.ZoomCenter(-wheelDelta)
	case key.Matches(msg, k.ZoomOut):
		m.sess.ZoomCenter(wheelDelta)
	case key.Matches(msg, k.Reset):
		m.sess.ResetView()
	case key.Matches(msg, k.Fit):
		m.sess.FitLayer(pipeline.FitPadding)
	case key.Matches(msg, k.NewCanvas):
		m.create(workspace.KindCanvas)
	case key.Matches(msg, k.NewText):
		m.create(workspace.KindText)
	case key.Matches(msg, k.Next):
		m.selectNext()
	case key.Matches(msg, k.Delete):
		m.deleteSelected()
	case key.Matches(msg, k.Connect):
		m.connect()
	case key.Matches(msg, k.Rename):
		return m.startRename()
	case key.Matches(msg, k.Enter):
		if id := m.sess.Selected(); id != "" {
			m.report(m.sess.Enter(id))
		}
	case key.Matches(msg, k.Back):
		if m.mode == modeConnect {
			m.mode, m.connectFrom = modeCanvas, ""
			m.status = "connect cancelled"
			return nil
		}
		m.report(m.sess.Up())
	case key.Matches(msg, k.Jump):
		m.jump(int(msg.String()[0] - '1'))
	case key.Matches(msg, k.Save):
		m.doSave()
	}
	return nil
}

func (m *BoardModel) updateRename(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		if id := m.sess.Selected(); id != "" {
			m.report(m.sess.Rename(id, m.input.Value()))
		}
		m.mode = modeCanvas
		m.input.Blur()
		return nil
	case tea.KeyEsc:
		m.mode = modeCanvas
		m.input.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *BoardModel) updateDocument(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.commitDocument()
		m.report(m.sess.Up())
		return nil
	case tea.KeyCtrlS:
		m.commitDocument()
		m.doSave()
		return nil
	case tea.KeyCtrlC:
		m.commitDocument()
		return m.quit()
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

func (m *BoardModel) commitDocument() {
	active := m.sess.Active()
	if active.Content == m.editor.Value() {
		return
	}
	m.report(m.sess.SetContent(active.ID, m.editor.Value()))
}

func (m *BoardModel) updateMouse(msg tea.MouseMsg) error {
	sx, sy, inside := m.toScreen(msg.X, msg.Y)
	at := m.now()
	switch msg.Action {
	case tea.MouseActionPress:
		if !inside {
			return nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.sess.ZoomAt(sx, sy, -wheelDelta)
		case tea.MouseButtonWheelDown:
			m.sess.ZoomAt(sx, sy, wheelDelta)
		case tea.MouseButtonLeft:
			return m.sess.Press(gesture.ButtonLeft, sx, sy, at)
		case tea.MouseButtonMiddle:
			return m.sess.Press(gesture.ButtonMiddle, sx, sy, at)
		case tea.MouseButtonRight:
			return m.sess.Press(gesture.ButtonRight, sx, sy, at)
		}
	case tea.MouseActionMotion:
		if !inside && !m.sess.Gesture().Active() {
			return nil
		}
		return m.sess.Motion(sx, sy, at)
	case tea.MouseActionRelease:
		// Releases always reach the machine so a drag that leaves the
		// board still ends.
		return m.sess.Release(sx, sy, at)
	}
	return nil
}

// toScreen maps a terminal cell to the pixel at its center. Cells outside
// the board area are clamped to its edge and report false.
func (m *BoardModel) toScreen(col, row int) (float64, float64, bool) {
	row-- // header line
	rows := max(m.height-chromeRows, 1)
	inside := row >= 0 && row < rows && col >= 0
	row = min(max(row, 0), rows-1)
	col = max(col, 0)
	return (float64(col) + 0.5) * cellWidth, (float64(row) + 0.5) * cellHeight, inside
}

func (m *BoardModel) create(kind workspace.Kind) {
	n, err := m.sess.CreateNode(kind, session.NodeOptions{})
	if err != nil {
		m.report(err)
		return
	}
	_ = m.sess.Select(n.ID)
	m.status = fmt.Sprintf("created %s", n.Name)
}

func (m *BoardModel) selectNext() {
	layer := m.sess.Layer()
	if len(layer) == 0 {
		return
	}
	next := 0
	for i, n := range layer {
		if n.ID == m.sess.Selected() {
			next = (i + 1) % len(layer)
			break
		}
	}
	_ = m.sess.Select(layer[next].ID)
}

func (m *BoardModel) deleteSelected() {
	id := m.sess.Selected()
	if id == "" {
		m.status = "nothing selected"
		return
	}
	removed, err := m.sess.Delete(id)
	if err != nil {
		m.report(err)
		return
	}
	m.status = fmt.Sprintf("deleted %d cards", len(removed))
}

// connect starts a connection from the selected card, or completes one
// when a source is already marked.
func (m *BoardModel) connect() {
	id := m.sess.Selected()
	if id == "" {
		m.status = "select a card first"
		return
	}
	if m.mode != modeConnect {
		m.mode, m.connectFrom = modeConnect, id
		m.status = "select the target card and press c again"
		return
	}
	from := m.connectFrom
	m.mode, m.connectFrom = modeCanvas, ""
	if _, err := m.sess.Connect(from, id); err != nil {
		m.report(err)
		return
	}
	m.status = "connected"
}

func (m *BoardModel) startRename() tea.Cmd {
	id := m.sess.Selected()
	if id == "" {
		m.status = "select a card first"
		return nil
	}
	n, ok := m.sess.Tree().Node(id)
	if !ok {
		return nil
	}
	m.mode = modeRename
	m.input.SetValue(n.Name)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *BoardModel) jump(i int) {
	crumbs := m.sess.Breadcrumbs()
	if i < 0 || i >= len(crumbs) || crumbs[i].ID == m.sess.ActiveID() {
		return
	}
	m.report(m.sess.GoToAncestor(crumbs[i].ID))
}

func (m *BoardModel) doSave() {
	if m.save == nil {
		m.status = "saving is disabled"
		return
	}
	if err := m.save(); err != nil {
		m.err = err
		return
	}
	m.dirty = false
	m.status = "saved"
}

func (m *BoardModel) quit() tea.Cmd {
	if m.dirty && m.save != nil {
		if err := m.save(); err != nil {
			m.err = err
			return nil
		}
		m.dirty = false
	}
	m.quitting = true
	return tea.Quit
}

func (m *BoardModel) report(err error) {
	if err != nil {
		m.err = err
	}
}

// =============================================================================
// View
// =============================================================================

func (m *BoardModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	switch m.mode {
	case modeDocument:
		b.WriteString(m.editor.View())
		b.WriteString("\n")
		b.WriteString(m.statusView())
		b.WriteString("\n")
		b.WriteString(boardStatusStyle.Render("esc close · ctrl+s save · ctrl+c quit"))
		return b.String()
	default:
		b.WriteString(m.boardView())
		b.WriteString("\n")
	}

	if m.mode == modeRename {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(m.statusView())
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *BoardModel) headerView() string {
	crumbs := m.sess.Breadcrumbs()
	parts := make([]string, len(crumbs))
	for i, c := range crumbs {
		label := fmt.Sprintf("%d %s", i+1, c.Title)
		if i == len(crumbs)-1 {
			parts[i] = boardHeaderStyle.Render(label)
		} else {
			parts[i] = boardCrumbStyle.Render(label)
		}
	}
	left := strings.Join(parts, boardMutedStyle.Render(" › "))
	right := boardMutedStyle.Render(fmt.Sprintf("%d%%", int(m.sess.View().Scale*100+0.5)))
	if m.dirty {
		right = StyleWarning.Render("● ") + right
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m *BoardModel) statusView() string {
	if m.err != nil {
		return boardErrorStyle.Render(iconError + " " + errs.UserMessage(m.err))
	}
	if m.status != "" {
		return boardStatusStyle.Render(m.status)
	}
	return ""
}

func (m *BoardModel) boardView() string {
	rows := max(m.height-chromeRows, 1)
	g := newCellGrid(m.width, rows)
	for _, lc := range m.sess.Curves() {
		g.drawCurve(m.sess, lc)
	}
	for _, n := range m.sess.Layer() {
		style := boardCardStyle
		if n.Kind == workspace.KindText {
			style = boardTextCardStyle
		}
		switch n.ID {
		case m.connectFrom:
			style = boardSourceStyle
		case m.sess.Selected():
			style = boardSelectedStyle
		}
		g.drawCard(m.sess, n, style)
	}
	return g.String()
}
