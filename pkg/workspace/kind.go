package workspace

import (
	"fmt"
	"html"
	"strings"
)

// Kind is the closed set of element kinds.
type Kind int

const (
	// KindRoot is reserved for the permanent tree origin.
	KindRoot Kind = iota
	// KindCanvas is a card whose inside is another infinite canvas.
	KindCanvas
	// KindText is a note card whose inside is a document editor.
	KindText
)

// Expand describes what takes over the view when a node is entered.
type Expand int

const (
	// ExpandCanvas shows the node's children on a pannable canvas.
	ExpandCanvas Expand = iota
	// ExpandDocument shows the node's content in an editor. Such nodes
	// cannot hold children.
	ExpandDocument
)

// Spec holds the fixed per-kind defaults.
type Spec struct {
	Name           string // configuration and wire name
	Label          string // menu label
	Icon           string
	DefaultName    string
	DefaultContent string
	Expand         Expand
}

// Spec returns the fixed defaults for k.
func (k Kind) Spec() Spec {
	switch k {
	case KindRoot:
		return Spec{Name: "root", Label: "Workspace", Icon: "⌂", DefaultName: "Workspace", Expand: ExpandCanvas}
	case KindCanvas:
		return Spec{Name: "canvas", Label: "Canvas", Icon: "▦", DefaultName: "Folder", Expand: ExpandCanvas}
	case KindText:
		return Spec{
			Name:           "text",
			Label:          "Text",
			Icon:           "✎",
			DefaultName:    "Untitled Text",
			DefaultContent: "Start typing...",
			Expand:         ExpandDocument,
		}
	}
	panic(fmt.Sprintf("workspace: unknown kind %d", int(k)))
}

// String returns the wire name of k.
func (k Kind) String() string {
	switch k {
	case KindRoot, KindCanvas, KindText:
		return k.Spec().Name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k >= KindRoot && k <= KindText }

// ParseKind parses a wire name produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "root":
		return KindRoot, nil
	case "canvas", "folder":
		return KindCanvas, nil
	case "text", "note":
		return KindText, nil
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Creatable returns the kinds a user can spawn, in menu order.
func Creatable() []Kind { return []Kind{KindCanvas, KindText} }

// Preview renders the compact on-canvas markup of n. It depends only on the
// node's kind, name and content.
func Preview(n *Node) string {
	name := html.EscapeString(n.Name)
	switch n.Kind {
	case KindText:
		return `<div class="card card-text"><h2>` + name + `</h2><p>` + html.EscapeString(n.Content) + `</p></div>`
	case KindCanvas:
		return `<div class="card card-canvas"><h2>` + name + `</h2><span class="count">` +
			fmt.Sprint(len(n.children)) + `</span></div>`
	default:
		return `<div class="card"><h2>` + name + `</h2></div>`
	}
}
