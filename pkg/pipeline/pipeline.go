// Package pipeline turns a workspace tree into rendered bytes.
//
// It is shared by the render command and the HTTP server: both describe
// what they want with [Options] and hand the tree to a [Runner], which
// validates the request, consults the render cache and dispatches to the
// canvas or nodelink renderer.
package pipeline

import (
	"time"

	errs "github.com/matzehuels/nestboard/pkg/errors"
	"github.com/matzehuels/nestboard/pkg/render"
	"github.com/matzehuels/nestboard/pkg/render/canvas"
	"github.com/matzehuels/nestboard/pkg/viewport"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// Visual styles.
const (
	StyleCanvas   = "canvas"   // cards as they appear on screen
	StyleNodelink = "nodelink" // the nesting hierarchy as a Graphviz diagram
)

const (
	// DefaultScale is the device scale for raster formats.
	DefaultScale = 2.0

	// FitPadding is the margin in pixels left around cards when fitting.
	FitPadding = 40.0

	// JPEGQuality is the encoder quality for jpeg output.
	JPEGQuality = 90

	// TTL is how long rendered bytes stay in the cache.
	TTL = 7 * 24 * time.Hour
)

// Options describes one render request.
// It supports JSON so requests can be logged and hashed.
type Options struct {
	Style  string  `json:"style"`
	Format string  `json:"format"`
	Layer  string  `json:"layer,omitempty"` // node whose children are drawn (canvas) or subtree root (nodelink)
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Scale  float64 `json:"scale,omitempty"` // png and jpeg only

	Fit      bool `json:"fit,omitempty"`      // frame all cards instead of using a view
	Detailed bool `json:"detailed,omitempty"` // nodelink: kinds and excerpts

	// Highlight marks one node in nodelink diagrams.
	Highlight string `json:"highlight,omitempty"`

	// View overrides the layer's saved view (canvas only).
	View *viewport.ViewState `json:"view,omitempty"`

	// Policy bounds the zoom of saved views. The default policy is used
	// when nil.
	Policy *viewport.Policy `json:"-"`
}

// Result holds the output of one render.
type Result struct {
	Data     []byte
	Format   string
	Cached   bool
	Duration time.Duration
}

// ContentType is the MIME type of the result.
func (r *Result) ContentType() string { return ContentType(r.Format) }

// ContentType returns the MIME type for a render format.
func ContentType(format string) string {
	switch format {
	case render.FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	case render.FormatPNG:
		return "image/png"
	case render.FormatJPEG:
		return "image/jpeg"
	default:
		return "image/svg+xml"
	}
}

// ValidateStyle checks that a style is known.
func ValidateStyle(style string) error {
	switch style {
	case StyleCanvas, StyleNodelink:
		return nil
	}
	return errs.New(errs.ErrCodeInvalidInput, "unknown style %q (want canvas or nodelink)", style)
}

// ValidateAndSetDefaults fills unset fields, normalizes the format and
// rejects combinations that cannot be rendered. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Style == "" {
		o.Style = StyleCanvas
	}
	if o.Layer == "" {
		o.Layer = workspace.RootID
	}
	if o.Width == 0 {
		o.Width = canvas.DefaultScreen.Width
	}
	if o.Height == 0 {
		o.Height = canvas.DefaultScreen.Height
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	format, err := render.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.Format = format

	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	if o.Style == StyleCanvas && o.Format == render.FormatDOT {
		return errs.New(errs.ErrCodeUnsupported, "dot output needs the nodelink style")
	}
	if o.Width <= 0 || o.Height <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "width and height must be positive")
	}
	if o.Scale <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "scale must be positive")
	}
	if o.View != nil && o.View.Scale <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "view scale must be positive")
	}
	return nil
}
