package cache

// Keyer derives cache keys.
type Keyer interface {
	// RenderKey is the key of an artifact rendered from the snapshot with
	// the given content hash.
	RenderKey(snapshotHash string, opts RenderKeyOpts) string
}

// RenderKeyOpts are the render options that change the output bytes.
type RenderKeyOpts struct {
	Format   string  `json:"format"`          // svg, dot, png, jpeg
	Style    string  `json:"style"`           // canvas, nodelink
	Layer    string  `json:"layer,omitempty"` // node whose children are drawn
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Fit      bool    `json:"fit,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
}

// DefaultKeyer hashes snapshot and options into "render:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) RenderKey(snapshotHash string, opts RenderKeyOpts) string {
	return hashKey("render", snapshotHash, opts)
}
