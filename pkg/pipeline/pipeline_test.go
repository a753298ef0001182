package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nestboard/pkg/cache"
	errs "github.com/matzehuels/nestboard/pkg/errors"
	"github.com/matzehuels/nestboard/pkg/geom"
	pkgio "github.com/matzehuels/nestboard/pkg/io"
	"github.com/matzehuels/nestboard/pkg/render"
	"github.com/matzehuels/nestboard/pkg/viewport"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

func sampleTree(t *testing.T) (*workspace.Tree, *workspace.Node, *workspace.Node) {
	t.Helper()
	tree := workspace.New()
	a, err := tree.Create(workspace.RootID, workspace.KindCanvas, geom.Point{X: 10, Y: 10})
	if err != nil {
		t.Fatal(err)
	}
	b, err := tree.Create(workspace.RootID, workspace.KindText, geom.Point{X: 400, Y: 10})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Connect(a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	return tree, a, b
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Style != StyleCanvas || opts.Format != render.FormatSVG || opts.Layer != workspace.RootID {
		t.Errorf("defaults = %+v", opts)
	}
	if opts.Scale != DefaultScale || opts.Width <= 0 || opts.Height <= 0 {
		t.Errorf("size defaults = %+v", opts)
	}

	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"nodelink dot", Options{Style: StyleNodelink, Format: "dot"}, ""},
		{"extension format", Options{Format: ".jpg"}, ""},
		{"canvas dot", Options{Format: "dot"}, errs.ErrCodeUnsupported},
		{"unknown style", Options{Style: "tower"}, errs.ErrCodeInvalidInput},
		{"unknown format", Options{Format: "pdf"}, errs.ErrCodeInvalidInput},
		{"negative width", Options{Width: -1}, errs.ErrCodeInvalidInput},
		{"negative scale", Options{Scale: -1}, errs.ErrCodeInvalidInput},
		{"zero view scale", Options{View: &viewport.ViewState{}}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code == "" {
				if err != nil {
					t.Errorf("ValidateAndSetDefaults() = %v, want nil", err)
				}
				return
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRender(t *testing.T) {
	tree, a, b := sampleTree(t)
	ctx := context.Background()

	t.Run("canvas svg", func(t *testing.T) {
		opts := Options{Fit: true}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
		out, err := Render(ctx, tree, opts)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Contains(out, []byte("<svg")) {
			t.Fatalf("output is not svg: %.80s", out)
		}
		if !bytes.Contains(out, []byte("card-"+a.ID)) || !bytes.Contains(out, []byte("card-"+b.ID)) {
			t.Error("svg missing cards")
		}
	})

	t.Run("nodelink dot", func(t *testing.T) {
		opts := Options{Style: StyleNodelink, Format: render.FormatDOT}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
		out, err := Render(ctx, tree, opts)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(out), "digraph") {
			t.Errorf("output is not dot: %.80s", out)
		}
		if !strings.Contains(string(out), "dashed") {
			t.Error("dot missing connection edge")
		}
	})

	t.Run("unknown layer", func(t *testing.T) {
		opts := Options{Layer: "ghost"}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
		if _, err := Render(ctx, tree, opts); !errs.Is(err, errs.ErrCodeNodeNotFound) {
			t.Errorf("Render() = %v, want NODE_NOT_FOUND", err)
		}
	})
}

func TestRunnerCaches(t *testing.T) {
	tree, _, _ := sampleTree(t)
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, log.New(&bytes.Buffer{}))
	defer r.Close()

	hash, err := HashSnapshot(pkgio.FromTree(tree, workspace.RootID))
	if err != nil {
		t.Fatal(err)
	}

	first, err := r.Render(ctx, tree, hash, Options{Fit: true})
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached {
		t.Error("first render should not be cached")
	}
	second, err := r.Render(ctx, tree, hash, Options{Fit: true})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached || !bytes.Equal(first.Data, second.Data) {
		t.Errorf("second render cached = %v, same = %v", second.Cached, bytes.Equal(first.Data, second.Data))
	}
	if second.ContentType() != "image/svg+xml" {
		t.Errorf("content type = %q", second.ContentType())
	}

	live, err := r.Render(ctx, tree, "", Options{Fit: true})
	if err != nil {
		t.Fatal(err)
	}
	if live.Cached {
		t.Error("an empty hash must bypass the cache")
	}
}

func TestKey(t *testing.T) {
	r := NewRunner(nil, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "ws:notes:"), nil)
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	base, err := r.Key("abc", opts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(base, "ws:notes:") {
		t.Errorf("key = %q, want ws:notes: prefix", base)
	}

	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"scale", func(o *Options) { o.Scale = 3 }},
		{"fit", func(o *Options) { o.Fit = true }},
		{"view", func(o *Options) { o.View = &viewport.ViewState{Scale: 2} }},
		{"highlight", func(o *Options) { o.Highlight = "n1" }},
	}
	for _, tt := range tests {
		o := opts
		tt.modify(&o)
		if k, _ := r.Key("abc", o); k == base {
			t.Errorf("%s should change the key", tt.name)
		}
	}
}

func TestHashSnapshotIgnoresActive(t *testing.T) {
	tree, a, _ := sampleTree(t)
	h1, err := HashSnapshot(pkgio.FromTree(tree, workspace.RootID))
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := HashSnapshot(pkgio.FromTree(tree, a.ID))
	if h1 != h2 {
		t.Error("active layer should not change the hash")
	}
	if err := tree.Rename(a.ID, "changed"); err != nil {
		t.Fatal(err)
	}
	if h3, _ := HashSnapshot(pkgio.FromTree(tree, workspace.RootID)); h3 == h1 {
		t.Error("content changes should change the hash")
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		render.FormatSVG:  "image/svg+xml",
		render.FormatPNG:  "image/png",
		render.FormatJPEG: "image/jpeg",
		render.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	}
	for format, want := range tests {
		if got := ContentType(format); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", format, got, want)
		}
	}
}
