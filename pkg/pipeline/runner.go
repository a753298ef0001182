package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nestboard/pkg/cache"
	pkgio "github.com/matzehuels/nestboard/pkg/io"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// Runner renders trees through a cache.
//
// The Runner holds no per-request state; one Runner may serve concurrent
// requests as long as each passes its own tree.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses cache.DefaultKeyer and a nil logger uses log.Default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Render draws t with opts. snapshotHash identifies the content of t; an
// empty hash skips the cache, e.g. for trees that are still being edited.
func (r *Runner) Render(ctx context.Context, t *workspace.Tree, snapshotHash string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	res := &Result{Format: opts.Format}

	if snapshotHash == "" {
		data, err := Render(ctx, t, opts)
		if err != nil {
			return nil, err
		}
		res.Data = data
	} else {
		key, err := r.Key(snapshotHash, opts)
		if err != nil {
			return nil, err
		}
		res.Cached = true
		data, err := cache.Fetch(ctx, r.Cache, key, "render", TTL, func() ([]byte, error) {
			res.Cached = false
			return Render(ctx, t, opts)
		})
		if err != nil {
			return nil, err
		}
		res.Data = data
	}
	res.Duration = time.Since(start)

	r.Logger.Debug("rendered",
		"style", opts.Style,
		"format", opts.Format,
		"layer", opts.Layer,
		"bytes", len(res.Data),
		"cached", res.Cached,
		"duration", res.Duration)
	return res, nil
}

// Key returns the cache key for rendering the snapshot with opts.
// Options that do not fit cache.RenderKeyOpts are folded into the hash.
func (r *Runner) Key(snapshotHash string, opts Options) (string, error) {
	if opts.View != nil || opts.Highlight != "" {
		h, err := cache.HashJSON(struct {
			Snapshot  string
			View      any
			Highlight string
		}{snapshotHash, opts.View, opts.Highlight})
		if err != nil {
			return "", err
		}
		snapshotHash = h
	}
	return r.Keyer.RenderKey(snapshotHash, cache.RenderKeyOpts{
		Format:   opts.Format,
		Style:    opts.Style,
		Layer:    opts.Layer,
		Width:    opts.Width,
		Height:   opts.Height,
		Scale:    opts.Scale,
		Fit:      opts.Fit,
		Detailed: opts.Detailed,
	}), nil
}

// HashSnapshot identifies the drawable content of snap. The layer a board
// was left open at does not change any render, so it is ignored.
func HashSnapshot(snap pkgio.Snapshot) (string, error) {
	snap.Active = ""
	return cache.HashJSON(snap)
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
