package server

import (
	"net/http"
	"net/url"
	"strconv"

	errs "github.com/matzehuels/nestboard/pkg/errors"
	pkgio "github.com/matzehuels/nestboard/pkg/io"
	"github.com/matzehuels/nestboard/pkg/pipeline"
	"github.com/matzehuels/nestboard/pkg/render"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

func (s *Server) handleLayerSVG(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, pipeline.Options{Style: pipeline.StyleCanvas, Format: render.FormatSVG})
}

func (s *Server) handleTreeSVG(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, pipeline.Options{
		Style:    pipeline.StyleNodelink,
		Format:   render.FormatSVG,
		Layer:    workspace.RootID,
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := renderQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, opts)
}

// render copies the board under the lock and draws the copy without it,
// so slow raster output does not stall editing. Unset options follow the
// live session: the active layer, its current view and the screen size.
func (s *Server) render(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	s.mu.Lock()
	active := s.sess.ActiveID()
	snap := pkgio.FromTree(s.sess.Tree(), active)
	size := s.sess.Tree().DefaultSize()
	if opts.Layer == "" {
		opts.Layer = active
	}
	if opts.Style == pipeline.StyleNodelink && opts.Highlight == "" {
		opts.Highlight = active
	}
	if opts.Layer == active && !opts.Fit {
		v := s.sess.View()
		opts.View = &v
	}
	if opts.Width == 0 && opts.Height == 0 {
		screen := s.sess.Screen()
		opts.Width, opts.Height = screen.Width, screen.Height
	}
	p := s.sess.Policy()
	opts.Policy = &p
	s.mu.Unlock()

	tree, _, err := snap.Tree(workspace.WithDefaultSize(size))
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "copy board"))
		return
	}
	hash, err := pipeline.HashSnapshot(snap)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Render(r.Context(), tree, hash, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType())
	if res.Cached {
		w.Header().Set("X-Cache", "hit")
	}
	_, _ = w.Write(res.Data)
}

// renderQuery reads render options from URL parameters.
func renderQuery(q url.Values) (pipeline.Options, error) {
	opts := pipeline.Options{
		Style:  q.Get("style"),
		Format: q.Get("format"),
		Layer:  q.Get("layer"),
	}
	var err error
	if opts.Fit, err = queryBool(q, "fit"); err != nil {
		return opts, err
	}
	if opts.Detailed, err = queryBool(q, "detailed"); err != nil {
		return opts, err
	}
	if opts.Width, err = queryFloat(q, "width"); err != nil {
		return opts, err
	}
	if opts.Height, err = queryFloat(q, "height"); err != nil {
		return opts, err
	}
	if opts.Scale, err = queryFloat(q, "scale"); err != nil {
		return opts, err
	}
	return opts, nil
}

func queryBool(q url.Values, key string) (bool, error) {
	v := q.Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errs.New(errs.ErrCodeInvalidInput, "%s: want true or false, got %q", key, v)
	}
	return b, nil
}

func queryFloat(q url.Values, key string) (float64, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "%s: want a number, got %q", key, v)
	}
	return f, nil
}
