package pipeline

import (
	"context"

	errs "github.com/matzehuels/nestboard/pkg/errors"
	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/render"
	"github.com/matzehuels/nestboard/pkg/render/canvas"
	"github.com/matzehuels/nestboard/pkg/render/nodelink"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// Render draws t without caching. opts must have passed
// ValidateAndSetDefaults.
func Render(ctx context.Context, t *workspace.Tree, opts Options) ([]byte, error) {
	if _, ok := t.Node(opts.Layer); !ok {
		return nil, errs.New(errs.ErrCodeNodeNotFound, "layer %s does not exist", opts.Layer)
	}

	var svg []byte
	switch opts.Style {
	case StyleNodelink:
		dot := nodelink.ToDOT(t, nodelink.Options{
			Detailed:  opts.Detailed,
			Root:      opts.Layer,
			Highlight: opts.Highlight,
		})
		if opts.Format == render.FormatDOT {
			return []byte(dot), nil
		}
		out, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "render diagram")
		}
		svg = out
	default:
		out, err := canvas.RenderSVG(t, opts.Layer, canvasOptions(opts)...)
		if err != nil {
			return nil, err
		}
		svg = out
	}

	switch opts.Format {
	case render.FormatPNG:
		return render.ToPNG(ctx, svg, opts.Scale)
	case render.FormatJPEG:
		return render.ToJPEG(ctx, svg, opts.Scale, JPEGQuality)
	}
	return svg, nil
}

func canvasOptions(opts Options) []canvas.Option {
	copts := []canvas.Option{canvas.WithScreen(geom.Size{Width: opts.Width, Height: opts.Height})}
	if opts.Policy != nil {
		copts = append(copts, canvas.WithPolicy(*opts.Policy))
	}
	switch {
	case opts.Fit:
		copts = append(copts, canvas.WithFit(FitPadding))
	case opts.View != nil:
		copts = append(copts, canvas.WithView(*opts.View))
	}
	return copts
}
