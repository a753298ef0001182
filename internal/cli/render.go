package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nestboard/pkg/cache"
	"github.com/matzehuels/nestboard/pkg/config"
	"github.com/matzehuels/nestboard/pkg/pipeline"
	"github.com/matzehuels/nestboard/pkg/render"
	"github.com/matzehuels/nestboard/pkg/render/canvas"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file path, stdout when empty
	noCache bool   // bypass the render cache
	pipeline.Options
}

// renderCommand creates the render command for drawing a board to a file.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{Options: pipeline.Options{
		Style:  pipeline.StyleCanvas,
		Width:  canvas.DefaultScreen.Width,
		Height: canvas.DefaultScreen.Height,
		Scale:  pipeline.DefaultScale,
	}}

	cmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Render a board layer to SVG, DOT, PNG or JPEG",
		Long: `Render draws a board without opening it.

The canvas style draws one layer the way it appears on screen, using the
layer's saved pan and zoom unless --fit is given. The nodelink style draws
the nesting hierarchy as a Graphviz diagram, with connections as dashed edges.`,
		Example: `  nestboard render notes -o notes.svg
  nestboard render notes --layer 0192... --fit -o inbox.png
  nestboard render notes --style nodelink --detailed -o tree.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format: svg, dot, png, jpeg (default from --output, else svg)")
	cmd.Flags().StringVar(&opts.Style, "style", opts.Style, "visual style: canvas, nodelink")
	cmd.Flags().StringVar(&opts.Layer, "layer", "", "layer to draw (default: root)")
	cmd.Flags().BoolVar(&opts.Fit, "fit", false, "frame all cards instead of using the saved view")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "height in pixels")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "device scale for png and jpeg")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show kinds and excerpts (nodelink)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// runRender loads the board, renders it, and writes the result.
func (c *CLI) runRender(ctx context.Context, name string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	format, err := resolveFormat(opts.Format, opts.output)
	if err != nil {
		return err
	}
	opts.Format = format
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	cfg, st, err := c.setup(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.Load(ctx, name)
	if err != nil {
		return err
	}
	tree, _, err := snap.Tree(workspace.WithDefaultSize(cfg.CardSize()))
	if err != nil {
		return err
	}
	hash, err := pipeline.HashSnapshot(snap)
	if err != nil {
		return err
	}
	applyPolicy(&opts.Options, cfg)

	rc, err := newCache(opts.noCache)
	if err != nil {
		return err
	}
	runner := newRunner(rc, name, logger)
	defer runner.Close()

	var spinner *Spinner
	if opts.Format == render.FormatPNG || opts.Format == render.FormatJPEG {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.Format))
		spinner.Start()
	}
	prog := newProgress(logger)
	res, err := runner.Render(ctx, tree, hash, opts.Options)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s %s", opts.Style, opts.Format))

	if err := writeOutput(opts.output, res.Data); err != nil {
		return err
	}
	if opts.output != "" {
		printSuccess("Rendered %s", name)
		printFile(opts.output)
		printCacheStatus(res.Cached)
	}
	return nil
}

// newRunner returns a render runner whose keys are scoped to one board.
func newRunner(c cache.Cache, name string, logger *log.Logger) *pipeline.Runner {
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "ws:"+name+":")
	return pipeline.NewRunner(c, keyer, logger)
}

// applyPolicy bounds saved views by the configured zoom limits.
func applyPolicy(opts *pipeline.Options, cfg config.Config) {
	if p, err := cfg.Policy(); err == nil {
		opts.Policy = &p
	}
}

// resolveFormat picks the output format from the flag, then the output
// file extension, then svg.
func resolveFormat(flag, output string) (string, error) {
	if flag != "" {
		return render.ParseFormat(flag)
	}
	if ext := filepath.Ext(output); ext != "" {
		return render.ParseFormat(ext)
	}
	return render.FormatSVG, nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
