package cli

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nestboard/pkg/store"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// openCommand creates the open command, which edits a board in the terminal.
func (c *CLI) openCommand() *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "open <name>",
		Short: "Edit a board interactively",
		Long: `Open shows a board as cards on a pannable, zoomable canvas.

Drag the background to pan, scroll to zoom and drag cards to move them.
Double-click a folder to step inside it; text cards open in an editor.
Press ? for all keys. Unsaved edits are written when you quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOpen(cmd.Context(), args[0], create)
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "create the board if it does not exist")
	return cmd
}

func (c *CLI) runOpen(ctx context.Context, name string, create bool) error {
	cfg, st, err := c.setup(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	tree, active, err := loadBoard(ctx, st, cfg, name)
	created := false
	if errors.Is(err, store.ErrNotFound) && create {
		if err := store.ValidateName(name); err != nil {
			return err
		}
		tree, active, err = workspace.New(workspace.WithDefaultSize(cfg.CardSize())), workspace.RootID, nil
		created = true
	}
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so session logs are dropped.
	sess := newSession(cfg, tree, active, log.New(io.Discard))
	model := NewBoardModel(sess, func() error {
		return saveBoard(ctx, st, name, sess)
	})
	model.dirty = created

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	if model.Dirty() {
		printWarning("Closed %s with unsaved changes", name)
		return nil
	}
	printSuccess("Closed %s", StyleHighlight.Render(name))
	return nil
}
