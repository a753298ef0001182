package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/nestboard/pkg/io"
	"github.com/matzehuels/nestboard/pkg/store"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := store.ValidateName(name); err != nil {
				return err
			}
			ctx := cmd.Context()
			_, st, err := c.setup(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if !force {
				if _, err := st.Load(ctx, name); err == nil {
					return fmt.Errorf("board %q already exists (use --force to replace it)", name)
				} else if !errors.Is(err, store.ErrNotFound) {
					return err
				}
			}

			snap := pkgio.FromTree(workspace.New(), workspace.RootID)
			snap.Name = name
			if err := st.Save(ctx, name, snap); err != nil {
				return err
			}
			printSuccess("Created board %s", StyleHighlight.Render(name))
			printNextStep("Open it", appName+" open "+name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing board")
	return cmd
}

// lsCommand creates the "ls" command.
func (c *CLI) lsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List boards",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, st, err := c.setup(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No boards yet")
				printNextStep("Create one", appName+" new <name>")
				return nil
			}
			for _, name := range names {
				snap, err := st.Load(ctx, name)
				if err != nil {
					printWarning("%s: %v", name, err)
					continue
				}
				printKeyValue(name, fmt.Sprintf("%d cards", max(0, len(snap.Nodes)-1)))
			}
			return nil
		},
	}
}

// rmCommand creates the "rm" command.
func (c *CLI) rmCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Delete a board",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, st, err := c.setup(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted board %s", args[0])
			return nil
		},
	}
}

// treeCommand creates the "tree" command.
func (c *CLI) treeCommand() *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "tree <name>",
		Short: "Print the hierarchy of a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, st, err := c.setup(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			t, active, err := loadBoard(ctx, st, cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Println(renderTree(t, active, showIDs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "show node ids")
	return cmd
}

// renderTree draws the hierarchy with the active node highlighted.
func renderTree(t *workspace.Tree, active string, showIDs bool) *tree.Tree {
	label := func(n *workspace.Node) string {
		s := n.Kind.Spec().Icon + " " + n.Name
		if showIDs {
			s += " " + StyleDim.Render(n.ID)
		}
		if conns := n.Connections(); len(conns) > 0 {
			s += StyleDim.Render(fmt.Sprintf(" (%d links)", len(conns)))
		}
		if n.ID == active {
			s = StyleHighlight.Render(s) + " " + StyleDim.Render(iconArrow+" active")
		}
		return s
	}

	var build func(n *workspace.Node) *tree.Tree
	build = func(n *workspace.Node) *tree.Tree {
		out := tree.Root(label(n))
		kids, _ := t.Children(n.ID)
		for _, k := range kids {
			if k.ChildCount() == 0 {
				out.Child(label(k))
				continue
			}
			out.Child(build(k))
		}
		return out
	}

	return build(t.Root()).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(lipgloss.NewStyle().Foreground(colorDim)).
		RootStyle(StyleTitle)
}

// exportCommand creates the "export" command.
func (c *CLI) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <name> <file>",
		Short: "Write a board to a JSON or YAML file",
		Long:  `Write a board to a file. The format follows the extension: .json, .yaml or .yml.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, st, err := c.setup(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			snap, err := st.Load(ctx, args[0])
			if err != nil {
				return err
			}
			if err := pkgio.ExportFile(args[1], snap); err != nil {
				return err
			}
			printSuccess("Exported %s", args[0])
			printFile(args[1])
			return nil
		},
	}
}

// importCommand creates the "import" command.
func (c *CLI) importCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <file> [name]",
		Short: "Read a board from a JSON or YAML file",
		Long: `Read a board from a file and store it. The snapshot is validated before
anything is written. Without a name, the name stored in the file is used,
or the file name without its extension.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := pkgio.ImportFile(args[0])
			if err != nil {
				return err
			}
			if _, _, err := snap.Tree(); err != nil {
				return err
			}

			name := importName(args, snap)
			if err := store.ValidateName(name); err != nil {
				return err
			}

			ctx := cmd.Context()
			_, st, err := c.setup(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if !force {
				if _, err := st.Load(ctx, name); err == nil {
					return fmt.Errorf("board %q already exists (use --force to replace it)", name)
				}
			}
			snap.Name = name
			if err := st.Save(ctx, name, snap); err != nil {
				return err
			}
			printSuccess("Imported %s", StyleHighlight.Render(name))
			printStats(len(snap.Nodes)-1, countConnections(snap))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing board")
	return cmd
}

func importName(args []string, snap pkgio.Snapshot) string {
	if len(args) > 1 {
		return args[1]
	}
	if snap.Name != "" {
		return snap.Name
	}
	base := filepath.Base(args[0])
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func countConnections(snap pkgio.Snapshot) int {
	n := 0
	for _, r := range snap.Nodes {
		n += len(r.Connections)
	}
	return n
}
