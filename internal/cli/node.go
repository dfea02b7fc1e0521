package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/slicetopo/pkg/editor"
	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

// nodeOpts holds the flags shared by "node add" and "node set". Resources
// are free text and go through the same coercion as the edit form.
type nodeOpts struct {
	name     string
	kind     string
	image    string
	cpu      string
	memory   string
	disk     string
	internet bool
	x, y     float64
}

func (o *nodeOpts) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.name, "name", "", "node name")
	fs.StringVar(&o.kind, "kind", "", "node kind: host, router, switch, server")
	fs.StringVar(&o.image, "image", "", "OS image")
	fs.StringVar(&o.cpu, "cpu", "", "vCPUs (minimum 1)")
	fs.StringVar(&o.memory, "memory", "", "memory in GB (minimum 1)")
	fs.StringVar(&o.disk, "disk", "", "disk in GB (minimum 10)")
	fs.BoolVar(&o.internet, "internet", false, "enable internet access")
	fs.Float64Var(&o.x, "x", 0, "canvas x position")
	fs.Float64Var(&o.y, "y", 0, "canvas y position")
}

// apply copies every flag the user set onto the edit form.
func (o *nodeOpts) apply(fs *pflag.FlagSet, e *editor.EditSession) {
	set := map[string]func(){
		"name":     func() { e.Name = o.name },
		"kind":     func() { e.Kind = o.kind },
		"image":    func() { e.Image = o.image },
		"cpu":      func() { e.CPU = o.cpu },
		"memory":   func() { e.MemoryGB = o.memory },
		"disk":     func() { e.DiskGB = o.disk },
		"internet": func() { e.Internet = o.internet },
	}
	fs.Visit(func(f *pflag.Flag) {
		if fn, ok := set[f.Name]; ok {
			fn()
		}
	})
}

func (c *CLI) newController(s *topology.Store) *editor.Controller {
	return editor.New(s, c.editorOptions())
}

func (c *CLI) editorOptions() editor.Options {
	return editor.Options{
		Policy:       c.cfg.LinkPolicy(),
		AnchorOffset: c.cfg.Editor.AnchorOffset,
		Logger:       c.Logger,
	}
}

// nodeCommand creates the node editing command.
func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Add, change and remove nodes of the working draft",
	}

	cmd.AddCommand(c.nodeAddCommand())
	cmd.AddCommand(c.nodeSetCommand())
	cmd.AddCommand(c.nodeMoveCommand())
	cmd.AddCommand(c.nodeRemoveCommand())

	return cmd
}

// nodeAddCommand creates the "node add" subcommand.
func (c *CLI) nodeAddCommand() *cobra.Command {
	var opts nodeOpts

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkspace(cmd.Context(), true, func(w *workspace) (bool, error) {
				ctl := c.newController(w.store)
				n := ctl.AddNode(topology.Position{X: opts.x, Y: opts.y})

				session, err := ctl.DoubleClick(n.ID)
				if err != nil {
					return false, err
				}
				opts.apply(cmd.Flags(), session)
				if err := session.Commit(); err != nil {
					return false, err
				}

				n, _ = w.store.Node(n.ID)
				printSuccess("Added node %s %s", StyleHighlight.Render(n.Name), StyleDim.Render(fmt.Sprintf("(id %d)", n.ID)))
				return true, nil
			})
		},
	}

	opts.register(cmd.Flags())
	return cmd
}

// nodeSetCommand creates the "node set" subcommand.
func (c *CLI) nodeSetCommand() *cobra.Command {
	var opts nodeOpts

	cmd := &cobra.Command{
		Use:               "set NODE",
		Short:             "Change a node's properties",
		Long:              `Change a node's properties. NODE is a node id or name. Only the flags given are changed.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeNodes(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkspace(cmd.Context(), false, func(w *workspace) (bool, error) {
				n, err := resolveNode(w.store, args[0])
				if err != nil {
					return false, err
				}
				ctl := c.newController(w.store)
				session, err := ctl.DoubleClick(n.ID)
				if err != nil {
					return false, err
				}
				opts.apply(cmd.Flags(), session)
				if err := session.Commit(); err != nil {
					return false, err
				}
				if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
					pos := n.Position
					if cmd.Flags().Changed("x") {
						pos.X = opts.x
					}
					if cmd.Flags().Changed("y") {
						pos.Y = opts.y
					}
					if err := w.store.MoveNode(n.ID, pos); err != nil {
						return false, err
					}
				}

				n, _ = w.store.Node(n.ID)
				printSuccess("Updated node %s", StyleHighlight.Render(n.Name))
				printDetail("%s · %s · %d vCPU · %d GB · %d GB disk", n.Kind, n.Image, n.CPU, n.MemoryGB, n.DiskGB)
				return true, nil
			})
		},
	}

	opts.register(cmd.Flags())
	return cmd
}

// nodeMoveCommand creates the "node move" subcommand. It drags the node the
// way the editor does: grab at the node's position and release at X,Y.
func (c *CLI) nodeMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "move NODE X Y",
		Short:             "Move a node to a canvas position",
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: c.completeNodes(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid x %q", args[1])
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid y %q", args[2])
			}
			return c.withWorkspace(cmd.Context(), false, func(w *workspace) (bool, error) {
				n, err := resolveNode(w.store, args[0])
				if err != nil {
					return false, err
				}
				ctl := c.newController(w.store)
				ctl.PointerDown(n.ID, n.Position)
				n, _ = ctl.PointerMove(topology.Position{X: x, Y: y})
				ctl.PointerUp()
				printSuccess("Moved %s to (%g, %g)", StyleHighlight.Render(n.Name), n.Position.X, n.Position.Y)
				return true, nil
			})
		},
	}
}

// nodeRemoveCommand creates the "node rm" subcommand.
func (c *CLI) nodeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm NODE...",
		Aliases:           []string{"remove"},
		Short:             "Remove nodes and their connections",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeNodes(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkspace(cmd.Context(), false, func(w *workspace) (bool, error) {
				ctl := c.newController(w.store)
				for _, arg := range args {
					n, err := resolveNode(w.store, arg)
					if err != nil {
						return false, err
					}
					ctl.DeleteNode(n.ID)
					printSuccess("Removed node %s", n.Name)
					if len(n.InterfaceIDs) > 0 {
						printDetail("and %s", plural(len(n.InterfaceIDs), "connection"))
					}
				}
				return true, nil
			})
		},
	}
}

// linkCommand creates the connection editing command.
func (c *CLI) linkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Connect and disconnect nodes of the working draft",
	}

	cmd.AddCommand(c.linkAddCommand())
	cmd.AddCommand(c.linkRemoveCommand())

	return cmd
}

// linkAddCommand creates the "link add" subcommand. It drives link mode the
// way the editor does: arm, click the source, click each target.
func (c *CLI) linkAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add NODE NODE...",
		Short: "Connect a node to one or more others",
		Long: `Connect the first node to every following node. Nodes are ids or names.

Pairs that are already connected are skipped.`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: c.completeNodes(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkspace(cmd.Context(), false, func(w *workspace) (bool, error) {
				nodes := make([]topology.Node, len(args))
				for i, arg := range args {
					n, err := resolveNode(w.store, arg)
					if err != nil {
						return false, err
					}
					nodes[i] = n
				}

				ctl := c.newController(w.store)
				changed := false
				for _, target := range nodes[1:] {
					if err := w.store.CanConnect(nodes[0].ID, target.ID); err != nil {
						printWarning("%s - %s: %v", nodes[0].Name, target.Name, err)
						continue
					}
					if ctl.LinkState() == editor.Idle {
						ctl.ToggleLinkMode()
					}
					ctl.Click(nodes[0].ID)
					res := ctl.Click(target.ID)
					if res.Connected {
						printSuccess("Connected %s - %s %s", nodes[0].Name, target.Name, StyleDim.Render(res.Connection.Name))
						changed = true
					}
					ctl.Cancel()
				}
				return changed, nil
			})
		},
	}
}

// linkRemoveCommand creates the "link rm" subcommand.
func (c *CLI) linkRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm NODE NODE",
		Aliases:           []string{"remove"},
		Short:             "Remove the connection between two nodes",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeNodes(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkspace(cmd.Context(), false, func(w *workspace) (bool, error) {
				a, err := resolveNode(w.store, args[0])
				if err != nil {
					return false, err
				}
				b, err := resolveNode(w.store, args[1])
				if err != nil {
					return false, err
				}
				conn, ok := w.store.ConnectionBetween(a.ID, b.ID)
				if !ok {
					return false, apperrors.Wrap(apperrors.ErrCodeNotFound, topology.ErrConnectionNotFound, "%s - %s", a.Name, b.Name)
				}
				c.newController(w.store).DeleteConnection(conn.ID)
				printSuccess("Removed %s (%s - %s)", conn.Name, a.Name, b.Name)
				return true, nil
			})
		},
	}
}
