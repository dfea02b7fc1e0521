package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slicetopo/pkg/layout"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

// generateCommand creates the generate command for preset batches.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		params layout.Params
		vp     = layout.Viewport{Width: topology.CanvasSize, Height: topology.CanvasSize}
	)

	cmd := &cobra.Command{
		Use:   "generate PRESET",
		Short: "Add a generated topology: star, tree, ring, bus, mesh or fullmesh",
		Long: `Add a generated batch of nodes and connections to the working draft.

The batch is placed to the right of the rightmost node inside the viewport
(--viewport-x/-y/-w/-h, default the whole canvas), so repeated generations do
not overlap. Existing nodes are kept.

  star      one hub and --nodes leaves
  tree      binary tree with --levels levels
  ring      --nodes nodes in a cycle
  bus       --nodes nodes in a line
  mesh      --rows x --cols grid
  fullmesh  --nodes nodes, all pairs connected`,
		Example: `  slicetopo generate star --nodes 6
  slicetopo generate mesh --rows 2 --cols 4 -d lab`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: presetNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			preset, err := layout.ParsePreset(args[0])
			if err != nil {
				return err
			}
			return c.withWorkspace(cmd.Context(), true, func(w *workspace) (bool, error) {
				prog := newProgress(c.Logger)
				b, err := c.newController(w.store).Generate(preset, params, vp)
				if err != nil {
					return false, err
				}
				prog.done("generated", "preset", preset)
				printSuccess("Generated %s: %s, %s", StyleHighlight.Render(string(preset)),
					plural(len(b.Nodes), "node"), plural(len(b.Connections), "connection"))
				if len(b.Nodes) > 0 {
					printDetail("%s .. %s", b.Nodes[0].Name, b.Nodes[len(b.Nodes)-1].Name)
				}
				return true, nil
			})
		},
	}

	cmd.Flags().IntVarP(&params.NodeCount, "nodes", "n", 0, "node count (star leaves, ring, bus, fullmesh)")
	cmd.Flags().IntVar(&params.Levels, "levels", 0, fmt.Sprintf("tree levels (default %d)", layout.DefaultTreeLevels))
	cmd.Flags().IntVar(&params.Rows, "rows", 0, fmt.Sprintf("mesh rows (default %d)", layout.DefaultMeshRows))
	cmd.Flags().IntVar(&params.Cols, "cols", 0, fmt.Sprintf("mesh columns (default %d)", layout.DefaultMeshCols))
	cmd.Flags().Float64Var(&vp.Origin.X, "viewport-x", 0, "viewport left edge")
	cmd.Flags().Float64Var(&vp.Origin.Y, "viewport-y", 0, "viewport top edge")
	cmd.Flags().Float64Var(&vp.Width, "viewport-w", vp.Width, "viewport width")
	cmd.Flags().Float64Var(&vp.Height, "viewport-h", vp.Height, "viewport height")

	return cmd
}

func presetNames() []string {
	names := make([]string, len(layout.Presets))
	for i, p := range layout.Presets {
		names[i] = string(p)
	}
	return names
}
