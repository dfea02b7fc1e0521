package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slicetopo/pkg/draft"
	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/serialize"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

// draftCommand creates the draft management command.
func (c *CLI) draftCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Manage stored topology drafts",
	}

	cmd.AddCommand(c.draftNewCommand())
	cmd.AddCommand(c.draftListCommand())
	cmd.AddCommand(c.draftShowCommand())
	cmd.AddCommand(c.draftRemoveCommand())
	cmd.AddCommand(c.draftClearCommand())

	return cmd
}

// draftNewCommand creates the "draft new" subcommand.
func (c *CLI) draftNewCommand() *cobra.Command {
	var (
		title       string
		description string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Create an empty draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := draft.Open(ctx, c.cfg.DraftOptions())
			if err != nil {
				return err
			}
			defer ds.Close()

			name := args[0]
			if !force {
				_, err := ds.Load(ctx, name)
				if err == nil {
					return apperrors.New(apperrors.ErrCodeInvalidInput, "draft %q already exists (use --force to replace it)", name)
				}
				if !apperrors.Is(err, apperrors.ErrCodeDraftNotFound) {
					return err
				}
			}

			if title == "" {
				title = name
			}
			s := topology.New(title)
			s.SetDescription(description)
			d, err := ds.Save(ctx, name, serialize.Export(s.Snapshot(), time.Now()))
			if err != nil {
				return err
			}
			printSuccess("Created draft %s", StyleHighlight.Render(d.Name))
			printNextStep("Add nodes", fmt.Sprintf("%s node add -d %s", appName, name))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "topology name (defaults to the draft name)")
	cmd.Flags().StringVar(&description, "description", "", "topology description")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing draft")

	return cmd
}

// draftListCommand creates the "draft list" subcommand.
func (c *CLI) draftListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := draft.Open(ctx, c.cfg.DraftOptions())
			if err != nil {
				return err
			}
			defer ds.Close()

			infos, err := ds.List(ctx)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No drafts")
				return nil
			}
			for _, in := range infos {
				marker := "  "
				if in.Name == c.draftName {
					marker = StyleHighlight.Render(iconInfo) + " "
				}
				fmt.Printf("%s%-24s %s\n", marker, StyleValue.Render(in.Name),
					StyleDim.Render(fmt.Sprintf("%s · %s · %s",
						plural(in.Nodes, "node"), plural(in.Connections, "connection"),
						in.UpdatedAt.Local().Format(time.DateTime))))
			}
			return nil
		},
	}
}

// draftShowCommand creates the "draft show" subcommand.
func (c *CLI) draftShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show [NAME]",
		Short:             "Print a draft's nodes and connections",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeDraftArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				c.draftName = args[0]
			}
			w, err := c.openWorkspace(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer w.Close()

			printTopology(w.store.Snapshot())
			return nil
		},
	}
}

// draftRemoveCommand creates the "draft rm" subcommand.
func (c *CLI) draftRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm NAME...",
		Aliases:           []string{"remove"},
		Short:             "Delete drafts",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeDraftArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, err := draft.Open(ctx, c.cfg.DraftOptions())
			if err != nil {
				return err
			}
			defer ds.Close()

			for _, name := range args {
				if err := ds.Delete(ctx, name); err != nil {
					return err
				}
				printSuccess("Deleted draft %s", name)
			}
			return nil
		},
	}
}

// draftClearCommand creates the "draft clear" subcommand.
func (c *CLI) draftClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every node and connection from the working draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkspace(cmd.Context(), false, func(w *workspace) (bool, error) {
				w.store.Clear()
				printSuccess("Cleared %s", w.name)
				return true, nil
			})
		},
	}
}
