package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/slicetopo/pkg/slicemanager"
)

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the working draft in an interactive terminal editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, err := c.openWorkspace(ctx, true)
			if err != nil {
				return err
			}
			defer w.Close()

			sub, err := c.configuredSubmitter()
			if err != nil {
				return err
			}

			save := func() error {
				_, err := w.save(ctx)
				return err
			}
			// Logging would corrupt the alternate screen.
			level := c.Logger.GetLevel()
			c.Logger.SetLevel(LogFatal)
			defer c.Logger.SetLevel(level)

			m := NewEditorModel(c.newController(w.store), c.cfg.ValidateOptions(), save, sub)
			if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
				return err
			}
			printStats(w.name, w.store.NodeCount(), w.store.ConnectionCount())
			return nil
		},
	}
}

// configuredSubmitter returns nil when no Slice Manager url is configured.
func (c *CLI) configuredSubmitter() (*slicemanager.Submitter, error) {
	if c.cfg.Manager.URL == "" {
		return nil, nil
	}
	client, err := slicemanager.NewClient(c.cfg.ManagerConfig(), c.Logger)
	if err != nil {
		return nil, err
	}
	return slicemanager.NewSubmitter(client, c.cfg.ValidateOptions(), c.Logger), nil
}
