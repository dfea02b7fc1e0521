package cli

import (
	"context"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slicetopo/pkg/config"
	"github.com/matzehuels/slicetopo/pkg/draft"
)

// completionCommand creates the completion command. Besides subcommands and
// flags, the generated scripts complete draft names for --draft and the
// draft commands, and node names of the working draft for node and link
// arguments.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for slicetopo.

To load completions:

Bash:
  $ source <(slicetopo completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ slicetopo completion bash > /etc/bash_completion.d/slicetopo
  # macOS:
  $ slicetopo completion bash > $(brew --prefix)/etc/bash_completion.d/slicetopo

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ slicetopo completion zsh > "${fpath[1]}/_slicetopo"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ slicetopo completion fish | source

  # To load completions for each session, execute once:
  $ slicetopo completion fish > ~/.config/fish/completions/slicetopo.fish

PowerShell:
  PS> slicetopo completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> slicetopo completion powershell > slicetopo.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeDrafts suggests stored draft names not already given in args.
func (c *CLI) completeDrafts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ctx := completionContext(cmd)
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ds, err := draft.Open(ctx, cfg.DraftOptions())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer ds.Close()

	infos, err := ds.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	for _, in := range infos {
		if strings.HasPrefix(in.Name, toComplete) && !slices.Contains(args, in.Name) {
			names = append(names, in.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeDraftArgs completes up to limit positional draft names; zero means
// no limit.
func (c *CLI) completeDraftArgs(limit int) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if limit > 0 && len(args) >= limit {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return c.completeDrafts(cmd, args, toComplete)
	}
}

// completeNodes completes node names of the working draft for the first
// limit positional arguments; zero means every argument.
func (c *CLI) completeNodes(limit int) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if limit > 0 && len(args) >= limit {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		c.cfg = cfg
		w, err := c.openWorkspace(completionContext(cmd), false)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer w.Close()

		var names []string
		for _, n := range w.store.Nodes() {
			if strings.HasPrefix(n.Name, toComplete) && !slices.Contains(args, n.Name) {
				names = append(names, n.Name)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

func completionContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
