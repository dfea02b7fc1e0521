package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/slicetopo/pkg/buildinfo"
	"github.com/matzehuels/slicetopo/pkg/config"
	"github.com/matzehuels/slicetopo/pkg/draft"
	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/serialize"
	"github.com/matzehuels/slicetopo/pkg/topology"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "slicetopo"

	// defaultDraft is the working draft when --draft is not given.
	defaultDraft = "default"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogFatal = log.FatalLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	draftName  string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Slicetopo authors network topologies for lab slices",
		Long:          `Slicetopo is a CLI tool for drawing, generating and validating network topologies of hosts, routers and switches, and submitting them to a Slice Manager for provisioning.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.Logger.Debug("config loaded", "path", c.configPath, "drafts", cfg.Drafts.Backend)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/slicetopo/config.toml)")
	root.PersistentFlags().StringVarP(&c.draftName, "draft", "d", defaultDraft, "working draft name")
	_ = root.RegisterFlagCompletionFunc("draft", c.completeDrafts)

	// Register all subcommands
	root.AddCommand(c.draftCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.linkCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.sendCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Draft Workspace
// =============================================================================

// workspace is the working draft loaded into a topology store.
type workspace struct {
	drafts draft.Store
	name   string
	store  *topology.Store
	exists bool
}

// openWorkspace loads the working draft. With create set, a missing draft
// yields an empty topology named after it instead of an error.
func (c *CLI) openWorkspace(ctx context.Context, create bool) (*workspace, error) {
	ds, err := draft.Open(ctx, c.cfg.DraftOptions())
	if err != nil {
		return nil, err
	}
	w := &workspace{drafts: ds, name: c.draftName, store: topology.New(c.draftName)}

	d, err := ds.Load(ctx, c.draftName)
	switch {
	case apperrors.Is(err, apperrors.ErrCodeDraftNotFound) && create:
		c.Logger.Debug("new draft", "name", c.draftName)
		return w, nil
	case err != nil:
		ds.Close()
		return nil, err
	}

	t, err := d.Topology()
	if err != nil {
		ds.Close()
		return nil, fmt.Errorf("load draft %s: %w", c.draftName, err)
	}
	w.store.Load(t)
	w.exists = true
	c.Logger.Debug("draft loaded", "name", c.draftName, "revision", d.Revision,
		"nodes", w.store.NodeCount(), "connections", w.store.ConnectionCount())
	return w, nil
}

func (w *workspace) save(ctx context.Context) (draft.Draft, error) {
	return w.drafts.Save(ctx, w.name, serialize.Export(w.store.Snapshot(), time.Now()))
}

func (w *workspace) Close() error {
	return w.drafts.Close()
}

// withWorkspace opens the working draft, runs fn, and saves the draft when
// fn reports a change.
func (c *CLI) withWorkspace(ctx context.Context, create bool, fn func(w *workspace) (bool, error)) error {
	w, err := c.openWorkspace(ctx, create)
	if err != nil {
		return err
	}
	defer w.Close()

	changed, err := fn(w)
	if err != nil || !changed {
		return err
	}
	if _, err := w.save(ctx); err != nil {
		return err
	}
	printStats(w.name, w.store.NodeCount(), w.store.ConnectionCount())
	return nil
}

// =============================================================================
// Argument Helpers
// =============================================================================

// resolveNode accepts a node id or a node name.
func resolveNode(s *topology.Store, arg string) (topology.Node, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		if n, ok := s.Node(topology.NodeID(id)); ok {
			return n, nil
		}
	}
	for _, n := range s.Nodes() {
		if strings.EqualFold(n.Name, arg) {
			return n, nil
		}
	}
	return topology.Node{}, apperrors.Wrap(apperrors.ErrCodeNotFound, topology.ErrNodeNotFound, "node %q", arg)
}
