// Package config loads slicetopo settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/slicetopo/config.toml (falling back to
// ~/.config/slicetopo/config.toml). A missing default file is not an error:
// [Default] values apply. Command-line flags override what is loaded here.
//
//	[manager]
//	url     = "https://slices.example.org/api/slices"
//	api_key = "..."
//	timeout = "30s"
//
//	[editor]
//	link_policy    = "stay-armed"   # or "exit-after-connect"
//	isolated_nodes = "error"        # or "warning"
//	anchor_offset  = 400
//
//	[drafts]
//	backend = "file"                # "redis" or "mongo"
//	dir     = "~/.config/slicetopo/drafts"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/slicetopo/pkg/draft"
	"github.com/matzehuels/slicetopo/pkg/editor"
	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/layout"
	"github.com/matzehuels/slicetopo/pkg/slicemanager"
	"github.com/matzehuels/slicetopo/pkg/validate"
)

// EnvAPIKey overrides manager.api_key so keys need not live in the file.
const EnvAPIKey = "SLICETOPO_API_KEY"

type Config struct {
	Manager Manager `toml:"manager"`
	Editor  Editor  `toml:"editor"`
	Drafts  Drafts  `toml:"drafts"`
	Server  Server  `toml:"server"`
}

type Manager struct {
	URL     string        `toml:"url"`
	APIKey  string        `toml:"api_key"`
	Timeout time.Duration `toml:"timeout"`
}

type Editor struct {
	LinkPolicy    string  `toml:"link_policy"`
	IsolatedNodes string  `toml:"isolated_nodes"`
	AnchorOffset  float64 `toml:"anchor_offset"`
}

type Drafts struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	RedisKey        string `toml:"redis_key"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Manager: Manager{Timeout: slicemanager.DefaultTimeout},
		Editor: Editor{
			LinkPolicy:    string(editor.StayArmed),
			IsolatedNodes: string(validate.SeverityError),
			AnchorOffset:  layout.DefaultAnchorOffset,
		},
		Drafts: Drafts{Backend: string(draft.BackendFile)},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath returns where Load looks when no path is given.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "slicetopo", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "slicetopo", "config.toml"), nil
}

// Load reads the config at path over the defaults. An empty path means
// DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// nothing to merge
	case errors.Is(err, fs.ErrNotExist):
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "config file %s", path)
	case err != nil:
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	default:
		if keys := md.Undecoded(); len(keys) > 0 {
			names := make([]string, len(keys))
			for i, k := range keys {
				names[i] = k.String()
			}
			slices.Sort(names)
			return cfg, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(names, ", "))
		}
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.Manager.APIKey = key
	}
	cfg.Drafts.Dir = expandHome(cfg.Drafts.Dir)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks enum values, the manager URL, and numeric ranges.
func (c Config) Validate() error {
	if c.Manager.URL != "" {
		if err := apperrors.ValidateURL(c.Manager.URL); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "manager.url")
		}
	}
	if c.Manager.Timeout < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "manager.timeout must not be negative")
	}
	if _, err := editor.ParseLinkPolicy(c.Editor.LinkPolicy); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "editor.link_policy")
	}
	if _, err := validate.ParseSeverity(c.Editor.IsolatedNodes); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "editor.isolated_nodes")
	}
	if c.Editor.AnchorOffset < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "editor.anchor_offset must not be negative")
	}
	switch draft.Backend(strings.ToLower(c.Drafts.Backend)) {
	case "", draft.BackendFile, draft.BackendRedis, draft.BackendMongo:
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "drafts.backend %q (valid: file, redis, mongo)", c.Drafts.Backend)
	}
	if c.Drafts.RedisDB < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "drafts.redis_db must not be negative")
	}
	return nil
}

// DraftOptions maps the [drafts] section onto draft.Options.
func (c Config) DraftOptions() draft.Options {
	d := c.Drafts
	return draft.Options{
		Backend:         draft.Backend(d.Backend),
		Dir:             d.Dir,
		RedisAddr:       d.RedisAddr,
		RedisPassword:   d.RedisPassword,
		RedisDB:         d.RedisDB,
		RedisKey:        d.RedisKey,
		MongoURI:        d.MongoURI,
		MongoDatabase:   d.MongoDatabase,
		MongoCollection: d.MongoCollection,
	}
}

// ManagerConfig maps the [manager] section onto slicemanager.Config.
func (c Config) ManagerConfig() slicemanager.Config {
	return slicemanager.Config{URL: c.Manager.URL, APIKey: c.Manager.APIKey, Timeout: c.Manager.Timeout}
}

// LinkPolicy returns the parsed editor link policy. Validate has already
// rejected bad values, so the error is dropped.
func (c Config) LinkPolicy() editor.LinkPolicy {
	p, _ := editor.ParseLinkPolicy(c.Editor.LinkPolicy)
	return p
}

// ValidateOptions returns the validator options for the [editor] section.
func (c Config) ValidateOptions() validate.Options {
	sev, _ := validate.ParseSeverity(c.Editor.IsolatedNodes)
	return validate.Options{IsolatedNodes: sev}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
