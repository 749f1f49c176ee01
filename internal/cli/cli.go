package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stairbuilder/internal/config"
	"github.com/matzehuels/stairbuilder/pkg/buildinfo"
	"github.com/matzehuels/stairbuilder/pkg/cache"
	"github.com/matzehuels/stairbuilder/pkg/catalog"
	"github.com/matzehuels/stairbuilder/pkg/pipeline"
	"github.com/matzehuels/stairbuilder/pkg/session"
	"github.com/matzehuels/stairbuilder/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded in the root command's pre-run unless already set.
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stairbuilder lays out and prices configurable stairs",
		Long:         `Stairbuilder manages a catalog of configurable stair models and computes where every repeated component goes, what the stair costs, and how its components depend on each other.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")

	root.AddCommand(c.modelsCommand())
	root.AddCommand(c.categoriesCommand())
	root.AddCommand(c.texturesCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.priceCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.configureCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file unless a config was injected. A level
// from the file applies only when the logger is still at info.
func (c *CLI) loadConfig() error {
	if c.Config != nil {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.Logger.GetLevel() == LogInfo {
		if lvl, err := cfg.Log.ParseLevel(); err == nil {
			c.SetLogLevel(lvl)
		}
	}
	return nil
}

func (c *CLI) cfg() *config.Config {
	if c.Config == nil {
		c.Config = config.Default()
	}
	return c.Config
}

// =============================================================================
// Factories
// =============================================================================

// openRepo opens the configured catalog store. The caller closes the
// returned store.
func (c *CLI) openRepo(ctx context.Context) (*catalog.Repository, store.Store, error) {
	s, err := store.Open(ctx, c.cfg().StoreOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog store: %w", err)
	}
	return catalog.NewRepository(s, c.Logger), s, nil
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, nil, c.Logger)
	r.PlanTTL = c.cfg().Cache.TTL.Duration
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cc := c.cfg().Cache
	if noCache || cc.Driver == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if cc.Driver == config.CacheRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cc.RedisAddr, Prefix: cc.Prefix})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// cacheDir returns the configured file cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if dir := c.cfg().Cache.Dir; dir != "" {
		return dir, nil
	}
	return config.CacheDir()
}

// sessionStore opens the configured store for saved configurations.
func (c *CLI) sessionStore() (session.Store, error) {
	sc := c.cfg().Session
	if sc.Driver == config.SessionRedis {
		client := redis.NewClient(&redis.Options{Addr: sc.RedisAddr})
		return session.NewRedisStore(client, session.DefaultRedisPrefix), nil
	}
	fs, err := session.NewFileStore(sc.Dir)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return fs, nil
}

// cliSessions opens the single-configuration store used by "session".
func (c *CLI) cliSessions() (*session.CLIStore, error) {
	return session.NewCLIStore(c.cfg().Session.Dir)
}
