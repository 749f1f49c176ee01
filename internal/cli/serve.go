package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stairbuilder/internal/server"
	"github.com/matzehuels/stairbuilder/pkg/session"
)

// sessionCleanupInterval is how often expired sessions are removed while
// serving.
const sessionCleanupInterval = time.Hour

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog, plans, and saved configurations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			repo, s, err := c.openRepo(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			sessions, err := c.sessionStore()
			if err != nil {
				return err
			}
			go cleanupSessions(ctx, sessions, logger)

			cfg := c.cfg()
			srvCfg := cfg.Server
			if addr != "" {
				srvCfg.Addr = addr
			}
			srv := server.New(server.Options{
				Repo:       repo,
				Runner:     runner,
				Sessions:   sessions,
				SessionTTL: cfg.Session.TTL.Duration,
				Logger:     logger,
			})
			return srv.ListenAndServe(ctx, srvCfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

// cleanupSessions removes expired sessions until ctx is done.
func cleanupSessions(ctx context.Context, store session.Store, logger *log.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx); err != nil {
				logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}
