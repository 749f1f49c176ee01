package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stairbuilder/pkg/observability"
)

// Execute runs the stairbuilder CLI and returns an error if any command
// fails. With --verbose (-v) the logger runs at debug level; otherwise the
// level comes from the config file.
func Execute(ctx context.Context, args ...string) error {
	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	addVerboseFlag(c, root)
	if args != nil {
		root.SetArgs(args)
	}
	return root.ExecuteContext(ctx)
}

// addVerboseFlag registers --verbose. It raises the log level after the root
// pre-run has applied the config and routes every hook to the logger.
func addVerboseFlag(c *CLI, root *cobra.Command) {
	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if originalPreRun != nil {
			if err := originalPreRun(cmd, args); err != nil {
				return err
			}
		}
		if verbose {
			c.SetLogLevel(LogDebug)
			hooks := observability.LogHooks{Logger: c.Logger}
			observability.SetLayoutHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)
		}
		return nil
	}
}
