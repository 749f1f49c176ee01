package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stairbuilder/pkg/pipeline"
)

// graphCommand creates the graph command that renders the follow graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags   planFlags
		format  string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render which components follow which arrays",
		Long: `Render the component dependency graph of a model.

Each component is a node labelled with its effective count; an edge points
from a follower (such as "top") to the array it is positioned against.
DOT output is plain text; SVG output is rendered with Graphviz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			repo, s, err := c.openRepo(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			req, err := c.request(ctx, cmd, repo, flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s graph...", format))
			spinner.Start()
			data, cached, err := runner.GraphWithCacheInfo(ctx, req.EffectiveSettings(), req.Multiplier, format)
			if err != nil {
				spinner.StopWithError("Render failed")
				return err
			}
			spinner.Stop()
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}
			printSuccess("Graph rendered")
			printFile(output)
			printStats(len(req.EffectiveSettings()), 0, cached)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatDOT, "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
