package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stairbuilder/pkg/geom"
	"github.com/matzehuels/stairbuilder/pkg/pipeline"
)

// layoutCommand creates the layout command for computing component placements.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   planFlags
		output  string
		asJSON  bool
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute where every component instance is placed",
		Long: `Compute where every component instance of a model is placed.

Settings come from the model defaults, a settings file (--settings), or the
saved configuration (--from-session); flags override both. The plan lists
one row per drawn instance, the optional end pieces, and the price.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			req, err := c.request(cmd.Context(), cmd, repo, flags)
			if err != nil {
				return err
			}
			req.Refresh = refresh
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), req, output, asJSON, noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the plan as JSON to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// runLayout computes the plan and writes it as a table, JSON, or a file.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, req pipeline.Request, output string, asJSON, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	res, err := runner.PlanWithCacheInfo(ctx, req)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Planned %d instances of %s", len(res.Placements), res.ModelID))

	switch {
	case output != "":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", output, err)
		}
		printSuccess("Layout complete")
		printFile(output)
		printStats(res.Stats.Components, res.Stats.Instances, res.CacheHit)
		return nil
	case asJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	writePlan(w, res)
	for _, d := range res.Diagnostics {
		printWarning("%s", d)
	}
	printStats(res.Stats.Components, res.Stats.Instances, res.CacheHit)
	return nil
}

// writePlan renders placements, end pieces, and the quote.
func writePlan(w io.Writer, res *pipeline.Result) {
	rows := make([][]string, 0, len(res.Placements))
	for _, p := range res.Placements {
		rows = append(rows, append([]string{p.Component, strconv.Itoa(p.Index)}, vecCells(p.Position)...))
	}
	printTable(w, []string{"Component", "#", "X", "Y", "Z"}, rows)

	if len(res.Angles) > 0 {
		rows = rows[:0]
		for _, a := range res.Angles {
			rows = append(rows, append([]string{a.End, string(a.Side)}, vecCells(a.Position)...))
		}
		printTable(w, []string{"End", "Side", "X", "Y", "Z"}, rows)
	}
	printQuote(w, res.Quote)
}

func vecCells(v geom.Vec3) []string {
	return []string{formatCoord(v.X()), formatCoord(v.Y()), formatCoord(v.Z())}
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}
