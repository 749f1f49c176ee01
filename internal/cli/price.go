package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// priceCommand creates the price command.
func (c *CLI) priceCommand() *cobra.Command {
	var (
		flags   planFlags
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a model: base price plus price per drawn step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
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

			settings := req.EffectiveSettings()
			if req.Fit {
				res, err := runner.Plan(ctx, req)
				if err != nil {
					return err
				}
				settings = res.Settings
			}
			q, cached, err := runner.QuoteWithCacheInfo(ctx, req.Model, settings, req.Multiplier)
			if err != nil {
				return err
			}
			c.Logger.Debug("quote", "model", req.Model.ID, "steps", q.StepCount, "cached", cached)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(q)
			}
			printQuote(cmd.OutOrStdout(), q)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the quote as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
