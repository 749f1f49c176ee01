package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// configureCommand creates the interactive configurator command.
func (c *CLI) configureCommand() *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Adjust steps, multiplier, and end pieces with a live price",
		Long: `Open an interactive configurator for a model.

Change the step count, the global array multiplier, the bottom and top end
pieces, and auto-fit while the price updates. Pressing enter saves the
result as the current configuration (see 'session show').`,
		Args: cobra.NoArgs,
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

			result, err := tea.NewProgram(NewConfigureModel(req), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			final, ok := result.(ConfigureModel)
			if !ok || !final.Saved {
				printInfo("Configuration not saved")
				return nil
			}

			finalReq := final.Request()
			if err := finalReq.ValidateAndSetDefaults(); err != nil {
				return err
			}
			if _, err := c.saveConfiguration(ctx, configurationFor(finalReq)); err != nil {
				return err
			}
			printSuccess("Saved configuration · %s", StyleHighlight.Render(final.Quote().String()))
			printNextStep("Lay it out", appName+" layout --from-session")
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
