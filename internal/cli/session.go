package cli

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stairbuilder/pkg/layout"
	"github.com/matzehuels/stairbuilder/pkg/pipeline"
	"github.com/matzehuels/stairbuilder/pkg/session"
)

// sessionCommand creates the session command group for the saved
// configuration.
func (c *CLI) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Save, show, or clear the current stair configuration",
	}

	cmd.AddCommand(c.sessionSaveCommand())
	cmd.AddCommand(c.sessionShowCommand())
	cmd.AddCommand(c.sessionClearCommand())
	cmd.AddCommand(c.sessionPathCommand())

	return cmd
}

func (c *CLI) sessionSaveCommand() *cobra.Command {
	var (
		flags    planFlags
		textures map[string]string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a configuration for later layout, price, or graph runs",
		Long: `Save a configuration for later runs.

The configuration records the model, the component settings, the global
multiplier, the end pieces, and the texture of each component. Other
commands pick it up with --from-session.`,
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
			cfg := configurationFor(req)
			for comp, tex := range textures {
				if err := repo.Textures().Validate(ctx, tex); err != nil {
					return err
				}
				cfg.ComponentTextures[comp] = tex
			}

			sess, err := c.saveConfiguration(ctx, cfg)
			if err != nil {
				return err
			}
			printSuccess("Saved configuration for %s", StyleHighlight.Render(cfg.ModelID))
			printDetail("Expires %s", sess.ExpiresAt.Format(time.DateOnly))
			printNextStep("Lay it out", appName+" layout --from-session")
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringToStringVar(&textures, "texture", nil, "component texture, e.g. --texture step1=dark-cherry-wood")
	return cmd
}

func (c *CLI) sessionShowCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.cliSessions()
			if err != nil {
				return err
			}
			sess, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if sess == nil {
				printInfo("No saved configuration")
				return nil
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), sess)
			}

			cfg := sess.Configuration
			printKeyValue("Model", cfg.ModelID)
			printKeyValue("Multiplier", strconv.FormatFloat(cfg.GlobalArrayMultiplier, 'g', -1, 64))
			printKeyValue("Bottom angle", string(orNone(cfg.SelectedBottomAngle)))
			printKeyValue("Top angle", string(orNone(cfg.SelectedTopAngle)))
			printKeyValue("Updated", sess.UpdatedAt.Format(time.DateTime))

			rows := make([][]string, 0, len(cfg.ComponentSettings))
			for _, id := range cfg.ComponentSettings.IDs() {
				cs := cfg.ComponentSettings[id]
				n := layout.EffectiveCountOf(id, &cs, cfg.GlobalArrayMultiplier)
				rows = append(rows, []string{id, strconv.FormatBool(cs.Enabled), strconv.Itoa(cs.Count), strconv.Itoa(n), cfg.ComponentTextures[id]})
			}
			printTable(cmd.OutOrStdout(), []string{"Component", "Array", "Count", "Effective", "Texture"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func (c *CLI) sessionClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.cliSessions()
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Cleared saved configuration")
			return nil
		},
	}
}

func (c *CLI) sessionPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the saved configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.cliSessions()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.Path())
			return nil
		},
	}
}

// saveConfiguration stores cfg as the CLI's current configuration.
func (c *CLI) saveConfiguration(ctx context.Context, cfg session.Configuration) (*session.Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := c.cliSessions()
	if err != nil {
		return nil, err
	}
	ttl := c.cfg().Session.TTL.Duration
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return store.Save(ctx, cfg, ttl)
}

// configurationFor captures a validated request as a saved configuration.
// Fitted settings are stored so the saved layout does not change if the
// model's seed is edited later.
func configurationFor(req pipeline.Request) session.Configuration {
	settings := req.EffectiveSettings()
	if req.Fit {
		settings, _ = layout.Fit(settings, req.Model.Seed(), req.Multiplier, layout.FitOptions{BottomAngle: req.BottomAngle})
	}
	textures := maps.Clone(req.Model.ComponentTextures)
	if textures == nil {
		textures = map[string]string{}
	}
	return session.Configuration{
		ModelID:               req.Model.ID,
		GlobalScale:           req.Model.Defaults.GlobalScale,
		GlobalArrayMultiplier: req.Multiplier,
		ComponentSettings:     settings,
		ComponentTextures:     textures,
		SelectedAngleType:     session.DefaultAngleType,
		SelectedBottomAngle:   req.BottomAngle,
		SelectedTopAngle:      req.TopAngle,
	}
}

func orNone(side layout.AngleSide) layout.AngleSide {
	if side == "" {
		return layout.AngleNone
	}
	return side
}

