package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stairbuilder/pkg/catalog"
	"github.com/matzehuels/stairbuilder/pkg/layout"
	"github.com/matzehuels/stairbuilder/pkg/pipeline"
)

// planFlags are the inputs shared by layout, price, graph, and session save.
type planFlags struct {
	modelID      string
	settingsFile string
	multiplier   float64
	steps        int
	bottomAngle  string
	topAngle     string
	fit          bool
	fromSession  bool
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.modelID, "model", "m", catalog.BuiltInModelID, "model id")
	cmd.Flags().StringVarP(&f.settingsFile, "settings", "s", "", "component settings file (.json, .toml, .yaml)")
	cmd.Flags().Float64Var(&f.multiplier, "multiplier", 0, "global array multiplier (default 1, or the settings file value)")
	cmd.Flags().IntVar(&f.steps, "steps", 0, "override the step and tread count")
	cmd.Flags().StringVar(&f.bottomAngle, "bottom-angle", "", "bottom end piece: none, left, right")
	cmd.Flags().StringVar(&f.topAngle, "top-angle", "", "top end piece: none, left, right")
	cmd.Flags().BoolVar(&f.fit, "fit", false, "re-fit anchors and spacing from the model before placing")
	cmd.Flags().BoolVar(&f.fromSession, "from-session", false, "start from the saved configuration")
}

// request resolves flags into a validated plan request. Explicit flags win
// over the settings file, which wins over the saved configuration.
func (c *CLI) request(ctx context.Context, cmd *cobra.Command, repo *catalog.Repository, f planFlags) (pipeline.Request, error) {
	var req pipeline.Request
	modelID := f.modelID

	if f.fromSession {
		store, err := c.cliSessions()
		if err != nil {
			return req, err
		}
		sess, err := store.Load(ctx)
		if err != nil {
			return req, err
		}
		if sess == nil {
			return req, fmt.Errorf("no saved configuration (run '%s session save' first)", appName)
		}
		cfg := sess.Configuration
		if !cmd.Flags().Changed("model") {
			modelID = cfg.ModelID
		}
		req.Settings = cfg.ComponentSettings.Clone()
		req.Multiplier = cfg.GlobalArrayMultiplier
		req.BottomAngle = cfg.SelectedBottomAngle
		req.TopAngle = cfg.SelectedTopAngle
	}

	m, err := repo.LoadModel(ctx, modelID)
	if err != nil {
		return req, err
	}
	req.Model = m

	if f.settingsFile != "" {
		settings, mult, err := readSettingsFile(f.settingsFile)
		if err != nil {
			return req, err
		}
		req.Settings = settings
		if mult != 0 {
			req.Multiplier = mult
		}
	}
	if f.multiplier != 0 {
		req.Multiplier = f.multiplier
	}
	if f.bottomAngle != "" {
		req.BottomAngle = layout.AngleSide(f.bottomAngle)
	}
	if f.topAngle != "" {
		req.TopAngle = layout.AngleSide(f.topAngle)
	}
	if f.steps > 0 {
		if len(req.Settings) == 0 {
			req.Settings = m.DefaultSettings()
		}
		req.Settings = withSteps(req.Settings, f.steps)
	}
	req.Fit = f.fit

	if err := req.ValidateAndSetDefaults(); err != nil {
		return req, err
	}
	return req, nil
}

func readSettingsFile(path string) (layout.Settings, float64, error) {
	format, err := catalog.FormatFromPath(path)
	if err != nil {
		return nil, 0, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open settings %s: %w", path, err)
	}
	defer file.Close()
	return pipeline.DecodeSettings(file, format)
}

// withSteps returns a copy of settings with the step and tread arrays set
// to n instances.
func withSteps(settings layout.Settings, n int) layout.Settings {
	out := settings.Clone()
	for _, id := range []string{layout.Step, layout.Step1} {
		if cs, ok := out[id]; ok {
			cs.Count = n
			out[id] = cs
		}
	}
	return out
}
