package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stairbuilder/pkg/catalog"
	"github.com/matzehuels/stairbuilder/pkg/layout"
	"github.com/matzehuels/stairbuilder/pkg/pricing"
)

// modelsCommand creates the models command group.
func (c *CLI) modelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"model"},
		Short:   "Manage the model catalog",
	}

	cmd.AddCommand(c.modelsListCommand())
	cmd.AddCommand(c.modelsShowCommand())
	cmd.AddCommand(c.modelsAddCommand())
	cmd.AddCommand(c.modelsDeleteCommand())
	cmd.AddCommand(c.modelsExportCommand())
	cmd.AddCommand(c.modelsImportCommand())
	cmd.AddCommand(c.modelsValidateCommand())
	cmd.AddCommand(c.modelsStorageCommand())

	return cmd
}

func (c *CLI) modelsListCommand() *cobra.Command {
	var (
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List built-in and custom models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var models []catalog.Model
			if category != "" {
				models, err = repo.ModelsByCategory(cmd.Context(), category)
			} else {
				models, err = repo.Models(cmd.Context())
			}
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), models)
			}
			rows := make([][]string, 0, len(models))
			for _, m := range models {
				kind := "built-in"
				if m.Metadata.IsCustom {
					kind = "custom"
				}
				rows = append(rows, []string{
					m.ID, m.Name, m.Category, strconv.Itoa(len(m.Components)), kind,
					fmt.Sprintf("%g %s", m.Pricing.BasePrice, m.Pricing.Currency),
				})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Category", "Components", "Kind", "Base price"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only models in this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func (c *CLI) modelsShowCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:               "show <id>",
		Short:             "Show a model with its test configuration applied",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeModelIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			m, err := repo.LoadModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if format != "" {
				return catalog.EncodeModels(cmd.OutOrStdout(), catalog.Format(format), []catalog.Model{m})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, StyleTitle.Render(m.Name))
			if m.Description != "" {
				fmt.Fprintln(w, StyleDim.Render(m.Description))
			}
			fmt.Fprintln(w)
			rows := make([][]string, 0, len(m.Components))
			for _, id := range m.ComponentIDs() {
				comp := m.Components[id]
				rows = append(rows, []string{id, comp.Name, strategyName(m.Positioning[id]), m.ComponentTextures[id]})
			}
			printTable(w, []string{"Component", "Name", "Positioning", "Texture"}, rows)
			printQuote(w, pricing.QuoteFor(m.Pricing, m.DefaultSettings(), 1))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "print the full document: json, toml, yaml")
	return cmd
}

func (c *CLI) modelsAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add custom models from a JSON, TOML, or YAML file",
		Long: `Add custom models from a JSON, TOML, or YAML file.

Models without an id get one derived from their name. Adding a model whose id
already exists fails; use 'models import --overwrite' to replace models.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := readModelsFile(args[0])
			if err != nil {
				return err
			}
			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			for _, m := range models {
				if m.ID == "" {
					m.ID = catalog.GenerateModelID(m.Name, time.Now())
				}
				added, err := repo.AddModel(cmd.Context(), m)
				if err != nil {
					return err
				}
				printSuccess("Added %s", StyleHighlight.Render(added.ID))
			}
			return nil
		},
	}
	return cmd
}

func (c *CLI) modelsDeleteCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:               "delete <id>",
		Aliases:           []string{"rm"},
		Short:             "Delete a custom model",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeModelIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("model id required (or --all)")
			}
			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if all {
				n, err := repo.ClearCustomModels(cmd.Context())
				if err != nil {
					return err
				}
				printSuccess("Deleted %d custom models", n)
				return nil
			}
			if err := repo.DeleteModel(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every custom model")
	return cmd
}

func (c *CLI) modelsExportCommand() *cobra.Command {
	var (
		output     string
		format     string
		customOnly bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export models as JSON, TOML, or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := catalog.Format(format)
			if output != "" && !cmd.Flags().Changed("format") {
				var err error
				if f, err = catalog.FormatFromPath(output); err != nil {
					return err
				}
			}

			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var models []catalog.Model
			if customOnly {
				models, err = repo.CustomModels(cmd.Context())
			} else {
				models, err = repo.Models(cmd.Context())
			}
			if err != nil {
				return err
			}

			if output == "" {
				return catalog.EncodeModels(cmd.OutOrStdout(), f, models)
			}
			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := catalog.EncodeModels(file, f, models); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			printSuccess("Exported %d models", len(models))
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (format from extension)")
	cmd.Flags().StringVarP(&format, "format", "f", string(catalog.FormatJSON), "format: json, toml, yaml")
	cmd.Flags().BoolVar(&customOnly, "custom", false, "export only custom models")
	return cmd
}

func (c *CLI) modelsImportCommand() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import models exported with 'models export'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := readModelsFile(args[0])
			if err != nil {
				return err
			}
			var custom []catalog.Model
			for _, m := range models {
				if !catalog.IsBuiltInModel(m.ID) {
					custom = append(custom, m)
				}
			}

			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			prog := newProgress(loggerFromContext(cmd.Context()))
			res, err := repo.ImportModels(cmd.Context(), custom, overwrite)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Imported %d models", len(res.Added)+len(res.Updated)))
			if skipped := len(models) - len(custom); skipped > 0 {
				printDetail("Skipped %d built-in models", skipped)
			}
			if len(res.Added) > 0 {
				printSuccess("Added %s", strings.Join(res.Added, ", "))
			}
			if len(res.Updated) > 0 {
				printSuccess("Updated %s", strings.Join(res.Updated, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing custom models")
	return cmd
}

func (c *CLI) modelsValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check model documents without storing them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := readModelsFile(args[0])
			if err != nil {
				return err
			}
			invalid := 0
			for _, m := range models {
				problems := m.Problems()
				if len(problems) == 0 {
					printSuccess("%s", m.ID)
					continue
				}
				invalid++
				printError("%s", orUnnamed(m.ID))
				for _, p := range problems {
					printDetail("%s", p)
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d models are invalid", invalid, len(models))
			}
			return nil
		},
	}
}

func (c *CLI) modelsStorageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "storage",
		Short: "Show how much of the custom model quota is used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			info, err := repo.StorageInfo(cmd.Context())
			if err != nil {
				return err
			}
			printKeyValue("Models", strconv.Itoa(info.ModelCount))
			printKeyValue("Used", fmt.Sprintf("%d / %d bytes", info.Used, info.Available))
			printKeyValue("Percentage", fmt.Sprintf("%.1f%%", info.Percentage))
			if info.Percentage >= 90 {
				printWarning("Custom model storage is almost full")
			}
			return nil
		},
	}
}

// completeModelIDs completes model ids from the catalog.
func (c *CLI) completeModelIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if err := c.loadConfig(); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	repo, s, err := c.openRepo(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer s.Close()
	models, err := repo.Models(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var ids []string
	for _, m := range models {
		if strings.HasPrefix(m.ID, toComplete) {
			ids = append(ids, m.ID)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

func readModelsFile(path string) ([]catalog.Model, error) {
	format, err := catalog.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return catalog.DecodeModels(file, format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orUnnamed(id string) string {
	if id == "" {
		return "(unnamed model)"
	}
	return id
}

func strategyName(s layout.Strategy) string {
	switch {
	case s.Kind == "":
		return "-"
	case s.Target != "":
		return fmt.Sprintf("%s %s", s.Kind, s.Target)
	case s.Spacing != "":
		return fmt.Sprintf("%s %s", s.Kind, s.Spacing)
	}
	return string(s.Kind)
}
