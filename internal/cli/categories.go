package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stairbuilder/pkg/catalog"
)

// categoriesCommand creates the categories command group.
func (c *CLI) categoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage model categories",
	}

	cmd.AddCommand(c.categoriesListCommand())
	cmd.AddCommand(c.categoriesAddCommand())
	cmd.AddCommand(c.categoriesDeleteCommand())

	return cmd
}

func (c *CLI) categoriesListCommand() *cobra.Command {
	var (
		typ     string
		asJSON  bool
		options bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if options {
				opts, err := repo.CategoryOptions(cmd.Context())
				if err != nil {
					return err
				}
				for _, o := range opts {
					fmt.Fprintln(cmd.OutOrStdout(), categoryLabel(o))
				}
				return nil
			}

			var cats []catalog.Category
			if typ != "" {
				cats, err = repo.CategoriesByType(cmd.Context(), catalog.CategoryType(typ))
			} else {
				cats, err = repo.Categories(cmd.Context())
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cats)
			}
			rows := make([][]string, 0, len(cats))
			for _, cat := range cats {
				rows = append(rows, []string{cat.ID, cat.Name, string(cat.Type), strconv.FormatBool(cat.IsCustom), cat.Description})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Type", "Custom", "Description"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "only categories of this type: stair, component, accessory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	cmd.Flags().BoolVar(&options, "options", false, "print one \"label (id)\" line per category")
	return cmd
}

func (c *CLI) categoriesAddCommand() *cobra.Command {
	var cat catalog.Category
	var typ string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat.Name = args[0]
			cat.Type = catalog.CategoryType(typ)
			if cat.ID == "" {
				cat.ID = catalog.GenerateCategoryID(cat.Name)
			}

			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			added, err := repo.AddCategory(cmd.Context(), cat)
			if err != nil {
				return err
			}
			printSuccess("Added category %s", StyleHighlight.Render(added.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&cat.ID, "id", "", "category id (default: derived from the name)")
	cmd.Flags().StringVarP(&typ, "type", "t", string(catalog.CategoryStair), "category type: stair, component, accessory")
	cmd.Flags().StringVarP(&cat.Description, "description", "d", "", "description")
	return cmd
}

func (c *CLI) categoriesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a custom category",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := repo.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted category %s", args[0])
			return nil
		},
	}
}

// categoryLabel formats a select option for display.
func categoryLabel(o catalog.Option) string {
	return fmt.Sprintf("%s (%s)", o.Label, o.Value)
}
