package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stairbuilder/pkg/catalog"
)

// texturesCommand creates the textures command group.
func (c *CLI) texturesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "textures",
		Aliases: []string{"texture"},
		Short:   "Browse material textures",
	}

	cmd.AddCommand(c.texturesListCommand())
	cmd.AddCommand(c.texturesMapsCommand())

	return cmd
}

func (c *CLI) texturesListCommand() *cobra.Command {
	var (
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List textures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			index := repo.Textures()
			var textures []catalog.Texture
			if category != "" {
				textures, err = index.ByCategory(cmd.Context(), catalog.TextureCategory(category))
			} else {
				textures, err = index.All(cmd.Context())
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), textures)
			}
			rows := make([][]string, 0, len(textures))
			for _, t := range textures {
				rows = append(rows, []string{t.ID, t.Name, string(t.Category), t.Maps.Diffuse})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Name", "Category", "Diffuse"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only textures of this category: wood, metal")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func (c *CLI) texturesMapsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "maps <id>",
		Short: "Show the material slots a texture fills",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, s, err := c.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := repo.Textures().ByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			maps := catalog.TextureMaps(&t)
			slots := make([]string, 0, len(maps))
			for slot := range maps {
				slots = append(slots, slot)
			}
			slices.Sort(slots)
			rows := make([][]string, 0, len(slots))
			for _, slot := range slots {
				rows = append(rows, []string{slot, maps[slot]})
			}
			printTable(cmd.OutOrStdout(), []string{"Slot", "Path"}, rows)
			return nil
		},
	}
}
