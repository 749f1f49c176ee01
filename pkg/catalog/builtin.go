package catalog

import (
	"time"

	"github.com/matzehuels/stairbuilder/pkg/geom"
	"github.com/matzehuels/stairbuilder/pkg/layout"
	"github.com/matzehuels/stairbuilder/pkg/pricing"
)

// Texture ids shipped with every catalog.
const (
	TextureDarkCherryWood = "dark-cherry-wood"
	TexturePaintedMetal   = "painted-metal"
)

// BuiltInModelID is the id of the model shipped with every catalog.
const BuiltInModelID = "limon-central-droit-droit"

// builtInEpoch stamps built-in entries so they serialize deterministically.
var builtInEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func limonAsset(part string) string {
	return "/models/limon_central/limon_central_droit_droit_" + part + ".glb"
}

// BuiltInModels returns fresh copies of the compiled-in models.
func BuiltInModels() []Model {
	return []Model{
		{
			ID:          BuiltInModelID,
			Name:        "Limon Central Droit/Droit",
			Description: "Central stringer staircase with straight/straight configuration",
			Category:    "central-stringer",
			Components: map[string]Component{
				layout.Base:  {ID: layout.Base, Name: "Base", URL: limonAsset("base"), DefaultTexture: TexturePaintedMetal},
				layout.Step:  {ID: layout.Step, Name: "Support Step", URL: limonAsset("step"), DefaultTexture: TexturePaintedMetal},
				layout.Step1: {ID: layout.Step1, Name: "Tread", URL: limonAsset("step1"), DefaultTexture: TextureDarkCherryWood},
				layout.Top:   {ID: layout.Top, Name: "Top", URL: limonAsset("top"), DefaultTexture: TexturePaintedMetal},
			},
			ComponentTextures: map[string]string{
				layout.Base:  TexturePaintedMetal,
				layout.Step:  TexturePaintedMetal,
				layout.Step1: TextureDarkCherryWood,
				layout.Top:   TexturePaintedMetal,
			},
			Positioning: layout.DefaultStrategies(),
			Defaults: Defaults{
				ArraySize:   8,
				Scale:       geom.V(0.01, 0.01, 0.01),
				GlobalScale: 0.01,
				Positions: map[string]geom.Vec3{
					layout.Base:  geom.Zero,
					layout.Step:  geom.Zero,
					layout.Step1: geom.Zero,
					layout.Top:   geom.Zero,
				},
				StepSpacing:  geom.V(-10.133, 6.941, 0.0),
				Step1Spacing: geom.V(-10.133, 6.941, 0.3),
			},
			Pricing: pricing.Pricing{BasePrice: 2500, PricePerStep: 150, Currency: "EUR"},
			Metadata: Metadata{
				Version:     "1.0.0",
				Author:      "System",
				DateCreated: builtInEpoch.Format(time.RFC3339),
				CreatedAt:   builtInEpoch,
				UpdatedAt:   builtInEpoch,
			},
		},
	}
}

func builtInModel(id string) (Model, bool) {
	for _, m := range BuiltInModels() {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// IsBuiltInModel reports whether id names a compiled-in model.
func IsBuiltInModel(id string) bool {
	_, ok := builtInModel(id)
	return ok
}

// BuiltInCategories returns the compiled-in categories.
func BuiltInCategories() []Category {
	return []Category{
		{ID: "central-stringer", Name: "Central Stringer", Description: "Stairs with a central support beam", Type: CategoryStair},
		{ID: "side-stringer", Name: "Side Stringer", Description: "Stairs with side support beams", Type: CategoryStair},
		{ID: "spiral", Name: "Spiral", Description: "Spiral staircases", Type: CategoryStair},
		{ID: "floating", Name: "Floating", Description: "Floating stairs with hidden support", Type: CategoryStair},
	}
}

// IsBuiltInCategory reports whether id names a compiled-in category.
func IsBuiltInCategory(id string) bool {
	for _, c := range BuiltInCategories() {
		if c.ID == id {
			return true
		}
	}
	return false
}

// BuiltInTextures returns the compiled-in textures.
func BuiltInTextures() []Texture {
	return []Texture{
		{
			ID:       TextureDarkCherryWood,
			Name:     "Dark Cherry Wood",
			Category: TextureWood,
			Maps: TextureFiles{
				Diffuse: "/textures/wood/dark-cherrywood-diffuse.jpg",
				Normal:  "/textures/wood/dark-cherrywood-normal.jpg",
				AO:      "/textures/wood/dark-cherrywood-ao.jpg",
			},
			Material: MaterialProps{Metalness: 0.0, Roughness: 0.9, Color: 0x8b4513},
		},
		{
			ID:       TexturePaintedMetal,
			Name:     "Painted Metal",
			Category: TextureMetal,
			Maps: TextureFiles{
				Diffuse:    "/textures/metal/painted_metal_diffuse.jpg",
				Normal:     "/textures/metal/painted_metal_normal_opengl.jpg",
				Specular:   "/textures/metal/painted_metal_specular.jpg",
				Glossiness: "/textures/metal/painted_metal_glossiness.png",
			},
			Material: MaterialProps{Metalness: 0.8, Roughness: 0.2, Color: 0xcccccc},
		},
	}
}
