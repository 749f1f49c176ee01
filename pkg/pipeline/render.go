package pipeline

import (
	"context"

	"github.com/matzehuels/stairbuilder/pkg/catalog"
	"github.com/matzehuels/stairbuilder/pkg/layout"
	"github.com/matzehuels/stairbuilder/pkg/pricing"
)

// RenderGraph renders the component dependency graph in the given format.
func RenderGraph(ctx context.Context, settings layout.Settings, multiplier float64, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG:
		return layout.RenderSVG(ctx, settings, multiplier)
	default:
		return []byte(layout.ToDOT(settings, multiplier)), nil
	}
}

func quote(m catalog.Model, e layout.Engine) pricing.Quote {
	return pricing.Compute(m.Pricing, e)
}
