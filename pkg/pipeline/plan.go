package pipeline

import (
	"time"

	"github.com/matzehuels/stairbuilder/pkg/layout"
)

// ComputePlan runs the pipeline without caching. Diagnostics go to rep and
// are also returned in the result. The request must have been validated.
func ComputePlan(req Request, rep layout.Reporter) *Result {
	start := time.Now()
	collector := &layout.Collector{}

	settings := req.EffectiveSettings()
	fitted := false
	if req.Fit {
		settings, fitted = layout.Fit(settings, req.Model.Seed(), req.Multiplier, layout.FitOptions{
			BottomAngle: req.BottomAngle,
		})
	}

	e := layout.Engine{
		Settings:   settings,
		Multiplier: req.Multiplier,
		Reporter:   layout.Tee(collector, rep),
	}

	// End pieces take the place of the base and a disabled top.
	placements := e.Instances(e.DrawnIDs(req.BottomAngle, req.TopAngle)...)
	var angles []layout.AnglePiece
	if piece, ok := e.BottomAngle(req.BottomAngle); ok {
		angles = append(angles, piece)
	}
	if piece, ok := e.TopAngle(req.TopAngle); ok {
		angles = append(angles, piece)
	}

	return &Result{
		ModelID:     req.Model.ID,
		Settings:    settings,
		Fitted:      fitted,
		Placements:  placements,
		Angles:      angles,
		Quote:       quote(req.Model, e),
		Diagnostics: collector.Diagnostics(),
		Stats: Stats{
			Components: len(settings),
			Instances:  len(placements),
			Duration:   time.Since(start),
		},
	}
}
