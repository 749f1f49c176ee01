// Package pipeline turns a model and its settings into a placement plan.
//
// This package implements the settings → layout → price pipeline shared by
// the CLI, the interactive configurator, and the HTTP API. By centralizing
// it, every entry point fits, places, and prices a stair the same way.
//
// # Architecture
//
// A plan is computed in three steps:
//
//  1. Prepare: fall back to the model default settings, normalize, and
//     optionally fit the run to the model seed
//  2. Place: expand every component into placements and add end pieces
//  3. Price: quote the stair from the effective step count
//
// The Runner wraps the computation with caching and observability hooks.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Plan(ctx, pipeline.Request{
//	    Model:      model,
//	    Multiplier: 1.5,
//	    Fit:        true,
//	})
//	if err != nil {
//	    return err
//	}
//	for _, p := range res.Placements {
//	    fmt.Println(p.Component, p.Index, p.Position)
//	}
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/stairbuilder/pkg/catalog"
	"github.com/matzehuels/stairbuilder/pkg/errors"
	"github.com/matzehuels/stairbuilder/pkg/layout"
	"github.com/matzehuels/stairbuilder/pkg/pricing"
)

// DefaultMultiplier is used when a request leaves the multiplier unset.
const DefaultMultiplier = 1.0

// Graph output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported graph formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// ValidateFormat checks that a graph format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// =============================================================================
// Request - Plan Input
// =============================================================================

// Request is one plan computation. It supports JSON serialization for API
// requests; the model is resolved by the caller.
type Request struct {
	Model catalog.Model `json:"-"`

	// Settings overrides the model defaults when non-empty.
	Settings    layout.Settings  `json:"settings,omitempty"`
	Multiplier  float64          `json:"multiplier,omitempty"`
	BottomAngle layout.AngleSide `json:"bottom_angle,omitempty"`
	TopAngle    layout.AngleSide `json:"top_angle,omitempty"`
	Fit         bool             `json:"fit,omitempty"`

	// Refresh skips the cache lookup; the result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the request and applies defaults.
// This method is idempotent.
func (r *Request) ValidateAndSetDefaults() error {
	if r.validated {
		return nil
	}
	if r.Model.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "model is required")
	}
	if r.Multiplier == 0 {
		r.Multiplier = DefaultMultiplier
	}
	if err := errors.ValidateMultiplier(r.Multiplier); err != nil {
		return err
	}
	for _, side := range []*layout.AngleSide{&r.BottomAngle, &r.TopAngle} {
		parsed, err := layout.ParseAngleSide(string(*side))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSettings, err, "invalid end piece")
		}
		*side = parsed
	}
	for id, cs := range r.Settings {
		if err := errors.ValidateComponentID(id); err != nil {
			return err
		}
		if cs.Enabled {
			if err := errors.ValidateCount(id, cs.Count); err != nil {
				return err
			}
		}
	}
	r.validated = true
	return nil
}

// EffectiveSettings returns the normalized settings the plan runs on: the
// request settings, or the model defaults when none were given.
func (r *Request) EffectiveSettings() layout.Settings {
	if len(r.Settings) == 0 {
		return r.Model.DefaultSettings().Normalize()
	}
	return r.Settings.Normalize()
}

// =============================================================================
// Result - Plan Output
// =============================================================================

// Result contains the outputs of a plan computation.
type Result struct {
	ModelID string `json:"model_id"`

	// Settings are the settings the plan was computed from, after fitting.
	Settings layout.Settings `json:"settings"`

	// Fitted reports whether fitting changed the settings.
	Fitted bool `json:"fitted,omitempty"`

	Placements  []layout.Placement  `json:"placements"`
	Angles      []layout.AnglePiece `json:"angles,omitempty"`
	Quote       pricing.Quote       `json:"quote"`
	Diagnostics []layout.Diagnostic `json:"diagnostics,omitempty"`

	Stats Stats `json:"stats"`

	// CacheHit tracks whether the result came from cache.
	CacheHit bool `json:"cache_hit"`
}

// Stats contains plan execution statistics.
type Stats struct {
	Components int           `json:"components"`
	Instances  int           `json:"instances"`
	Duration   time.Duration `json:"duration"`
}

// Counts returns the number of placements per component.
func (r *Result) Counts() map[string]int {
	out := make(map[string]int)
	for _, p := range r.Placements {
		out[p.Component]++
	}
	return out
}

func (r *Result) String() string {
	return fmt.Sprintf("%s: %d placements, %s", r.ModelID, len(r.Placements), r.Quote)
}
