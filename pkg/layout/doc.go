// Package layout places the repeated sub-assemblies of a parametric stair.
//
// A stair model is made of named components: a "base", one or more array
// components ("step" supports, "step1" treads) repeated along a spacing
// vector, and singleton caps such as "top". Each component carries a
// [ComponentSettings] record; the full set is a [Settings] map.
//
// # Operations
//
// Three pure functions make up the engine:
//
//   - [EffectiveCount] derives how many instances of a component are drawn,
//     applying the global array multiplier to array components only.
//   - [AutoPosition] computes the anchor of a component that follows another
//     array, either aligned with its last slot or one slot beyond it.
//   - [Position] returns the final position of instance i of a component,
//     offset by the base anchor for every component other than "base".
//
// None of them mutate their inputs, cache, or fail. A missing record or a
// follow target that does not exist degrades to a documented default and is
// reported to a [Reporter], so a continuously refreshing preview never
// stalls. Invalid numbers (NaN, negative multipliers) are not sanitized and
// propagate arithmetically; form validation belongs to the caller.
//
// # Example
//
//	settings := layout.DefaultSettings(model.Seed())
//	n := max(1, layout.EffectiveCount(layout.Step, settings, 1.0))
//	for i := range n {
//	    pos := layout.Position(layout.Step, i, settings, 1.0)
//	    // place the step asset at pos
//	}
//
// Beyond the core, the package also expands settings into placement lists
// ([Instances]), positions end pieces ([BottomAngle], [TopAngle]), re-centres
// a run around the base ([Fit]), evaluates data-only positioning strategies
// ([Strategy]), and renders the follow graph ([ToDOT], [RenderSVG]).
package layout
