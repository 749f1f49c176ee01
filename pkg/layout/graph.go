package layout

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT digraph of the component relationships in
// settings: one node per component labelled with its effective count, a
// solid edge from every active follower to the array it follows, and a
// dashed edge from the base to every component it anchors.
//
// Followers whose target does not exist point at a red placeholder node so
// the broken link is visible.
func ToDOT(settings Settings, multiplier float64) string {
	e := Engine{Settings: settings, Multiplier: multiplier, Reporter: Discard}

	var buf bytes.Buffer
	buf.WriteString("digraph Components {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, shape=box, style=\"filled,rounded\", fillcolor=white];\n\n")

	ids := settings.IDs()
	for _, id := range ids {
		cs := settings[id]
		shape := "box"
		if cs.Enabled && IsArrayComponent(id) {
			shape = "box3d"
		}
		fmt.Fprintf(&buf, "  %q [label=%q, shape=%s];\n", id, fmt.Sprintf("%s ×%d", id, e.InstanceCount(id)), shape)
	}
	buf.WriteString("\n")

	_, hasBase := settings[Base]
	for _, id := range ids {
		cs := settings[id]
		if cs.Follows() {
			target := cs.FollowTarget()
			slot := "last"
			if cs.PositionAtEnd {
				slot = "end"
			}
			if _, ok := settings[target]; !ok {
				fmt.Fprintf(&buf, "  %q [label=%q, color=red, fontcolor=red];\n", target, target+" (missing)")
			}
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", id, target, slot)
		}
		if hasBase && id != Base {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, arrowhead=none, color=gray];\n", Base, id)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders ToDOT output as an SVG document.
//
// All errors are wrapped with context using fmt.Errorf with %w.
func RenderSVG(ctx context.Context, settings Settings, multiplier float64) ([]byte, error) {
	dot := ToDOT(settings, multiplier)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
