package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stairbuilder/pkg/catalog"
	"github.com/matzehuels/stairbuilder/pkg/layout"
	"github.com/matzehuels/stairbuilder/pkg/pipeline"
	"github.com/matzehuels/stairbuilder/pkg/pricing"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// Configurator limits.
const (
	minSteps        = 1
	maxSteps        = 50
	multiplierStep  = 0.1
	minMultiplier   = 0.1
	maxMultiplier   = 5.0
	configureFields = 5
)

// Configurator rows, in display order.
const (
	fieldSteps = iota
	fieldMultiplier
	fieldBottomAngle
	fieldTopAngle
	fieldFit
)

var angleCycle = []layout.AngleSide{layout.AngleNone, layout.AngleLeft, layout.AngleRight}

// =============================================================================
// ConfigureModel - Interactive stair configurator
// =============================================================================

// ConfigureModel is the bubbletea model for adjusting a stair with a live
// price.
type ConfigureModel struct {
	Model       catalog.Model
	Settings    layout.Settings
	Multiplier  float64
	BottomAngle layout.AngleSide
	TopAngle    layout.AngleSide
	Fit         bool

	Cursor int
	Saved  bool
}

// NewConfigureModel starts the configurator from a validated request.
func NewConfigureModel(req pipeline.Request) ConfigureModel {
	return ConfigureModel{
		Model:       req.Model,
		Settings:    req.EffectiveSettings(),
		Multiplier:  req.Multiplier,
		BottomAngle: orNone(req.BottomAngle),
		TopAngle:    orNone(req.TopAngle),
		Fit:         req.Fit,
	}
}

func (m ConfigureModel) Init() tea.Cmd {
	return nil
}

func (m ConfigureModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "enter", "s":
		m.Saved = true
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j", "tab":
		if m.Cursor < configureFields-1 {
			m.Cursor++
		}
	case "left", "h", "-":
		m = m.adjust(-1)
	case "right", "l", "+", " ":
		m = m.adjust(1)
	}
	return m, nil
}

// adjust moves the value under the cursor one notch in direction dir.
func (m ConfigureModel) adjust(dir int) ConfigureModel {
	switch m.Cursor {
	case fieldSteps:
		n := min(max(m.Steps()+dir, minSteps), maxSteps)
		m.Settings = withSteps(m.Settings, n)
	case fieldMultiplier:
		v := math.Round((m.Multiplier+float64(dir)*multiplierStep)*10) / 10
		m.Multiplier = math.Min(math.Max(v, minMultiplier), maxMultiplier)
	case fieldBottomAngle:
		m.BottomAngle = cycleAngle(m.BottomAngle, dir)
	case fieldTopAngle:
		m.TopAngle = cycleAngle(m.TopAngle, dir)
	case fieldFit:
		m.Fit = !m.Fit
	}
	return m
}

func cycleAngle(side layout.AngleSide, dir int) layout.AngleSide {
	i := 0
	for j, s := range angleCycle {
		if s == side {
			i = j
		}
	}
	n := len(angleCycle)
	return angleCycle[((i+dir)%n+n)%n]
}

// Steps returns the step array count before the multiplier.
func (m ConfigureModel) Steps() int {
	if cs, ok := m.Settings.Get(layout.Step); ok {
		return cs.Count
	}
	return minSteps
}

// Request returns the current state as a plan request.
func (m ConfigureModel) Request() pipeline.Request {
	return pipeline.Request{
		Model:       m.Model,
		Settings:    m.Settings.Clone(),
		Multiplier:  m.Multiplier,
		BottomAngle: m.BottomAngle,
		TopAngle:    m.TopAngle,
		Fit:         m.Fit,
	}
}

// engine returns the engine the preview is computed with.
func (m ConfigureModel) engine() layout.Engine {
	settings := m.Settings
	if m.Fit {
		settings, _ = layout.Fit(settings, m.Model.Seed(), m.Multiplier, layout.FitOptions{BottomAngle: m.BottomAngle})
	}
	return layout.Engine{Settings: settings, Multiplier: m.Multiplier, Reporter: layout.Discard}
}

// Quote returns the live price.
func (m ConfigureModel) Quote() pricing.Quote {
	return pricing.Compute(m.Model.Pricing, m.engine())
}

func (m ConfigureModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Configure " + m.Model.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select  ←/→ adjust  ⏎ save  q quit"))
	b.WriteString("\n\n")

	fit := "off"
	if m.Fit {
		fit = "on"
	}
	rows := [][2]string{
		{"Steps", strconv.Itoa(m.Steps())},
		{"Multiplier", strconv.FormatFloat(m.Multiplier, 'f', 1, 64)},
		{"Bottom angle", string(m.BottomAngle)},
		{"Top angle", string(m.TopAngle)},
		{"Auto-fit", fit},
	}
	for i, row := range rows {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-14s ‹ %s ›", cursor, row[0], row[1])))
		b.WriteString("\n")
	}

	e := m.engine()
	instances := 0
	for _, id := range e.DrawnIDs(m.BottomAngle, m.TopAngle) {
		instances += e.InstanceCount(id)
	}
	for _, side := range []layout.AngleSide{m.BottomAngle, m.TopAngle} {
		if side != layout.AngleNone {
			instances++
		}
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d steps drawn · %d instances", e.EffectiveCount(layout.Step), instances)))
	b.WriteString("\n\n")
	for _, line := range m.Quote().Lines() {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", line[0], line[1]))
	}
	return b.String()
}
