// Package pricing computes the displayed price of a configured stair.
//
// A stair is priced as a fixed base plus a per-step amount multiplied by the
// number of steps actually drawn, so changing the global array multiplier or
// the step count moves the price the same way it moves the geometry.
package pricing

import (
	"fmt"
	"math"

	"github.com/matzehuels/stairbuilder/pkg/errors"
	"github.com/matzehuels/stairbuilder/pkg/layout"
)

// DefaultCurrency is used when a model does not name one.
const DefaultCurrency = "EUR"

// Pricing is the price table of a model.
type Pricing struct {
	BasePrice    float64 `json:"basePrice" toml:"base_price" yaml:"basePrice"`
	PricePerStep float64 `json:"pricePerStep" toml:"price_per_step" yaml:"pricePerStep"`
	Currency     string  `json:"currency" toml:"currency" yaml:"currency"`
}

// Validate rejects negative or non-finite amounts.
func (p Pricing) Validate() error {
	for name, v := range map[string]float64{"base price": p.BasePrice, "price per step": p.PricePerStep} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return errors.New(errors.ErrCodeInvalidModel, "%s must be a non-negative number, got %v", name, v)
		}
	}
	return nil
}

// Quote is a computed price.
type Quote struct {
	BasePrice  float64 `json:"basePrice"`
	StepCount  int     `json:"stepCount"`
	StepsPrice float64 `json:"stepsPrice"`
	Total      float64 `json:"total"`
	Currency   string  `json:"currency"`
}

// String formats the total, e.g. "3700 EUR".
func (q Quote) String() string {
	return fmt.Sprintf("%s %s", formatAmount(q.Total), q.Currency)
}

// Lines returns the labelled lines of a price summary.
func (q Quote) Lines() [][2]string {
	return [][2]string{
		{"Base price", fmt.Sprintf("%s %s", formatAmount(q.BasePrice), q.Currency)},
		{fmt.Sprintf("Steps (%d)", q.StepCount), fmt.Sprintf("%s %s", formatAmount(q.StepsPrice), q.Currency)},
		{"Total", q.String()},
	}
}

func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// Compute prices settings under p. The step count is the effective count of
// the "step" array, so the multiplier is applied and rounded exactly as the
// layout engine does it.
func Compute(p Pricing, e layout.Engine) Quote {
	n := e.EffectiveCount(layout.Step)
	currency := p.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	steps := p.PricePerStep * float64(n)
	return Quote{
		BasePrice:  p.BasePrice,
		StepCount:  n,
		StepsPrice: steps,
		Total:      p.BasePrice + steps,
		Currency:   currency,
	}
}

// QuoteFor is Compute over a fresh engine using the default reporter.
func QuoteFor(p Pricing, settings layout.Settings, multiplier float64) Quote {
	return Compute(p, layout.NewEngine(settings, multiplier))
}
