package cache

// PlanKeyOpts are the inputs that change a placement plan.
type PlanKeyOpts struct {
	SettingsHash string  `json:"settings"`
	Multiplier   float64 `json:"multiplier"`
	Fit          bool    `json:"fit"`
	BottomAngle  string  `json:"bottom_angle"`
	TopAngle     string  `json:"top_angle"`
}

// QuoteKeyOpts are the inputs that change a price quote.
type QuoteKeyOpts struct {
	SettingsHash string  `json:"settings"`
	Multiplier   float64 `json:"multiplier"`
}

// GraphKeyOpts are the inputs that change a rendered dependency graph.
type GraphKeyOpts struct {
	Multiplier float64 `json:"multiplier"`
	Format     string  `json:"format"`
}

// Keyer generates cache keys.
type Keyer interface {
	// PlanKey identifies the placements of a model under given settings.
	PlanKey(modelID string, opts PlanKeyOpts) string

	// QuoteKey identifies the price of a model under given settings.
	QuoteKey(modelID string, opts QuoteKeyOpts) string

	// GraphKey identifies a rendered component graph.
	GraphKey(settingsHash string, opts GraphKeyOpts) string
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key format.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PlanKey implements Keyer.
func (DefaultKeyer) PlanKey(modelID string, opts PlanKeyOpts) string {
	return hashKey("plan", modelID, opts)
}

// QuoteKey implements Keyer.
func (DefaultKeyer) QuoteKey(modelID string, opts QuoteKeyOpts) string {
	return hashKey("quote", modelID, opts)
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(settingsHash string, opts GraphKeyOpts) string {
	return hashKey("graph", settingsHash, opts)
}
