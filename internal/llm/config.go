// Package llm wraps the external structured-generation service with typed
// errors, retry with backoff and fire-and-forget usage accounting.
package llm

// ModelTier selects the capability level of the model used for a call.
type ModelTier string

// Model tiers
const (
	// TierLite handles mechanical extraction and batch document processing.
	TierLite ModelTier = "lite"
	// TierStandard handles structured evaluation output.
	TierStandard ModelTier = "standard"
	// TierAdvanced handles cross-candidate reasoning (shortlist, decision).
	TierAdvanced ModelTier = "advanced"
)

// Config maps model tiers to concrete model identifiers.
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the default Gemini tier mapping.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// Model resolves the model identifier for a tier, falling back to the
// standard tier when the requested one is not configured.
func (c *Config) Model(tier ModelTier) string {
	if m, ok := c.Models[tier]; ok {
		return m
	}
	return c.Models[TierStandard]
}
