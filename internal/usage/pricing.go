// Package usage converts raw token counts into cost estimates and persists
// append-only usage records. Recording is best-effort and never fails the
// primary workflow.
package usage

import "strings"

// price holds USD rates per million tokens for one pricing bucket.
type price struct {
	input  float64
	output float64
}

// pricing maps model identifier prefixes to pricing buckets. Longest prefix
// wins; unknown models price at zero rather than erroring.
var pricing = map[string]price{
	"gemini-2.5-flash-lite": {input: 0.10, output: 0.40},
	"gemini-2.5-flash":      {input: 0.30, output: 2.50},
	"gemini-2.5-pro":        {input: 1.25, output: 10.00},
	"gemini-1.5-flash":      {input: 0.075, output: 0.30},
	"gemini-1.5-pro":        {input: 1.25, output: 5.00},
}

// priceFor normalizes a model identifier to a pricing bucket.
func priceFor(modelID string) price {
	modelID = strings.ToLower(strings.TrimSpace(modelID))

	best := ""
	for prefix := range pricing {
		if strings.HasPrefix(modelID, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return price{}
	}
	return pricing[best]
}

// EstimateCost returns the estimated USD cost of a call, independent of the
// recording side effect.
func EstimateCost(modelID string, promptTokens, outputTokens int32) float64 {
	p := priceFor(modelID)
	return float64(promptTokens)/1e6*p.input + float64(outputTokens)/1e6*p.output
}
