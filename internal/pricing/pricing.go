// Package pricing estimates the provider cost of a completed model call
// from its token usage. Prices are USD per million tokens, split into
// prompt and completion rates. The table covers the models the service is
// normally configured with; unknown models report ok=false and cost zero
// rather than guessing.
package pricing

// rate holds USD-per-million-token prices for one model.
type rate struct {
	inputPerM  float64
	outputPerM float64
}

// catalog maps model identifiers to their chat-completion rates.
// Bedrock Anthropic models use on-demand us-east-1 pricing.
var catalog = map[string]rate{
	"gpt-4o-mini":   {inputPerM: 0.15, outputPerM: 0.60},
	"gpt-4o":        {inputPerM: 2.50, outputPerM: 10.00},
	"gpt-4.1-mini":  {inputPerM: 0.40, outputPerM: 1.60},
	"gpt-3.5-turbo": {inputPerM: 0.50, outputPerM: 1.50},
	"o3-mini":       {inputPerM: 1.10, outputPerM: 4.40},

	"anthropic.claude-3-haiku-20240307-v1:0":    {inputPerM: 0.25, outputPerM: 1.25},
	"anthropic.claude-3-5-haiku-20241022-v1:0":  {inputPerM: 0.80, outputPerM: 4.00},
	"anthropic.claude-3-5-sonnet-20241022-v2:0": {inputPerM: 3.00, outputPerM: 15.00},
}

// Estimate returns the USD cost of a call that consumed inputTokens prompt
// tokens and outputTokens completion tokens. ok is false when the model is
// not in the catalog; the cost is zero in that case.
func Estimate(model string, inputTokens, outputTokens int) (usd float64, ok bool) {
	r, ok := catalog[model]
	if !ok {
		return 0, false
	}
	usd = r.inputPerM*float64(inputTokens)/1_000_000 +
		r.outputPerM*float64(outputTokens)/1_000_000
	return usd, true
}

// Known reports whether the catalog has an entry for model.
func Known(model string) bool {
	_, ok := catalog[model]
	return ok
}
