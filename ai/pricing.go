package ai

// ModelPrice is the price of one million tokens for a model, split into
// input (prompt/embedding) and output (completion) rates in USD.
type ModelPrice struct {
	Input  float64
	Output float64
}

// PriceTable maps model names to their per-million-token prices. The table is
// injected configuration, never global state, so tests can substitute
// alternate pricing without cross-test interference. An unknown model prices
// at zero; callers that care should validate their model names up front.
type PriceTable map[string]ModelPrice

// DefaultPriceTable returns pricing for the models the platform commonly runs.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		"text-embedding-3-small": {Input: 0.02},
		"text-embedding-3-large": {Input: 0.13},
		"text-embedding-ada-002": {Input: 0.10},
		"gpt-4o-mini":            {Input: 0.15, Output: 0.60},
		"gpt-4o":                 {Input: 2.50, Output: 10.00},
	}
}

// EmbeddingCost prices an embedding call: tokens / 1e6 x input rate.
func (t PriceTable) EmbeddingCost(model string, tokens int) float64 {
	return float64(tokens) / 1_000_000 * t[model].Input
}

// CompletionCost prices a completion from its reported usage.
func (t PriceTable) CompletionCost(model string, usage TokenUsage) float64 {
	price := t[model]
	return float64(usage.PromptTokens)/1_000_000*price.Input +
		float64(usage.CompletionTokens)/1_000_000*price.Output
}
