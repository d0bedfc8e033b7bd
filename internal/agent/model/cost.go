package model

import (
	"github.com/cloudwego/eino/schema"
)

// Pricing is the USD price of one million prompt and completion tokens.
type Pricing struct {
	InputPerM  float64
	OutputPerM float64
}

// geminiPricing covers the chat models the bot can be configured with
// (CHAT_MODEL). Text token rates.
var geminiPricing = map[string]Pricing{
	"gemini-2.5-flash":      {InputPerM: 0.30, OutputPerM: 2.50},
	"gemini-2.5-flash-lite": {InputPerM: 0.10, OutputPerM: 0.40},
	"gemini-2.5-pro":        {InputPerM: 1.25, OutputPerM: 10.00},
	"gemini-1.5-flash":      {InputPerM: 0.075, OutputPerM: 0.30},
}

// ResolvePricing looks up a chat model. Unlisted models price at zero, so
// usage is still logged but the cost reads 0.
func ResolvePricing(chatModel string) Pricing {
	return geminiPricing[chatModel]
}

// ComputeCost prices one reply's token usage. A reply without usage costs nothing.
func ComputeCost(usage *schema.TokenUsage, p Pricing) (inputCost, outputCost, total float64) {
	if usage == nil {
		return 0, 0, 0
	}
	const perM = 1_000_000.0
	inputCost = float64(usage.PromptTokens) * p.InputPerM / perM
	outputCost = float64(usage.CompletionTokens) * p.OutputPerM / perM
	return inputCost, outputCost, inputCost + outputCost
}
