package repository

import (
	"fmt"
	"strings"

	"golang-news-signal/internal/pipeline/dto"
)

const systemPrompt = "Return only JSON."

// BuildAnalyzeSignalPrompt renders the single analysis prompt used by every provider.
func BuildAnalyzeSignalPrompt(text string) string {
	promptTemplate := `You are the editor of a market news digest. Analyze the item below and rate how much it matters to markets.

Input:
%s

Rules:
- Facts only; keep tone neutral and infer sentiment from the facts separately
- State concrete numbers with units when you mention them
- Never end with a cut-off sentence

Return a JSON object with the fields:
title_ru: headline translated to Russian, at most 90 characters, no clickbait
summary: one sentence of 22 to 28 words with confirmed facts only
label: one of %s
impact: 0-100 (event scale, source reliability, concrete figures, likelihood of consequences)
confidence: 0-100
sentiment: -1, 0 or 1 (1 bullish: rising prices or adoption, -1 bearish: falling prices or liquidations, 0 neutral)
region: one of %s
tickers: list of ticker symbols
what: what happened, one sentence
why_matters: why it matters, one or two bullets
action_window: one of %s
analysis: market, industry, risk and opportunity assessment in 100-150 words

Only JSON, no extra words.`

	return fmt.Sprintf(promptTemplate,
		strings.TrimSpace(text),
		strings.Join(dto.LabelSet, ","),
		strings.Join(dto.RegionSet, ","),
		strings.Join(dto.ActionWindowSet, "/"),
	)
}
