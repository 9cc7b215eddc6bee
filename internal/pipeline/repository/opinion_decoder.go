package repository

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/pkg/common"
	"golang-news-signal/pkg/utils"
)

// DecodeTier reports which fallback level produced an opinion.
type DecodeTier int

const (
	TierStrict DecodeTier = iota + 1
	TierFragment
	TierPlaceholder
)

var fragmentRe = regexp.MustCompile(`(?s)\{.*\}`)

// DecodeOpinion turns a provider's raw answer into an opinion. It never fails:
// a strict JSON decode is tried first, then the outermost {...} fragment, and
// finally a placeholder whose summary is the first 200 characters of raw.
func DecodeOpinion(raw string) (*dto.ProviderOpinion, DecodeTier) {
	if fields, ok := decodeObject(stripFences(raw)); ok {
		return opinionFromFields(fields), TierStrict
	}
	if fragment := fragmentRe.FindString(raw); fragment != "" {
		if fields, ok := decodeObject(fragment); ok {
			return opinionFromFields(fields), TierFragment
		}
	}

	op := DegradedOpinion(utils.Truncate(strings.TrimSpace(raw), 200))
	op.What = dto.PlaceholderWhat
	op.WhyMatters = dto.PlaceholderWhyMatters
	return op, TierPlaceholder
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func decodeObject(s string) (map[string]interface{}, bool) {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(s), &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func opinionFromFields(f map[string]interface{}) *dto.ProviderOpinion {
	op := &dto.ProviderOpinion{
		TranslatedTitle: firstText(f, "title_ru", "translated_title"),
		Summary:         firstText(f, "summary"),
		Label:           oneOf(strings.ToLower(firstText(f, "label")), dto.LabelSet, dto.LabelOther),
		Impact:          clampScore(intOr(f, "impact", dto.DefaultImpact)),
		Confidence:      clampScore(intOr(f, "confidence", dto.DefaultConfidence)),
		Sentiment:       sign(sentimentOf(f["sentiment"])),
		Region:          oneOf(strings.ToUpper(firstText(f, "region")), dto.RegionSet, dto.RegionDefault),
		Tickers:         tickersOf(f["tickers"]),
		What:            firstText(f, "what"),
		WhyMatters:      firstText(f, "why_matters", "why"),
		ActionWindow:    oneOf(strings.ToLower(firstText(f, "action_window")), dto.ActionWindowSet, dto.ActionWindowDefault),
		Analysis:        firstText(f, "analysis"),
		LatencyClass:    common.LatencyFast,
	}
	return op
}

func firstText(f map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := f[k]; ok {
			if s := strings.TrimSpace(textOf(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// textOf flattens lists into one space separated string.
func textOf(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(textOf(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func intOr(f map[string]interface{}, key string, def int) int {
	v, ok := f[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case float64:
		return int(math.Round(t))
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(t, "%")), 64); err == nil {
			return int(math.Round(n))
		}
	}
	return def
}

func sentimentOf(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(math.Round(t))
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "bullish", "positive", "+1", "1":
			return 1
		case "bearish", "negative", "-1":
			return -1
		}
	}
	return 0
}

func tickersOf(v interface{}) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []interface{}:
		for _, item := range t {
			raw = append(raw, textOf(item))
		}
	}

	seen := make(map[string]bool)
	out := []string{}
	for _, r := range raw {
		s := strings.ToUpper(strings.Trim(strings.TrimSpace(r), "$\"'[]"))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func oneOf(v string, set []string, def string) string {
	for _, s := range set {
		if strings.EqualFold(v, s) {
			return s
		}
	}
	return def
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
