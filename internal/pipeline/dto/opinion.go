package dto

// Fixed vocabularies the providers are asked to answer with.
var (
	LabelSet = []string{
		"regulatory", "litigation", "product_launch", "earnings", "macro", "fraud", "policy", "mna",
		"guidance", "ipo", "merger", "acquisition", "partnership", "technology", "environmental",
		"geopolitical", "other",
	}
	RegionSet       = []string{"US", "EU", "CN", "JP", "UK", "CA", "AU", "BR", "IN", "RU", "SA", "TR", "EM", "UA"}
	ActionWindowSet = []string{"intraday", "1-3d", ">1w"}
)

const (
	LabelOther          = "other"
	RegionDefault       = "US"
	ActionWindowDefault = ">1w"

	// Used when a provider gives no usable impact or confidence.
	DefaultImpact     = 25
	DefaultConfidence = 50

	PlaceholderWhat       = "Event requires further analysis"
	PlaceholderWhyMatters = "Market impact undetermined"
	PlaceholderSummary    = "no analysis"
)

// ProviderOpinion is one provider's structured answer for one item.
type ProviderOpinion struct {
	TranslatedTitle string   `json:"title_ru"`
	Summary         string   `json:"summary"`
	Label           string   `json:"label"`
	Impact          int      `json:"impact"`
	Confidence      int      `json:"confidence"`
	Sentiment       int      `json:"sentiment"`
	Region          string   `json:"region"`
	Tickers         []string `json:"tickers"`
	What            string   `json:"what"`
	WhyMatters      string   `json:"why_matters"`
	ActionWindow    string   `json:"action_window"`
	Analysis        string   `json:"analysis"`
	LatencyClass    string   `json:"latency"`
}

// Consensus is the single opinion reduced from every provider's answer.
type Consensus struct {
	TranslatedTitle string
	Summary         string
	Label           string
	Impact          int
	Confidence      int
	Sentiment       int
	Region          string
	Tickers         []string
	What            string
	WhyMatters      string
	ActionWindow    string
	Analysis        string
}

// ProviderResult pairs an opinion with the raw text and error it came from, for the audit dump.
type ProviderResult struct {
	Provider string           `json:"provider"`
	Opinion  *ProviderOpinion `json:"opinion,omitempty"`
	Raw      string           `json:"raw,omitempty"`
	Error    string           `json:"error,omitempty"`
	Degraded bool             `json:"degraded"`
}
