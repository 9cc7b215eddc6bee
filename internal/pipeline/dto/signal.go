package dto

import "time"

// SignalFilter narrows a signal listing. Zero values mean "no filter".
type SignalFilter struct {
	Limit         int
	Label         string
	Sector        string
	Region        string
	MinImpact     int
	MinConfidence int
	Tickers       []string
	Sentiment     *int
	StarredOnly   bool
	HideTest      bool
	DateFrom      *time.Time
	DateTo        *time.Time
}

const (
	DefaultSignalLimit = 50
	MaxSignalLimit     = 500
)

// SignalResponse is the API view of a signal with its curation.
type SignalResponse struct {
	ID              string    `json:"id"`
	PublishedAt     time.Time `json:"published_at"`
	IngestedAt      time.Time `json:"ingested_at"`
	Sector          string    `json:"sector"`
	SourceDomain    string    `json:"source_domain"`
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	TranslatedTitle string    `json:"translated_title,omitempty"`
	Label           string    `json:"label"`
	Region          string    `json:"region"`
	Tickers         []string  `json:"tickers"`
	Impact          int       `json:"impact"`
	Confidence      int       `json:"confidence"`
	Sentiment       int       `json:"sentiment"`
	TrustScore      float64   `json:"trust_score"`
	IsTestSource    bool      `json:"is_test_source"`
	Providers       []string  `json:"providers"`
	Summary         string    `json:"summary"`
	What            string    `json:"what"`
	WhyMatters      string    `json:"why_matters"`
	ActionWindow    string    `json:"action_window"`
	Analysis        string    `json:"analysis,omitempty"`
	Starred         bool      `json:"starred"`
	Note            string    `json:"note,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
}

// CurationRequest is the body accepted when annotating a signal.
type CurationRequest struct {
	Starred bool     `json:"starred"`
	Note    string   `json:"note"`
	Tags    []string `json:"tags"`
}

// SignalStats aggregates the non-test signals.
type SignalStats struct {
	Total         int64   `json:"total"`
	HighImpact    int64   `json:"high_impact"`
	MediumImpact  int64   `json:"medium_impact"`
	LowImpact     int64   `json:"low_impact"`
	AvgConfidence float64 `json:"avg_confidence"`
	Bullish       int64   `json:"bullish"`
	Bearish       int64   `json:"bearish"`
	Sectors       int64   `json:"sectors"`
	Regions       int64   `json:"regions"`
}

// SignalEvent is the compact record announced on the persisted-signals stream.
type SignalEvent struct {
	StreamID    string
	ID          string
	Sector      string
	Label       string
	Impact      int
	Confidence  int
	Sentiment   int
	Tickers     []string
	PublishedAt time.Time
}
