package entity

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// TickerSet is stored as a comma joined upper-case list so membership can be
// filtered with LIKE on both sqlite and postgres.
type TickerSet []string

// Value implements driver.Valuer.
func (t TickerSet) Value() (driver.Value, error) {
	return strings.Join(t, ","), nil
}

// Scan implements sql.Scanner.
func (t *TickerSet) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*t = TickerSet{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported ticker set source %T", src)
	}

	set := TickerSet{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			set = append(set, p)
		}
	}
	*t = set
	return nil
}

// Signal is the analyzed, consensus-reduced record derived from one intake item.
type Signal struct {
	ID              string         `gorm:"primaryKey;size:32" json:"id"`
	PublishedAt     time.Time      `gorm:"not null;index:idx_signals_published_at,sort:desc;index:idx_signals_sector_published,priority:2" json:"published_at"`
	IngestedAt      time.Time      `gorm:"not null" json:"ingested_at"`
	Sector          string         `gorm:"size:64;not null;index:idx_signals_sector_published,priority:1" json:"sector"`
	SourceDomain    string         `gorm:"size:255;index:idx_signals_source_domain" json:"source_domain"`
	URLHash         string         `gorm:"column:url_hash;size:32;index:idx_signals_url_hash" json:"url_hash"`
	URL             string         `gorm:"column:url" json:"url"`
	Title           string         `gorm:"not null" json:"title"`
	TitleNormalized string         `json:"title_normalized"`
	TranslatedTitle string         `json:"translated_title"`
	BodyHash        string         `gorm:"size:32" json:"body_hash"`
	Label           string         `gorm:"size:32;index:idx_signals_label" json:"label"`
	Region          string         `gorm:"size:8" json:"region"`
	Tickers         TickerSet      `gorm:"type:text" json:"tickers"`
	Impact          int            `gorm:"not null;default:0;index:idx_signals_impact" json:"impact"`
	Confidence      int            `gorm:"not null;default:0" json:"confidence"`
	Sentiment       int            `gorm:"not null;default:0" json:"sentiment"`
	TrustScore      float64        `gorm:"not null;default:0;index:idx_signals_trust_score" json:"trust_score"`
	IsTestSource    bool           `gorm:"not null;default:false;index:idx_signals_is_test" json:"is_test_source"`
	Providers       string         `json:"providers"`
	Summary         string         `json:"summary"`
	What            string         `json:"what"`
	WhyMatters      string         `json:"why_matters"`
	ActionWindow    string         `gorm:"size:16" json:"action_window"`
	Analysis        string         `json:"analysis"`
	LatencyClass    string         `gorm:"size:16" json:"latency_class"`
	RawProviderDump datatypes.JSON `json:"raw_provider_dump,omitempty"`
}

// TableName specifies the table name for the Signal model.
func (Signal) TableName() string {
	return "signals"
}

// SignalWithCuration is a signal joined with its optional curation annotation.
type SignalWithCuration struct {
	Signal  `gorm:"embedded"`
	Starred bool   `json:"starred"`
	Note    string `json:"note"`
	Tags    string `json:"tags"`
}
