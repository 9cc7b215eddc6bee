package dto

import "time"

// FeedEntry is one candidate item read from a source, whatever its format.
type FeedEntry struct {
	Title     string                 `json:"title"`
	Link      string                 `json:"link"`
	Published *time.Time             `json:"published,omitempty"`
	Source    string                 `json:"source"`
	Format    string                 `json:"format"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}
