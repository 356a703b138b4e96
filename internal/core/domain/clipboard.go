package domain

import "time"

// ClipboardItem is one captured clipboard entry.
type ClipboardItem struct {
	// ID is unique per capture.
	ID string `json:"id"`

	// Text is the captured content.
	Text string `json:"text"`

	// CapturedAt is when the entry was first seen or last bumped.
	CapturedAt time.Time `json:"capturedAt"`
}
