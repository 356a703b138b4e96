package domain

import "strings"

// AppSource identifies where an indexed application was discovered.
type AppSource string

// Available application sources.
const (
	// AppSourceExe is a regular application entry.
	AppSourceExe AppSource = "exe"

	// AppSourceUWP is a store/containerised application entry.
	AppSourceUWP AppSource = "uwp"

	// AppSourceCustom is an entry found under a user-configured path.
	AppSourceCustom AppSource = "custom"
)

// IsValid returns true if the application source is recognised.
func (s AppSource) IsValid() bool {
	switch s {
	case AppSourceExe, AppSourceUWP, AppSourceCustom:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s AppSource) String() string {
	return string(s)
}

// AppInfo is one indexed application. Records are built in bulk by a
// full rescan and never mutated afterwards; live frequency increments go
// to the persistent counter, not the record.
type AppInfo struct {
	// Name is the display name.
	Name string `json:"name"`

	// Path is the launch path and the de-duplication key
	// (case-insensitively).
	Path string `json:"path"`

	// PhoneticKey is a folded Latin transliteration of Name.
	PhoneticKey string `json:"phoneticKey,omitempty"`

	// Frequency is the usage count looked up at index-build time.
	Frequency int `json:"frequency"`

	// Source records where the entry was discovered.
	Source AppSource `json:"sourceType"`
}

// DedupKey returns the case-insensitive identity of the record.
func (a AppInfo) DedupKey() string {
	return strings.ToLower(a.Path)
}
