package models

import "time"

// ChangeFreq is the sitemap protocol change-frequency hint.
type ChangeFreq string

const (
	ChangeAlways  ChangeFreq = "always"
	ChangeHourly  ChangeFreq = "hourly"
	ChangeDaily   ChangeFreq = "daily"
	ChangeWeekly  ChangeFreq = "weekly"
	ChangeMonthly ChangeFreq = "monthly"
	ChangeYearly  ChangeFreq = "yearly"
	ChangeNever   ChangeFreq = "never"
)

// Valid reports whether f is one of the protocol values.
func (f ChangeFreq) Valid() bool {
	switch f {
	case ChangeAlways, ChangeHourly, ChangeDaily, ChangeWeekly, ChangeMonthly, ChangeYearly, ChangeNever:
		return true
	}
	return false
}

// Entry is one <url> of the sitemap. Zero LastMod, empty ChangeFreq and nil
// Priority mean the element is omitted.
type Entry struct {
	Loc        string     `json:"loc"`
	LastMod    time.Time  `json:"lastmod,omitzero"`
	ChangeFreq ChangeFreq `json:"changefreq,omitempty"`
	Priority   *float64   `json:"priority,omitempty"`
}

// Priority returns a pointer to p for use in Entry literals.
func Priority(p float64) *float64 {
	return &p
}
