package models

import "time"

// ContentItem is a published article joined with its owning category.
type ContentItem struct {
	ID            int64     `json:"id"`
	Alias         string    `json:"alias"`
	CategoryID    int64     `json:"category_id"`
	CategoryAlias string    `json:"category_alias"`
	CategoryPath  string    `json:"category_path"`
	Modified      time.Time `json:"modified,omitzero"`
	Created       time.Time `json:"created"`
	Language      string    `json:"language"`
}

// LastModified returns the modification time, falling back to the creation time.
func (c ContentItem) LastModified() time.Time {
	if !c.Modified.IsZero() {
		return c.Modified
	}
	return c.Created
}
