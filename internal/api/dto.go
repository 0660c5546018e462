package api

import (
	"time"

	"github.com/starford/menusitemap/internal/models"
	"github.com/starford/menusitemap/internal/sitemap"
)

// EntriesResponse is the generated URL set.
type EntriesResponse struct {
	GenerationID string         `json:"generation_id" example:"0b5c1c9e-3f5e-4d3a-9a51-0c1d8f2b7e11"`
	GeneratedAt  time.Time      `json:"generated_at"`
	BaseURL      string         `json:"base_url" example:"https://www.example.com"`
	Total        int            `json:"total" example:"42"`
	Entries      []models.Entry `json:"entries"`
}

// NavigationResponse explains every navigation node of one pass.
type NavigationResponse struct {
	GenerationID   string             `json:"generation_id"`
	Nodes          []sitemap.Decision `json:"nodes"`
	DuplicateNodes []int64            `json:"duplicate_nodes,omitempty"`
}

// SnapshotPutResponse is returned after a snapshot upload.
type SnapshotPutResponse struct {
	Path    string `json:"path" example:"site.yaml"`
	Created bool   `json:"created"`
}
