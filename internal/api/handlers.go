package api

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/menusitemap/internal/sitemap"
	"github.com/starford/menusitemap/internal/siteservice"
	"github.com/starford/menusitemap/internal/sse"
)

const maxSnapshotBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc     *siteservice.Service
	baseURL string
	events  *sse.Broker
}

// NewHandler creates a Handler. An empty baseURL derives the site root from
// each request; events may be nil.
func NewHandler(svc *siteservice.Service, baseURL string, events *sse.Broker) *Handler {
	return &Handler{svc: svc, baseURL: baseURL, events: events}
}

// snapshotPath extracts the snapshot path from the URL (everything after
// /snapshots/). Encoded slashes are accepted.
func snapshotPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Entries handles GET /entries.
//
//	@Summary		Generate the sitemap and return its entries as JSON
//	@Tags			sitemap
//	@Produce		json
//	@Success		200	{object}	EntriesResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries [get]
func (h *Handler) Entries(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Generate(r.Context(), baseURLFor(h.baseURL, r))
	if err != nil {
		writeError(w, "entries", err)
		return
	}
	writeJSON(w, http.StatusOK, EntriesResponse{
		GenerationID: res.GenerationID,
		GeneratedAt:  res.GeneratedAt,
		BaseURL:      res.BaseURL,
		Total:        len(res.Entries),
		Entries:      res.Entries,
	})
}

// Navigation handles GET /navigation.
//
//	@Summary		Explain the decision taken for every navigation node
//	@Tags			sitemap
//	@Produce		json
//	@Param			excluded	query		bool	false	"Only excluded nodes"
//	@Success		200			{object}	NavigationResponse
//	@Security		BearerAuth
//	@Router			/navigation [get]
func (h *Handler) Navigation(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Generate(r.Context(), baseURLFor(h.baseURL, r))
	if err != nil {
		writeError(w, "navigation", err)
		return
	}
	excluded, _ := strconv.ParseBool(r.URL.Query().Get("excluded"))
	nodes := make([]sitemap.Decision, 0, len(res.Navigation))
	for _, d := range res.Navigation {
		if !excluded || !d.Included() {
			nodes = append(nodes, d)
		}
	}
	writeJSON(w, http.StatusOK, NavigationResponse{
		GenerationID:   res.GenerationID,
		Nodes:          nodes,
		DuplicateNodes: res.DuplicateNodes,
	})
}

// Content handles GET /content/{id}.
//
//	@Summary		Resolve the sitemap location of one content item
//	@Tags			sitemap
//	@Produce		json
//	@Param			id	path		int	true	"Content item id"
//	@Success		200	{object}	sitemap.Decision
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/content/{id} [get]
func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("id must be a positive integer"))
		return
	}
	d, err := h.svc.Content(r.Context(), baseURLFor(h.baseURL, r), id)
	if err != nil {
		writeError(w, "content", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ListSnapshots handles GET /snapshots.
//
//	@Summary		List snapshot files
//	@Tags			snapshots
//	@Produce		json
//	@Success		200	{array}		snapshot.File
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/snapshots [get]
func (h *Handler) ListSnapshots(w http.ResponseWriter, _ *http.Request) {
	files, err := h.svc.Snapshots()
	if err != nil {
		writeError(w, "list snapshots", err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// PutSnapshot handles PUT /snapshots/*.
//
//	@Summary		Upload a YAML snapshot and import it
//	@Tags			snapshots
//	@Accept			application/yaml
//	@Produce		json
//	@Param			path	path		string	true	"Snapshot path"
//	@Success		200		{object}	SnapshotPutResponse
//	@Success		201		{object}	SnapshotPutResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/snapshots/{path} [put]
func (h *Handler) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	path := snapshotPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSnapshotBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("snapshot too large"))
		return
	}
	created, err := h.svc.PutSnapshot(r.Context(), path, data)
	if err != nil {
		writeError(w, "put snapshot", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, SnapshotPutResponse{Path: path, Created: created})
}

// DeleteSnapshot handles DELETE /snapshots/*.
//
//	@Summary		Delete a snapshot and the rows imported from it
//	@Tags			snapshots
//	@Param			path	path	string	true	"Snapshot path"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/snapshots/{path} [delete]
func (h *Handler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	path := snapshotPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteSnapshot(r.Context(), path); err != nil {
		writeError(w, "delete snapshot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sync handles POST /sync.
//
//	@Summary		Reconcile the store with the snapshot directory
//	@Tags			snapshots
//	@Produce		json
//	@Success		200	{object}	snapshot.Report
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sync [post]
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Sync(r.Context())
	if err != nil {
		writeError(w, "sync", err)
		return
	}
	if h.events != nil {
		h.events.Publish(sse.Event{Type: sse.TypeSyncCompleted, Data: rep})
	}
	writeJSON(w, http.StatusOK, rep)
}
