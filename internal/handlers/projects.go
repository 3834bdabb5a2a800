package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sitegen/internal/models"
	"sitegen/internal/store"
)

// projectSummary is one row of the project list.
type projectSummary struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	WebsiteType models.WebsiteType `json:"website_type"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// GetProject handles GET /api/projects/{id}.
func (a *API) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	p, ok := a.loadProject(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListProjects handles GET /api/projects?skip&limit&website_type. The
// total number of matching projects is sent in X-Total-Count.
func (a *API) ListProjects(w http.ResponseWriter, r *http.Request) {
	params, msg := parseListParams(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	total, err := a.projects.Count(r.Context(), params.WebsiteType)
	if err != nil {
		slog.Error("count projects", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}
	projects, err := a.projects.List(r.Context(), params)
	if err != nil {
		slog.Error("list projects", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}

	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectSummary{
			ID:          p.ID,
			Title:       p.Title,
			WebsiteType: p.WebsiteType,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	writeJSON(w, http.StatusOK, out)
}

// parseListParams reads skip (>= 0), limit (1-100) and website_type.
func parseListParams(r *http.Request) (store.ListParams, string) {
	q := r.URL.Query()
	params := store.ListParams{Limit: store.DefaultListLimit}

	if raw := q.Get("skip"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return params, "skip must be a non-negative integer"
		}
		params.Skip = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > store.MaxListLimit {
			return params, fmt.Sprintf("limit must be an integer between 1 and %d", store.MaxListLimit)
		}
		params.Limit = n
	}
	if raw := q.Get("website_type"); raw != "" {
		wt := models.WebsiteType(raw)
		if !wt.Valid() {
			return params, fmt.Sprintf("Unknown website_type %q", raw)
		}
		params.WebsiteType = wt
	}
	return params, ""
}

// UpdateProject handles PATCH /api/projects/{id}. Only the fields present
// in the body are changed.
func (a *API) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Request body too large")
		return
	}
	if msg := validateBody(updateSchema, body); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	var u models.ProjectUpdate
	if err := json.Unmarshal(body, &u); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}

	p, err := a.projects.Update(r.Context(), id, u)
	if err != nil {
		slog.Error("update project", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update project")
		return
	}
	if p == nil {
		notFound(w, id)
		return
	}

	a.pages.Invalidate(r.Context(), id)
	slog.Info("project updated", "id", id)
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/{id}. A published page is
// removed from object storage as well.
func (a *API) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	p, ok := a.loadProject(w, r, id)
	if !ok {
		return
	}

	deleted, err := a.projects.Delete(r.Context(), id)
	if err != nil {
		slog.Error("delete project", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}
	if !deleted {
		notFound(w, id)
		return
	}

	a.pages.Invalidate(r.Context(), id)
	a.unpublish(r, id, readMetadata(p).PublishedKey)
	slog.Info("project deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Project %d deleted successfully", id),
	})
}

// loadProject fetches a project, writing 404 or 500 itself when it cannot.
func (a *API) loadProject(w http.ResponseWriter, r *http.Request, id int64) (*models.Project, bool) {
	p, err := a.projects.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("load project", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load project")
		return nil, false
	}
	if p == nil {
		notFound(w, id)
		return nil, false
	}
	return p, true
}
