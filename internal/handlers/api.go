// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the website generator
// API. Handlers receive their dependencies through the API struct and
// speak JSON; errors use the {"detail": "..."} body.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sitegen/internal/ai"
	"sitegen/internal/cache"
	"sitegen/internal/generator"
	"sitegen/internal/models"
	"sitegen/internal/store"
)

// ProjectRepository is the persistence the handlers need.
// *store.ProjectStore implements it.
type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	FindByID(ctx context.Context, id int64) (*models.Project, error)
	List(ctx context.Context, params store.ListParams) ([]models.Project, error)
	Count(ctx context.Context, websiteType models.WebsiteType) (int64, error)
	Update(ctx context.Context, id int64, u models.ProjectUpdate) (*models.Project, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// SiteGenerator runs the provider chain. *generator.Generator implements it.
type SiteGenerator interface {
	Generate(ctx context.Context, req generator.Request) generator.Result
}

// PromptChecker screens prompts before generation. *ai.Registry implements it.
type PromptChecker interface {
	CheckPrompt(ctx context.Context, prompt string) (*ai.ModerationResult, error)
}

// Publisher uploads an assembled page and returns its public URL, and
// removes uploaded objects by key. *storage.Client implements it.
type Publisher interface {
	PublishSite(ctx context.Context, prefix string, page []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// API groups the JSON API handlers and their dependencies.
type API struct {
	projects  ProjectRepository
	gen       SiteGenerator
	moderator PromptChecker    // nil disables moderation
	pages     *cache.PageCache // nil disables preview caching
	publisher Publisher        // nil disables publishing
}

// NewAPI creates the API handler group. moderator, pages and publisher are
// optional.
func NewAPI(projects ProjectRepository, gen SiteGenerator, moderator PromptChecker,
	pages *cache.PageCache, publisher Publisher) *API {
	return &API{
		projects:  projects,
		gen:       gen,
		moderator: moderator,
		pages:     pages,
		publisher: publisher,
	}
}

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Detail string `json:"detail"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes {"detail": msg} with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Detail: msg})
}

// projectID parses the {id} URL parameter. On failure it writes a 400 and
// returns false.
func projectID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid project id %q", raw))
		return 0, false
	}
	return id, true
}

func notFound(w http.ResponseWriter, id int64) {
	writeError(w, http.StatusNotFound, fmt.Sprintf("Project %d not found", id))
}
