// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sitegen/internal/generator"
	"sitegen/internal/middleware"
	"sitegen/internal/models"
	"sitegen/internal/preview"
)

// errorTitle is used for the degraded response when no title was given.
const errorTitle = "Temporary Result"

type generateRequest struct {
	UserPrompt  string             `json:"user_prompt"`
	WebsiteType models.WebsiteType `json:"website_type"`
	Title       *string            `json:"title"`
}

// generateResponse mirrors the stored project. ID 0 and a null created_at
// mark a result that could not be saved.
type generateResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	WebsiteType models.WebsiteType `json:"website_type"`
	HTML        string             `json:"html"`
	CSS         string             `json:"css"`
	JavaScript  string             `json:"javascript"`
	CreatedAt   *time.Time         `json:"created_at"`
}

// GenerateWebsite handles POST /api/generate-website. Only validation and
// moderation produce errors; a generation that falls back, or a result
// that cannot be stored, still answers 200.
func (a *API) GenerateWebsite(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Request body too large")
		return
	}
	if msg := validateBody(generateSchema, body); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var req generateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}
	if req.WebsiteType == "" {
		req.WebsiteType = models.WebsiteTypeLandingPage
	}
	title := ""
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
	}

	if !a.checkPromptSafety(w, r, req.UserPrompt) {
		return
	}

	res := a.gen.Generate(r.Context(), generator.Request{
		Description: req.UserPrompt,
		WebsiteType: req.WebsiteType,
		Title:       title,
	})

	if res.Fallback() {
		slog.Warn("serving static fallback site",
			"request_id", middleware.GetRequestID(r.Context()),
			"website_type", req.WebsiteType, "attempts", len(res.Attempts))
	}

	if title == "" {
		title = generator.DefaultTitle(req.WebsiteType)
	}

	metadata, err := projectMetadata{
		Source:    res.Stage,
		Provider:  res.Provider,
		ElapsedMS: res.Elapsed.Milliseconds(),
		PageTitle: preview.PageTitle(res.Site.HTML),
	}.encode()
	if err != nil {
		slog.Warn("project saved without metadata", "error", err)
	}

	project, err := a.projects.Create(r.Context(), &models.Project{
		Title:       title,
		WebsiteType: req.WebsiteType,
		Prompt:      req.UserPrompt,
		HTML:        res.Site.HTML,
		CSS:         res.Site.CSS,
		Script:      res.Site.Script,
		Metadata:    metadata,
	})
	if err != nil {
		slog.Error("save generated project", "error", err, "stage", res.Stage)
		writeJSON(w, http.StatusOK, unsavedResponse(req))
		return
	}

	slog.Info("project created", "id", project.ID, "stage", res.Stage, "provider", res.Provider)
	created := project.CreatedAt
	writeJSON(w, http.StatusOK, generateResponse{
		ID:          project.ID,
		Title:       project.Title,
		WebsiteType: project.WebsiteType,
		HTML:        project.HTML,
		CSS:         project.CSS,
		JavaScript:  project.Script,
		CreatedAt:   &created,
	})
}

// unsavedResponse is the degraded 200 answer when persistence fails.
func unsavedResponse(req generateRequest) generateResponse {
	title := errorTitle
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
	}
	site := generator.ErrorSite()
	return generateResponse{
		ID:          0,
		Title:       title,
		WebsiteType: req.WebsiteType,
		HTML:        site.HTML,
		CSS:         site.CSS,
		JavaScript:  site.Script,
	}
}

// checkPromptSafety runs the prompt through moderation. Returns true if the
// prompt is safe, moderation is disabled, or the moderation API failed.
// If the prompt is flagged it writes a 400 and returns false.
func (a *API) checkPromptSafety(w http.ResponseWriter, r *http.Request, prompt string) bool {
	if a.moderator == nil {
		return true
	}
	result, err := a.moderator.CheckPrompt(r.Context(), prompt)
	if err != nil {
		slog.Warn("moderation check failed, allowing prompt", "error", err)
		return true
	}
	if result.Safe {
		return true
	}

	categories := strings.Join(result.Categories, ", ")
	slog.Warn("prompt flagged by moderation", "categories", categories)
	writeError(w, http.StatusBadRequest, fmt.Sprintf(
		"Your prompt was flagged for: %s. Please reformulate your request and try again.", categories))
	return false
}
