// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"
)

// ModerationResult contains the outcome of a prompt safety check.
type ModerationResult struct {
	Safe       bool     // true if the prompt passes moderation
	Categories []string // flagged category names, sorted (empty when safe)
}

// Moderator checks website descriptions for policy violations before they
// are sent to a generation provider.
type Moderator interface {
	CheckSafety(ctx context.Context, text string) (*ModerationResult, error)
}

// httpModerator talks to an OpenAI-style moderation endpoint. OpenAI and
// Mistral share the request shape; they differ in whether the result
// carries a top-level "flagged" field.
type httpModerator struct {
	name       string
	apiKey     string
	url        string
	model      string
	hasFlagged bool
	client     *http.Client
}

// newOpenAIModerator uses the OpenAI Moderation API (POST /v1/moderations),
// which is free for all OpenAI API key holders.
func newOpenAIModerator(apiKey, baseURL string) *httpModerator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &httpModerator{
		name:       "openai",
		apiKey:     apiKey,
		url:        baseURL + "/moderations",
		model:      "omni-moderation-latest",
		hasFlagged: true,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// newMistralModerator uses the Mistral Moderation API (POST /v1/moderations).
func newMistralModerator(apiKey, baseURL string) *httpModerator {
	if baseURL == "" {
		baseURL = "https://api.mistral.ai/v1"
	}
	return &httpModerator{
		name:   "mistral",
		apiKey: apiKey,
		url:    baseURL + "/moderations",
		model:  "mistral-moderation-latest",
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *httpModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	payload, err := json.Marshal(modRequest{Model: m.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("%s moderation marshal: %w", m.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s moderation request: %w", m.name, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s moderation http: %w", m.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s moderation read body: %w", m.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &moderationStatusError{provider: m.name, status: resp.StatusCode, body: string(respBody)}
	}

	var result modResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%s moderation unmarshal: %w", m.name, err)
	}

	if len(result.Results) == 0 {
		return &ModerationResult{Safe: true}, nil
	}

	r := result.Results[0]
	if m.hasFlagged && !r.Flagged {
		return &ModerationResult{Safe: true}, nil
	}

	var flagged []string
	for cat, isFlagged := range r.Categories {
		if isFlagged {
			flagged = append(flagged, categoryLabel(cat))
		}
	}
	slices.Sort(flagged)

	return &ModerationResult{
		Safe:       len(flagged) == 0,
		Categories: flagged,
	}, nil
}

// categoryLabel turns "hate/threatening" into "hate (threatening)" and
// "self_harm" into "self harm".
func categoryLabel(cat string) string {
	display := cat
	if strings.Contains(display, "/") {
		display = strings.Replace(display, "/", " (", 1) + ")"
	}
	return strings.ReplaceAll(display, "_", " ")
}

type moderationStatusError struct {
	provider string
	status   int
	body     string
}

func (e *moderationStatusError) Error() string {
	return fmt.Sprintf("%s moderation API error (status %d): %s", e.provider, e.status, e.body)
}

// fallbackModerator asks the primary moderator first and switches to the
// secondary when the primary rejects the credentials (401/403), which
// happens with project-scoped OpenAI keys.
type fallbackModerator struct {
	primary   Moderator
	secondary Moderator
}

func newFallbackModerator(primary, secondary Moderator) *fallbackModerator {
	return &fallbackModerator{primary: primary, secondary: secondary}
}

func (m *fallbackModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	res, err := m.primary.CheckSafety(ctx, text)
	if err == nil {
		return res, nil
	}

	var statusErr *moderationStatusError
	if !errors.As(err, &statusErr) ||
		(statusErr.status != http.StatusUnauthorized && statusErr.status != http.StatusForbidden) {
		return nil, err
	}

	slog.Warn("moderation: primary rejected credentials, using fallback", "error", err)
	return m.secondary.CheckSafety(ctx, text)
}

// --- Request/Response types ---

type modRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type modResponse struct {
	Results []modResult `json:"results"`
}

type modResult struct {
	Flagged    bool            `json:"flagged"`
	Categories map[string]bool `json:"categories"`
}
