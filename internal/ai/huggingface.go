// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Hugging Face Inference API defaults.
const (
	DefaultHuggingFaceURL   = "https://api-inference.huggingface.co/models"
	DefaultHuggingFaceModel = "mistralai/Mistral-7B-Instruct"
)

// huggingFaceProvider implements the Provider interface using the Hugging
// Face Inference API (POST {base}/{model}). The API takes a single text
// input, so system and user prompts are joined when both are present.
type huggingFaceProvider struct {
	config ProviderConfig
	client *http.Client
}

func newHuggingFace(cfg ProviderConfig) *huggingFaceProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHuggingFaceURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultHuggingFaceModel
	}
	cfg.Options = cfg.Options.withDefaults()
	return &huggingFaceProvider{
		config: cfg,
		client: &http.Client{Timeout: cfg.timeout(90 * time.Second)},
	}
}

func (p *huggingFaceProvider) Name() string { return "huggingface" }

func (p *huggingFaceProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	input := userPrompt
	if systemPrompt != "" {
		input = systemPrompt + "\n\n" + userPrompt
	}

	body := hfRequest{
		Inputs: input,
		Parameters: hfParameters{
			MaxNewTokens:   p.config.Options.MaxTokens,
			Temperature:    p.config.Options.Temperature,
			TopP:           p.config.Options.TopP,
			DoSample:       true,
			ReturnFullText: false,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("huggingface marshal: %w", err)
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + "/" + p.config.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("huggingface request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("huggingface http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("huggingface read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("huggingface API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	text, err := parseHFResponse(respBody)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("huggingface: empty generated_text")
	}
	return text, nil
}

// parseHFResponse accepts either a list of generations or a single object.
// An object carrying an "error" field is a failure even with status 200.
func parseHFResponse(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("huggingface: empty response")
	}

	if trimmed[0] == '[' {
		var list []hfGeneration
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return "", fmt.Errorf("huggingface unmarshal: %w", err)
		}
		if len(list) == 0 {
			return "", fmt.Errorf("huggingface: no generations returned")
		}
		return list[0].GeneratedText, nil
	}

	var single hfGeneration
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return "", fmt.Errorf("huggingface unmarshal: %w", err)
	}
	if single.Error != "" {
		return "", fmt.Errorf("huggingface API error: %s", single.Error)
	}
	return single.GeneratedText, nil
}

// --- Hugging Face Inference API types ---

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	DoSample       bool    `json:"do_sample"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
	Error         string `json:"error,omitempty"`
}
