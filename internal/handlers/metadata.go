package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"sitegen/internal/models"
)

// projectMetadata is stored as JSON in projects.metadata. Generation fills
// the first four fields; publishing records where the page was uploaded.
type projectMetadata struct {
	Source       string `json:"source,omitempty"`
	Provider     string `json:"provider,omitempty"`
	ElapsedMS    int64  `json:"elapsed_ms"`
	PageTitle    string `json:"page_title,omitempty"`
	PublishedKey string `json:"published_key,omitempty"`
	PublishedURL string `json:"published_url,omitempty"`
}

// readMetadata decodes a project's metadata. Missing or unreadable
// metadata yields the zero value.
func readMetadata(p *models.Project) projectMetadata {
	var m projectMetadata
	if p.Metadata == nil || *p.Metadata == "" {
		return m
	}
	if err := json.Unmarshal([]byte(*p.Metadata), &m); err != nil {
		slog.Warn("ignoring unreadable project metadata", "id", p.ID, "error", err)
	}
	return m
}

func (m projectMetadata) encode() (*string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode project metadata: %w", err)
	}
	s := string(b)
	return &s, nil
}
