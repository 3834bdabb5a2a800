package handlers

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"sitegen/internal/models"
)

// Request size limits.
const (
	minPromptLen = 10
	maxPromptLen = 2000
	maxTitleLen  = 255
	maxBodyBytes = 4 << 20 // PATCH bodies may carry whole html documents
)

func websiteTypeEnum() string {
	quoted := make([]string, len(models.WebsiteTypes))
	for i, t := range models.WebsiteTypes {
		quoted[i] = `"` + string(t) + `"`
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

var generateSchema = mustSchema(fmt.Sprintf(`{
	"type": "object",
	"required": ["user_prompt"],
	"properties": {
		"user_prompt":  {"type": "string", "minLength": %d, "maxLength": %d},
		"website_type": {"enum": %s},
		"title":        {"type": ["string", "null"], "maxLength": %d}
	}
}`, minPromptLen, maxPromptLen, websiteTypeEnum(), maxTitleLen))

var updateSchema = mustSchema(fmt.Sprintf(`{
	"type": "object",
	"minProperties": 1,
	"additionalProperties": false,
	"properties": {
		"title":        {"type": "string", "minLength": 1, "maxLength": %d},
		"website_type": {"enum": %s},
		"user_prompt":  {"type": "string", "minLength": %d, "maxLength": %d},
		"html":         {"type": "string", "minLength": 1},
		"css":          {"type": "string"},
		"javascript":   {"type": "string"}
	}
}`, maxTitleLen, websiteTypeEnum(), minPromptLen, maxPromptLen))

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("handlers: bad request schema: " + err.Error())
	}
	return s
}

// validateBody checks body against schema and returns a client-facing
// message for the first problem, or "" when the body is valid.
func validateBody(schema *gojsonschema.Schema, body []byte) string {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return "Request body must be valid JSON"
	}
	if result.Valid() {
		return ""
	}

	e := result.Errors()[0]
	if e.Field() == "(root)" || e.Field() == "" {
		return "Validation error: " + e.Description()
	}
	return fmt.Sprintf("Validation error: %s: %s", e.Field(), e.Description())
}
