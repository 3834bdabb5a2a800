// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns project titles into URL- and filename-safe names.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxLength caps generated slugs so object keys and filenames stay short.
const MaxLength = 60

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace      = regexp.MustCompile(`\s+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// ForProject returns "<id>-<title slug>", or "project-<id>" when the title
// has nothing sluggable in it. The id prefix keeps names unique.
func ForProject(id int64, title string) string {
	s := Generate(title)
	if s == "" {
		return "project-" + strconv.FormatInt(id, 10)
	}
	return strconv.FormatInt(id, 10) + "-" + s
}
