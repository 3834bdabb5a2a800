// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
)

// WebsiteType categorizes generated sites by the kind of page the model
// is asked to produce.
type WebsiteType string

const (
	WebsiteTypePortfolio   WebsiteType = "portfolio"
	WebsiteTypeEcommerce   WebsiteType = "ecommerce"
	WebsiteTypeBlog        WebsiteType = "blog"
	WebsiteTypeLandingPage WebsiteType = "landing_page"
)

// WebsiteTypes lists every supported website type in display order.
var WebsiteTypes = []WebsiteType{
	WebsiteTypePortfolio,
	WebsiteTypeEcommerce,
	WebsiteTypeBlog,
	WebsiteTypeLandingPage,
}

// Valid reports whether t is one of the supported website types.
func (t WebsiteType) Valid() bool {
	for _, known := range WebsiteTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label returns a human-readable name, e.g. "landing_page" → "Landing Page".
func (t WebsiteType) Label() string {
	words := strings.Fields(strings.ReplaceAll(string(t), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Project is a generated website persisted in the projects table.
// Script holds the generated JavaScript; it is exposed as "javascript"
// over the API.
type Project struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	WebsiteType WebsiteType `json:"website_type"`
	Prompt      string      `json:"user_prompt"`
	HTML        string      `json:"html"`
	CSS         string      `json:"css"`
	Script      string      `json:"javascript"`
	Metadata    *string     `json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ProjectUpdate carries a partial update. Nil fields are left untouched.
type ProjectUpdate struct {
	Title       *string      `json:"title,omitempty"`
	WebsiteType *WebsiteType `json:"website_type,omitempty"`
	Prompt      *string      `json:"user_prompt,omitempty"`
	HTML        *string      `json:"html,omitempty"`
	CSS         *string      `json:"css,omitempty"`
	Script      *string      `json:"javascript,omitempty"`
	Metadata    *string      `json:"-"`
}

// Empty reports whether the update would change nothing.
func (u ProjectUpdate) Empty() bool {
	return u.Title == nil && u.WebsiteType == nil && u.Prompt == nil &&
		u.HTML == nil && u.CSS == nil && u.Script == nil && u.Metadata == nil
}
