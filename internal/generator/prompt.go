// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import (
	"fmt"

	"sitegen/internal/models"
)

// systemPrompt fixes the model's role and the output contract: exactly one
// JSON object with html, css and js keys.
const systemPrompt = `You are a senior UI/UX designer and frontend engineer specializing in modern web design.

Your task is to generate a complete, responsive website using:
- Semantic HTML5
- Tailwind CSS (inline styles, no external CSS files)
- Vanilla JavaScript (no external libraries)
- Mobile-first responsive design

CRITICAL REQUIREMENTS:
1. Output ONLY valid JSON with this exact format: {"html": "...", "css": "...", "js": "..."}
2. Include Tailwind CSS CDN in HTML <head>
3. Mobile-first responsive design (md: breakpoints for tablets/desktop)
4. No external libraries, fonts, or assets
5. All CSS must be in <style> tag in <head>
6. All JavaScript must be in <script> tag before </body>
7. Use semantic HTML5 tags: <header>, <nav>, <main>, <section>, <article>, <footer>
8. Implement proper form validation in JavaScript
9. Make it visually appealing with good color schemes
10. Include animations and transitions for better UX

FORBIDDEN:
- External CDN libraries (only Tailwind CSS allowed)
- External fonts or icon libraries
- Commented-out code
- JavaScript console logs in production
- Inline event handlers (use addEventListener)

Focus on clean, maintainable, production-ready code.`

const userPromptFormat = `Generate %s.

User Requirements:
%s

Requirements for this website:
1. Clean, modern design with good UX
2. Responsive layout that works on mobile, tablet, and desktop
3. Professional color scheme and typography
4. Interactive elements where appropriate
5. Smooth animations and transitions
6. Accessibility considerations
7. Fast loading (no heavy assets)

Return ONLY the JSON response in this exact format:
{
  "html": "<html>...</html>",
  "css": "<style>...</style>",
  "js": "<script>...</script>"
}

Do NOT add any text before or after the JSON.`

// instructionFormat wraps the user prompt for instruction-tuned models that
// take a single input with no system/user split.
const instructionFormat = `[INST] You are a professional web developer. Generate a complete, responsive website based on this requirement:

%s

Return ONLY valid JSON (no preamble, no explanation) with this exact structure:
{
  "html": "<html>...</html>",
  "css": "<style>...</style>",
  "js": "<script>...</script>"
}

Requirements:
- Use semantic HTML5 tags
- Include Tailwind CSS CDN in <head>
- Mobile-first responsive design
- Valid JSON only [/INST]`

const genericDescription = "a modern website"

var typeDescriptions = map[models.WebsiteType]string{
	models.WebsiteTypeLandingPage: "a professional landing page with hero section, features, CTA, and contact info",
	models.WebsiteTypePortfolio:   "a developer/designer portfolio with project showcase, skills, and contact section",
	models.WebsiteTypeBlog:        "a blog website with post listing, categories, search functionality, and article view",
	models.WebsiteTypeEcommerce:   "an e-commerce store with product grid, filters, shopping cart, and checkout",
}

// TypeDescription returns the canned phrase for a website type. Unknown
// types get a generic phrase rather than an error.
func TypeDescription(t models.WebsiteType) string {
	if d, ok := typeDescriptions[t]; ok {
		return d
	}
	return genericDescription
}

// Prompt is the rendered instruction pair for one generation.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt maps a description and website type to the system and user
// instructions. It is pure and deterministic.
func BuildPrompt(description string, websiteType models.WebsiteType) Prompt {
	return Prompt{
		System: systemPrompt,
		User:   fmt.Sprintf(userPromptFormat, TypeDescription(websiteType), description),
	}
}

// Split returns the prompt for chat-style APIs that take separate system
// and user turns.
func (p Prompt) Split() (system, user string) {
	return p.System, p.User
}

// Combined joins both parts into one message separated by a blank line.
func (p Prompt) Combined() string {
	return p.System + "\n\n" + p.User
}

// Instruction renders the prompt as a single [INST] block. Only the user
// part is embedded; the block carries its own role line.
func (p Prompt) Instruction() string {
	return fmt.Sprintf(instructionFormat, p.User)
}

// EnhanceDescription prefixes the user's description with the site title
// and type so the model sees them alongside the free text.
func EnhanceDescription(title string, websiteType models.WebsiteType, description string) string {
	return fmt.Sprintf(`
Website Title: %s
Website Type: %s

User Description:
%s

Please create a complete, production-ready website based on this description.
Make it modern, responsive, and visually appealing.
`, title, websiteType.Label(), description)
}

// DefaultTitle is used when a request carries no title.
func DefaultTitle(websiteType models.WebsiteType) string {
	return websiteType.Label() + " - AI Generated"
}
