// Package preview turns a stored project into a standalone HTML page and
// into a downloadable zip bundle. Generated html usually already links
// Tailwind and inlines its own style and script blocks; the project's css
// and js are injected only when the page does not carry them yet.
package preview

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sitegen/internal/models"
)

// TailwindCDN is the script every preview loads when the page does not.
const TailwindCDN = "https://cdn.tailwindcss.com"

const doctype = "<!DOCTYPE html>"

var (
	styleWrapper  = regexp.MustCompile(`(?is)^\s*<style[^>]*>(.*?)</style>\s*$`)
	scriptWrapper = regexp.MustCompile(`(?is)^\s*<script[^>]*>(.*?)</script>\s*$`)
)

// StripStyleTag returns css without a surrounding <style> element.
func StripStyleTag(css string) string {
	if m := styleWrapper.FindStringSubmatch(css); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(css)
}

// StripScriptTag returns js without a surrounding <script> element.
func StripScriptTag(js string) string {
	if m := scriptWrapper.FindStringSubmatch(js); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(js)
}

// Assemble renders the project as one self-contained page.
func Assemble(p *models.Project) ([]byte, error) {
	doc, err := parse(p.HTML)
	if err != nil {
		return nil, err
	}

	head := doc.Find("head").First()
	body := doc.Find("body").First()

	if doc.Find("title").Length() == 0 && p.Title != "" {
		head.AppendHtml("<title></title>")
		head.Find("title").SetText(p.Title)
	}
	if !hasTailwind(doc) {
		head.AppendHtml(`<script src="` + TailwindCDN + `"></script>`)
	}

	if css := StripStyleTag(p.CSS); css != "" && !containsText(doc.Find("style"), css) {
		head.AppendHtml("<style>\n" + css + "\n</style>")
	}
	if js := StripScriptTag(p.Script); js != "" && !containsText(doc.Find("script"), js) {
		body.AppendHtml("<script>\n" + js + "\n</script>")
	}

	return render(doc)
}

// PageTitle returns the trimmed text of the first <title> element, or "".
func PageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("preview parse: %w", err)
	}
	return doc, nil
}

func render(doc *goquery.Document) ([]byte, error) {
	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("preview render: %w", err)
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(out)), "<!doctype") {
		out = doctype + "\n" + out
	}
	return []byte(out), nil
}

func hasTailwind(doc *goquery.Document) bool {
	found := false
	doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		found = strings.Contains(src, "tailwindcss")
		return !found
	})
	return found
}

// containsText reports whether any element in sel already holds text.
func containsText(sel *goquery.Selection, text string) bool {
	found := false
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = strings.Contains(s.Text(), text)
		return !found
	})
	return found
}
