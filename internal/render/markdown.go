// Package render converts stored markdown into sanitized HTML.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"coaching-site/internal/imageurl"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownImageRe = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	htmlImageRe     = regexp.MustCompile(`<img(.*?)src=["'](.*?)["'](.*?)>`)
)

// Markdown renders post bodies. Content is editor-authored markdown that may
// embed raw HTML and inconsistently stored image URLs, so the pipeline
// rewrites image references first and sanitizes the generated HTML last.
type Markdown struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
	images    *imageurl.Resolver
}

// NewMarkdown creates the markdown pipeline.
func NewMarkdown(images *imageurl.Resolver) *Markdown {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			// Raw HTML passes through goldmark and is stripped by
			// bluemonday afterwards.
			html.WithUnsafe(),
		),
	)

	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowDataURIImages()

	return &Markdown{md: md, sanitizer: sanitizer, images: images}
}

// ToHTML converts markdown to sanitized HTML, normalizing embedded image
// URLs along the way. A conversion failure returns the escaped source rather
// than failing the page.
func (m *Markdown) ToHTML(markdown string) (template.HTML, error) {
	fixed := m.FixImages(markdown)

	var buf bytes.Buffer
	if err := m.md.Convert([]byte(fixed), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(markdown)), fmt.Errorf("failed to convert markdown: %w", err)
	}

	return template.HTML(m.sanitizer.SanitizeBytes(buf.Bytes())), nil
}

// FixImages rewrites every image reference in the markdown (both
// ![alt](url) and <img src> forms) through the image URL resolver,
// substituting the placeholder for empty or unusable references.
func (m *Markdown) FixImages(markdown string) string {
	if markdown == "" {
		return markdown
	}

	fixed := markdownImageRe.ReplaceAllStringFunc(markdown, func(match string) string {
		parts := markdownImageRe.FindStringSubmatch(match)
		alt, rawURL := parts[1], strings.TrimSpace(parts[2])
		if rawURL == "" {
			return fmt.Sprintf("![%s](%s)", alt, imageurl.PlaceholderPath)
		}
		// Editors sometimes paste URLs with stray internal whitespace.
		rawURL = strings.Join(strings.Fields(rawURL), "")
		return fmt.Sprintf("![%s](%s)", alt, m.images.Valid(rawURL))
	})

	fixed = htmlImageRe.ReplaceAllStringFunc(fixed, func(match string) string {
		parts := htmlImageRe.FindStringSubmatch(match)
		prefix, rawURL, suffix := parts[1], strings.TrimSpace(parts[2]), parts[3]
		return fmt.Sprintf(`<img%ssrc="%s"%s>`, prefix, m.images.Valid(rawURL), suffix)
	})

	return fixed
}
