//go:build unit

package render

import (
	"strings"
	"testing"

	"coaching-site/internal/imageurl"
)

func newTestMarkdown() *Markdown {
	return NewMarkdown(imageurl.NewResolver("https://www.example.com", "https://proj.supabase.co"))
}

func TestToHTML(t *testing.T) {
	m := newTestMarkdown()

	html, err := m.ToHTML("# Heading\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(html)
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Heading") {
		t.Errorf("expected rendered heading, got %q", out)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("expected bold text, got %q", out)
	}
}

func TestToHTMLStripsScripts(t *testing.T) {
	m := newTestMarkdown()

	html, err := m.ToHTML("hello <script>alert('x')</script> world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(html), "<script>") {
		t.Errorf("script tag survived sanitization: %q", html)
	}
}

func TestFixImages(t *testing.T) {
	m := newTestMarkdown()

	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			"markdown image with site-relative url",
			"![hero](/images/hero.jpg)",
			"![hero](https://www.example.com/images/hero.jpg)",
		},
		{
			"markdown image with empty url gets placeholder",
			"![broken]()",
			"![broken](" + imageurl.PlaceholderPath + ")",
		},
		{
			"html image tag",
			`<img class="wide" src="/images/a.png" alt="a">`,
			`<img class="wide" src="https://www.example.com/images/a.png" alt="a">`,
		},
		{
			"absolute image untouched",
			"![x](https://cdn.example.com/x.webp)",
			"![x](https://cdn.example.com/x.webp)",
		},
		{
			"unusable url replaced with placeholder",
			"![x](not a url)",
			"![x](" + imageurl.PlaceholderPath + ")",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.FixImages(tc.input); got != tc.want {
				t.Errorf("FixImages(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
