package handler

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"coaching-site/internal/logger"
	"coaching-site/internal/service"
)

// SEOHandler serves robots.txt and the XML sitemap over the published posts.
type SEOHandler struct {
	baseURL string
	posts   service.PostServicer
	log     logger.Logger
}

// NewSEOHandler creates a new SEOHandler. The base URL is used to build
// absolute links and must not end with a slash.
func NewSEOHandler(baseURL string, posts service.PostServicer, log logger.Logger) *SEOHandler {
	return &SEOHandler{baseURL: strings.TrimRight(baseURL, "/"), posts: posts, log: log}
}

// handleRobots serves robots.txt. Admin and API routes are excluded from
// crawling.
func (h *SEOHandler) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /admin\nDisallow: /api\nDisallow: /auth\n\nSitemap: %s/sitemap.xml\n", h.baseURL)
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// handleSitemap serves the XML sitemap: the static pages plus every
// published post.
func (h *SEOHandler) handleSitemap(w http.ResponseWriter, r *http.Request) {
	urlSet := sitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: h.baseURL + "/"},
			{Loc: h.baseURL + "/about"},
			{Loc: h.baseURL + "/services"},
			{Loc: h.baseURL + "/location"},
			{Loc: h.baseURL + "/contact"},
			{Loc: h.baseURL + "/blog"},
		},
	}

	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		// A partial sitemap with just the static pages is still useful.
		h.log.Error(err, "Failed to load posts for sitemap")
	}
	for _, post := range posts {
		entry := sitemapURL{Loc: h.baseURL + "/blog/" + post.Slug}
		if post.PublishedAt != nil {
			entry.LastMod = post.PublishedAt.Format(time.RFC3339)
		}
		urlSet.URLs = append(urlSet.URLs, entry)
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	fmt.Fprint(w, xml.Header)
	if err := xml.NewEncoder(w).Encode(urlSet); err != nil {
		h.log.Error(err, "Failed to encode sitemap")
	}
}
