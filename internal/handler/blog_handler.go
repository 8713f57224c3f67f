package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"coaching-site/internal/cache"
	"coaching-site/internal/logger"
	"coaching-site/internal/middleware"
	"coaching-site/internal/render"
	"coaching-site/internal/service"
	"coaching-site/internal/view"

	"github.com/go-chi/chi/v5"
)

// BlogHandler serves the public site: the marketing pages, the blog index,
// category listings, and individual posts.
type BlogHandler struct {
	posts      service.PostServicer
	categories service.CategoryServicer
	markdown   *render.Markdown
	view       *view.View
	cache      *cache.Cache
	cacheTTL   time.Duration
	siteName   string
	log        logger.Logger
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(
	posts service.PostServicer,
	categories service.CategoryServicer,
	markdown *render.Markdown,
	v *view.View,
	c *cache.Cache,
	cacheTTL time.Duration,
	siteName string,
	log logger.Logger,
) *BlogHandler {
	return &BlogHandler{
		posts:      posts,
		categories: categories,
		markdown:   markdown,
		view:       v,
		cache:      c,
		cacheTTL:   cacheTTL,
		siteName:   siteName,
		log:        log,
	}
}

// handleHome renders the landing page with the most recent published posts.
func (h *BlogHandler) handleHome(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load posts", Code: http.StatusInternalServerError}
	}
	if len(posts) > 3 {
		posts = posts[:3]
	}

	return h.renderPage(w, "home.html", map[string]interface{}{
		"Title": h.siteName,
		"Posts": posts,
	})
}

// handleAbout renders the company introduction page.
func (h *BlogHandler) handleAbout(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderPage(w, "about.html", map[string]interface{}{
		"Title": "About | " + h.siteName,
	})
}

// handleServices renders the service catalog page.
func (h *BlogHandler) handleServices(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderPage(w, "services.html", map[string]interface{}{
		"Title": "Services | " + h.siteName,
	})
}

// handleLocation renders the directions page.
func (h *BlogHandler) handleLocation(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderPage(w, "location.html", map[string]interface{}{
		"Title": "Directions | " + h.siteName,
	})
}

// handleContact renders the contact page. The form on it posts to the JSON
// API endpoint.
func (h *BlogHandler) handleContact(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderPage(w, "contact.html", map[string]interface{}{
		"Title": "Contact | " + h.siteName,
	})
}

// handleList renders the blog index: all published posts, newest first, with
// the category list for navigation.
func (h *BlogHandler) handleList(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load posts", Code: http.StatusInternalServerError}
	}
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load categories", Code: http.StatusInternalServerError}
	}

	return h.renderPage(w, "blog_list.html", map[string]interface{}{
		"Title":      "Blog | " + h.siteName,
		"Posts":      posts,
		"Categories": categories,
	})
}

// handleCategory renders the blog index filtered to a single category.
func (h *BlogHandler) handleCategory(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	categorySlug := chi.URLParam(r, "slug")

	category, err := h.categories.GetCategoryBySlug(r.Context(), categorySlug)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return &middleware.AppError{Error: err, Message: "Category not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to load category", Code: http.StatusInternalServerError}
	}

	posts, err := h.posts.ListPublishedByCategory(r.Context(), category.ID)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load posts", Code: http.StatusInternalServerError}
	}
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load categories", Code: http.StatusInternalServerError}
	}

	return h.renderPage(w, "blog_category.html", map[string]interface{}{
		"Title":      category.Name + " | " + h.siteName,
		"Category":   category,
		"Posts":      posts,
		"Categories": categories,
	})
}

// handlePost renders a single post. The rendered page is cached under a key
// derived from the requested slug, so repeated hits on the same URL skip
// both the slug resolution cascade and the markdown pipeline. The
// revalidation endpoint clears these keys.
func (h *BlogHandler) handlePost(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	rawSlug := chi.URLParam(r, "slug")
	cacheKey := "page:/blog/" + rawSlug

	if cached, err := h.cache.Get(cacheKey); err != nil {
		h.log.Error(err, "Render cache read failed")
	} else if cached != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(cached)
		return nil
	}

	post, err := h.posts.ResolveBySlug(r.Context(), rawSlug)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return &middleware.AppError{Error: err, Message: "Post not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to load post", Code: http.StatusInternalServerError}
	}

	htmlContent, err := h.markdown.ToHTML(post.Content)
	if err != nil {
		// ToHTML degrades to escaped source on failure; the page still renders.
		h.log.Error(err, fmt.Sprintf("Markdown conversion failed for post %s", post.ID))
	}
	post.HTMLContent = htmlContent

	buf := new(bytes.Buffer)
	if err := h.view.Render(buf, "blog_post.html", map[string]interface{}{
		"Title": post.Title + " | " + h.siteName,
		"Post":  post,
	}); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render page", Code: http.StatusInternalServerError}
	}

	if err := h.cache.Set(cacheKey, buf.Bytes(), h.cacheTTL); err != nil {
		h.log.Error(err, fmt.Sprintf("Render cache write failed for %q", cacheKey))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
	return nil
}

func (h *BlogHandler) renderPage(w http.ResponseWriter, name string, data map[string]interface{}) *middleware.AppError {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.view.Render(w, name, data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render page", Code: http.StatusInternalServerError}
	}
	return nil
}
