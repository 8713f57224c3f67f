package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"coaching-site/internal/cache"
	"coaching-site/internal/logger"
)

// RevalidateHandler invalidates entries in the render cache on demand. It is
// gated by a shared-secret token so editors and publish hooks can flush
// stale pages without an admin session.
type RevalidateHandler struct {
	token string
	cache *cache.Cache
	log   logger.Logger
}

// NewRevalidateHandler creates a new RevalidateHandler.
func NewRevalidateHandler(token string, c *cache.Cache, log logger.Logger) *RevalidateHandler {
	return &RevalidateHandler{token: token, cache: c, log: log}
}

// handleRevalidate clears cached pages. A 'tag' parameter clears every page
// under that section; a 'path' parameter clears a single page. With neither,
// the blog index is cleared.
func (h *RevalidateHandler) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	supplied := r.URL.Query().Get("token")
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(h.token)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"revalidated": false,
			"message":     "Invalid token",
		})
		return
	}

	tag := r.URL.Query().Get("tag")
	path := r.URL.Query().Get("path")
	if tag == "" && path == "" {
		path = "/blog"
	}

	var err error
	switch {
	case tag != "":
		err = h.cache.DeletePrefix("page:/" + strings.TrimPrefix(tag, "/"))
	default:
		err = h.cache.Delete("page:" + path)
	}
	if err != nil {
		h.log.Error(err, "Cache revalidation failed")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"revalidated": false,
			"message":     "Failed to revalidate",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"revalidated": true,
		"now":         time.Now().UTC().Format(time.RFC3339),
		"path":        path,
		"tag":         tag,
	})
}
