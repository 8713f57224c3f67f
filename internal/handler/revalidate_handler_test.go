//go:build unit

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coaching-site/internal/cache"
	"coaching-site/internal/config"
)

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New(config.CacheConfig{FilePath: "file::memory:"})
	if err != nil {
		t.Fatalf("could not create cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func callRevalidate(t *testing.T, h *RevalidateHandler, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/revalidate?"+query, nil)
	rr := httptest.NewRecorder()
	h.handleRevalidate(rr, req)
	return rr
}

func TestRevalidateRejectsBadToken(t *testing.T) {
	h := NewRevalidateHandler("secret", newTestCache(t), testLogger())

	for _, query := range []string{"token=wrong", "token=", ""} {
		rr := callRevalidate(t, h, query)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("query %q: want status %d; got %d", query, http.StatusUnauthorized, rr.Code)
		}
	}
}

func TestRevalidateByPath(t *testing.T) {
	c := newTestCache(t)
	if err := c.Set("page:/blog/my-post", []byte("<html>"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("page:/blog/other-post", []byte("<html>"), time.Minute); err != nil {
		t.Fatal(err)
	}
	h := NewRevalidateHandler("secret", c, testLogger())

	rr := callRevalidate(t, h, "token=secret&path=/blog/my-post")
	if rr.Code != http.StatusOK {
		t.Fatalf("want status %d; got %d", http.StatusOK, rr.Code)
	}

	if v, _ := c.Get("page:/blog/my-post"); v != nil {
		t.Error("expected the named path to be evicted")
	}
	if v, _ := c.Get("page:/blog/other-post"); v == nil {
		t.Error("expected other paths to survive a path revalidation")
	}

	var resp struct {
		Revalidated bool   `json:"revalidated"`
		Path        string `json:"path"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if !resp.Revalidated || resp.Path != "/blog/my-post" {
		t.Errorf("unexpected response body: %s", rr.Body.String())
	}
}

func TestRevalidateByTag(t *testing.T) {
	c := newTestCache(t)
	for _, key := range []string{"page:/blog/post-a", "page:/blog/post-b"} {
		if err := c.Set(key, []byte("<html>"), time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	h := NewRevalidateHandler("secret", c, testLogger())

	rr := callRevalidate(t, h, "token=secret&tag=blog")
	if rr.Code != http.StatusOK {
		t.Fatalf("want status %d; got %d", http.StatusOK, rr.Code)
	}

	for _, key := range []string{"page:/blog/post-a", "page:/blog/post-b"} {
		if v, _ := c.Get(key); v != nil {
			t.Errorf("expected %q to be evicted by the tag revalidation", key)
		}
	}
}

func TestRevalidateDefaultsToBlogIndex(t *testing.T) {
	c := newTestCache(t)
	if err := c.Set("page:/blog", []byte("<html>"), time.Minute); err != nil {
		t.Fatal(err)
	}
	h := NewRevalidateHandler("secret", c, testLogger())

	rr := callRevalidate(t, h, "token=secret")
	if rr.Code != http.StatusOK {
		t.Fatalf("want status %d; got %d", http.StatusOK, rr.Code)
	}
	if v, _ := c.Get("page:/blog"); v != nil {
		t.Error("expected the blog index entry to be evicted by default")
	}

	var resp struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if resp.Path != "/blog" {
		t.Errorf("want default path %q; got %q", "/blog", resp.Path)
	}
}
