//go:build integration

package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"coaching-site/internal/auth"
	"coaching-site/internal/cache"
	"coaching-site/internal/config"
	"coaching-site/internal/data"
	"coaching-site/internal/imageurl"
	"coaching-site/internal/logger"
	"coaching-site/internal/ratelimit"
	"coaching-site/internal/render"
	"coaching-site/internal/service"
	"coaching-site/internal/view"
	"coaching-site/web"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/casbin/casbin/v2"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type testApp struct {
	Router     *chi.Mux
	Posts      service.PostRepository
	Categories service.CategoryRepository
	Enforcer   *casbin.Enforcer
}

// testSchema mirrors the MySQL migrations in SQLite form. The casbin_rule
// columns follow the sqlx adapter's mapping (id, ptype, v0..v5); the sessions
// columns follow sqlite3store.
const testSchema = `
CREATE TABLE categories (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	slug        TEXT NOT NULL UNIQUE,
	description TEXT
);
CREATE TABLE posts (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	content        TEXT NOT NULL,
	excerpt        TEXT NOT NULL,
	slug           TEXT NOT NULL,
	featured_image TEXT,
	external_url   TEXT,
	author_id      TEXT NOT NULL,
	category_id    TEXT,
	status         TEXT NOT NULL DEFAULT 'draft',
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL,
	published_at   DATETIME
);
CREATE TABLE sessions (
	token  TEXT PRIMARY KEY,
	data   BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE TABLE casbin_rule (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	ptype TEXT NOT NULL DEFAULT '',
	v0    TEXT NOT NULL DEFAULT '',
	v1    TEXT NOT NULL DEFAULT '',
	v2    TEXT NOT NULL DEFAULT '',
	v3    TEXT NOT NULL DEFAULT '',
	v4    TEXT NOT NULL DEFAULT '',
	v5    TEXT NOT NULL DEFAULT ''
);`

// setupIntegrationTest initializes a full application stack against an
// in-memory SQLite database.
func setupIntegrationTest(t *testing.T) (*testApp, func()) {
	t.Helper()
	// The DSN is derived from the test name so each test gets an isolated
	// database; cache=shared lets the enforcer's own adapter connection see
	// the same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	db.MustExec(testSchema)

	log := logger.New(config.LogConfig{Level: "error", Format: "console"}, nil)
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}

	renderCache, err := cache.New(config.CacheConfig{FilePath: "file::memory:"})
	if err != nil {
		t.Fatalf("Failed to create render cache: %v", err)
	}

	postRepository := data.NewSQLPostRepository(db)
	categoryRepository := data.NewCategoryRepository(db)
	images := imageurl.NewResolver("http://localhost:8080", "")
	postService := service.NewPostService(postRepository, images, log)
	categoryService := service.NewCategoryService(categoryRepository)
	markdown := render.NewMarkdown(images)

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.New(db.DB)
	sessionManager.Lifetime = 3 * time.Minute

	enforcer, err := auth.NewEnforcer("sqlite3", dsn, "../../auth_model.conf")
	if err != nil {
		t.Fatalf("Failed to create enforcer: %v", err)
	}
	auth.SeedDefaultPolicies(enforcer, log)

	limiter := ratelimit.New(ratelimit.Config{Interval: time.Minute, MaxPerInterval: 100})

	handlers := Handlers{
		Blog:       NewBlogHandler(postService, categoryService, markdown, viewService, renderCache, time.Minute, "Masterpiece Alliance", log),
		Admin:      NewAdminHandler(postService, categoryService, viewService, log),
		Contact:    NewContactHandler(limiter, log),
		Revalidate: NewRevalidateHandler("test-token", renderCache, log),
		SEO:        NewSEOHandler("http://localhost:8080", postService, log),
		Auth:       NewAuthHandler(nil, sessionManager, enforcer),
	}
	router := NewRouter(handlers, sessionManager, enforcer, viewService, []string{"*"}, log)

	app := &testApp{
		Router:     router,
		Posts:      postRepository,
		Categories: categoryRepository,
		Enforcer:   enforcer,
	}
	teardown := func() {
		renderCache.Close()
		db.Close()
	}
	return app, teardown
}

func seedPost(t *testing.T, app *testApp, title, slug string) *data.Post {
	t.Helper()
	now := time.Now().UTC()
	post := &data.Post{
		Title:       title,
		Content:     "## Heading\n\nSome **markdown** body.",
		Excerpt:     "An excerpt.",
		Slug:        slug,
		AuthorID:    "admin@example.com",
		Status:      data.StatusPublished,
		PublishedAt: &now,
	}
	if err := app.Posts.Create(context.Background(), post); err != nil {
		t.Fatalf("Failed to seed post: %v", err)
	}
	return post
}

func TestHandlers_Integration(t *testing.T) {
	app, teardown := setupIntegrationTest(t)
	defer teardown()

	seedPost(t, app, "Leadership Lessons", "leadership-lessons-lj3fh2")

	testCases := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Home Page",
			method:     "GET",
			path:       "/",
			wantStatus: http.StatusOK,
			wantBody:   "Masterpiece Alliance",
		},
		{
			name:       "Services Page",
			method:     "GET",
			path:       "/services",
			wantStatus: http.StatusOK,
			wantBody:   "Business Coaching",
		},
		{
			name:       "Location Page",
			method:     "GET",
			path:       "/location",
			wantStatus: http.StatusOK,
			wantBody:   "Directions",
		},
		{
			name:       "Blog Index Lists Published Post",
			method:     "GET",
			path:       "/blog",
			wantStatus: http.StatusOK,
			wantBody:   "Leadership Lessons",
		},
		{
			name:       "View Post By Exact Slug",
			method:     "GET",
			path:       "/blog/leadership-lessons-lj3fh2",
			wantStatus: http.StatusOK,
			wantBody:   "<strong>markdown</strong>",
		},
		{
			name:       "View Post By Partial Slug",
			method:     "GET",
			path:       "/blog/leadership-lessons",
			wantStatus: http.StatusOK,
			wantBody:   "Leadership Lessons",
		},
		{
			name:       "Unknown Slug Renders Not Found Page",
			method:     "GET",
			path:       "/blog/completely-unrelated",
			wantStatus: http.StatusNotFound,
			wantBody:   "Error 404",
		},
		{
			name:       "Admin Requires Login",
			method:     "GET",
			path:       "/admin/posts",
			wantStatus: http.StatusForbidden,
			wantBody:   "Forbidden",
		},
		{
			name:       "Robots",
			method:     "GET",
			path:       "/robots.txt",
			wantStatus: http.StatusOK,
			wantBody:   "Sitemap:",
		},
		{
			name:       "Sitemap Includes Post",
			method:     "GET",
			path:       "/sitemap.xml",
			wantStatus: http.StatusOK,
			wantBody:   "/blog/leadership-lessons-lj3fh2",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			app.Router.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("want status %d; got %d", tc.wantStatus, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tc.wantBody) {
				t.Errorf("response body does not contain %q", tc.wantBody)
			}
		})
	}
}

func TestContactAPI_Integration(t *testing.T) {
	app, teardown := setupIntegrationTest(t)
	defer teardown()

	body := `{"name":"Kim Minsu","email":"minsu@example.com","service":"business","message":"We would like a coaching proposal."}`
	req := httptest.NewRequest("POST", "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	app.Router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("want status %d; got %d (%s)", http.StatusOK, rr.Code, rr.Body.String())
	}
}

func TestRevalidateAPI_Integration(t *testing.T) {
	app, teardown := setupIntegrationTest(t)
	defer teardown()

	seedPost(t, app, "Cached Column", "cached-column-ab12c")

	// Prime the render cache, then flush it through the API.
	for _, wantStatus := range []int{http.StatusOK, http.StatusOK} {
		req := httptest.NewRequest("GET", "/blog/cached-column-ab12c", nil)
		rr := httptest.NewRecorder()
		app.Router.ServeHTTP(rr, req)
		if rr.Code != wantStatus {
			t.Fatalf("want status %d; got %d", wantStatus, rr.Code)
		}
	}

	req := httptest.NewRequest("GET", "/api/revalidate?token=test-token&tag=blog", nil)
	rr := httptest.NewRecorder()
	app.Router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("want status %d; got %d (%s)", http.StatusOK, rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"revalidated":true`) {
		t.Errorf("unexpected revalidation response: %s", rr.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/revalidate?token=wrong", nil)
	rr = httptest.NewRecorder()
	app.Router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("want status %d for a bad token; got %d", http.StatusUnauthorized, rr.Code)
	}
}
