package handler

import (
	"net/http"

	"coaching-site/internal/logger"
	"coaching-site/internal/middleware"
	"coaching-site/internal/session"
	"coaching-site/internal/view"
	"coaching-site/web"

	"github.com/casbin/casbin/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Blog       *BlogHandler
	Admin      *AdminHandler
	Contact    *ContactHandler
	Revalidate *RevalidateHandler
	SEO        *SEOHandler
	Auth       *AuthHandler
}

// NewRouter builds the full route tree. Session loading and authorization
// wrap everything; CORS applies to the JSON API only, since the HTML pages
// are same-origin.
func NewRouter(
	h Handlers,
	sm session.Manager,
	enforcer casbin.IEnforcer,
	v *view.View,
	allowedOrigins []string,
	log logger.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(sm.LoadAndSave)
	r.Use(middleware.Authorizer(enforcer, sm))

	// errorPage converts AppHandler errors into rendered error pages.
	errorPage := middleware.Error(log, v)

	// Public pages.
	r.Method(http.MethodGet, "/", errorPage(h.Blog.handleHome))
	r.Method(http.MethodGet, "/about", errorPage(h.Blog.handleAbout))
	r.Method(http.MethodGet, "/services", errorPage(h.Blog.handleServices))
	r.Method(http.MethodGet, "/location", errorPage(h.Blog.handleLocation))
	r.Method(http.MethodGet, "/contact", errorPage(h.Blog.handleContact))
	r.Method(http.MethodGet, "/blog", errorPage(h.Blog.handleList))
	r.Method(http.MethodGet, "/blog/category/{slug}", errorPage(h.Blog.handleCategory))
	r.Method(http.MethodGet, "/blog/{slug}", errorPage(h.Blog.handlePost))

	// JSON API.
	r.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		api.Post("/contact", h.Contact.handleSubmit)
		api.Get("/revalidate", h.Revalidate.handleRevalidate)
	})

	// Admin screens.
	r.Route("/admin", func(admin chi.Router) {
		admin.Method(http.MethodGet, "/", errorPage(h.Admin.handleDashboard))
		admin.Method(http.MethodGet, "/posts", errorPage(h.Admin.handlePostList))
		admin.Method(http.MethodGet, "/posts/new", errorPage(h.Admin.handlePostNew))
		admin.Method(http.MethodPost, "/posts", errorPage(h.Admin.handlePostCreate))
		admin.Method(http.MethodGet, "/posts/{id}/edit", errorPage(h.Admin.handlePostEdit))
		admin.Method(http.MethodPost, "/posts/{id}", errorPage(h.Admin.handlePostUpdate))
		admin.Method(http.MethodPost, "/posts/{id}/publish", errorPage(h.Admin.handlePostPublish))
		admin.Method(http.MethodPost, "/posts/{id}/delete", errorPage(h.Admin.handlePostDelete))
		admin.Method(http.MethodGet, "/categories", errorPage(h.Admin.handleCategoryList))
		admin.Method(http.MethodPost, "/categories", errorPage(h.Admin.handleCategoryCreate))
		admin.Method(http.MethodPost, "/categories/{id}", errorPage(h.Admin.handleCategoryUpdate))
		admin.Method(http.MethodPost, "/categories/{id}/delete", errorPage(h.Admin.handleCategoryDelete))
	})

	// Authentication.
	r.Get("/auth/login", h.Auth.handleLogin)
	r.Get("/auth/callback", h.Auth.handleCallback)
	r.Get("/auth/logout", h.Auth.handleLogout)

	// SEO endpoints.
	r.Get("/robots.txt", h.SEO.handleRobots)
	r.Get("/sitemap.xml", h.SEO.handleSitemap)

	// Static assets from the embedded filesystem. The embedded paths start
	// with "static/", matching the URL prefix, so no stripping is needed.
	r.Handle("/static/*", http.FileServer(http.FS(web.StaticFS)))

	return r
}
