package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coaching-site/internal/auth"
	"coaching-site/internal/cache"
	"coaching-site/internal/config"
	"coaching-site/internal/data"
	"coaching-site/internal/handler"
	"coaching-site/internal/imageurl"
	"coaching-site/internal/logger"
	"coaching-site/internal/ratelimit"
	"coaching-site/internal/render"
	"coaching-site/internal/service"
	"coaching-site/internal/view"
	"coaching-site/web"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, os.Stdout)

	// --- Pre-flight Checks ---
	if cfg.Session.SecretKey == "" {
		log.Fatal(errors.New("session secret key not set"), "Please set a secure SITE_SESSION_SECRETKEY environment variable.")
	}
	if cfg.Revalidate.Token == "" {
		log.Fatal(errors.New("revalidation token not set"), "Please set a SITE_REVALIDATE_TOKEN environment variable.")
	}

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB.DSN, "migrations"); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager := scs.New()
	sessionManager.Store = mysqlstore.New(db.DB)
	sessionManager.Lifetime = time.Duration(cfg.Session.Lifetime) * time.Hour
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.TLS.Enabled

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	authenticator, err := auth.NewAuthenticator(&cfg.OIDC)
	if err != nil {
		log.Fatal(err, "Failed to initialize authenticator")
	}
	enforcer, err := auth.NewEnforcer("mysql", cfg.DB.DSN, "auth_model.conf")
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)
	log.Info("Auth components initialized and policies seeded.")

	// --- View Template Initialization ---
	log.Info("Initializing view templates...")
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}
	log.Info("View templates initialized.")

	// --- Render Cache Initialization ---
	log.Info("Initializing SQLite render cache...")
	renderCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer renderCache.Close()
	log.Info("Render cache initialized.")

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies bottom-up.
	images := imageurl.NewResolver(cfg.Site.BaseURL, cfg.Site.StorageBaseURL)
	markdown := render.NewMarkdown(images)
	limiter := ratelimit.New(ratelimit.Config{
		Interval:       time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
		MaxPerInterval: cfg.RateLimit.MaxPerInterval,
		MaxClients:     cfg.RateLimit.MaxClients,
	})

	postRepository := data.NewSQLPostRepository(db)
	categoryRepository := data.NewCategoryRepository(db)
	postService := service.NewPostService(postRepository, images, log)
	categoryService := service.NewCategoryService(categoryRepository)

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	handlers := handler.Handlers{
		Blog:       handler.NewBlogHandler(postService, categoryService, markdown, viewService, renderCache, cacheTTL, cfg.Site.Name, log),
		Admin:      handler.NewAdminHandler(postService, categoryService, viewService, log),
		Contact:    handler.NewContactHandler(limiter, log),
		Revalidate: handler.NewRevalidateHandler(cfg.Revalidate.Token, renderCache, log),
		SEO:        handler.NewSEOHandler(cfg.Site.BaseURL, postService, log),
		Auth:       handler.NewAuthHandler(authenticator, sessionManager, enforcer),
	}

	// --- Router Setup ---
	router := handler.NewRouter(handlers, sessionManager, enforcer, viewService, cfg.CORS.AllowedOrigins, log)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}
