package main

import (
	"context"
	"errors"
	"fmt"
	"go-blog-admin/internal/auth"
	"go-blog-admin/internal/cache"
	"go-blog-admin/internal/config"
	"go-blog-admin/internal/data"
	"go-blog-admin/internal/handler"
	"go-blog-admin/internal/logger"
	"go-blog-admin/internal/middleware"
	"go-blog-admin/internal/service"
	"go-blog-admin/internal/session"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
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

	// --- Database Initialization and Migration ---
	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.With(map[string]interface{}{"driver": cfg.DB.Driver}).Info("Database connection successful.")

	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(db); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	// --- Cache Initialization ---
	log.Info("Initializing SQLite cache...")
	appCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer appCache.Close()
	log.Info("Cache initialized.")

	// --- Session Management Setup ---
	sessionManager := session.New(cfg.Session, db, cfg.Server.TLS.Enabled)

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	enforcer, err := auth.NewEnforcer(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, cfg.Auth.Editors, log)

	var (
		authHandler *handler.AuthHandler
		verifier    middleware.TokenVerifier
	)
	if cfg.OIDC.IssuerURL != "" {
		authenticator, err := auth.NewAuthenticator(context.Background(), &cfg.OIDC)
		if err != nil {
			log.Fatal(err, "Failed to initialize authenticator")
		}
		authHandler = handler.NewAuthHandler(authenticator, sessionManager, log)
		verifier = authenticator
	} else {
		log.Warn("OIDC is not configured; only anonymous read access is available.")
	}
	log.Info("Auth components initialized and policies seeded.")

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	store := data.NewBlogStore(db)
	opts := service.Options{WriteTimeout: cfg.DB.SyncTimeout, CacheTTL: cfg.Cache.TTL}
	postService := service.NewPostService(store, appCache, opts, log)
	categoryService := service.NewCategoryService(store, appCache, opts, log)

	postHandler := handler.NewPostHandler(postService, log)
	categoryHandler := handler.NewCategoryHandler(categoryService, log)
	seoHandler := handler.NewSeoHandler(postService, cfg.Site.BaseURL, log)

	authzMiddleware := middleware.Authorizer(enforcer, sessionManager, verifier, log)
	errorMiddleware := middleware.Error(log)

	// --- Router Setup ---
	router := handler.NewRouter(postHandler, categoryHandler, authHandler, seoHandler, authzMiddleware, errorMiddleware, sessionManager)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
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
