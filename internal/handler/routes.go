package handler

import (
	"go-blog-admin/internal/middleware"
	"go-blog-admin/internal/session"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures a new chi router. authHandler and sm may
// be nil, in which case the login routes are not mounted and requests carry
// no session.
func NewRouter(
	postHandler *PostHandler,
	categoryHandler *CategoryHandler,
	authHandler *AuthHandler,
	seoHandler *SeoHandler,
	authzMiddleware func(http.Handler) http.Handler,
	errorMiddleware func(middleware.AppHandler) http.Handler,
	sm session.Manager,
) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if sm != nil {
		r.Use(sm.LoadAndSave)
	}

	// Public routes
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/posts", http.StatusFound)
	})
	r.Get("/robots.txt", seoHandler.robotsHandler)
	r.Get("/sitemap.xml", seoHandler.sitemapHandler)

	// Authentication routes
	if authHandler != nil {
		r.Get("/auth/login", authHandler.handleLogin)
		r.Get("/auth/callback", authHandler.handleCallback)
		r.Get("/auth/logout", authHandler.handleLogout)
	}

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authzMiddleware)

		r.Route("/posts", func(r chi.Router) {
			r.Method(http.MethodGet, "/", errorMiddleware(postHandler.listHandler))
			r.Method(http.MethodPost, "/", errorMiddleware(postHandler.createHandler))
			r.Method(http.MethodGet, "/{postID}", errorMiddleware(postHandler.getHandler))
			r.Method(http.MethodPut, "/{postID}", errorMiddleware(postHandler.updateHandler))
			r.Method(http.MethodDelete, "/{postID}", errorMiddleware(postHandler.deleteHandler))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Method(http.MethodGet, "/", errorMiddleware(categoryHandler.listHandler))
			r.Method(http.MethodPost, "/", errorMiddleware(categoryHandler.createHandler))
			r.Method(http.MethodGet, "/{categoryID}", errorMiddleware(categoryHandler.getHandler))
			r.Method(http.MethodPut, "/{categoryID}", errorMiddleware(categoryHandler.renameHandler))
			r.Method(http.MethodDelete, "/{categoryID}", errorMiddleware(categoryHandler.deleteHandler))
		})
	})

	return r
}
