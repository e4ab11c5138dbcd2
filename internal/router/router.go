// Package router sets up all HTTP routes and middleware chains for the
// Inkwell blog. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/session"
	"inkwell/web"
)

// Options carries the collaborators the router wires together.
type Options struct {
	Sessions *session.Store
	Public   *handlers.Public
	Auth     *handlers.Auth
	Admin    *handlers.Admin

	// SecureCookies marks CSRF cookies Secure; enable behind TLS.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(opts.Sessions))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Static assets.
	staticFS, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Admin routes — require authentication and CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		// Auth pages — accessible without a session.
		r.Get("/login", opts.Auth.LoginPage)
		r.Post("/login", opts.Auth.LoginSubmit)
		r.Post("/logout", opts.Auth.Logout)

		// 2FA — requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", opts.Auth.TwoFASetupPage)
			r.Post("/2fa/setup", opts.Auth.TwoFASetupSubmit)
			r.Get("/2fa/verify", opts.Auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", opts.Auth.TwoFAVerifySubmit)
		})

		// Authenticated + 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", opts.Admin.Dashboard)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", opts.Admin.PostList)
				r.Get("/new", opts.Admin.PostNew)
				r.Post("/", opts.Admin.PostCreate)
				r.Get("/{id}/edit", opts.Admin.PostEdit)
				r.Post("/{id}", opts.Admin.PostUpdate)
				r.Post("/{id}/delete", opts.Admin.PostDelete)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/", opts.Admin.CommentList)
				r.Post("/{id}/toggle", opts.Admin.CommentToggle)
				r.Post("/{id}/delete", opts.Admin.CommentDelete)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", opts.Admin.TagList)
				r.Post("/{id}/delete", opts.Admin.TagDelete)
			})

			// User management — admin only.
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", opts.Admin.UserList)
				r.Post("/", opts.Admin.UserCreate)
				r.Post("/{id}/reset-2fa", opts.Admin.UserReset2FA)
				r.Post("/{id}/delete", opts.Admin.UserDelete)
			})
		})
	})

	// Public routes. Comment and share submissions are rate limited; the
	// cached GET pages are cheap enough to leave open.
	limiter := middleware.NewRateLimiter(10, time.Minute)

	r.Get("/", opts.Public.PostList)
	r.Get("/tag/{slug}", opts.Public.PostList)
	r.Get("/sitemap.xml", opts.Public.Sitemap)
	r.Get("/{year:[0-9]{4}}/{month:[0-9]{1,2}}/{day:[0-9]{1,2}}/{slug}", opts.Public.PostDetail)
	r.Get("/posts/{id}/share", opts.Public.ShareForm)

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Post("/posts/{id}/comment", opts.Public.CommentCreate)
		r.Post("/posts/{id}/share", opts.Public.ShareSubmit)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
