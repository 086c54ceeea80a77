package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-vault/internal/auth"
	"github.com/kozaktomas/face-vault/internal/web/handlers"
	"github.com/kozaktomas/face-vault/internal/web/middleware"
	"github.com/kozaktomas/face-vault/internal/web/static"
)

func (s *Server) setupRoutes(authService *auth.Service, tokens *auth.TokenManager, notes handlers.NoteStore) {
	authHandler := handlers.NewAuthHandler(authService)
	notesHandler := handlers.NewNotesHandler(notes)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// Auth routes
	s.router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Note storage, all behind the token guard
	s.router.Route("/api/data", func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens))

		r.Get("/", notesHandler.List)
		r.Post("/", notesHandler.Create)
		r.Put("/{id}", notesHandler.Update)
		r.Delete("/{id}", notesHandler.Delete)
	})

	// Serve static files for the frontend
	s.router.Get("/*", serveStatic)
}

// serveStatic serves the embedded frontend assets, falling back to
// index.html for unknown paths.
func serveStatic(w http.ResponseWriter, r *http.Request) {
	fs := static.GetFileSystem()

	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	f, err := fs.Open(path)
	if err != nil {
		// Unknown path - serve the entry page.
		f, err = fs.Open("/index.html")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		path = "/index.html"
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(path, ".html"):
		contentType = "text/html; charset=utf-8"
	case strings.HasSuffix(path, ".css"):
		contentType = "text/css; charset=utf-8"
	case strings.HasSuffix(path, ".js"):
		contentType = "application/javascript; charset=utf-8"
	case strings.HasSuffix(path, ".svg"):
		contentType = "image/svg+xml"
	case strings.HasSuffix(path, ".ico"):
		contentType = "image/x-icon"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
