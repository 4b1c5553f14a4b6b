package presentation

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed web/*
var webFS embed.FS

// MountStatic serves the customer tracking page. The page reads the token
// from its own URL and calls /api/track/{token}.
func MountStatic(r chi.Router) {
	sub, _ := fs.Sub(webFS, "web")

	page := func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, sub, "index.html")
	}
	r.Get("/", page)
	r.Get("/track", page)
	r.Get("/track/{token}", page)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))
}
