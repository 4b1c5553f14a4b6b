package presentation

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/RaikyD/wc-tracking-service/internal/webhook"
)

// CORS lets storefront pages on other origins call the tracking API.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", webhook.SignatureHeader},
		MaxAge:         300,
	})
}
