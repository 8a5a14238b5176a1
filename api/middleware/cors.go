package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware that applies the configured allowed origin policy.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", SessionHeader, "X-Request-Id", "X-Requested-With"},
		ExposedHeaders:   []string{SessionHeader, "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
