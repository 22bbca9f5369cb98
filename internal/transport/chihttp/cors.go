package chihttp

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSMiddleware allows any origin. The API serves a browser frontend hosted
// on a different origin, so preflights must pass for every route.
func CORSMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
