package middleware

import (
	"net/http"
	"strings"

	"github.com/aircast/aircast/internal/api/models"
)

// ContentTypeJSON defaults the response Content-Type to application/json.
// Handlers that write a different type first (problem+json) win.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects body-carrying requests whose declared Content-Type is
// not application/json. Both forecast endpoints take JSON bodies; failing the
// request up front beats a confusing decode error later. A missing
// Content-Type is let through for lenient clients.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				problem := models.NewUnsupportedMediaType(
					GetRequestID(r.Context()),
					"request body must be application/json",
				)
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
