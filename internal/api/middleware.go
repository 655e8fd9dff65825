package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/narocila/internal/auth"
	"github.com/erazemk/narocila/internal/datastore"
	"github.com/erazemk/narocila/internal/users"
)

type contextKey string

const claimsKey contextKey = "claims"

// AcceptJSON rejects requests whose Accept header rules out JSON. An
// absent header means the caller accepts anything.
func AcceptJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept := r.Header.Get("Accept")
		if accept != "" && accept != "application/json" && accept != "*/*" {
			jsonError(w, http.StatusNotAcceptable, msgNotAcceptable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Auth checks credential presence, verifies the bearer token, records the
// subject in the user roster, and adds the claims to the request context.
// A missing credential and an invalid one are reported separately.
func Auth(verifier auth.Verifier, store datastore.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				jsonError(w, http.StatusUnauthorized, msgMissingAuth)
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")
			claims, err := verifier.Verify(tokenStr)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}

			if err := users.Ensure(r.Context(), store, claims.Subject, claims.Name); err != nil {
				slog.Warn("recording user", "subject", claims.Subject, "error", err)
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves the verified claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware tags each request with an id and logs method, path,
// status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		slog.Info("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

// baseURL reconstructs the absolute URL root used for self links.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
