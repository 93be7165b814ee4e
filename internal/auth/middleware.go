package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wisbric/vigil/internal/vigilerr"
)

// Resolver looks up the operator identity for a presented API key. It is
// implemented by the operator manager; kept as an interface here so the
// authorization gate does not import the operator package directly.
type Resolver interface {
	ResolveAPIKey(ctx context.Context, apiKey string) (*Identity, error)
}

// Middleware authenticates every request by API key — presented either as
// "Authorization: Bearer <key>" or HTTP Basic auth with an empty username
// and the key as password — and stores the resolved Identity in the request
// context. A disabled operator is rejected with 403; an unresolvable key
// with 401. Requests with no credentials at all proceed unauthenticated so
// that public-flagged routes can serve them; RequireAuth enforces
// authentication where it is mandatory.
func Middleware(resolver Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := extractAPIKey(r)
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := resolver.ResolveAPIKey(r.Context(), apiKey)
			if err != nil {
				logger.Warn("api key resolution failed", "error", err)
				writeAuthError(w, vigilerr.KindOf(err))
				return
			}
			if identity == nil {
				writeAuthError(w, vigilerr.Unauthenticated)
				return
			}
			if identity.Disabled {
				writeAuthError(w, vigilerr.Forbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), identity)))
		})
	}
}

// extractAPIKey reads the bearer token or Basic-auth password carrying the
// operator's API key.
func extractAPIKey(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if rest, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
		if rest, ok := strings.CutPrefix(authHeader, "Basic "); ok {
			decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(rest))
			if err == nil {
				if idx := strings.IndexByte(string(decoded), ':'); idx >= 0 {
					return string(decoded)[idx+1:]
				}
			}
		}
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, kind vigilerr.Kind) {
	status := kind.Status()
	if status < 400 {
		status = http.StatusUnauthorized
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    status,
		"message": kind.String(),
	})
}
