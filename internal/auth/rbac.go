package auth

import (
	"encoding/json"
	"net/http"
)

// RequireAuth rejects requests that have no authenticated identity.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			respondForbidden(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCapability returns middleware that rejects requests whose identity
// lacks the named capability. The master operator always passes.
func RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := FromContext(r.Context())
			if id == nil {
				respondForbidden(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !id.HasCapability(capability) {
				respondForbidden(w, http.StatusForbidden, "insufficient capability: "+capability)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyCapability passes if the identity holds any of the listed
// capabilities — used for the "manage_blacklist OR is_client" classes
// described in the capability matrix.
func RequireAnyCapability(capabilities ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := FromContext(r.Context())
			if id == nil {
				respondForbidden(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, c := range capabilities {
				if id.HasCapability(c) {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondForbidden(w, http.StatusForbidden, "insufficient capability")
		})
	}
}

func respondForbidden(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    status,
		"message": message,
	})
}
