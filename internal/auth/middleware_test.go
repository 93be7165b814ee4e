package auth

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	identities map[string]*Identity
}

func (s *stubResolver) ResolveAPIKey(_ context.Context, apiKey string) (*Identity, error) {
	return s.identities[apiKey], nil
}

func TestExtractAPIKey_Bearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer mykey123")
	require.Equal(t, "mykey123", extractAPIKey(req))
}

func TestExtractAPIKey_Basic(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	creds := base64.StdEncoding.EncodeToString([]byte(":mykey123"))
	req.Header.Set("Authorization", "Basic "+creds)
	require.Equal(t, "mykey123", extractAPIKey(req))
}

func TestMiddleware_UnknownKeyIs401(t *testing.T) {
	resolver := &stubResolver{identities: map[string]*Identity{}}
	handler := Middleware(resolver, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_DisabledOperatorIs403(t *testing.T) {
	resolver := &stubResolver{identities: map[string]*Identity{
		"key1": {UUID: "u1", Disabled: true},
	}}
	handler := Middleware(resolver, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer key1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddleware_ValidKeyStoresIdentity(t *testing.T) {
	resolver := &stubResolver{identities: map[string]*Identity{
		"key1": {UUID: "u1", IsClient: true},
	}}
	var gotIdentity *Identity
	handler := Middleware(resolver, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer key1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotIdentity)
	require.Equal(t, "u1", gotIdentity.UUID)
}
