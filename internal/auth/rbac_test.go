package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasCapability_MasterSatisfiesEverything(t *testing.T) {
	id := &Identity{IsMaster: true}
	require.True(t, id.HasCapability(CapabilityManageOperators))
	require.True(t, id.HasCapability(CapabilityManageBlacklist))
	require.True(t, id.HasCapability(CapabilityIsClient))
}

func TestHasCapability_ChecksExactFlag(t *testing.T) {
	id := &Identity{ManageBlacklist: true}
	require.True(t, id.HasCapability(CapabilityManageBlacklist))
	require.False(t, id.HasCapability(CapabilityManageOperators))
	require.False(t, id.HasCapability(CapabilityIsClient))
}

func TestRequireCapability_RejectsMissingCapability(t *testing.T) {
	handler := RequireCapability(CapabilityManageOperators)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/operators/create", nil)
	req = req.WithContext(NewContext(req.Context(), &Identity{IsClient: true}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireCapability_AllowsMaster(t *testing.T) {
	handler := RequireCapability(CapabilityManageOperators)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/operators/create", nil)
	req = req.WithContext(NewContext(req.Context(), &Identity{IsMaster: true}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_RejectsUnauthenticated(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
