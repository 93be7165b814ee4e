package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateHost(t *testing.T) {
	require.NoError(t, ValidateHost("example.com"))
	require.NoError(t, ValidateHost("sub.example.com"))
	require.NoError(t, ValidateHost("192.0.2.1"))
	require.NoError(t, ValidateHost("2001:db8::1"))

	require.Error(t, ValidateHost(""))
	require.Error(t, ValidateHost("localhost"))
	require.Error(t, ValidateHost("-bad.example.com"))
	require.Error(t, ValidateHost("bad-.example.com"))
}

func TestValidateID(t *testing.T) {
	require.NoError(t, ValidateID(nil))
	id := "john"
	require.NoError(t, ValidateID(&id))
	empty := ""
	require.Error(t, ValidateID(&empty))
}

func TestCanonical(t *testing.T) {
	require.Equal(t, "example.com", Canonical("example.com", nil))
	id := "john"
	require.Equal(t, "john@example.com", Canonical("example.com", &id))
}

func TestHash_MatchesSHA256OfCanonical(t *testing.T) {
	sum := sha256.Sum256([]byte("example.com"))
	require.Equal(t, hex.EncodeToString(sum[:]), Hash("example.com", nil))

	id := "john"
	sum2 := sha256.Sum256([]byte("john@example.com"))
	require.Equal(t, hex.EncodeToString(sum2[:]), Hash("example.com", &id))
}

func TestHash_DifferentIDsDifferentHashes(t *testing.T) {
	a := "alice"
	b := "bob"
	require.NotEqual(t, Hash("example.com", &a), Hash("example.com", &b))
}

func TestRecordFromCache_RoundTrip(t *testing.T) {
	id := "john"
	rec := &Record{UUID: "u1", Hash: "h1", Host: "example.com", ID: &id}
	got := recordFromCache(toRecordMap(rec))
	require.Equal(t, rec.UUID, got.UUID)
	require.Equal(t, rec.Hash, got.Hash)
	require.Equal(t, rec.Host, got.Host)
	require.Equal(t, *rec.ID, *got.ID)
}
