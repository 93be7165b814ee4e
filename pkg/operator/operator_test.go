package operator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	require.NoError(t, ValidateName("ops-team"))
	require.Error(t, ValidateName(""))
	require.Error(t, ValidateName(strings.Repeat("a", MaxNameLength+1)))
	require.NoError(t, ValidateName(strings.Repeat("a", MaxNameLength)))
}

func TestGenerateAPIKey_LengthAndAlphabet(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)
	require.Len(t, key, APIKeyLength)
	for _, r := range key {
		require.Contains(t, apiKeyAlphabet, string(r))
	}
}

func TestGenerateAPIKey_Unique(t *testing.T) {
	a, err := GenerateAPIKey()
	require.NoError(t, err)
	b, err := GenerateAPIKey()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestRecordFromCache_RoundTrip(t *testing.T) {
	rec := &Record{
		UUID:            "u1",
		APIKey:          "key1",
		Name:            "ops",
		Disabled:        true,
		ManageOperators: true,
		ManageBlacklist: false,
		IsClient:        true,
	}
	m := toRecordMap(rec)
	got := recordFromCache(m)

	require.Equal(t, rec.UUID, got.UUID)
	require.Equal(t, rec.APIKey, got.APIKey)
	require.Equal(t, rec.Name, got.Name)
	require.Equal(t, rec.Disabled, got.Disabled)
	require.Equal(t, rec.ManageOperators, got.ManageOperators)
	require.Equal(t, rec.ManageBlacklist, got.ManageBlacklist)
	require.Equal(t, rec.IsClient, got.IsClient)
}

func TestToWire_CopiesCapabilities(t *testing.T) {
	rec := &Record{UUID: "u1", APIKey: "k1", Name: "ops", ManageBlacklist: true}
	w := ToWire(rec)
	require.Equal(t, "u1", w.UUID)
	require.True(t, w.ManageBlacklist)
	require.False(t, w.ManageOperators)
}
