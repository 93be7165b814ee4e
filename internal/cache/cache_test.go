package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKey_JoinsPrefixAndID(t *testing.T) {
	require.Equal(t, "entity:abc-123", key("entity", "abc-123"))
	require.Equal(t, "operator_api_key:AAAA", key("operator_api_key", "AAAA"))
}

func TestRecord_IsAFlatStringMap(t *testing.T) {
	r := Record{"uuid": "u1", "host": "example.com"}
	require.Equal(t, "u1", r["uuid"])
	require.Equal(t, "example.com", r["host"])
	require.Len(t, r, 2)
}
