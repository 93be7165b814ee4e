package blacklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateType(t *testing.T) {
	require.NoError(t, ValidateType(TypeSpam))
	require.NoError(t, ValidateType(TypePhishing))
	require.Error(t, ValidateType(Type("bogus")))
	require.Error(t, ValidateType(Type("")))
}

func TestValidateExpires(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, ValidateExpires(nil, created, time.Hour))

	future := created.Add(2 * time.Hour)
	require.NoError(t, ValidateExpires(&future, created, time.Hour))

	past := created.Add(-time.Hour)
	require.Error(t, ValidateExpires(&past, created, time.Hour))

	tooSoon := created.Add(30 * time.Minute)
	require.Error(t, ValidateExpires(&tooSoon, created, time.Hour))
}

func TestIsActive(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.True(t, IsActive(false, nil, now))

	future := now.Add(time.Hour)
	require.True(t, IsActive(false, &future, now))

	past := now.Add(-time.Hour)
	require.False(t, IsActive(false, &past, now))

	require.False(t, IsActive(true, nil, now))
}
