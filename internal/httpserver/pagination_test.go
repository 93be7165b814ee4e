package httpserver

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOffsetParams_Defaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/audit", nil)
	p, err := ParseOffsetParams(req)
	require.NoError(t, err)
	require.Equal(t, 1, p.Page)
	require.Equal(t, DefaultPageSize, p.Limit)
	require.Equal(t, 0, p.Offset)
}

func TestParseOffsetParams_ClampsLimit(t *testing.T) {
	req := httptest.NewRequest("GET", "/audit?page=2&limit=9999", nil)
	p, err := ParseOffsetParams(req)
	require.NoError(t, err)
	require.Equal(t, 2, p.Page)
	require.Equal(t, MaxPageSize, p.Limit)
	require.Equal(t, MaxPageSize, p.Offset)
}

func TestParseOffsetParams_RejectsNonPositive(t *testing.T) {
	req := httptest.NewRequest("GET", "/audit?page=0", nil)
	_, err := ParseOffsetParams(req)
	require.Error(t, err)
}

func TestNewOffsetPage_ComputesTotalPages(t *testing.T) {
	page := NewOffsetPage([]int{1, 2, 3}, OffsetParams{Page: 1, Limit: 3}, 10)
	require.Equal(t, 4, page.TotalPages)
}
