package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract_PriorityOrderSuppressesOverlap(t *testing.T) {
	positions := Extract("Contact john@example.com or visit http://example.com/")

	require.Len(t, positions, 2)
	require.Equal(t, TypeEmail, positions[0].Type)
	require.Equal(t, "john@example.com", positions[0].Value)
	require.Equal(t, TypeURL, positions[1].Type)
	require.Equal(t, "http://example.com/", positions[1].Value)
}

func TestExtract_TrimsTrailingPunctuation(t *testing.T) {
	positions := Extract("See example.com.")

	require.Len(t, positions, 1)
	require.Equal(t, "example.com", positions[0].Value)
}

func TestExtract_SortedAscendingByOffset(t *testing.T) {
	text := "192.0.2.1 then example.com then 2001:db8::1"
	positions := Extract(text)

	require.Len(t, positions, 3)
	for i := 1; i < len(positions); i++ {
		require.Less(t, positions[i-1].Offset, positions[i].Offset)
	}
	require.Equal(t, TypeIPv4, positions[0].Type)
	require.Equal(t, TypeDomain, positions[1].Type)
	require.Equal(t, TypeIPv6, positions[2].Type)
}

func TestExtract_RejectsInvalidDomain(t *testing.T) {
	positions := Extract("this is not.. a domain at all")
	require.Empty(t, positions)
}

func TestExtract_IPv4DoesNotAlsoMatchAsDomain(t *testing.T) {
	positions := Extract("blocked host 203.0.113.9 seen again")
	require.Len(t, positions, 1)
	require.Equal(t, TypeIPv4, positions[0].Type)
}

func TestAuthority_ExtractsHostWithoutPort(t *testing.T) {
	require.Equal(t, "example.com", Authority("http://example.com:8080/path"))
	require.Equal(t, "", Authority("://bad"))
}
