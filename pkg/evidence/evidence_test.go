package evidence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestValidateTag(t *testing.T) {
	require.NoError(t, ValidateTag(nil))
	require.NoError(t, ValidateTag(ptr("phishing-2024")))
	require.Error(t, ValidateTag(ptr("")))
	require.Error(t, ValidateTag(ptr("has a space")))
	require.Error(t, ValidateTag(ptr(strings.Repeat("a", maxTagLength+1))))
}

func TestValidateNote(t *testing.T) {
	require.NoError(t, ValidateNote(nil))
	require.NoError(t, ValidateNote(ptr("short note")))
	require.Error(t, ValidateNote(ptr(strings.Repeat("a", maxNoteBytes+1))))
}

func TestValidateTextContent(t *testing.T) {
	require.NoError(t, ValidateTextContent(nil))
	require.Error(t, ValidateTextContent(ptr(strings.Repeat("a", maxTextContentBytes+1))))
}

func TestRecordFromCache_RoundTrip(t *testing.T) {
	rec := &Record{
		UUID:         "u1",
		Entity:       "e1",
		Operator:     "o1",
		Confidential: true,
		TextContent:  ptr("blob"),
		Note:         ptr("note"),
		Tag:          ptr("spam"),
	}
	got := recordFromCache(toRecordMap(rec))
	require.Equal(t, rec.UUID, got.UUID)
	require.Equal(t, rec.Entity, got.Entity)
	require.Equal(t, rec.Operator, got.Operator)
	require.True(t, got.Confidential)
	require.Equal(t, *rec.TextContent, *got.TextContent)
	require.Equal(t, *rec.Note, *got.Note)
	require.Equal(t, *rec.Tag, *got.Tag)
}
