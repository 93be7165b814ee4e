package attachment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateFileName(t *testing.T) {
	require.NoError(t, ValidateFileName("report.pdf"))
	require.Error(t, ValidateFileName(""))
	require.Error(t, ValidateFileName(strings.Repeat("a", maxFileNameLength+1)))
}

func TestValidateFileSize(t *testing.T) {
	require.NoError(t, ValidateFileSize(1, 0))
	require.NoError(t, ValidateFileSize(100, 200))
	require.Error(t, ValidateFileSize(0, 200))
	require.Error(t, ValidateFileSize(300, 200))
}

func TestRecordFromCache_RoundTrip(t *testing.T) {
	rec := &Record{UUID: "u1", Evidence: "e1", FileMime: "image/png", FileName: "x.png", FileSize: 4096}
	got := recordFromCache(toRecordMap(rec))
	require.Equal(t, rec.UUID, got.UUID)
	require.Equal(t, rec.Evidence, got.Evidence)
	require.Equal(t, rec.FileMime, got.FileMime)
	require.Equal(t, rec.FileName, got.FileName)
	require.Equal(t, rec.FileSize, got.FileSize)
}
