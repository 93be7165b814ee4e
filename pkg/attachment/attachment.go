// Package attachment implements binary file attachments on evidence: the
// on-disk side-effect is keyed by the attachment's own UUID under the
// configured storage path, with no extension.
package attachment

import (
	"time"

	"github.com/wisbric/vigil/internal/vigilerr"
)

const maxFileNameLength = 255

// Record is a File Attachment row.
type Record struct {
	UUID     string
	Evidence string
	FileMime string
	FileName string
	FileSize int64
	Created  time.Time
}

// ValidateFileName enforces the non-empty, <=255-char file name invariant.
func ValidateFileName(name string) error {
	if name == "" || len(name) > maxFileNameLength {
		return vigilerr.Invalid("file_name must be 1-%d characters", maxFileNameLength)
	}
	return nil
}

// ValidateFileSize enforces size > 0 and size <= maxUploadSize.
func ValidateFileSize(size, maxUploadSize int64) error {
	if size <= 0 {
		return vigilerr.Invalid("file_size must be greater than 0")
	}
	if maxUploadSize > 0 && size > maxUploadSize {
		return vigilerr.New(vigilerr.PayloadTooLarge, "attachment exceeds the configured upload size limit")
	}
	return nil
}
