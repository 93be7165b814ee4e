// Package evidence implements the notes, text blobs, and tags operators
// attach to entities in support of a blacklist verdict.
package evidence

import (
	"regexp"
	"time"

	"github.com/wisbric/vigil/internal/vigilerr"
)

const (
	maxTextContentBytes = 16 << 20 // 16 MiB
	maxNoteBytes        = 65535
	maxTagLength        = 32
)

var tagPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Record is an Evidence row.
type Record struct {
	UUID         string
	Entity       string
	Operator     string
	Confidential bool
	TextContent  *string
	Note         *string
	Tag          *string
	Created      time.Time
}

// ValidateTextContent enforces the optional 16 MiB cap.
func ValidateTextContent(s *string) error {
	if s == nil {
		return nil
	}
	if len(*s) > maxTextContentBytes {
		return vigilerr.Invalid("text_content must be at most %d bytes", maxTextContentBytes)
	}
	return nil
}

// ValidateNote enforces the optional 65535-byte cap.
func ValidateNote(s *string) error {
	if s == nil {
		return nil
	}
	if len(*s) > maxNoteBytes {
		return vigilerr.Invalid("note must be at most %d bytes", maxNoteBytes)
	}
	return nil
}

// ValidateTag enforces the optional <=32-char `[A-Za-z0-9_-]+` pattern.
func ValidateTag(s *string) error {
	if s == nil {
		return nil
	}
	if len(*s) == 0 || len(*s) > maxTagLength {
		return vigilerr.Invalid("tag must be 1-%d characters", maxTagLength)
	}
	if !tagPattern.MatchString(*s) {
		return vigilerr.Invalid("tag must match [A-Za-z0-9_-]+")
	}
	return nil
}
