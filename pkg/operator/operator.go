// Package operator implements the operator manager: CRUD, capability flags,
// API-key rotation, and master-operator bootstrap.
package operator

import (
	"crypto/rand"
	"time"

	"github.com/wisbric/vigil/internal/vigilerr"
)

// MaxNameLength is the authoritative maximum for Operator.Name — 32, not
// 255 (see the resolved open question on OperatorRecord.name length).
const MaxNameLength = 32

// APIKeyLength is the length of a generated opaque API key.
const APIKeyLength = 32

const apiKeyAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Record is an Operator row.
type Record struct {
	UUID            string
	APIKey          string
	Name            string
	Disabled        bool
	ManageOperators bool
	ManageBlacklist bool
	IsClient        bool
	Created         time.Time
	Updated         time.Time
}

// ValidateName enforces the non-empty, <=32-character name invariant.
func ValidateName(name string) error {
	if name == "" {
		return vigilerr.Invalid("name must not be empty")
	}
	if len(name) > MaxNameLength {
		return vigilerr.Invalid("name must be at most %d characters", MaxNameLength)
	}
	return nil
}

// GenerateAPIKey returns a fresh APIKeyLength-character opaque key drawn
// from a cryptographically adequate character set.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, APIKeyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, APIKeyLength)
	for i, b := range buf {
		out[i] = apiKeyAlphabet[int(b)%len(apiKeyAlphabet)]
	}
	return string(out), nil
}
