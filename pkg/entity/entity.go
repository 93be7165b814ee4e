// Package entity implements the reputation graph's addressing layer: hosts,
// host+id pairs, and their SHA-256 canonical hashes.
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/wisbric/vigil/internal/vigilerr"
)

const maxHostLength = 255
const maxIDLength = 255

// Record is an Entity row: a hash-addressed reference target.
type Record struct {
	UUID    string
	Hash    string
	ID      *string
	Host    string
	Created time.Time
}

// domainLabel matches one DNS label: 1-63 chars, alphanumeric with internal
// hyphens, no leading/trailing hyphen.
var domainLabel = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// ValidateHost reports whether host is an acceptable IPv4 literal, IPv6
// literal, or strict domain name (>= 2 labels, each a valid DNS label, total
// length <= 255).
func ValidateHost(host string) error {
	if host == "" || len(host) > maxHostLength {
		return vigilerr.Invalid("host must be 1-%d characters", maxHostLength)
	}
	if ip := net.ParseIP(host); ip != nil {
		return nil
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return vigilerr.Invalid("host must validate as an IP literal or a domain with at least two labels")
	}
	for _, label := range labels {
		if !domainLabel.MatchString(label) {
			return vigilerr.Invalid("host contains an invalid domain label: %q", label)
		}
	}
	return nil
}

// ValidateID enforces the optional id's length bound.
func ValidateID(id *string) error {
	if id == nil {
		return nil
	}
	if len(*id) == 0 || len(*id) > maxIDLength {
		return vigilerr.Invalid("id must be 1-%d characters", maxIDLength)
	}
	return nil
}

// IsDomain reports whether host validates as a strict domain name: it is not
// an IP literal, and satisfies ValidateHost.
func IsDomain(host string) bool {
	if net.ParseIP(host) != nil {
		return false
	}
	return ValidateHost(host) == nil
}

// Canonical returns the canonical form hashed to address an entity: host
// alone when id is nil, else "id@host".
func Canonical(host string, id *string) string {
	if id == nil {
		return host
	}
	return *id + "@" + host
}

// Hash computes the SHA-256 hex digest of the canonical form.
func Hash(host string, id *string) string {
	sum := sha256.Sum256([]byte(Canonical(host, id)))
	return hex.EncodeToString(sum[:])
}
