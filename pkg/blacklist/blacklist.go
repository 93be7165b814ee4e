// Package blacklist implements abuse verdicts: creation, lift, expiry, and
// cleanup, linked to an entity, a creating operator, and optional evidence.
package blacklist

import (
	"time"

	"github.com/wisbric/vigil/internal/vigilerr"
)

// Type enumerates the recognized blacklist verdict categories.
type Type string

const (
	TypeSpam          Type = "spam"
	TypeAbuse         Type = "abuse"
	TypeMalware       Type = "malware"
	TypePhishing      Type = "phishing"
	TypeScam          Type = "scam"
	TypeImpersonation Type = "impersonation"
	TypeOther         Type = "other"
)

var validTypes = map[Type]bool{
	TypeSpam:          true,
	TypeAbuse:         true,
	TypeMalware:       true,
	TypePhishing:      true,
	TypeScam:          true,
	TypeImpersonation: true,
	TypeOther:         true,
}

// ValidateType reports whether t is one of the enumerated verdict types.
func ValidateType(t Type) error {
	if !validTypes[t] {
		return vigilerr.Invalid("type must be one of spam, abuse, malware, phishing, scam, impersonation, other")
	}
	return nil
}

// Record is a Blacklist verdict row.
type Record struct {
	UUID     string
	Entity   string
	Operator string
	Type     Type
	Expires  *time.Time
	Lifted   bool
	LiftedBy *string
	Evidence *string
	Created  time.Time
}

// ValidateExpires enforces that expires, when set, lies in the future and
// satisfies the configured minimum blacklist duration.
func ValidateExpires(expires *time.Time, created time.Time, minBlacklistTime time.Duration) error {
	if expires == nil {
		return nil
	}
	if !expires.After(created) {
		return vigilerr.Invalid("expires must be in the future")
	}
	if expires.Sub(created) < minBlacklistTime {
		return vigilerr.Invalid("expires must be at least %s after creation", minBlacklistTime)
	}
	return nil
}

// IsActive reports whether a verdict with these fields is currently active:
// not lifted, and either permanent or not yet expired.
func IsActive(lifted bool, expires *time.Time, now time.Time) bool {
	if lifted {
		return false
	}
	return expires == nil || expires.After(now)
}
