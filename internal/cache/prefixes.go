package cache

// Cache key prefixes, fixed by the persisted-state layout: every domain
// package uses exactly these strings so "prefix:id" keys are stable across
// restarts and compatible with any other operator of this cache.
const (
	PrefixOperator        = "operator"
	PrefixOperatorAPIKey  = "operator_api_key"
	PrefixEntity          = "entity"
	PrefixEvidence        = "evidence"
	PrefixFileAttachment  = "file_attachment"
	PrefixBlacklist       = "blacklist"
	PrefixAuditLog        = "audit_log"
)
