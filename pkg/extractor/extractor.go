// Package extractor recognizes named entity references — URLs, email
// addresses, IP literals, and domain names — inside free-form text.
package extractor

import (
	"net"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/wisbric/vigil/pkg/entity"
)

// Type is a recognized named-entity kind.
type Type string

const (
	TypeURL    Type = "URL"
	TypeEmail  Type = "EMAIL"
	TypeIPv6   Type = "IPV6"
	TypeIPv4   Type = "IPV4"
	TypeDomain Type = "DOMAIN"
)

// priorityOrder is descending: earlier types claim a span before later
// types are allowed to, so an email's domain never also surfaces as a
// bare DOMAIN match and a URL's host never surfaces twice.
var priorityOrder = []Type{TypeURL, TypeEmail, TypeIPv6, TypeIPv4, TypeDomain}

var patterns = map[Type]*regexp.Regexp{
	TypeURL:    regexp.MustCompile(`https?://[^\s<>"'` + "`" + `]+`),
	TypeEmail:  regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
	TypeIPv6:   regexp.MustCompile(`(?:[A-Fa-f0-9]{1,4}:){7}[A-Fa-f0-9]{1,4}|(?:[A-Fa-f0-9]{1,4}:){1,7}:(?:[A-Fa-f0-9]{1,4}(?::[A-Fa-f0-9]{1,4}){0,6})?|:(?::[A-Fa-f0-9]{1,4}){1,7}`),
	TypeIPv4:   regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
	TypeDomain: regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}\b`),
}

// trimChars are trailing punctuation characters that commonly trail a
// reference without being part of it ("example.com." at a sentence end).
// ':' is excluded so a trailing "::" in a compressed IPv6 literal survives.
const trimChars = ".,;!?)\"'"

// Position is one accepted, non-overlapping named-entity match.
type Position struct {
	Type   Type
	Value  string
	Offset int
	Length int
}

type span struct{ start, end int }

func (a span) overlaps(b span) bool {
	return a.start < b.end && b.start < a.end
}

// Extract scans text for named-entity references in descending priority
// order, discarding any match that overlaps a higher-priority match already
// accepted, and returns the survivors sorted ascending by offset.
func Extract(text string) []Position {
	var accepted []Position
	var spans []span

	for _, typ := range priorityOrder {
		for _, loc := range patterns[typ].FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			value := strings.TrimRight(text[start:end], trimChars)
			if value == "" {
				continue
			}
			end = start + len(value)
			candidate := span{start, end}

			overlapped := false
			for _, s := range spans {
				if candidate.overlaps(s) {
					overlapped = true
					break
				}
			}
			if overlapped || !validate(typ, value) {
				continue
			}

			accepted = append(accepted, Position{Type: typ, Value: value, Offset: start, Length: end - start})
			spans = append(spans, candidate)
		}
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].Offset < accepted[j].Offset })
	return accepted
}

func validate(typ Type, value string) bool {
	switch typ {
	case TypeURL:
		u, err := url.Parse(value)
		return err == nil && u.Hostname() != ""
	case TypeEmail:
		at := strings.LastIndexByte(value, '@')
		return at > 0 && entity.IsDomain(value[at+1:])
	case TypeIPv6:
		ip := net.ParseIP(value)
		return ip != nil && ip.To4() == nil
	case TypeIPv4:
		ip := net.ParseIP(value)
		return ip != nil && ip.To4() != nil
	case TypeDomain:
		return entity.IsDomain(value)
	default:
		return false
	}
}

// Authority returns the host portion of a URL match, stripping any port and
// userinfo, for resolution as a DOMAIN-style entity lookup.
func Authority(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
