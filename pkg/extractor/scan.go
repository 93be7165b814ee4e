package extractor

import (
	"context"
	"strings"

	"github.com/wisbric/vigil/internal/telemetry"
	"github.com/wisbric/vigil/pkg/query"
)

// NamedEntity pairs a recognized position with its reputation-graph lookup.
// Positions that do not resolve to a known entity are never emitted.
type NamedEntity struct {
	Position Position      `json:"position"`
	Result   *query.Result `json:"result"`
}

// Scanner runs the named-entity extractor over free-form text and resolves
// each accepted position against the reputation graph.
type Scanner struct {
	composer *query.Composer
}

func NewScanner(composer *query.Composer) *Scanner {
	return &Scanner{composer: composer}
}

// ScanContent extracts candidate entity references from text and resolves
// the first limit accepted positions (0 = unlimited) into NamedEntity
// results. An email whose domain is itself a known entity emits a second,
// domain-only result positioned at the domain substring.
func (s *Scanner) ScanContent(ctx context.Context, text string, limit int, canViewConfidential, includeLifted bool) ([]NamedEntity, error) {
	positions := Extract(text)
	if limit > 0 && len(positions) > limit {
		positions = positions[:limit]
	}

	var out []NamedEntity
	for _, pos := range positions {
		telemetry.ScanPositionsFoundTotal.WithLabelValues(string(pos.Type)).Inc()

		resolved, err := s.resolve(ctx, pos, canViewConfidential, includeLifted)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved...)
	}
	return out, nil
}

func (s *Scanner) resolve(ctx context.Context, pos Position, canViewConfidential, includeLifted bool) ([]NamedEntity, error) {
	switch pos.Type {
	case TypeDomain, TypeIPv4, TypeIPv6:
		return s.resolveHost(ctx, pos, pos.Value, nil, canViewConfidential, includeLifted)

	case TypeURL:
		host := Authority(pos.Value)
		if host == "" {
			return nil, nil
		}
		return s.resolveHost(ctx, pos, host, nil, canViewConfidential, includeLifted)

	case TypeEmail:
		return s.resolveEmail(ctx, pos, canViewConfidential, includeLifted)
	}
	return nil, nil
}

func (s *Scanner) resolveHost(ctx context.Context, pos Position, host string, id *string, canViewConfidential, includeLifted bool) ([]NamedEntity, error) {
	result, found, err := s.composer.Resolve(ctx, host, id, canViewConfidential, includeLifted)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return []NamedEntity{{Position: pos, Result: result}}, nil
}

func (s *Scanner) resolveEmail(ctx context.Context, pos Position, canViewConfidential, includeLifted bool) ([]NamedEntity, error) {
	at := strings.LastIndexByte(pos.Value, '@')
	if at < 0 {
		return nil, nil
	}
	username := pos.Value[:at]
	domain := pos.Value[at+1:]

	var out []NamedEntity

	pairResult, found, err := s.composer.Resolve(ctx, domain, &username, canViewConfidential, includeLifted)
	if err != nil {
		return nil, err
	}
	if found {
		out = append(out, NamedEntity{Position: pos, Result: pairResult})
	}

	domainResult, found, err := s.composer.Resolve(ctx, domain, nil, canViewConfidential, includeLifted)
	if err != nil {
		return nil, err
	}
	if found {
		domainPos := Position{
			Type:   TypeDomain,
			Value:  domain,
			Offset: pos.Offset + at + 1,
			Length: len(domain),
		}
		out = append(out, NamedEntity{Position: domainPos, Result: domainResult})
	}

	return out, nil
}
