// Package query composes the full reputation picture for a single entity:
// its active and lifted blacklist verdicts (each with its supporting
// evidence and attachments), the entity's own evidence, and its audit
// trail. It backs both the entity-query HTTP endpoint and the content
// scanner's per-position resolution.
package query

import (
	"context"

	"github.com/wisbric/vigil/internal/vigilerr"
	"github.com/wisbric/vigil/pkg/attachment"
	"github.com/wisbric/vigil/pkg/auditlog"
	"github.com/wisbric/vigil/pkg/blacklist"
	"github.com/wisbric/vigil/pkg/entity"
	"github.com/wisbric/vigil/pkg/evidence"
)

// fanoutLimit bounds each sub-list gathered into a result; the composer is
// a read path for a single entity, not a paginated listing.
const fanoutLimit = 500

// QueriedBlacklist is one blacklist verdict alongside the evidence and
// attachments it cites, resolved and confidentiality-redacted.
type QueriedBlacklist struct {
	blacklist.Wire
	Evidence    *evidence.Wire     `json:"evidence"`
	Attachments []attachment.Wire `json:"attachments"`
}

// Result is the aggregated reputation picture for one entity.
type Result struct {
	Entity            entity.Wire        `json:"entity"`
	QueriedBlacklists []QueriedBlacklist `json:"queriedBlacklists"`
	Evidence          []evidence.Wire    `json:"evidence"`
	AuditLogs         []auditlog.Wire    `json:"auditLogs"`
}

// Composer holds the domain managers needed to assemble a Result.
type Composer struct {
	entities    *entity.Manager
	evidences   *evidence.Manager
	blacklists  *blacklist.Manager
	attachments *attachment.Manager
	auditlogs   *auditlog.Manager
}

func NewComposer(entities *entity.Manager, evidences *evidence.Manager, blacklists *blacklist.Manager, attachments *attachment.Manager, auditlogs *auditlog.Manager) *Composer {
	return &Composer{
		entities:    entities,
		evidences:   evidences,
		blacklists:  blacklists,
		attachments: attachments,
		auditlogs:   auditlogs,
	}
}

// QueryByUUID resolves an entity by uuid and builds its Result.
func (c *Composer) QueryByUUID(ctx context.Context, id string, canViewConfidential, includeLifted bool) (*Result, error) {
	rec, err := c.entities.GetByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.build(ctx, rec, canViewConfidential, includeLifted)
}

// Resolve looks up an entity by its (host, id) canonical pair and, if
// found, builds its Result. The bool return distinguishes "not a known
// entity" from an error, so callers like the content scanner can silently
// skip unresolved positions.
func (c *Composer) Resolve(ctx context.Context, host string, id *string, canViewConfidential, includeLifted bool) (*Result, bool, error) {
	rec, err := c.entities.GetByHostID(ctx, host, id)
	if err != nil {
		if vigilerr.KindOf(err) == vigilerr.NotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	result, err := c.build(ctx, rec, canViewConfidential, includeLifted)
	if err != nil {
		return nil, false, err
	}
	return result, true, nil
}

func (c *Composer) build(ctx context.Context, rec *entity.Record, canViewConfidential, includeLifted bool) (*Result, error) {
	verdicts, err := c.blacklists.ListByEntity(ctx, rec.UUID, includeLifted, fanoutLimit, 0)
	if err != nil {
		return nil, err
	}

	queried := make([]QueriedBlacklist, 0, len(verdicts))
	for _, v := range verdicts {
		qb := QueriedBlacklist{Wire: blacklist.ToWire(v), Attachments: []attachment.Wire{}}

		if v.Evidence != nil {
			ev, err := c.evidences.Get(ctx, *v.Evidence)
			if err != nil {
				if vigilerr.KindOf(err) != vigilerr.NotFound {
					return nil, err
				}
			} else {
				w := evidence.ToWire(ev, canViewConfidential)
				qb.Evidence = &w

				atts, err := c.attachments.ListByEvidence(ctx, ev.UUID)
				if err != nil {
					return nil, err
				}
				qb.Attachments = attachment.ToWireList(atts)
			}
		}

		queried = append(queried, qb)
	}

	evidences, err := c.evidences.ListByEntity(ctx, rec.UUID, fanoutLimit, 0)
	if err != nil {
		return nil, err
	}

	logs, err := c.auditlogs.ListByEntity(ctx, rec.UUID, fanoutLimit, 0)
	if err != nil {
		return nil, err
	}
	logWire := make([]auditlog.Wire, 0, len(logs))
	for _, l := range logs {
		logWire = append(logWire, auditlog.ToWire(l))
	}

	return &Result{
		Entity:            entity.ToWire(rec),
		QueriedBlacklists: queried,
		Evidence:          evidence.ToWireList(evidences, canViewConfidential),
		AuditLogs:         logWire,
	}, nil
}
