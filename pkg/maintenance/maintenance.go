// Package maintenance runs periodic retention sweeps over audit log and
// blacklist rows.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/wisbric/vigil/pkg/auditlog"
	"github.com/wisbric/vigil/pkg/blacklist"
)

// Sweeper periodically expires audit log and blacklist rows past their
// configured retention windows. Each step runs independently: one step's
// failure is logged and does not prevent the other from running.
type Sweeper struct {
	auditlogs  *auditlog.Manager
	blacklists *blacklist.Manager
	logger     *slog.Logger

	enabled            bool
	cleanAuditLogs     bool
	cleanAuditLogsDays int
	cleanBlacklist     bool
	cleanBlacklistDays int
}

func NewSweeper(auditlogs *auditlog.Manager, blacklists *blacklist.Manager, logger *slog.Logger, enabled bool, cleanAuditLogs bool, cleanAuditLogsDays int, cleanBlacklist bool, cleanBlacklistDays int) *Sweeper {
	return &Sweeper{
		auditlogs:          auditlogs,
		blacklists:         blacklists,
		logger:             logger,
		enabled:            enabled,
		cleanAuditLogs:     cleanAuditLogs,
		cleanAuditLogsDays: cleanAuditLogsDays,
		cleanBlacklist:     cleanBlacklist,
		cleanBlacklistDays: cleanBlacklistDays,
	}
}

// RunMaintenance runs one maintenance pass.
func (s *Sweeper) RunMaintenance(ctx context.Context) {
	if !s.enabled {
		return
	}

	if s.cleanAuditLogs {
		n, err := s.auditlogs.CleanOlderThan(ctx, s.cleanAuditLogsDays)
		if err != nil {
			s.logger.Error("audit log cleanup failed", "error", err)
		} else if n > 0 {
			s.logger.Info("audit log cleanup removed rows", "rows", n)
		}
	}

	if s.cleanBlacklist {
		n, err := s.blacklists.CleanOlderThan(ctx, s.cleanBlacklistDays)
		if err != nil {
			s.logger.Error("blacklist cleanup failed", "error", err)
		} else if n > 0 {
			s.logger.Info("blacklist cleanup removed rows", "rows", n)
		}
	}
}

// RunLoop runs RunMaintenance once immediately, then every interval until
// ctx is cancelled.
func (s *Sweeper) RunLoop(ctx context.Context, interval time.Duration) {
	s.logger.Info("maintenance loop started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.RunMaintenance(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("maintenance loop stopped")
			return
		case <-ticker.C:
			s.RunMaintenance(ctx)
		}
	}
}
