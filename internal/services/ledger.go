package services

import (
	"context"
	"time"

	updaterepo "github.com/yungbote/repurpose-bot/internal/data/repos/update"
	"github.com/yungbote/repurpose-bot/internal/platform/dbctx"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

// UpdateLedger reports whether an update id is seen for the first time.
type UpdateLedger interface {
	Claim(ctx context.Context, updateID int64) (bool, error)
}

// DBUpdateLedger claims ids through the processed_update table.
type DBUpdateLedger struct {
	log  *logger.Logger
	repo updaterepo.ProcessedUpdateRepo
	ttl  time.Duration
}

// NewDBUpdateLedger is the ledger used when Redis is not configured.
func NewDBUpdateLedger(log *logger.Logger, repo updaterepo.ProcessedUpdateRepo, ttl time.Duration) *DBUpdateLedger {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DBUpdateLedger{log: log.With("service", "DBUpdateLedger"), repo: repo, ttl: ttl}
}

func (l *DBUpdateLedger) Claim(ctx context.Context, updateID int64) (bool, error) {
	return l.repo.Claim(dbctx.From(ctx), updateID)
}

// RunJanitor deletes ledger rows older than the ttl every interval until ctx ends.
func (l *DBUpdateLedger) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := l.repo.PurgeBefore(dbctx.From(ctx), time.Now().Add(-l.ttl)); err != nil {
				l.log.Warn("Update ledger purge failed", "error", err)
			}
		}
	}
}
