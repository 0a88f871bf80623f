package update

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/repurpose-bot/internal/domain"
	"github.com/yungbote/repurpose-bot/internal/platform/dbctx"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

type ProcessedUpdateRepo interface {
	// Claim records updateID and reports whether this call was the first to do so.
	Claim(dbc dbctx.Context, updateID int64) (bool, error)
	PurgeBefore(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type processedUpdateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProcessedUpdateRepo(db *gorm.DB, baseLog *logger.Logger) ProcessedUpdateRepo {
	return &processedUpdateRepo{db: db, log: baseLog.With("repo", "ProcessedUpdateRepo")}
}

func (r *processedUpdateRepo) Claim(dbc dbctx.Context, updateID int64) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "update_id"}}, DoNothing: true}).
		Create(&types.ProcessedUpdate{UpdateID: updateID, CreatedAt: time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *processedUpdateRepo) PurgeBefore(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Where("created_at < ?", cutoff.UTC()).
		Delete(&types.ProcessedUpdate{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.Debug("Purged processed updates", "rows", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
