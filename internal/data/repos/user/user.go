package user

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/repurpose-bot/internal/domain"
	"github.com/yungbote/repurpose-bot/internal/platform/dbctx"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

// Updatable columns for Update. Credits is deliberately absent: it only moves through ConsumeCredit.
const (
	ColumnCompanyDescription   = "company_description"
	ColumnResponseLanguageCode = "response_language_code"
)

type UserRepo interface {
	Get(dbc dbctx.Context, userID int64) (*types.User, error)
	Create(dbc dbctx.Context, userID int64, initialCredits int) (bool, error)
	Update(dbc dbctx.Context, userID int64, fields map[string]any) error
	ConsumeCredit(dbc dbctx.Context, userID int64) (bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

// Get returns nil, nil when no record exists.
func (r *userRepo) Get(dbc dbctx.Context, userID int64) (*types.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var rows []types.User
	if err := t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Create inserts a record unless one exists and reports whether it inserted.
func (r *userRepo) Create(dbc dbctx.Context, userID int64, initialCredits int) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if initialCredits < 0 {
		initialCredits = 0
	}
	row := &types.User{UserID: userID, Credits: initialCredits}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	created := res.RowsAffected > 0
	if created {
		r.log.Info("User record created", "user_id", userID, "credits", initialCredits)
	}
	return created, nil
}

func (r *userRepo) Update(dbc dbctx.Context, userID int64, fields map[string]any) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	clean := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case ColumnCompanyDescription, ColumnResponseLanguageCode:
			clean[k] = v
		}
	}
	if len(clean) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("user_id = ?", userID).
		Updates(clean).Error
}

// ConsumeCredit decrements credits by one in a single conditional statement.
// It reports false when the balance was already zero or the record is missing.
func (r *userRepo) ConsumeCredit(dbc dbctx.Context, userID int64) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("user_id = ? AND credits > 0", userID).
		UpdateColumn("credits", gorm.Expr("credits - ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
