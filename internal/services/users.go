package services

import (
	"context"
	"fmt"

	userrepo "github.com/yungbote/repurpose-bot/internal/data/repos/user"
	types "github.com/yungbote/repurpose-bot/internal/domain"
	"github.com/yungbote/repurpose-bot/internal/platform/dbctx"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

// UserService owns the per-user record: creation, preferences and balance reads.
// Every error it returns wraps ErrStore.
type UserService interface {
	Ensure(ctx context.Context, userID int64) (created bool, err error)
	Get(ctx context.Context, userID int64) (*types.User, error)
	SetDescription(ctx context.Context, userID int64, description string) error
	SetLanguage(ctx context.Context, userID int64, code string) error
}

type userService struct {
	log            *logger.Logger
	repo           userrepo.UserRepo
	initialCredits int
}

func NewUserService(log *logger.Logger, repo userrepo.UserRepo, initialCredits int) UserService {
	if initialCredits < 0 {
		initialCredits = types.DefaultCredits
	}
	return &userService{log: log.With("service", "UserService"), repo: repo, initialCredits: initialCredits}
}

func (s *userService) Ensure(ctx context.Context, userID int64) (bool, error) {
	created, err := s.repo.Create(dbctx.From(ctx), userID, s.initialCredits)
	if err != nil {
		return false, fmt.Errorf("%w: create user: %v", ErrStore, err)
	}
	return created, nil
}

// Get returns ErrStore when the record is missing; callers Ensure first.
func (s *userService) Get(ctx context.Context, userID int64) (*types.User, error) {
	u, err := s.repo.Get(dbctx.From(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("%w: get user: %v", ErrStore, err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %d not found", ErrStore, userID)
	}
	return u, nil
}

func (s *userService) SetDescription(ctx context.Context, userID int64, description string) error {
	if err := s.repo.Update(dbctx.From(ctx), userID, map[string]any{
		userrepo.ColumnCompanyDescription: description,
	}); err != nil {
		return fmt.Errorf("%w: set description: %v", ErrStore, err)
	}
	return nil
}

// SetLanguage stores code as given; it is resolved against the language table only when used.
func (s *userService) SetLanguage(ctx context.Context, userID int64, code string) error {
	if err := s.repo.Update(dbctx.From(ctx), userID, map[string]any{
		userrepo.ColumnResponseLanguageCode: code,
	}); err != nil {
		return fmt.Errorf("%w: set language: %v", ErrStore, err)
	}
	return nil
}
