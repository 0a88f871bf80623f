package services

import (
	"context"
	"fmt"

	userrepo "github.com/yungbote/repurpose-bot/internal/data/repos/user"
	"github.com/yungbote/repurpose-bot/internal/platform/dbctx"
	"github.com/yungbote/repurpose-bot/internal/platform/logger"
)

// CreditGate spends one credit before running a paid operation.
type CreditGate interface {
	// Run consumes a credit and then runs op. ran is false when the user had no
	// credit or the store failed (err wraps ErrStore); in both cases op is not called.
	// When ran is true, err is op's result.
	Run(ctx context.Context, userID int64, op func(ctx context.Context) error) (ran bool, err error)
}

type creditGate struct {
	log  *logger.Logger
	repo userrepo.UserRepo
}

func NewCreditGate(log *logger.Logger, repo userrepo.UserRepo) CreditGate {
	return &creditGate{log: log.With("service", "CreditGate"), repo: repo}
}

func (g *creditGate) Run(ctx context.Context, userID int64, op func(ctx context.Context) error) (bool, error) {
	ok, err := g.repo.ConsumeCredit(dbctx.From(ctx), userID)
	if err != nil {
		g.log.Error("Credit decrement failed", "user_id", userID, "error", err)
		return false, fmt.Errorf("%w: consume credit: %v", ErrStore, err)
	}
	if !ok {
		g.log.Info("Out of credits", "user_id", userID)
		return false, nil
	}
	// A spent credit is not refunded if op fails.
	return true, op(ctx)
}
