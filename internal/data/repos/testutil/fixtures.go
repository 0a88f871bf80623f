package testutil

import (
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/repurpose-bot/internal/domain"
)

func SeedUser(tb testing.TB, tx *gorm.DB, userID int64, credits int) *types.User {
	tb.Helper()
	u := &types.User{UserID: userID, Credits: credits}
	if err := tx.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedProcessedUpdate inserts a ledger row claimed age ago.
func SeedProcessedUpdate(tb testing.TB, tx *gorm.DB, updateID int64, age time.Duration) *types.ProcessedUpdate {
	tb.Helper()
	p := &types.ProcessedUpdate{UpdateID: updateID, CreatedAt: time.Now().UTC().Add(-age)}
	if err := tx.Create(p).Error; err != nil {
		tb.Fatalf("seed processed update: %v", err)
	}
	return p
}
