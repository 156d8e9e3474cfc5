package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	types "github.com/yungbote/fabsketch-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Nickname: "seed",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedDesign(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, sessionID string) *types.GeneratedDesign {
	tb.Helper()
	d := &types.GeneratedDesign{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       "seed",
		Description: "seed design",
		ImageURL:    "https://example.com/" + sessionID + "/step_1.jpg",
		ImageURLs:   datatypes.JSON([]byte("[]")),
		SessionID:   sessionID,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed design: %v", err)
	}
	return d
}
