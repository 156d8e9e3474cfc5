package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/fabsketch-backend/internal/data/repos/testutil"
	types "github.com/yungbote/fabsketch-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.User{
		{
			ID:       uuid.New(),
			Email:    "userrepo@example.com",
			Nickname: "atelier",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	gotByIDs, err := repo.GetByIDs(ctx, tx, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	exists, err := repo.Exists(ctx, tx, created[0].ID)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Fatalf("Exists: expected true")
	}

	exists, err = repo.Exists(ctx, tx, uuid.New())
	if err != nil {
		t.Fatalf("Exists(missing): %v", err)
	}
	if exists {
		t.Fatalf("Exists(missing): expected false")
	}
}
