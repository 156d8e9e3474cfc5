package design

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/fabsketch-backend/internal/data/repos/testutil"
	types "github.com/yungbote/fabsketch-backend/internal/domain"
	"gorm.io/datatypes"
)

func TestDesignRepoCreateAndGet(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	repo := NewDesignRepo(db, testutil.Logger(t))

	created, err := repo.Create(ctx, tx, &types.GeneratedDesign{
		UserID:         owner.ID,
		Title:          "Linen shirt",
		Description:    "Relaxed fit",
		ImageURL:       "https://cdn/x/step_1.jpg",
		ImageURLs:      datatypes.JSON([]byte(`["https://cdn/x/step_1.jpg"]`)),
		FinalDesignURL: "https://cdn/x/step_1.jpg",
		SessionID:      "x",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("Create: expected id to be assigned")
	}

	got, err := repo.GetByID(ctx, tx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Linen shirt" || got.SessionID != "x" || got.UserID != owner.ID {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}
}

func TestDesignRepoAllowsRepeatedSession(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "dup@example.com")
	testutil.SeedDesign(t, ctx, tx, owner.ID, "same-session")
	testutil.SeedDesign(t, ctx, tx, owner.ID, "same-session")

	repo := NewDesignRepo(db, testutil.Logger(t))
	rows, err := repo.ListBySessionID(ctx, tx, "same-session")
	if err != nil {
		t.Fatalf("ListBySessionID: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListBySessionID: want=2 got=%d", len(rows))
	}
	if rows[0].ID == rows[1].ID {
		t.Fatalf("expected distinct records, got the same id twice")
	}
}
