package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/internal/accounts"
	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:wishlist_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}, &models.WishlistItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(db), accounts.NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func seedAccount(t *testing.T, db *gorm.DB, state enums.AccountState) *models.Account {
	t.Helper()
	account := &models.Account{
		Title:             "Acc",
		Price:             decimal.NewFromInt(100000),
		EncryptedUsername: "enc-user",
		EncryptedPassword: "enc-pass",
		State:             state,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func TestAddIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	account := seedAccount(t, db, enums.AccountStateAvailable)

	if err := svc.Add(ctx, userID, account.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Add(ctx, userID, account.ID); err != nil {
		t.Fatalf("re-add should be a no-op: %v", err)
	}

	items, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Account == nil || items[0].Account.ID != account.ID {
		t.Fatal("expected preloaded account")
	}
}

func TestAddUnknownAccount(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	err := svc.Add(context.Background(), uuid.New(), uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	account := seedAccount(t, db, enums.AccountStateSold)

	if err := svc.Add(ctx, userID, account.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(ctx, userID, account.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	err := svc.Remove(ctx, userID, account.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("second remove err = %v, want not found", err)
	}
}
