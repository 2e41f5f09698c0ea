package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/internal/accounts"
	"github.com/minhvu-dev/accountshop-backend/internal/audit"
	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}, &models.CartItem{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	auditSvc, err := audit.NewService(audit.NewRepository(db))
	if err != nil {
		t.Fatalf("new audit service: %v", err)
	}
	svc, err := NewService(NewRepository(db), accounts.NewRepository(db), gormTxRunner{db: db}, auditSvc)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func seedAccount(t *testing.T, db *gorm.DB, price int64, state enums.AccountState) *models.Account {
	t.Helper()
	account := &models.Account{
		Title:             "Acc",
		Price:             decimal.NewFromInt(price),
		EncryptedUsername: "enc-user",
		EncryptedPassword: "enc-pass",
		State:             state,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func TestAddListAndTotal(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	first := seedAccount(t, db, 500000, enums.AccountStateAvailable)
	second := seedAccount(t, db, 250000, enums.AccountStateAvailable)

	if err := svc.Add(ctx, userID, first.ID, "203.0.113.1"); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if err := svc.Add(ctx, userID, second.ID, "203.0.113.1"); err != nil {
		t.Fatalf("add second: %v", err)
	}

	summary, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summary.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(summary.Items))
	}
	if !summary.Total.Equal(decimal.NewFromInt(750000)) {
		t.Fatalf("unexpected total %s", summary.Total)
	}

	var logCount int64
	if err := db.Model(&models.AuditLog{}).Where("action = ?", enums.AuditActionAddToCart).Count(&logCount).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if logCount != 2 {
		t.Fatalf("expected 2 add_to_cart entries, got %d", logCount)
	}
}

func TestAddDuplicateIsConflict(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	account := seedAccount(t, db, 100000, enums.AccountStateAvailable)

	if err := svc.Add(ctx, userID, account.ID, ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := svc.Add(ctx, userID, account.ID, "")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAddUnavailableAccountRejected(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	sold := seedAccount(t, db, 100000, enums.AccountStateSold)

	err := svc.Add(ctx, uuid.New(), sold.ID, "")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCartingDoesNotReserve(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	account := seedAccount(t, db, 100000, enums.AccountStateAvailable)

	if err := svc.Add(ctx, uuid.New(), account.ID, ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	var stored models.Account
	if err := db.First(&stored, "id = ?", account.ID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if stored.State != enums.AccountStateAvailable {
		t.Fatalf("carting must not change state, got %s", stored.State)
	}
	if stored.OrderID != nil {
		t.Fatalf("carting must not bind an order: %v", stored.OrderID)
	}

	// A second user can cart the same account.
	if err := svc.Add(ctx, uuid.New(), account.ID, ""); err != nil {
		t.Fatalf("second user add: %v", err)
	}
}

func TestRemoveMissingItem(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	err := svc.Remove(context.Background(), uuid.New(), uuid.New(), "")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
