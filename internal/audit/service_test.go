package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	"github.com/minhvu-dev/accountshop-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:audit_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("migrate audit logs: %v", err)
	}
	return db
}

func TestRecordWritesEntry(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx := context.Background()
	actor := uuid.New()
	entry := Entry{
		ActorID:     &actor,
		Action:      enums.AuditActionLogin,
		Description: "user logged in",
		IPAddress:   "203.0.113.7",
	}
	if err := svc.Record(ctx, nil, entry); err != nil {
		t.Fatalf("record: %v", err)
	}

	var stored models.AuditLog
	if err := db.First(&stored).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if stored.ActorID == nil || *stored.ActorID != actor {
		t.Fatalf("actor not preserved: %+v", stored)
	}
	if stored.Action != enums.AuditActionLogin {
		t.Fatalf("unexpected action %s", stored.Action)
	}
}

func TestRecordAllowsAnonymousActor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	entry := Entry{
		Action:      enums.AuditActionLoginFailed,
		Description: "bad password for minh",
		IPAddress:   "203.0.113.7",
	}
	if err := svc.Record(context.Background(), nil, entry); err != nil {
		t.Fatalf("record: %v", err)
	}

	var stored models.AuditLog
	if err := db.First(&stored).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if stored.ActorID != nil {
		t.Fatalf("expected nil actor, got %v", stored.ActorID)
	}
}

func TestRecordRejectsInvalidAction(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.Record(context.Background(), nil, Entry{Action: enums.AuditAction("explode")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecordOnTransactionRollsBackWithCaller(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx := context.Background()
	sentinel := errors.New("caller failed")
	txErr := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.Record(ctx, tx, Entry{Action: enums.AuditActionCreateOrder, Description: "order 1"}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(txErr, sentinel) {
		t.Fatalf("unexpected tx error: %v", txErr)
	}

	var count int64
	if err := db.Model(&models.AuditLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to drop audit entry, got %d rows", count)
	}
}

func TestListReverseChronWithCursor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		log := models.AuditLog{
			Action:      enums.AuditActionAddToCart,
			Description: "item",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&log).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	ctx := context.Background()
	page, err := svc.List(ctx, pagination.Params{Limit: 3}, ListFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Logs) != 3 {
		t.Fatalf("expected 3 logs, got %d", len(page.Logs))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor")
	}
	if !page.Logs[0].CreatedAt.After(page.Logs[2].CreatedAt) {
		t.Fatalf("expected newest first, got %v then %v", page.Logs[0].CreatedAt, page.Logs[2].CreatedAt)
	}

	rest, err := svc.List(ctx, pagination.Params{Limit: 3, Cursor: page.NextCursor}, ListFilters{})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest.Logs) != 2 {
		t.Fatalf("expected 2 remaining logs, got %d", len(rest.Logs))
	}
	if rest.NextCursor != "" {
		t.Fatalf("expected empty cursor at end, got %q", rest.NextCursor)
	}
}

func TestListFiltersByActorAndAction(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	actor := uuid.New()
	other := uuid.New()
	seed := []models.AuditLog{
		{ActorID: &actor, Action: enums.AuditActionLogin},
		{ActorID: &actor, Action: enums.AuditActionCreateOrder},
		{ActorID: &other, Action: enums.AuditActionLogin},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	action := enums.AuditActionLogin
	page, err := svc.List(context.Background(), pagination.Params{}, ListFilters{ActorID: &actor, Action: &action})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Logs) != 1 {
		t.Fatalf("expected 1 filtered log, got %d", len(page.Logs))
	}
	if page.Logs[0].ActorID == nil || *page.Logs[0].ActorID != actor {
		t.Fatalf("wrong actor in result: %+v", page.Logs[0])
	}
}
