package payments

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/internal/audit"
	"github.com/minhvu-dev/accountshop-backend/pkg/config"
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

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:payments_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.PaymentSetting{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	auditSvc, err := audit.NewService(audit.NewRepository(db))
	if err != nil {
		t.Fatalf("new audit service: %v", err)
	}
	cfg := config.PaymentConfig{QRBaseURL: "https://img.vietqr.io/image", ReferencePrefix: "DH"}
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, auditSvc, cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func adminActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.RoleAdmin, IPAddress: "198.51.100.5"}
}

func TestAssignReference(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	if got := svc.AssignReference(42); got != "DH42" {
		t.Fatalf("unexpected reference %q", got)
	}
}

func TestUpdateSettingsKeepsSingleActiveRow(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	actor := adminActor()

	if _, err := svc.UpdateSettings(ctx, actor, SettingsInput{
		BankID:        "970436",
		BankName:      "Vietcombank",
		AccountNumber: "00110011",
		AccountName:   "MINH VU",
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	second, err := svc.UpdateSettings(ctx, actor, SettingsInput{
		BankID:        "970418",
		BankName:      "BIDV",
		AccountNumber: "99887766",
		AccountName:   "MINH VU",
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	var active []models.PaymentSetting
	if err := db.Where("is_active = ?", true).Find(&active).Error; err != nil {
		t.Fatalf("load active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected exactly one active row, got %d", len(active))
	}
	if active[0].ID != second.ID {
		t.Fatalf("wrong active row: %s", active[0].ID)
	}

	loaded, err := svc.ActiveSettings(ctx)
	if err != nil {
		t.Fatalf("active settings: %v", err)
	}
	if loaded.BankID != "970418" {
		t.Fatalf("unexpected bank %s", loaded.BankID)
	}
}

func TestUpdateSettingsDeniedForSupport(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	actor := Actor{UserID: uuid.New(), Role: enums.RoleSupport}

	_, err := svc.UpdateSettings(context.Background(), actor, SettingsInput{
		BankID:        "970436",
		AccountNumber: "00110011",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	var log models.AuditLog
	if err := db.Where("action = ?", enums.AuditActionAccessDenied).First(&log).Error; err != nil {
		t.Fatalf("expected access_denied entry: %v", err)
	}
}

func TestInstructionsBuildsQRURL(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.UpdateSettings(ctx, adminActor(), SettingsInput{
		BankID:        "970436",
		BankName:      "Vietcombank",
		AccountNumber: "00110011",
		AccountName:   "MINH VU",
	}); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	instructions, err := svc.Instructions(ctx, 7, decimal.NewFromInt(500000))
	if err != nil {
		t.Fatalf("instructions: %v", err)
	}
	if instructions.Reference != "DH7" {
		t.Fatalf("unexpected reference %q", instructions.Reference)
	}
	if !strings.HasPrefix(instructions.QRURL, "https://img.vietqr.io/image/970436-00110011-compact.png?") {
		t.Fatalf("unexpected qr url %q", instructions.QRURL)
	}
	for _, part := range []string{"amount=500000", "addInfo=DH7", "accountName=MINH+VU"} {
		if !strings.Contains(instructions.QRURL, part) {
			t.Fatalf("qr url missing %q: %s", part, instructions.QRURL)
		}
	}
}

func TestInstructionsWithoutActiveSettings(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Instructions(context.Background(), 1, decimal.NewFromInt(1000))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
