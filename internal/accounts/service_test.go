package accounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/internal/audit"
	"github.com/minhvu-dev/accountshop-backend/pkg/config"
	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
	"github.com/minhvu-dev/accountshop-backend/pkg/vault"
)

const testVaultKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T) (Service, *gorm.DB, *vault.Vault) {
	t.Helper()
	db := newTestDB(t)
	v, err := vault.New(config.VaultConfig{Key: testVaultKey})
	if err != nil {
		t.Fatalf("new vault: %v", err)
	}
	auditSvc, err := audit.NewService(audit.NewRepository(db))
	if err != nil {
		t.Fatalf("new audit service: %v", err)
	}
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, auditSvc, v)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db, v
}

func adminActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.RoleAdmin, IPAddress: "198.51.100.3"}
}

func TestCreateEncryptsCredentialsAndAudits(t *testing.T) {
	t.Parallel()

	svc, db, v := newTestService(t)
	actor := adminActor()

	created, err := svc.Create(context.Background(), actor, CreateInput{
		Title:    "Diamond smurf",
		Category: "valorant",
		Price:    decimal.NewFromInt(350000),
		Username: "smurf_login",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var stored models.Account
	if err := db.First(&stored, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if stored.EncryptedUsername == "smurf_login" || stored.EncryptedPassword == "s3cret-pass" {
		t.Fatal("credentials stored in plaintext")
	}
	if got, err := v.Decrypt(stored.EncryptedUsername); err != nil || got != "smurf_login" {
		t.Fatalf("username round trip failed: %q %v", got, err)
	}
	if got, err := v.Decrypt(stored.EncryptedPassword); err != nil || got != "s3cret-pass" {
		t.Fatalf("password round trip failed: %q %v", got, err)
	}

	var log models.AuditLog
	if err := db.Where("action = ?", enums.AuditActionAddAccount).First(&log).Error; err != nil {
		t.Fatalf("expected add_account audit entry: %v", err)
	}
	if log.ActorID == nil || *log.ActorID != actor.UserID {
		t.Fatalf("audit actor mismatch: %+v", log)
	}
}

func TestCreateDeniedForNonAdmin(t *testing.T) {
	t.Parallel()

	svc, db, _ := newTestService(t)
	actor := Actor{UserID: uuid.New(), Role: enums.RoleUser, IPAddress: "198.51.100.9"}

	_, err := svc.Create(context.Background(), actor, CreateInput{
		Title:    "Nope",
		Price:    decimal.NewFromInt(1000),
		Username: "u",
		Password: "p",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	var log models.AuditLog
	if err := db.Where("action = ?", enums.AuditActionAccessDenied).First(&log).Error; err != nil {
		t.Fatalf("expected access_denied audit entry: %v", err)
	}

	var count int64
	if err := db.Model(&models.Account{}).Count(&count).Error; err != nil {
		t.Fatalf("count accounts: %v", err)
	}
	if count != 0 {
		t.Fatalf("denied create must not persist, got %d rows", count)
	}
}

func TestUpdateReencryptsPassword(t *testing.T) {
	t.Parallel()

	svc, db, v := newTestService(t)
	actor := adminActor()

	created, err := svc.Create(context.Background(), actor, CreateInput{
		Title:    "Gold acc",
		Price:    decimal.NewFromInt(90000),
		Username: "old_user",
		Password: "old_pass",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newPass := "brand-new-pass"
	if err := svc.Update(context.Background(), actor, created.ID, UpdateInput{Password: &newPass}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var stored models.Account
	if err := db.First(&stored, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if got, err := v.Decrypt(stored.EncryptedPassword); err != nil || got != newPass {
		t.Fatalf("password not rotated: %q %v", got, err)
	}
	if got, err := v.Decrypt(stored.EncryptedUsername); err != nil || got != "old_user" {
		t.Fatalf("username should be untouched: %q %v", got, err)
	}
}

func TestDeleteRejectsNonAvailableAccounts(t *testing.T) {
	t.Parallel()

	svc, db, _ := newTestService(t)
	actor := adminActor()

	account := seedAccount(t, db, enums.AccountStateAvailable)
	if err := NewRepository(db).Reserve(context.Background(), account.ID, uuid.New()); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	err := svc.Delete(context.Background(), actor, account.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	var count int64
	if err := db.Model(&models.Account{}).Count(&count).Error; err != nil {
		t.Fatalf("count accounts: %v", err)
	}
	if count != 1 {
		t.Fatalf("reserved account must survive delete, got %d rows", count)
	}
}
