package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/internal/accounts"
	"github.com/minhvu-dev/accountshop-backend/internal/audit"
	"github.com/minhvu-dev/accountshop-backend/pkg/config"
	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
	"github.com/minhvu-dev/accountshop-backend/pkg/pagination"
	"github.com/minhvu-dev/accountshop-backend/pkg/vault"
)

const testVaultKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fixture struct {
	svc   Service
	db    *gorm.DB
	vault *vault.Vault
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.Account{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	v, err := vault.New(config.VaultConfig{Key: testVaultKey})
	if err != nil {
		t.Fatalf("new vault: %v", err)
	}
	auditSvc, err := audit.NewService(audit.NewRepository(db))
	if err != nil {
		t.Fatalf("new audit service: %v", err)
	}
	svc, err := NewService(NewRepository(db), accounts.NewRepository(db), gormTxRunner{db: db}, auditSvc, v, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, db: db, vault: v}
}

// seedOrder creates an order with one reserved account bound to it.
func (f *fixture) seedOrder(t *testing.T, userID uuid.UUID, status enums.OrderStatus) (*models.Order, *models.Account) {
	t.Helper()
	encUser, err := f.vault.Encrypt("acc_login")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	encPass, err := f.vault.Encrypt("acc_password")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	order := &models.Order{
		Number:           nextTestNumber(t, f.db),
		UserID:           userID,
		TotalAmount:      decimal.NewFromInt(500000),
		Status:           status,
		PaymentReference: "DH1",
	}
	if err := f.db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	accountState := enums.AccountStateReserved
	if status == enums.OrderStatusCompleted {
		accountState = enums.AccountStateSold
	}
	account := &models.Account{
		Title:             "Challenger Acc",
		Price:             decimal.NewFromInt(500000),
		EncryptedUsername: encUser,
		EncryptedPassword: encPass,
		State:             accountState,
		OrderID:           &order.ID,
	}
	if err := f.db.Create(account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return order, account
}

func nextTestNumber(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var max int64
	if err := db.Model(&models.Order{}).Select("COALESCE(MAX(number), 0)").Scan(&max).Error; err != nil {
		t.Fatalf("next number: %v", err)
	}
	return max + 1
}

func TestMarkPaymentSentMovesPendingToProcessing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	order, _ := f.seedOrder(t, userID, enums.OrderStatusPending)

	actor := Actor{UserID: userID, Role: enums.RoleUser}
	if err := f.svc.MarkPaymentSent(context.Background(), actor, order.ID); err != nil {
		t.Fatalf("mark payment sent: %v", err)
	}

	var stored models.Order
	if err := f.db.First(&stored, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if stored.Status != enums.OrderStatusProcessing {
		t.Fatalf("unexpected status %s", stored.Status)
	}

	var log models.AuditLog
	if err := f.db.Where("action = ?", enums.AuditActionConfirmPayment).First(&log).Error; err != nil {
		t.Fatalf("expected confirm_payment entry: %v", err)
	}
}

func TestMarkPaymentSentRejectsOtherUsers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order, _ := f.seedOrder(t, uuid.New(), enums.OrderStatusPending)

	actor := Actor{UserID: uuid.New(), Role: enums.RoleUser}
	err := f.svc.MarkPaymentSent(context.Background(), actor, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	var log models.AuditLog
	if err := f.db.Where("action = ?", enums.AuditActionAccessDenied).First(&log).Error; err != nil {
		t.Fatalf("expected access_denied entry: %v", err)
	}
}

func TestCompletePaymentSellsBoundAccounts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order, account := f.seedOrder(t, uuid.New(), enums.OrderStatusProcessing)

	support := Actor{UserID: uuid.New(), Role: enums.RoleSupport}
	if err := f.svc.CompletePayment(context.Background(), support, order.ID); err != nil {
		t.Fatalf("complete payment: %v", err)
	}

	var storedOrder models.Order
	if err := f.db.First(&storedOrder, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if storedOrder.Status != enums.OrderStatusCompleted {
		t.Fatalf("unexpected status %s", storedOrder.Status)
	}

	var storedAccount models.Account
	if err := f.db.First(&storedAccount, "id = ?", account.ID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if storedAccount.State != enums.AccountStateSold {
		t.Fatalf("account not sold: %s", storedAccount.State)
	}
}

func TestCompletePaymentRejectsRegularUsers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	order, _ := f.seedOrder(t, userID, enums.OrderStatusProcessing)

	owner := Actor{UserID: userID, Role: enums.RoleUser}
	err := f.svc.CompletePayment(context.Background(), owner, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	var stored models.Order
	if err := f.db.First(&stored, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if stored.Status != enums.OrderStatusProcessing {
		t.Fatalf("order must stay processing, got %s", stored.Status)
	}
}

func TestCompletePaymentRequiresProcessing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order, _ := f.seedOrder(t, uuid.New(), enums.OrderStatusPending)

	admin := Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
	err := f.svc.CompletePayment(context.Background(), admin, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCompletedOrdersAreTerminal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	order, account := f.seedOrder(t, userID, enums.OrderStatusCompleted)

	admin := Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
	owner := Actor{UserID: userID, Role: enums.RoleUser}

	if err := f.svc.Cancel(context.Background(), owner, order.ID); err == nil {
		t.Fatal("expected cancel of completed order to fail")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if err := f.svc.UpdateStatus(context.Background(), admin, order.ID, enums.OrderStatusPending); err == nil {
		t.Fatal("expected reverse transition to fail")
	}

	var storedAccount models.Account
	if err := f.db.First(&storedAccount, "id = ?", account.ID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if storedAccount.State != enums.AccountStateSold {
		t.Fatalf("sold account must stay sold, got %s", storedAccount.State)
	}
}

func TestCancelReleasesAccounts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	order, account := f.seedOrder(t, userID, enums.OrderStatusPending)

	owner := Actor{UserID: userID, Role: enums.RoleUser}
	if err := f.svc.Cancel(context.Background(), owner, order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	var storedAccount models.Account
	if err := f.db.First(&storedAccount, "id = ?", account.ID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if storedAccount.State != enums.AccountStateAvailable {
		t.Fatalf("account not released: %s", storedAccount.State)
	}
	if storedAccount.OrderID != nil {
		t.Fatalf("order binding not cleared: %v", storedAccount.OrderID)
	}
}

func TestViewCredentialsLocksUntilCompleted(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	order, _ := f.seedOrder(t, userID, enums.OrderStatusProcessing)

	owner := Actor{UserID: userID, Role: enums.RoleUser}
	_, err := f.svc.ViewCredentials(context.Background(), owner, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden before completion, got %v", err)
	}

	var log models.AuditLog
	if err := f.db.Where("action = ?", enums.AuditActionAccessDenied).First(&log).Error; err != nil {
		t.Fatalf("expected access_denied entry: %v", err)
	}
}

func TestViewCredentialsForCompletedOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	order, _ := f.seedOrder(t, userID, enums.OrderStatusCompleted)

	owner := Actor{UserID: userID, Role: enums.RoleUser}
	reveals, err := f.svc.ViewCredentials(context.Background(), owner, order.ID)
	if err != nil {
		t.Fatalf("view credentials: %v", err)
	}
	if len(reveals) != 1 {
		t.Fatalf("expected 1 reveal, got %d", len(reveals))
	}
	if reveals[0].Username != "acc_login" || reveals[0].Password != "acc_password" {
		t.Fatalf("unexpected reveal %+v", reveals[0])
	}

	var log models.AuditLog
	if err := f.db.Where("action = ?", enums.AuditActionViewCredentials).First(&log).Error; err != nil {
		t.Fatalf("expected view_credentials entry: %v", err)
	}
}

func TestViewCredentialsRedactsCorruptedCiphertext(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	order, account := f.seedOrder(t, userID, enums.OrderStatusCompleted)

	if err := f.db.Model(&models.Account{}).
		Where("id = ?", account.ID).
		Update("encrypted_password", "not-even-base64").Error; err != nil {
		t.Fatalf("corrupt ciphertext: %v", err)
	}

	owner := Actor{UserID: userID, Role: enums.RoleUser}
	reveals, err := f.svc.ViewCredentials(context.Background(), owner, order.ID)
	if err != nil {
		t.Fatalf("view credentials: %v", err)
	}
	if reveals[0].Password != vault.RedactedPlaceholder {
		t.Fatalf("expected redaction marker, got %q", reveals[0].Password)
	}
	if reveals[0].Username != "acc_login" {
		t.Fatalf("intact field must still decrypt, got %q", reveals[0].Username)
	}
}

func TestViewCredentialsDeniedForStranger(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order, _ := f.seedOrder(t, uuid.New(), enums.OrderStatusCompleted)

	stranger := Actor{UserID: uuid.New(), Role: enums.RoleUser}
	_, err := f.svc.ViewCredentials(context.Background(), stranger, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestListScopesRegularUsersToOwnOrders(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mine := uuid.New()
	f.seedOrder(t, mine, enums.OrderStatusPending)
	f.seedOrder(t, uuid.New(), enums.OrderStatusPending)

	page, err := f.svc.List(context.Background(), Actor{UserID: mine, Role: enums.RoleUser}, pagination.Params{}, ListFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(page.Orders))
	}
	if page.Orders[0].UserID != mine {
		t.Fatalf("leaked someone else's order")
	}

	all, err := f.svc.List(context.Background(), Actor{UserID: uuid.New(), Role: enums.RoleSupport}, pagination.Params{}, ListFilters{})
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	if len(all.Orders) != 2 {
		t.Fatalf("staff should see all orders, got %d", len(all.Orders))
	}
}
