package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/internal/audit"
	"github.com/minhvu-dev/accountshop-backend/pkg/access"
	"github.com/minhvu-dev/accountshop-backend/pkg/config"
	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
)

const defaultQRTemplate = "compact"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo  Repository
	tx    txRunner
	audit audit.Recorder
	cfg   config.PaymentConfig
}

// NewService builds the payments service.
func NewService(repo Repository, tx txRunner, recorder audit.Recorder, cfg config.PaymentConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, tx: tx, audit: recorder, cfg: cfg}, nil
}

func (s *service) ActiveSettings(ctx context.Context) (*models.PaymentSetting, error) {
	setting, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active payment settings")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment settings")
	}
	return setting, nil
}

// UpdateSettings replaces the active configuration. Only one row is
// active at any time, so the previous one is deactivated first.
func (s *service) UpdateSettings(ctx context.Context, actor Actor, input SettingsInput) (*models.PaymentSetting, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !access.HasPermission(actor.Role, enums.RoleAdmin) {
		if err := s.audit.Record(ctx, nil, audit.Entry{
			ActorID:     &actor.UserID,
			Action:      enums.AuditActionAccessDenied,
			Description: fmt.Sprintf("denied payment settings update for role %s", actor.Role),
			IPAddress:   actor.IPAddress,
		}); err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	if strings.TrimSpace(input.BankID) == "" || strings.TrimSpace(input.AccountNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bank id and account number required")
	}

	template := strings.TrimSpace(input.QRTemplate)
	if template == "" {
		template = defaultQRTemplate
	}

	setting := &models.PaymentSetting{
		BankID:        strings.TrimSpace(input.BankID),
		BankName:      strings.TrimSpace(input.BankName),
		AccountNumber: strings.TrimSpace(input.AccountNumber),
		AccountName:   strings.TrimSpace(input.AccountName),
		QRTemplate:    template,
		IsActive:      true,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeactivateAll(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate payment settings")
		}
		if _, err := repo.Create(ctx, setting); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment settings")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:     &actor.UserID,
			Action:      enums.AuditActionUpdatePayment,
			Description: fmt.Sprintf("activated payment settings for bank %s", setting.BankID),
			IPAddress:   actor.IPAddress,
		})
	})
	if err != nil {
		return nil, err
	}
	return setting, nil
}

// AssignReference derives the bank transfer note from the order number.
func (s *service) AssignReference(orderNumber int64) string {
	prefix := s.cfg.ReferencePrefix
	if prefix == "" {
		prefix = "DH"
	}
	return fmt.Sprintf("%s%d", prefix, orderNumber)
}

// Instructions builds bank transfer instructions including a VietQR image URL.
func (s *service) Instructions(ctx context.Context, orderNumber int64, amount decimal.Decimal) (*Instructions, error) {
	if orderNumber <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}

	setting, err := s.ActiveSettings(ctx)
	if err != nil {
		return nil, err
	}

	reference := s.AssignReference(orderNumber)
	return &Instructions{
		BankID:        setting.BankID,
		BankName:      setting.BankName,
		AccountNumber: setting.AccountNumber,
		AccountName:   setting.AccountName,
		Amount:        amount,
		Reference:     reference,
		QRURL:         s.buildQRURL(setting, amount, reference),
	}, nil
}

func (s *service) buildQRURL(setting *models.PaymentSetting, amount decimal.Decimal, reference string) string {
	base := strings.TrimRight(s.cfg.QRBaseURL, "/")
	query := url.Values{}
	query.Set("amount", amount.String())
	query.Set("addInfo", reference)
	if setting.AccountName != "" {
		query.Set("accountName", setting.AccountName)
	}
	return fmt.Sprintf("%s/%s-%s-%s.png?%s",
		base, setting.BankID, setting.AccountNumber, setting.QRTemplate, query.Encode())
}
