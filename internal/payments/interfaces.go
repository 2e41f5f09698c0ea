package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
)

// Repository defines persistence operations for payment settings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActive(ctx context.Context) (*models.PaymentSetting, error)
	DeactivateAll(ctx context.Context) error
	Create(ctx context.Context, setting *models.PaymentSetting) (*models.PaymentSetting, error)
}

// Actor identifies who is changing payment settings.
type Actor struct {
	UserID    uuid.UUID
	Role      enums.Role
	IPAddress string
}

// SettingsInput carries the bank details for a new active configuration.
type SettingsInput struct {
	BankID        string
	BankName      string
	AccountNumber string
	AccountName   string
	QRTemplate    string
}

// Instructions bundles everything a buyer needs to pay an order.
type Instructions struct {
	BankID        string          `json:"bank_id"`
	BankName      string          `json:"bank_name,omitempty"`
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference"`
	QRURL         string          `json:"qr_url"`
}

// Service exposes payment configuration and the transfer-reference helpers.
type Service interface {
	ActiveSettings(ctx context.Context) (*models.PaymentSetting, error)
	UpdateSettings(ctx context.Context, actor Actor, input SettingsInput) (*models.PaymentSetting, error)
	AssignReference(orderNumber int64) string
	Instructions(ctx context.Context, orderNumber int64, amount decimal.Decimal) (*Instructions, error)
}
