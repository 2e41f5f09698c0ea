package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentSetting is the bank/QR routing target shown to buyers. At most one
// row is active at a time; activating a new target deactivates the old one.
type PaymentSetting struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BankID        string    `gorm:"column:bank_id;not null"`
	BankName      string    `gorm:"column:bank_name;not null"`
	AccountNumber string    `gorm:"column:account_number;not null"`
	AccountName   string    `gorm:"column:account_name;not null"`
	QRTemplate    string    `gorm:"column:qr_template;not null;default:'compact'"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true;index"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PaymentSetting) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
