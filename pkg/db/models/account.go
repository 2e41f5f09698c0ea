package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
)

// Account is a unique, non-fungible game account listing. The credential
// columns hold vault ciphertext only; plaintext never reaches the database.
// At most one non-cancelled order may reference an account at a time.
type Account struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Title             string             `gorm:"column:title;not null"`
	Description       string             `gorm:"column:description"`
	Category          string             `gorm:"column:category;not null;index"`
	Rank              string             `gorm:"column:rank"`
	Price             decimal.Decimal    `gorm:"column:price;type:numeric(14,0);not null"`
	EncryptedUsername string             `gorm:"column:encrypted_username;type:text;not null"`
	EncryptedPassword string             `gorm:"column:encrypted_password;type:text;not null"`
	State             enums.AccountState `gorm:"column:state;type:text;not null;default:'available';index"`
	OrderID           *uuid.UUID         `gorm:"column:order_id;type:uuid;index"`
	Images            pq.StringArray     `gorm:"column:images;type:text[]"`
	InternalNotes     string             `gorm:"column:internal_notes"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
