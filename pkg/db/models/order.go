package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
)

// Order binds a set of reserved accounts to a buyer. TotalAmount is a
// snapshot taken at checkout and never recomputed. Once completed the order
// is immutable except for admin notes.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Number           int64               `gorm:"column:number;not null;uniqueIndex"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	TotalAmount      decimal.Decimal     `gorm:"column:total_amount;type:numeric(14,0);not null"`
	Status           enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending';index"`
	CustomerName     string              `gorm:"column:customer_name;not null"`
	CustomerEmail    string              `gorm:"column:customer_email;not null"`
	CustomerPhone    string              `gorm:"column:customer_phone"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'vietqr'"`
	PaymentReference string              `gorm:"column:payment_reference"`
	AdminNotes       string              `gorm:"column:admin_notes"`
	Accounts         []Account           `gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
