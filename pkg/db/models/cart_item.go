package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem stages one user's intent to buy one account. Unique per
// (user, account); carting does not reserve inventory, so two users may
// stage the same account until one of them checks out.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:idx_cart_user_account"`
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;not null;uniqueIndex:idx_cart_user_account"`
	Account   *Account  `gorm:"foreignKey:AccountID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
