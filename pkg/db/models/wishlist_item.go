package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistItem marks an account a user wants to watch. Unique per
// (user, account); adding an existing pair is a no-op.
type WishlistItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:idx_wishlist_user_account"`
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;not null;uniqueIndex:idx_wishlist_user_account"`
	Account   *Account  `gorm:"foreignKey:AccountID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
