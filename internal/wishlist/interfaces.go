package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
)

// Repository defines persistence operations for wishlist rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Add(ctx context.Context, item *models.WishlistItem) error
	Remove(ctx context.Context, userID, accountID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
}

// Service exposes the wishlist operations. A wishlist never holds
// inventory; sold accounts simply show up as unavailable.
type Service interface {
	Add(ctx context.Context, userID, accountID uuid.UUID) error
	Remove(ctx context.Context, userID, accountID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
}
