package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
)

// Repository defines persistence operations for cart rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Add(ctx context.Context, item *models.CartItem) error
	Remove(ctx context.Context, userID, accountID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// Service exposes the cart operations. Carting never reserves: an
// account in a cart stays available to everyone until checkout.
type Service interface {
	Add(ctx context.Context, userID, accountID uuid.UUID, ip string) error
	Remove(ctx context.Context, userID, accountID uuid.UUID, ip string) error
	List(ctx context.Context, userID uuid.UUID) (*Summary, error)
}

// Summary is a user's cart with its running total.
type Summary struct {
	Items []models.CartItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
}
