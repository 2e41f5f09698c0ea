package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/pagination"
)

// Repository defines persistence operations for the account catalog,
// including the reservation state machine.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Account, error)
	ListCatalog(ctx context.Context, filters CatalogFilters, params pagination.Params) (*CatalogPage, error)

	// Reserve binds an available account to an order. Exactly one caller
	// can win a race on the same account; losers get a conflict.
	Reserve(ctx context.Context, accountID, orderID uuid.UUID) error
	// FinalizeSale flips a reserved account to sold. Sold is terminal.
	FinalizeSale(ctx context.Context, accountID uuid.UUID) error
	// Release returns a reserved account to the open catalog.
	Release(ctx context.Context, accountID uuid.UUID) error
	// FinalizeSaleByOrder and ReleaseByOrder apply the same transitions
	// to every account still reserved under the order.
	FinalizeSaleByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
	ReleaseByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

// Service exposes catalog reads and the admin-only mutations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*CatalogItem, error)
	ListCatalog(ctx context.Context, filters CatalogFilters, params pagination.Params) (*CatalogPage, error)
	Create(ctx context.Context, actor Actor, input CreateInput) (*models.Account, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) error
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}
