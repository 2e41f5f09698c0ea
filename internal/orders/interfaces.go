package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	"github.com/minhvu-dev/accountshop-backend/pkg/pagination"
)

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	NextNumber(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*Page, error)
	// UpdateStatus flips the status only when the current status matches
	// one of the allowed sources. Zero rows means the order moved first.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus) (bool, error)
	SetAdminNotes(ctx context.Context, id uuid.UUID, notes string) error
}

// Service drives the order lifecycle. All transitions are monotone:
// completed and cancelled orders never move again.
type Service interface {
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*Detail, error)
	List(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) (*Page, error)
	MarkPaymentSent(ctx context.Context, actor Actor, id uuid.UUID) error
	CompletePayment(ctx context.Context, actor Actor, id uuid.UUID) error
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) error
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, target enums.OrderStatus) error
	ViewCredentials(ctx context.Context, actor Actor, id uuid.UUID) ([]CredentialReveal, error)
	Annotate(ctx context.Context, actor Actor, id uuid.UUID, notes string) error
}
