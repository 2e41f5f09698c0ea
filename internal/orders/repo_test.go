package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	"github.com/minhvu-dev/accountshop-backend/pkg/pagination"
)

func setupOrdersRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.Account{}))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, number int64, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		Number:        number,
		UserID:        userID,
		TotalAmount:   decimal.NewFromInt(250000),
		Status:        status,
		CustomerName:  "Tran Van B",
		CustomerEmail: "buyer@example.com",
		PaymentMethod: enums.PaymentMethodVietQR,
		CreatedAt:     createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	// AutoCreateTime overrides the seeded value, so pin it explicitly.
	require.NoError(t, db.Model(order).Update("created_at", createdAt).Error)
	return order
}

func TestRepositoryNextNumber(t *testing.T) {
	db := setupOrdersRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	n, err := repo.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	seedOrder(t, db, uuid.New(), 41, enums.OrderStatusPending, time.Now().UTC())

	n, err = repo.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestRepositoryUpdateStatusGuardsSource(t *testing.T) {
	db := setupOrdersRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), 1, enums.OrderStatusCompleted, time.Now().UTC())

	moved, err := repo.UpdateStatus(ctx, order.ID,
		[]enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusProcessing},
		enums.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, moved, "completed orders must not move")

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, reloaded.Status)

	pending := seedOrder(t, db, uuid.New(), 2, enums.OrderStatusPending, time.Now().UTC())
	moved, err = repo.UpdateStatus(ctx, pending.ID,
		[]enums.OrderStatus{enums.OrderStatusPending},
		enums.OrderStatusProcessing)
	require.NoError(t, err)
	assert.True(t, moved)
}

func TestRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupOrdersRepoDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	buyer := uuid.New()
	other := uuid.New()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		seedOrder(t, db, buyer, int64(i+1), enums.OrderStatusPending, base.Add(time.Duration(i)*time.Minute))
	}
	seedOrder(t, db, buyer, 4, enums.OrderStatusCompleted, base.Add(10*time.Minute))
	seedOrder(t, db, other, 5, enums.OrderStatusPending, base.Add(20*time.Minute))

	page, err := repo.List(ctx, pagination.Params{Limit: 2}, ListFilters{UserID: &buyer})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.NotEmpty(t, page.NextCursor)
	assert.Equal(t, int64(4), page.Orders[0].Number, "newest first")

	rest, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor}, ListFilters{UserID: &buyer})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 2)
	assert.Empty(t, rest.NextCursor)

	completed := enums.OrderStatusCompleted
	filtered, err := repo.List(ctx, pagination.Params{}, ListFilters{UserID: &buyer, Status: &completed})
	require.NoError(t, err)
	require.Len(t, filtered.Orders, 1)
	assert.Equal(t, int64(4), filtered.Orders[0].Number)
}
