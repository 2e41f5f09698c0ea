package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
	"github.com/minhvu-dev/accountshop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an accounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Account{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) ListCatalog(ctx context.Context, filters CatalogFilters, params pagination.Params) (*CatalogPage, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Account{})
	if filters.State != nil {
		query = query.Where("state = ?", *filters.State)
	} else if !filters.IncludeClosed {
		query = query.Where("state = ?", enums.AccountStateAvailable)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Rank != nil {
		query = query.Where("rank = ?", *filters.Rank)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var rows []models.Account
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	items := make([]CatalogItem, 0, len(rows))
	for i := range rows {
		items = append(items, toCatalogItem(&rows[i]))
	}
	return &CatalogPage{Items: items, NextCursor: nextCursor}, nil
}

func (r *repository) Reserve(ctx context.Context, accountID, orderID uuid.UUID) error {
	if accountID == uuid.Nil || orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id and order id required")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND state = ?", accountID, enums.AccountStateAvailable).
		Updates(map[string]any{
			"state":    enums.AccountStateReserved,
			"order_id": orderID,
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve account")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// Zero rows means the guard failed. Read back to tell the caller why.
	var account models.Account
	err := r.db.WithContext(ctx).Where("id = ?", accountID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inspect account state")
	}
	switch account.State {
	case enums.AccountStateSold:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "account already sold")
	default:
		return pkgerrors.New(pkgerrors.CodeConflict, "account already reserved")
	}
}

func (r *repository) FinalizeSale(ctx context.Context, accountID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND state = ?", accountID, enums.AccountStateReserved).
		Update("state", enums.AccountStateSold)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "finalize sale")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "account not reserved")
	}
	return nil
}

func (r *repository) Release(ctx context.Context, accountID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND state = ?", accountID, enums.AccountStateReserved).
		Updates(map[string]any{
			"state":    enums.AccountStateAvailable,
			"order_id": nil,
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release account")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "account not reserved")
	}
	return nil
}

func (r *repository) FinalizeSaleByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("order_id = ? AND state = ?", orderID, enums.AccountStateReserved).
		Update("state", enums.AccountStateSold)
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "finalize order sale")
	}
	return res.RowsAffected, nil
}

func (r *repository) ReleaseByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("order_id = ? AND state = ?", orderID, enums.AccountStateReserved).
		Updates(map[string]any{
			"state":    enums.AccountStateAvailable,
			"order_id": nil,
		})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release order accounts")
	}
	return res.RowsAffected, nil
}
