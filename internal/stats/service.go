package stats

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
)

// Dashboard is the admin overview: stock, order pipeline, and revenue.
type Dashboard struct {
	AccountsByState map[enums.AccountState]int64 `json:"accounts_by_state"`
	OrdersByStatus  map[enums.OrderStatus]int64  `json:"orders_by_status"`
	Revenue         decimal.Decimal              `json:"revenue"`
	Users           int64                        `json:"users"`
}

// Service computes the dashboard aggregates.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	db *gorm.DB
}

// NewService constructs the stats service.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &service{db: db}, nil
}

type stateCount struct {
	Key   string
	Count int64
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	dash := &Dashboard{
		AccountsByState: map[enums.AccountState]int64{},
		OrdersByStatus:  map[enums.OrderStatus]int64{},
		Revenue:         decimal.Zero,
	}

	var accountCounts []stateCount
	err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Select("state AS key, COUNT(*) AS count").
		Group("state").
		Scan(&accountCounts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count accounts")
	}
	for _, row := range accountCounts {
		dash.AccountsByState[enums.AccountState(row.Key)] = row.Count
	}

	var orderCounts []stateCount
	err = s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&orderCounts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	for _, row := range orderCounts {
		dash.OrdersByStatus[enums.OrderStatus(row.Key)] = row.Count
	}

	// Revenue counts only money actually confirmed received.
	var revenue decimal.NullDecimal
	err = s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("SUM(total_amount)").
		Where("status = ?", enums.OrderStatusCompleted).
		Scan(&revenue).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	if revenue.Valid {
		dash.Revenue = revenue.Decimal
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&dash.Users).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}

	return dash, nil
}
