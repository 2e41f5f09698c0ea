package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/internal/accounts"
	"github.com/minhvu-dev/accountshop-backend/internal/audit"
	"github.com/minhvu-dev/accountshop-backend/internal/cart"
	"github.com/minhvu-dev/accountshop-backend/internal/orders"
	"github.com/minhvu-dev/accountshop-backend/pkg/db"
	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
	"github.com/minhvu-dev/accountshop-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// orderNumberAttempts bounds the reruns when two checkouts race for the
// same sequential order number.
const orderNumberAttempts = 3

var errOrderNumberTaken = errors.New("order number taken")

type referencer interface {
	AssignReference(orderNumber int64) string
}

// Input carries the buyer contact details collected at checkout.
type Input struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	PaymentMethod enums.PaymentMethod
	IPAddress     string
}

// Service converts a cart into a pending order, atomically reserving
// every referenced account. Any reservation loss aborts the whole
// checkout: no order row, no partial reservations, cart untouched.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, input Input) (*models.Order, error)
}

type service struct {
	tx           txRunner
	cartRepo     cart.Repository
	accountsRepo accounts.Repository
	ordersRepo   orders.Repository
	payments     referencer
	audit        audit.Recorder
	metrics      *metrics.ShopMetrics
}

// NewService builds the checkout service. Metrics may be nil.
func NewService(
	tx txRunner,
	cartRepo cart.Repository,
	accountsRepo accounts.Repository,
	ordersRepo orders.Repository,
	payments referencer,
	recorder audit.Recorder,
	shopMetrics *metrics.ShopMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if accountsRepo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment referencer required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{
		tx:           tx,
		cartRepo:     cartRepo,
		accountsRepo: accountsRepo,
		ordersRepo:   ordersRepo,
		payments:     payments,
		audit:        recorder,
		metrics:      shopMetrics,
	}, nil
}

func (s *service) Execute(ctx context.Context, userID uuid.UUID, input Input) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodVietQR
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	started := time.Now()
	var order *models.Order
	var err error
	// The number allocation reads MAX(number)+1 inside the transaction,
	// so two disjoint checkouts can collide on the unique index. Such a
	// collision carries no item conflict; rerun with a fresh number.
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order, err = s.execute(ctx, userID, input)
		if err == nil || !errors.Is(err, errOrderNumberTaken) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, errOrderNumberTaken) {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}
		s.metrics.ObserveCheckout("failed", time.Since(started))
		return nil, err
	}

	s.metrics.ObserveCheckout("created", time.Since(started))
	return order, nil
}

func (s *service) execute(ctx context.Context, userID uuid.UUID, input Input) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		accountsRepo := s.accountsRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		items, err := cartRepo.ListByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		number, err := ordersRepo.NextNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}

		order = &models.Order{
			Number:           number,
			UserID:           userID,
			Status:           enums.OrderStatusPending,
			CustomerName:     strings.TrimSpace(input.CustomerName),
			CustomerEmail:    strings.TrimSpace(input.CustomerEmail),
			CustomerPhone:    strings.TrimSpace(input.CustomerPhone),
			PaymentMethod:    input.PaymentMethod,
			PaymentReference: s.payments.AssignReference(number),
		}
		if _, err := ordersRepo.Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "number") {
				return errOrderNumberTaken
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		// Reserve every carted account or abort the whole checkout.
		// Prices are snapshotted at binding time.
		total := decimal.Zero
		for i := range items {
			item := &items[i]
			if err := accountsRepo.Reserve(ctx, item.AccountID, order.ID); err != nil {
				return err
			}
			if item.Account != nil {
				total = total.Add(item.Account.Price)
			}
		}

		order.TotalAmount = total
		res := tx.WithContext(ctx).
			Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("total_amount", total)
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "set order total")
		}

		if err := cartRepo.Clear(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:     &userID,
			Action:      enums.AuditActionCreateOrder,
			Description: fmt.Sprintf("created order %d with %d accounts", number, len(items)),
			IPAddress:   input.IPAddress,
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
