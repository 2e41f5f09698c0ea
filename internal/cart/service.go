package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/internal/accounts"
	"github.com/minhvu-dev/accountshop-backend/internal/audit"
	"github.com/minhvu-dev/accountshop-backend/pkg/db"
	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	accounts accounts.Repository
	tx       txRunner
	audit    audit.Recorder
}

// NewService builds the cart service.
func NewService(repo Repository, accountsRepo accounts.Repository, tx txRunner, recorder audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if accountsRepo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, accounts: accountsRepo, tx: tx, audit: recorder}, nil
}

func (s *service) Add(ctx context.Context, userID, accountID uuid.UUID, ip string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if accountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	if account.State != enums.AccountStateAvailable {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "account is no longer available")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Add(ctx, &models.CartItem{UserID: userID, AccountID: accountID}); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "account already in cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:     &userID,
			Action:      enums.AuditActionAddToCart,
			Description: fmt.Sprintf("carted account %s", accountID),
			IPAddress:   ip,
		})
	})
}

func (s *service) Remove(ctx context.Context, userID, accountID uuid.UUID, ip string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if accountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		removed, err := repo.Remove(ctx, userID, accountID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
		if !removed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:     &userID,
			Action:      enums.AuditActionRemoveFromCart,
			Description: fmt.Sprintf("removed account %s from cart", accountID),
			IPAddress:   ip,
		})
	})
}

func (s *service) List(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart")
	}

	total := decimal.Zero
	for i := range items {
		if items[i].Account != nil {
			total = total.Add(items[i].Account.Price)
		}
	}
	return &Summary{Items: items, Total: total}, nil
}
