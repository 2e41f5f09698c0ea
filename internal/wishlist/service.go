package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/internal/accounts"
	"github.com/minhvu-dev/accountshop-backend/pkg/db"
	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
)

type service struct {
	repo        Repository
	accountRepo accounts.Repository
}

// NewService constructs the wishlist service.
func NewService(repo Repository, accountRepo accounts.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository is required")
	}
	if accountRepo == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	return &service{repo: repo, accountRepo: accountRepo}, nil
}

func (s *service) Add(ctx context.Context, userID, accountID uuid.UUID) error {
	if _, err := s.accountRepo.FindByID(ctx, accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup account")
	}

	err := s.repo.Add(ctx, &models.WishlistItem{UserID: userID, AccountID: accountID})
	if err != nil {
		// Re-adding a watched account is a no-op.
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID, accountID uuid.UUID) error {
	removed, err := s.repo.Remove(ctx, userID, accountID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "account not in wishlist")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	return items, nil
}
