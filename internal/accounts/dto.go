package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
)

// Actor identifies who is performing an admin mutation.
type Actor struct {
	UserID    uuid.UUID
	Role      enums.Role
	IPAddress string
}

// CreateInput carries the fields for a new catalog entry. Username and
// Password arrive in plaintext and are encrypted before persistence.
type CreateInput struct {
	Title         string
	Description   string
	Category      string
	Rank          string
	Price         decimal.Decimal
	Username      string
	Password      string
	Images        []string
	InternalNotes string
}

// UpdateInput carries optional edits; nil fields are left untouched.
type UpdateInput struct {
	Title         *string
	Description   *string
	Category      *string
	Rank          *string
	Price         *decimal.Decimal
	Username      *string
	Password      *string
	Images        []string
	InternalNotes *string
}

// CatalogFilters narrows the public catalog listing.
type CatalogFilters struct {
	Category      *string
	Rank          *string
	State         *enums.AccountState
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	IncludeClosed bool
}

// CatalogItem is the public projection of an account. Credentials and
// internal notes never leave the service through this type.
type CatalogItem struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Category    string             `json:"category,omitempty"`
	Rank        string             `json:"rank,omitempty"`
	Price       decimal.Decimal    `json:"price"`
	State       enums.AccountState `json:"state"`
	Images      []string           `json:"images,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// CatalogPage is one page of catalog results.
type CatalogPage struct {
	Items      []CatalogItem `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func toCatalogItem(account *models.Account) CatalogItem {
	return CatalogItem{
		ID:          account.ID,
		Title:       account.Title,
		Description: account.Description,
		Category:    account.Category,
		Rank:        account.Rank,
		Price:       account.Price,
		State:       account.State,
		Images:      account.Images,
		CreatedAt:   account.CreatedAt,
	}
}
