package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
)

// Actor identifies who is driving an order transition.
type Actor struct {
	UserID    uuid.UUID
	Role      enums.Role
	IPAddress string
}

// ListFilters narrows order listings.
type ListFilters struct {
	Status *enums.OrderStatus
	UserID *uuid.UUID
}

// Page is one page of orders.
type Page struct {
	Orders     []models.Order
	NextCursor string
}

// CredentialReveal is one decrypted credential pair. Username or
// Password carry the redaction marker when ciphertext cannot be opened.
type CredentialReveal struct {
	AccountID uuid.UUID `json:"account_id"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
}

// Detail is an order with its bound accounts, shaped for responses.
type Detail struct {
	ID               uuid.UUID         `json:"id"`
	Number           int64             `json:"number"`
	UserID           uuid.UUID         `json:"user_id"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	Status           enums.OrderStatus `json:"status"`
	PaymentReference string            `json:"payment_reference"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Accounts         []OrderAccount    `json:"accounts"`
}

// OrderAccount is the credential-free projection of a bound account.
type OrderAccount struct {
	ID    uuid.UUID          `json:"id"`
	Title string             `json:"title"`
	Price decimal.Decimal    `json:"price"`
	State enums.AccountState `json:"state"`
}

func toDetail(order *models.Order) *Detail {
	detail := &Detail{
		ID:               order.ID,
		Number:           order.Number,
		UserID:           order.UserID,
		TotalAmount:      order.TotalAmount,
		Status:           order.Status,
		PaymentReference: order.PaymentReference,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	for i := range order.Accounts {
		account := &order.Accounts[i]
		detail.Accounts = append(detail.Accounts, OrderAccount{
			ID:    account.ID,
			Title: account.Title,
			Price: account.Price,
			State: account.State,
		})
	}
	return detail
}
