package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/internal/accounts"
	"github.com/minhvu-dev/accountshop-backend/internal/audit"
	"github.com/minhvu-dev/accountshop-backend/pkg/access"
	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
	"github.com/minhvu-dev/accountshop-backend/pkg/metrics"
	"github.com/minhvu-dev/accountshop-backend/pkg/pagination"
	"github.com/minhvu-dev/accountshop-backend/pkg/vault"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// allowedTransitions encodes the order state machine. Completed and
// cancelled are terminal.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusCompleted, enums.OrderStatusCancelled},
	enums.OrderStatusCompleted:  {},
	enums.OrderStatusCancelled:  {},
}

// sourcesFor returns every status from which target is reachable.
func sourcesFor(target enums.OrderStatus) []enums.OrderStatus {
	var sources []enums.OrderStatus
	for from, targets := range allowedTransitions {
		for _, to := range targets {
			if to == target {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

type service struct {
	repo     Repository
	accounts accounts.Repository
	tx       txRunner
	audit    audit.Recorder
	vault    *vault.Vault
	metrics  *metrics.ShopMetrics
}

// NewService builds the order lifecycle service. Metrics may be nil.
func NewService(
	repo Repository,
	accountsRepo accounts.Repository,
	tx txRunner,
	recorder audit.Recorder,
	v *vault.Vault,
	shopMetrics *metrics.ShopMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
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
	if v == nil {
		return nil, fmt.Errorf("vault required")
	}
	return &service{
		repo:     repo,
		accounts: accountsRepo,
		tx:       tx,
		audit:    recorder,
		vault:    v,
		metrics:  shopMetrics,
	}, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*Detail, error) {
	order, err := s.loadOrder(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrRole(ctx, actor, order, enums.RoleSupport, "view order"); err != nil {
		return nil, err
	}
	return toDetail(order), nil
}

func (s *service) List(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) (*Page, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	// Regular users only ever see their own orders.
	if !access.HasPermission(actor.Role, enums.RoleSupport) {
		filters.UserID = &actor.UserID
	}
	page, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

// MarkPaymentSent is the buyer telling us the bank transfer went out.
func (s *service) MarkPaymentSent(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	target, err := s.loadOrder(ctx, s.repo, id)
	if err != nil {
		return err
	}
	if err := s.requireOwnerOrRole(ctx, actor, target, enums.RoleSupport, "confirm payment on someone else's order"); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := s.transition(ctx, repo, order, enums.OrderStatusProcessing); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:     &actor.UserID,
			Action:      enums.AuditActionConfirmPayment,
			Description: fmt.Sprintf("payment sent for order %d", order.Number),
			IPAddress:   actor.IPAddress,
		})
	})
}

// CompletePayment is staff confirming money arrived. The terminal
// completed status permanently sells every bound account.
func (s *service) CompletePayment(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.requireRole(ctx, actor, enums.RoleSupport, "complete payment"); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := s.transition(ctx, repo, order, enums.OrderStatusCompleted); err != nil {
			return err
		}
		sold, err := s.accounts.WithTx(tx).FinalizeSaleByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if sold != int64(len(order.Accounts)) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order accounts are not all reserved")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:     &actor.UserID,
			Action:      enums.AuditActionCompletePayment,
			Description: fmt.Sprintf("completed order %d, %d accounts sold", order.Number, sold),
			IPAddress:   actor.IPAddress,
		})
	})
}

// Cancel aborts an open order and returns its accounts to the catalog.
func (s *service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) error {
	target, err := s.loadOrder(ctx, s.repo, id)
	if err != nil {
		return err
	}
	if err := s.requireOwnerOrRole(ctx, actor, target, enums.RoleSupport, "cancel order"); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := s.transition(ctx, repo, order, enums.OrderStatusCancelled); err != nil {
			return err
		}
		if _, err := s.accounts.WithTx(tx).ReleaseByOrder(ctx, order.ID); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:     &actor.UserID,
			Action:      enums.AuditActionCancelOrder,
			Description: fmt.Sprintf("cancelled order %d", order.Number),
			IPAddress:   actor.IPAddress,
		})
	})
}

// UpdateStatus is the admin panel's generic transition endpoint. It
// enforces the same state machine as the dedicated operations.
func (s *service) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, target enums.OrderStatus) error {
	if err := s.requireRole(ctx, actor, enums.RoleAdmin, "update order status"); err != nil {
		return err
	}
	if !target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	switch target {
	case enums.OrderStatusCompleted:
		return s.CompletePayment(ctx, actor, id)
	case enums.OrderStatusCancelled:
		return s.Cancel(ctx, actor, id)
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := s.transition(ctx, repo, order, target); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:     &actor.UserID,
			Action:      enums.AuditActionUpdateOrderStatus,
			Description: fmt.Sprintf("order %d moved to %s", order.Number, target),
			IPAddress:   actor.IPAddress,
		})
	})
}

// ViewCredentials decrypts the bound accounts' credentials. Owners can
// only see them once the order is completed; staff can always inspect.
// Corrupted ciphertext is rendered as a redaction marker, never an error.
func (s *service) ViewCredentials(ctx context.Context, actor Actor, id uuid.UUID) ([]CredentialReveal, error) {
	order, err := s.loadOrder(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	isStaff := access.HasPermission(actor.Role, enums.RoleSupport)
	if !isStaff {
		if order.UserID != actor.UserID {
			return nil, s.deny(ctx, nil, actor, fmt.Sprintf("view credentials of order %d", order.Number))
		}
		if order.Status != enums.OrderStatusCompleted {
			return nil, s.deny(ctx, nil, actor, fmt.Sprintf("view credentials of order %d before completion", order.Number))
		}
	}

	reveals := make([]CredentialReveal, 0, len(order.Accounts))
	redacted := false
	for i := range order.Accounts {
		account := &order.Accounts[i]
		username := s.vault.DecryptOrRedact(account.EncryptedUsername)
		password := s.vault.DecryptOrRedact(account.EncryptedPassword)
		if username == vault.RedactedPlaceholder || password == vault.RedactedPlaceholder {
			redacted = true
		}
		reveals = append(reveals, CredentialReveal{
			AccountID: account.ID,
			Title:     account.Title,
			Username:  username,
			Password:  password,
		})
	}

	result := "revealed"
	if redacted {
		result = "redacted"
	}
	s.metrics.IncCredentialView(result)

	if err := s.audit.Record(ctx, nil, audit.Entry{
		ActorID:     &actor.UserID,
		Action:      enums.AuditActionViewCredentials,
		Description: fmt.Sprintf("viewed credentials of order %d", order.Number),
		IPAddress:   actor.IPAddress,
	}); err != nil {
		return nil, err
	}
	return reveals, nil
}

// Annotate stores admin notes. Notes stay editable after completion;
// they are the only mutation a completed order accepts.
func (s *service) Annotate(ctx context.Context, actor Actor, id uuid.UUID, notes string) error {
	if err := s.requireRole(ctx, actor, enums.RoleSupport, "annotate order"); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SetAdminNotes(ctx, id, notes); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set admin notes")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:     &actor.UserID,
			Action:      enums.AuditActionUpdateOrderStatus,
			Description: fmt.Sprintf("annotated order %s", id),
			IPAddress:   actor.IPAddress,
		})
	})
}

func (s *service) loadOrder(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// transition applies the guarded status update and reports a state
// conflict when the order is not in a source status for the target.
func (s *service) transition(ctx context.Context, repo Repository, order *models.Order, target enums.OrderStatus) error {
	sources := sourcesFor(target)
	if len(sources) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no transition leads to %s", target))
	}
	moved, err := repo.UpdateStatus(ctx, order.ID, sources, target)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !moved {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order cannot move from %s to %s", order.Status, target))
	}
	order.Status = target
	s.metrics.IncOrderTransition(target.String())
	return nil
}

func (s *service) requireRole(ctx context.Context, actor Actor, required enums.Role, operation string) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if access.HasPermission(actor.Role, required) {
		return nil
	}
	return s.deny(ctx, nil, actor, operation)
}

func (s *service) requireOwnerOrRole(ctx context.Context, actor Actor, order *models.Order, role enums.Role, operation string) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if order.UserID == actor.UserID || access.HasPermission(actor.Role, role) {
		return nil
	}
	return s.deny(ctx, nil, actor, operation)
}

func (s *service) deny(ctx context.Context, tx *gorm.DB, actor Actor, operation string) error {
	if err := s.audit.Record(ctx, tx, audit.Entry{
		ActorID:     &actor.UserID,
		Action:      enums.AuditActionAccessDenied,
		Description: fmt.Sprintf("denied %s for role %s", operation, actor.Role),
		IPAddress:   actor.IPAddress,
	}); err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed")
}
