package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/internal/audit"
	"github.com/minhvu-dev/accountshop-backend/pkg/access"
	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	pkgerrors "github.com/minhvu-dev/accountshop-backend/pkg/errors"
	"github.com/minhvu-dev/accountshop-backend/pkg/pagination"
	"github.com/minhvu-dev/accountshop-backend/pkg/vault"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo  Repository
	tx    txRunner
	audit audit.Recorder
	vault *vault.Vault
}

// NewService builds the accounts service.
func NewService(repo Repository, tx txRunner, recorder audit.Recorder, v *vault.Vault) (Service, error) {
	if repo == nil {
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
	return &service{repo: repo, tx: tx, audit: recorder, vault: v}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CatalogItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	item := toCatalogItem(account)
	return &item, nil
}

func (s *service) ListCatalog(ctx context.Context, filters CatalogFilters, params pagination.Params) (*CatalogPage, error) {
	page, err := s.repo.ListCatalog(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog")
	}
	return page, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*models.Account, error) {
	if err := s.requireAdmin(ctx, actor, "create account"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credentials required")
	}

	encUsername, err := s.vault.Encrypt(input.Username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encrypt username")
	}
	encPassword, err := s.vault.Encrypt(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encrypt password")
	}

	account := &models.Account{
		Title:             strings.TrimSpace(input.Title),
		Description:       input.Description,
		Category:          input.Category,
		Rank:              input.Rank,
		Price:             input.Price,
		EncryptedUsername: encUsername,
		EncryptedPassword: encPassword,
		State:             enums.AccountStateAvailable,
		Images:            pq.StringArray(input.Images),
		InternalNotes:     input.InternalNotes,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, account); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:     &actor.UserID,
			Action:      enums.AuditActionAddAccount,
			Description: fmt.Sprintf("added account %s (%s)", account.ID, account.Title),
			IPAddress:   actor.IPAddress,
		})
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, input UpdateInput) error {
	if err := s.requireAdmin(ctx, actor, "edit account"); err != nil {
		return err
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}

	updates := map[string]any{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Rank != nil {
		updates["rank"] = *input.Rank
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *input.Price
	}
	if input.Username != nil {
		if strings.TrimSpace(*input.Username) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "username cannot be empty")
		}
		enc, err := s.vault.Encrypt(*input.Username)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encrypt username")
		}
		updates["encrypted_username"] = enc
	}
	if input.Password != nil {
		if *input.Password == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "password cannot be empty")
		}
		enc, err := s.vault.Encrypt(*input.Password)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encrypt password")
		}
		updates["encrypted_password"] = enc
	}
	if input.Images != nil {
		updates["images"] = pq.StringArray(input.Images)
	}
	if input.InternalNotes != nil {
		updates["internal_notes"] = *input.InternalNotes
	}
	if len(updates) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, id, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update account")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:     &actor.UserID,
			Action:      enums.AuditActionEditAccount,
			Description: fmt.Sprintf("edited account %s", id),
			IPAddress:   actor.IPAddress,
		})
	})
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.requireAdmin(ctx, actor, "delete account"); err != nil {
		return err
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		account, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
		}
		if account.State != enums.AccountStateAvailable {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only available accounts can be deleted")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete account")
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:     &actor.UserID,
			Action:      enums.AuditActionDeleteAccount,
			Description: fmt.Sprintf("deleted account %s (%s)", id, account.Title),
			IPAddress:   actor.IPAddress,
		})
	})
}

func (s *service) requireAdmin(ctx context.Context, actor Actor, operation string) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if access.HasPermission(actor.Role, enums.RoleAdmin) {
		return nil
	}
	// Denied privileged actions are auditable events in their own right.
	if err := s.audit.Record(ctx, nil, audit.Entry{
		ActorID:     &actor.UserID,
		Action:      enums.AuditActionAccessDenied,
		Description: fmt.Sprintf("denied %s for role %s", operation, actor.Role),
		IPAddress:   actor.IPAddress,
	}); err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
}
