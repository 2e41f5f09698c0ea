package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/db/models"
	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
	"github.com/minhvu-dev/accountshop-backend/pkg/pagination"
)

// Repository defines persistence operations for the audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*LogPage, error)
}

// ListFilters narrows audit listings for admin review.
type ListFilters struct {
	ActorID *uuid.UUID
	Action  *enums.AuditAction
}

// LogPage is a reverse-chronological page of audit entries.
type LogPage struct {
	Logs       []models.AuditLog
	NextCursor string
}

// Entry captures one auditable action. ActorID is nil for anonymous
// actors such as failed logins.
type Entry struct {
	ActorID     *uuid.UUID
	Action      enums.AuditAction
	Description string
	IPAddress   string
}

// Recorder is the write-side surface other services depend on. Record
// runs on the caller's transaction when one is supplied, so a failed
// audit write rolls the whole operation back.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
}

// Service exposes audit recording and admin listing.
type Service interface {
	Recorder
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*LogPage, error)
}
