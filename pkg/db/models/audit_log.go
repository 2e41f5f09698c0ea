package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
)

// AuditLog is an append-only record of a sensitive or privileged action.
// ActorID is nullable so anonymous and failed actions stay attributable to
// "nobody" rather than being dropped. Rows are never updated or deleted.
type AuditLog struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ActorID     *uuid.UUID        `gorm:"column:actor_id;type:uuid;index"`
	Action      enums.AuditAction `gorm:"column:action;type:text;not null;index"`
	Description string            `gorm:"column:description"`
	IPAddress   string            `gorm:"column:ip_address"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime;index"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
