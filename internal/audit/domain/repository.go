package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows audit log queries.
type ListFilter struct {
	OrgID        snowflake.ID
	ActorID      *snowflake.ID
	Action       string
	ResourceType string
	ResourceID   string
	StartAt      *time.Time
	EndAt        *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, offset, limit int) ([]AuditLog, int64, error)
	FindByResource(ctx context.Context, db *gorm.DB, orgID snowflake.ID, resourceType, resourceID string, limit int) ([]AuditLog, error)
}
