// Package domain contains the audit trail models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Actions recorded by the AR core.
const (
	ActionCreate = "CREATE"
	ActionApply  = "APPLY"
	ActionReject = "REJECT"
)

// Resource types recorded by the AR core.
const (
	ResourcePayment = "AR_PAYMENT"
	ResourceInvoice = "AR_INVOICE"
	ResourceApply   = "AR_APPLY"
)

// AuditLog is one immutable entry in the audit trail.
type AuditLog struct {
	ID           snowflake.ID   `json:"id" gorm:"primaryKey"`
	OrgID        snowflake.ID   `json:"org_id" gorm:"not null;index"`
	ActorID      *snowflake.ID  `json:"actor_id" gorm:"index:idx_audit_logs_actor_created,priority:1"`
	Action       string         `json:"action" gorm:"type:text;not null"`
	ResourceType string         `json:"resource_type" gorm:"type:text;not null;index:idx_audit_logs_resource,priority:1"`
	ResourceID   string         `json:"resource_id" gorm:"type:text;not null;index:idx_audit_logs_resource,priority:2"`
	OldValue     datatypes.JSON `json:"old_value" gorm:"type:jsonb"`
	NewValue     datatypes.JSON `json:"new_value" gorm:"type:jsonb"`
	IPAddress    *string        `json:"ip_address" gorm:"type:text"`
	UserAgent    *string        `json:"user_agent" gorm:"type:text"`
	RequestID    *string        `json:"request_id" gorm:"type:text"`
	CreatedAt    time.Time      `json:"created_at" gorm:"not null;index:idx_audit_logs_actor_created,priority:2"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }
