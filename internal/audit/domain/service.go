package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/collecta/pkg/db/pagination"
)

// Entry is the input for one audit record.
type Entry struct {
	OrgID        snowflake.ID
	ActorID      *snowflake.ID
	Action       string
	ResourceType string
	ResourceID   string
	OldValue     any
	NewValue     any
}

type ListAuditLogRequest struct {
	pagination.Pagination
	ActorID      *snowflake.ID
	Action       string
	ResourceType string
	ResourceID   string
	StartAt      *time.Time
	EndAt        *time.Time
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type TraceRequest struct {
	ResourceType string
	ResourceID   string
	Limit        int
}

// TraceEvent is one step of a resource timeline.
type TraceEvent struct {
	ID        snowflake.ID  `json:"id"`
	ActorID   *snowflake.ID `json:"actor_id"`
	Action    string        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	OldValue  any           `json:"old_value,omitempty"`
	NewValue  any           `json:"new_value,omitempty"`
}

type TraceSummary struct {
	TotalEvents int            `json:"total_events"`
	FirstEvent  *time.Time     `json:"first_event,omitempty"`
	LastEvent   *time.Time     `json:"last_event,omitempty"`
	Actions     map[string]int `json:"actions"`
	Actors      map[string]int `json:"actors"`
}

type TraceResponse struct {
	ResourceType string       `json:"resource_type"`
	ResourceID   string       `json:"resource_id"`
	Timeline     []TraceEvent `json:"timeline"`
	Summary      TraceSummary `json:"summary"`
}

type Service interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
	Trace(ctx context.Context, req TraceRequest) (TraceResponse, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidAction       = errors.New("invalid_action")
	ErrInvalidResource     = errors.New("invalid_resource")
	ErrInvalidTimeRange    = errors.New("invalid_time_range")
)
