package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/collecta/internal/audit/domain"
	"github.com/smallbiznis/collecta/internal/auditcontext"
	"github.com/smallbiznis/collecta/internal/clock"
	"github.com/smallbiznis/collecta/internal/orgcontext"
	"github.com/smallbiznis/collecta/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultTraceLimit = 100

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, entry auditdomain.Entry) error {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}
	resourceType := strings.TrimSpace(entry.ResourceType)
	if resourceType == "" || strings.TrimSpace(entry.ResourceID) == "" {
		return auditdomain.ErrInvalidResource
	}
	if entry.OrgID == 0 {
		return auditdomain.ErrInvalidOrganization
	}

	record := auditdomain.AuditLog{
		ID:           s.genID.Generate(),
		OrgID:        entry.OrgID,
		ActorID:      entry.ActorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   strings.TrimSpace(entry.ResourceID),
		OldValue:     marshalValue(entry.OldValue),
		NewValue:     marshalValue(entry.NewValue),
		CreatedAt:    s.clock.Now(),
	}
	if ip := auditcontext.IPAddressFromContext(ctx); ip != "" {
		record.IPAddress = &ip
	}
	if ua := auditcontext.UserAgentFromContext(ctx); ua != "" {
		record.UserAgent = &ua
	}
	if requestID := auditcontext.RequestIDFromContext(ctx); requestID != "" {
		record.RequestID = &requestID
	}

	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidOrganization
	}

	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidTimeRange
	}

	filter := auditdomain.ListFilter{
		OrgID:        orgID,
		ActorID:      req.ActorID,
		Action:       strings.TrimSpace(req.Action),
		ResourceType: strings.TrimSpace(req.ResourceType),
		ResourceID:   strings.TrimSpace(req.ResourceID),
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
	}

	items, total, err := s.repo.List(ctx, s.db, filter, req.Offset(), req.Limit())
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	return auditdomain.ListAuditLogResponse{
		PageInfo:  pagination.BuildPageInfo(req.Pagination, total),
		AuditLogs: items,
	}, nil
}

func (s *Service) Trace(ctx context.Context, req auditdomain.TraceRequest) (auditdomain.TraceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return auditdomain.TraceResponse{}, auditdomain.ErrInvalidOrganization
	}

	resourceType := strings.TrimSpace(req.ResourceType)
	resourceID := strings.TrimSpace(req.ResourceID)
	if resourceType == "" || resourceID == "" {
		return auditdomain.TraceResponse{}, auditdomain.ErrInvalidResource
	}

	limit := req.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultTraceLimit
	}

	logs, err := s.repo.FindByResource(ctx, s.db, orgID, resourceType, resourceID, limit)
	if err != nil {
		return auditdomain.TraceResponse{}, err
	}

	timeline := make([]auditdomain.TraceEvent, 0, len(logs))
	actions := make(map[string]int)
	actors := make(map[string]int)
	for _, entry := range logs {
		timeline = append(timeline, auditdomain.TraceEvent{
			ID:        entry.ID,
			ActorID:   entry.ActorID,
			Action:    entry.Action,
			Timestamp: entry.CreatedAt,
			OldValue:  unmarshalValue(entry.OldValue),
			NewValue:  unmarshalValue(entry.NewValue),
		})
		actions[entry.Action]++
		if entry.ActorID != nil {
			actors[entry.ActorID.String()]++
		}
	}

	summary := auditdomain.TraceSummary{
		TotalEvents: len(logs),
		Actions:     actions,
		Actors:      actors,
	}
	if len(logs) > 0 {
		first := logs[0].CreatedAt
		last := logs[len(logs)-1].CreatedAt
		summary.FirstEvent = &first
		summary.LastEvent = &last
	}

	return auditdomain.TraceResponse{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Timeline:     timeline,
		Summary:      summary,
	}, nil
}

func marshalValue(value any) datatypes.JSON {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func unmarshalValue(raw datatypes.JSON) any {
	if len(raw) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return value
}
