package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/collecta/internal/audit/domain"
	"github.com/smallbiznis/collecta/pkg/db/pagination"
)

type listAuditLogsQuery struct {
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
	ActorID      string `form:"actor_id"`
	Action       string `form:"action"`
	ResourceType string `form:"resource_type"`
	ResourceID   string `form:"resource_id"`
	StartAt      string `form:"start_at"`
	EndAt        string `form:"end_at"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{
			Page:     query.Page,
			PageSize: query.PageSize,
		},
		Action:       strings.TrimSpace(query.Action),
		ResourceType: strings.TrimSpace(query.ResourceType),
		ResourceID:   strings.TrimSpace(query.ResourceID),
	}

	if raw := strings.TrimSpace(query.ActorID); raw != "" {
		actorID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("actor_id", "invalid_actor", "invalid actor_id"))
			return
		}
		req.ActorID = &actorID
	}
	if raw := strings.TrimSpace(query.StartAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
			return
		}
		req.StartAt = &parsed
	}
	if raw := strings.TrimSpace(query.EndAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid end_at"))
			return
		}
		req.EndAt = &parsed
	}

	resp, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.AuditLogs, "page_info": resp.PageInfo})
}

func (s *Server) TraceResource(c *gin.Context) {
	resourceType := strings.TrimSpace(c.Param("resourceType"))
	resourceID := strings.TrimSpace(c.Param("resourceId"))

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
			return
		}
		limit = parsed
	}

	resp, err := s.auditSvc.Trace(c.Request.Context(), auditdomain.TraceRequest{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Limit:        limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
