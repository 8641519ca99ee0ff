package server

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/collecta/internal/metrics"
	"github.com/smallbiznis/collecta/internal/orgcontext"
)

const HeaderOrg = "X-Org-ID"

// OrgContext resolves the acting organization from the request header and
// injects it into the request context. Every AR route is org scoped, so a
// missing or malformed header fails fast.
func OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderOrg))
		if raw == "" {
			AbortWithError(c, newValidationError("org_id", "invalid_organization", "missing organization header"))
			return
		}

		orgID, err := snowflake.ParseString(raw)
		if err != nil || orgID == 0 {
			AbortWithError(c, newValidationError("org_id", "invalid_organization", "invalid organization header"))
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.RecordHTTPRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()))
	}
}
