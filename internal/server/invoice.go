package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/collecta/internal/invoice/domain"
	"github.com/smallbiznis/collecta/pkg/db/pagination"
)

type listInvoicesQuery struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	CustomerID string `form:"customer_id"`
	OrderID    string `form:"order_id"`
	Status     string `form:"status"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query listInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := invoicedomain.ListInvoiceRequest{
		Pagination: pagination.Pagination{
			Page:     query.Page,
			PageSize: query.PageSize,
		},
	}

	if raw := strings.TrimSpace(query.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("customer_id", "invalid_customer", "invalid customer_id"))
			return
		}
		req.CustomerID = &customerID
	}
	if raw := strings.TrimSpace(query.OrderID); raw != "" {
		orderID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("order_id", "invalid_order", "invalid order_id"))
			return
		}
		req.OrderID = &orderID
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status := invoicedomain.InvoiceStatus(raw)
		req.Status = &status
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices, "page_info": resp.PageInfo})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	detail, err := s.invoiceSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}

func (s *Server) GetARSummary(c *gin.Context) {
	var req invoicedomain.SummaryRequest

	if raw := strings.TrimSpace(c.Query("customer_id")); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("customer_id", "invalid_customer", "invalid customer_id"))
			return
		}
		req.CustomerID = &customerID
	}

	resp, err := s.invoiceSvc.Summary(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
