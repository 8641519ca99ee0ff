package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/collecta/internal/payment/domain"
	"github.com/smallbiznis/collecta/pkg/db/pagination"
)

func (s *Server) CreatePayment(c *gin.Context) {
	var req paymentdomain.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payment, err := s.paymentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": payment})
}

type listPaymentsQuery struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	CustomerID string `form:"customer_id"`
	Status     string `form:"status"`
	Method     string `form:"method"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
}

func (s *Server) ListPayments(c *gin.Context) {
	var query listPaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := paymentdomain.ListPaymentsRequest{
		Pagination: pagination.Pagination{
			Page:     query.Page,
			PageSize: query.PageSize,
		},
		Method: strings.TrimSpace(query.Method),
	}

	if raw := strings.TrimSpace(query.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("customer_id", "invalid_customer", "invalid customer_id"))
			return
		}
		req.CustomerID = &customerID
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status := paymentdomain.PaymentStatus(raw)
		req.Status = &status
	}
	if raw := strings.TrimSpace(query.DateFrom); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, newValidationError("date_from", "invalid_date_from", "invalid date_from"))
			return
		}
		req.DateFrom = &parsed
	}
	if raw := strings.TrimSpace(query.DateTo); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, newValidationError("date_to", "invalid_date_to", "invalid date_to"))
			return
		}
		req.DateTo = &parsed
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Payments, "page_info": resp.PageInfo})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	detail, err := s.paymentSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": detail})
}
