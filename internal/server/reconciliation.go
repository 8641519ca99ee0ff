package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	recondomain "github.com/smallbiznis/collecta/internal/reconciliation/domain"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type applyPaymentBody struct {
	Applies    []recondomain.AllocationInput `json:"applies"`
	OperatorID snowflake.ID                  `json:"operator_id,string"`
	Remark     string                        `json:"remark"`
}

// ApplyPayment allocates a payment across invoices. Retries carrying the
// same Idempotency-Key header get the stored first response back.
func (s *Server) ApplyPayment(c *gin.Context) {
	paymentID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var body applyPaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	outcome, err := s.reconSvc.Apply(c.Request.Context(), recondomain.ApplyPaymentRequest{
		PaymentID:      paymentID,
		Applies:        body.Applies,
		OperatorID:     body.OperatorID,
		Remark:         body.Remark,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if outcome.Replayed {
		c.Header("X-Idempotent-Replay", "true")
	}
	c.Data(http.StatusOK, "application/json", wrapData(outcome.Raw))
}

// wrapData nests a pre-serialized body under the usual "data" envelope.
func wrapData(raw []byte) []byte {
	body := make([]byte, 0, len(raw)+len(`{"data":}`))
	body = append(body, `{"data":`...)
	body = append(body, raw...)
	body = append(body, '}')
	return body
}

func (s *Server) SuggestAllocations(c *gin.Context) {
	paymentID, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	resp, err := s.reconSvc.Suggest(c.Request.Context(), paymentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
