package server

import (
	"errors"
	"net/http"
	"testing"

	idemdomain "github.com/smallbiznis/collecta/internal/idempotency/domain"
	invoicedomain "github.com/smallbiznis/collecta/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/collecta/internal/payment/domain"
	recondomain "github.com/smallbiznis/collecta/internal/reconciliation/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation payment amount", paymentdomain.ErrInvalidAmount, http.StatusBadRequest, "validation_error"},
		{"validation empty allocations", recondomain.ErrEmptyAllocations, http.StatusBadRequest, "validation_error"},
		{"duplicate bank ref", paymentdomain.ErrDuplicateBankRef, http.StatusConflict, "conflict"},
		{"duplicate allocation", recondomain.ErrDuplicateAllocation, http.StatusConflict, "conflict"},
		{"insufficient payment balance", recondomain.ErrInsufficientPaymentBalance, http.StatusConflict, "conflict"},
		{"insufficient invoice balance", recondomain.ErrInsufficientInvoiceBalance, http.StatusConflict, "conflict"},
		{"concurrent modification", recondomain.ErrConcurrentModification, http.StatusConflict, "conflict"},
		{"idempotency key conflict", idemdomain.ErrKeyConflict, http.StatusConflict, "conflict"},
		{"org mismatch", recondomain.ErrOrgMismatch, http.StatusForbidden, "forbidden"},
		{"payment not found", paymentdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"invoice not found", invoicedomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantType, payload.Type)
		})
	}
}

func TestMapErrorValidationPayload(t *testing.T) {
	status, payload := mapError(newValidationError("bank_ref", "invalid_bank_ref", "invalid bank_ref"))
	assert.Equal(t, http.StatusBadRequest, status)
	if assert.Len(t, payload.Errors, 1) {
		assert.Equal(t, "bank_ref", payload.Errors[0].Field)
		assert.Equal(t, "invalid_bank_ref", payload.Errors[0].Code)
	}
}
