package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/collecta/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/collecta/internal/payment/domain"
	"gorm.io/datatypes"
)

// AllocationInput is one requested allocation line.
type AllocationInput struct {
	InvoiceID snowflake.ID `json:"invoice_id,string"`
	Amount    int64        `json:"amount"`
}

type ApplyPaymentRequest struct {
	PaymentID      snowflake.ID      `json:"payment_id,string"`
	Applies        []AllocationInput `json:"applies"`
	OperatorID     snowflake.ID      `json:"operator_id,string"`
	Remark         string            `json:"remark"`
	IdempotencyKey string            `json:"-"`
}

// AppliedInvoice reports the effect of one allocation line.
type AppliedInvoice struct {
	InvoiceID     snowflake.ID                `json:"invoice_id"`
	InvoiceNo     string                      `json:"invoice_no"`
	AppliedAmount int64                       `json:"applied_amount"`
	BeforeBalance int64                       `json:"before_balance"`
	AfterBalance  int64                       `json:"after_balance"`
	Status        invoicedomain.InvoiceStatus `json:"status"`
}

type ApplyPaymentResponse struct {
	PaymentID       snowflake.ID                `json:"payment_id"`
	PaymentNo       string                      `json:"payment_no"`
	TotalApplied    int64                       `json:"total_applied"`
	UnappliedAmount int64                       `json:"unapplied_amount"`
	PaymentStatus   paymentdomain.PaymentStatus `json:"payment_status"`
	AppliedInvoices []AppliedInvoice            `json:"applied_invoices"`
}

// ApplyOutcome wraps the response with replay information. Raw is always
// the serialized response body; on a replay it is the body stored by the
// first execution and Response is nil.
type ApplyOutcome struct {
	Replayed bool
	Raw      datatypes.JSON
	Response *ApplyPaymentResponse
}

// SuggestedAllocation is one line of an auto-allocation proposal.
type SuggestedAllocation struct {
	InvoiceID       snowflake.ID `json:"invoice_id"`
	InvoiceNo       string       `json:"invoice_no"`
	DueDate         time.Time    `json:"due_date"`
	Balance         int64        `json:"balance"`
	SuggestedAmount int64        `json:"suggested_amount"`
}

type SuggestResponse struct {
	PaymentID       snowflake.ID          `json:"payment_id"`
	UnappliedAmount int64                 `json:"unapplied_amount"`
	Suggestions     []SuggestedAllocation `json:"suggestions"`
}

type Service interface {
	Apply(ctx context.Context, req ApplyPaymentRequest) (*ApplyOutcome, error)
	// Suggest proposes allocations for a payment's unapplied remainder over
	// the customer's open invoices, oldest due date first.
	Suggest(ctx context.Context, paymentID snowflake.ID) (SuggestResponse, error)
}

var (
	ErrInvalidOrganization        = errors.New("invalid_organization")
	ErrInvalidOperator            = errors.New("invalid_operator")
	ErrEmptyAllocations           = errors.New("empty_allocations")
	ErrInvalidAmount              = errors.New("invalid_amount")
	ErrInsufficientPaymentBalance = errors.New("insufficient_payment_balance")
	ErrInsufficientInvoiceBalance = errors.New("insufficient_invoice_balance")
	ErrDuplicateAllocation        = errors.New("duplicate_allocation")
	ErrOrgMismatch                = errors.New("organization_mismatch")
	ErrConcurrentModification     = errors.New("concurrent_modification")
)
