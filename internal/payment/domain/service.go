package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/collecta/pkg/db/pagination"
)

type CreatePaymentRequest struct {
	CustomerID    snowflake.ID `json:"customer_id,string"`
	BankRef       string       `json:"bank_ref"`
	Amount        int64        `json:"amount"`
	PaymentDate   string       `json:"payment_date"`
	PaymentMethod string       `json:"payment_method"`
	ReceiptURL    string       `json:"receipt_url"`
	Remark        string       `json:"remark"`
	CreatedBy     snowflake.ID `json:"created_by,string"`
}

type ListPaymentsRequest struct {
	pagination.Pagination
	CustomerID *snowflake.ID
	Status     *PaymentStatus
	Method     string
	DateFrom   *time.Time
	DateTo     *time.Time
}

type ListPaymentsResponse struct {
	pagination.PageInfo
	Payments []Payment `json:"payments"`
}

// PaymentAllocation is one allocation shown on a payment detail view.
type PaymentAllocation struct {
	ApplyID       snowflake.ID `json:"apply_id"`
	InvoiceID     snowflake.ID `json:"invoice_id"`
	InvoiceNo     string       `json:"invoice_no"`
	AppliedAmount int64        `json:"applied_amount"`
	OperatorID    snowflake.ID `json:"operator_id"`
	CreatedAt     time.Time    `json:"created_at"`
}

type PaymentDetail struct {
	Payment     Payment             `json:"payment"`
	Allocations []PaymentAllocation `json:"allocations"`
}

type Service interface {
	Create(ctx context.Context, req CreatePaymentRequest) (*Payment, error)
	List(ctx context.Context, req ListPaymentsRequest) (ListPaymentsResponse, error)
	Get(ctx context.Context, id snowflake.ID) (PaymentDetail, error)
}

var (
	ErrNotFound            = errors.New("payment_not_found")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidBankRef      = errors.New("invalid_bank_ref")
	ErrInvalidPaymentDate  = errors.New("invalid_payment_date")
	ErrInvalidMethod       = errors.New("invalid_payment_method")
	ErrInvalidCreator      = errors.New("invalid_created_by")
	ErrDuplicateBankRef    = errors.New("duplicate_bank_ref")
)
