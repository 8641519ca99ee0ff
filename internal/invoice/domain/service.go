package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/collecta/pkg/db/pagination"
)

type ListInvoiceRequest struct {
	pagination.Pagination
	CustomerID *snowflake.ID
	OrderID    *snowflake.ID
	Status     *InvoiceStatus
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

// InvoiceAllocation is one allocation shown on an invoice detail view.
type InvoiceAllocation struct {
	ApplyID       snowflake.ID `json:"apply_id"`
	PaymentID     snowflake.ID `json:"payment_id"`
	PaymentNo     string       `json:"payment_no"`
	AppliedAmount int64        `json:"applied_amount"`
	OperatorID    snowflake.ID `json:"operator_id"`
	CreatedAt     time.Time    `json:"created_at"`
}

type InvoiceDetail struct {
	Invoice     Invoice             `json:"invoice"`
	Allocations []InvoiceAllocation `json:"allocations"`
}

type SummaryRequest struct {
	CustomerID *snowflake.ID
}

// AgingBuckets groups open balance by days overdue.
type AgingBuckets struct {
	Current    int64 `json:"current"`
	Days0To30  int64 `json:"days_0_to_30"`
	Days31To60 int64 `json:"days_31_to_60"`
	Days61To90 int64 `json:"days_61_to_90"`
	Days90Plus int64 `json:"days_90_plus"`
}

type UpcomingDue struct {
	Amount int64 `json:"amount"`
	Count  int64 `json:"count"`
}

type SummaryResponse struct {
	TotalBalance   int64        `json:"total_balance"`
	OverdueBalance int64        `json:"overdue_balance"`
	Aging          AgingBuckets `json:"aging"`
	UpcomingDue    UpcomingDue  `json:"upcoming_due"`
}

type Service interface {
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	Get(ctx context.Context, id snowflake.ID) (InvoiceDetail, error)
	Summary(ctx context.Context, req SummaryRequest) (SummaryResponse, error)
}

var (
	ErrNotFound            = errors.New("invoice_not_found")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidInvoice      = errors.New("invalid_invoice")
)
