package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows invoice queries. All queries are org scoped.
type ListFilter struct {
	OrgID      snowflake.ID
	CustomerID *snowflake.ID
	OrderID    *snowflake.ID
	Status     *InvoiceStatus
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, offset, limit int) ([]Invoice, int64, error)
	// ListOpen returns every invoice still carrying a balance for aging analysis.
	ListOpen(ctx context.Context, db *gorm.DB, orgID snowflake.ID, customerID *snowflake.ID) ([]Invoice, error)
	// ListAllocations returns the allocation history shown on an invoice
	// detail view, joined with the paying payment's number.
	ListAllocations(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) ([]InvoiceAllocation, error)
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	// UpdateBalance commits a new balance and status guarded by the version
	// read earlier. It reports false when another writer got there first.
	UpdateBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, version int32, balance int64, status InvoiceStatus, now time.Time) (bool, error)
}
