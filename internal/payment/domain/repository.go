package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListFilter narrows payment queries. All queries are org scoped.
type ListFilter struct {
	OrgID      snowflake.ID
	CustomerID *snowflake.ID
	Status     *PaymentStatus
	Method     string
	DateFrom   *time.Time
	DateTo     *time.Time
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Payment, error)
	FindByBankRef(ctx context.Context, db *gorm.DB, bankRef string) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, offset, limit int) ([]Payment, int64, error)
	// ListAllocations returns the allocation history shown on a payment
	// detail view, joined with the receiving invoice's number.
	ListAllocations(ctx context.Context, db *gorm.DB, orgID, paymentID snowflake.ID) ([]PaymentAllocation, error)
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	// UpdateUnapplied commits a new unapplied amount and status guarded by
	// the version read earlier. It reports false when another writer got
	// there first.
	UpdateUnapplied(ctx context.Context, db *gorm.DB, id snowflake.ID, version int32, unapplied int64, status PaymentStatus, now time.Time) (bool, error)
}
