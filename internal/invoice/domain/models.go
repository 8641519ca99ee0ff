// Package domain contains the receivable (invoice) side of the AR ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus represents the collection lifecycle of a receivable.
type InvoiceStatus string

const (
	InvoiceStatusOpen       InvoiceStatus = "OPEN"
	InvoiceStatusPartial    InvoiceStatus = "PARTIAL"
	InvoiceStatusClosed     InvoiceStatus = "CLOSED"
	InvoiceStatusWrittenOff InvoiceStatus = "WRITTEN_OFF"
)

// Invoice is a receivable owed by a customer. Balance always equals
// Amount minus the sum of allocations recorded against it; Version is
// the optimistic-lock counter guarding every balance mutation.
type Invoice struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey"`
	OrgID      snowflake.ID  `json:"org_id" gorm:"not null;index:idx_ar_invoices_org_customer,priority:1;index:idx_ar_invoices_org_status,priority:1"`
	CustomerID snowflake.ID  `json:"customer_id" gorm:"not null;index:idx_ar_invoices_org_customer,priority:2"`
	InvoiceNo  string        `json:"invoice_no" gorm:"type:text;not null;uniqueIndex:ux_ar_invoices_invoice_no"`
	OrderID    *snowflake.ID `json:"order_id" gorm:"index"`
	Amount     int64         `json:"amount" gorm:"not null"`
	TaxAmount  int64         `json:"tax_amount" gorm:"not null;default:0"`
	Balance    int64         `json:"balance" gorm:"not null"`
	DueDate    time.Time     `json:"due_date" gorm:"not null;index"`
	Status     InvoiceStatus `json:"status" gorm:"type:text;not null;default:'OPEN';index:idx_ar_invoices_org_status,priority:2"`
	Remark     *string       `json:"remark" gorm:"type:text"`
	Version    int32         `json:"version" gorm:"not null;default:0"`
	CreatedAt  time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time     `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "ar_invoices" }

// DeriveStatus returns the status implied by the remaining balance.
// WRITTEN_OFF never comes out of here; it is a manual override outside
// the reconciliation path.
func DeriveStatus(amount, balance int64) InvoiceStatus {
	switch {
	case balance == 0:
		return InvoiceStatusClosed
	case balance == amount:
		return InvoiceStatusOpen
	default:
		return InvoiceStatusPartial
	}
}

// Settled reports whether nothing remains to collect.
func (i Invoice) Settled() bool {
	return i.Balance == 0
}
