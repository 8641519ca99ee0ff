// Package domain contains the payment (cash receipt) side of the AR ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentStatus represents how much of a receipt has been allocated.
type PaymentStatus string

const (
	PaymentStatusUnapplied PaymentStatus = "UNAPPLIED"
	PaymentStatusPartial   PaymentStatus = "PARTIAL"
	PaymentStatusApplied   PaymentStatus = "APPLIED"
)

// Payment methods accepted on receipt entry.
const (
	MethodBankTransfer = "BANK_TRANSFER"
	MethodCheck        = "CHECK"
	MethodCash         = "CASH"
	MethodOther        = "OTHER"
)

// Payment is a recorded cash receipt. UnappliedAmount always equals
// Amount minus the sum of allocations made from it; BankRef is unique
// so the same bank statement line can never be imported twice.
type Payment struct {
	ID              snowflake.ID  `json:"id" gorm:"primaryKey"`
	OrgID           snowflake.ID  `json:"org_id" gorm:"not null;index:idx_ar_payments_org_customer,priority:1"`
	CustomerID      snowflake.ID  `json:"customer_id" gorm:"not null;index:idx_ar_payments_org_customer,priority:2"`
	PaymentNo       string        `json:"payment_no" gorm:"type:text;not null;uniqueIndex:ux_ar_payments_payment_no"`
	BankRef         string        `json:"bank_ref" gorm:"type:text;not null;uniqueIndex:ux_ar_payments_bank_ref"`
	Amount          int64         `json:"amount" gorm:"not null"`
	UnappliedAmount int64         `json:"unapplied_amount" gorm:"not null"`
	PaymentDate     time.Time     `json:"payment_date" gorm:"not null;index"`
	PaymentMethod   string        `json:"payment_method" gorm:"type:text;not null"`
	Status          PaymentStatus `json:"status" gorm:"type:text;not null;default:'UNAPPLIED'"`
	ReceiptURL      *string       `json:"receipt_url" gorm:"type:text"`
	Remark          *string       `json:"remark" gorm:"type:text"`
	CreatedBy       snowflake.ID  `json:"created_by" gorm:"not null"`
	Version         int32         `json:"version" gorm:"not null;default:0"`
	CreatedAt       time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "ar_payments" }

// DeriveStatus returns the status implied by the unapplied remainder.
func DeriveStatus(amount, unapplied int64) PaymentStatus {
	switch {
	case unapplied == 0:
		return PaymentStatusApplied
	case unapplied == amount:
		return PaymentStatusUnapplied
	default:
		return PaymentStatusPartial
	}
}

// Settled reports whether the whole receipt has been allocated.
func (p Payment) Settled() bool {
	return p.UnappliedAmount == 0
}

// ValidMethod reports whether method is one of the accepted payment methods.
func ValidMethod(method string) bool {
	switch method {
	case MethodBankTransfer, MethodCheck, MethodCash, MethodOther:
		return true
	default:
		return false
	}
}
