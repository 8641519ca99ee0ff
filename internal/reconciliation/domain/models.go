// Package domain contains the reconciliation core: allocation records and
// the apply engine that moves money from payments onto invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Apply is one immutable allocation of payment money to an invoice. A
// (payment, invoice) pair can be allocated at most once; corrections are
// modeled as new business events, never edits.
type Apply struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID         snowflake.ID `json:"org_id" gorm:"not null;index:idx_ar_applies_org"`
	PaymentID     snowflake.ID `json:"payment_id" gorm:"not null;uniqueIndex:ux_ar_applies_payment_invoice,priority:1"`
	InvoiceID     snowflake.ID `json:"invoice_id" gorm:"not null;uniqueIndex:ux_ar_applies_payment_invoice,priority:2;index"`
	AppliedAmount int64        `json:"applied_amount" gorm:"not null"`
	OperatorID    snowflake.ID `json:"operator_id" gorm:"not null"`
	Remark        *string      `json:"remark" gorm:"type:text"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Apply) TableName() string { return "ar_applies" }

// Suggest returns how much of a payment's unapplied remainder should go
// to an invoice with the given open balance.
func Suggest(unapplied, balance int64) int64 {
	if unapplied < balance {
		return unapplied
	}
	return balance
}
