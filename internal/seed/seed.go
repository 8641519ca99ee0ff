// Package seed loads a small demo ledger for local development: one org,
// one customer, a handful of open invoices and an unapplied payment ready
// to reconcile. Enabled with SEED_DEMO=true.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/collecta/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/collecta/internal/payment/domain"
	"gorm.io/gorm"
)

const (
	demoOrgID      = snowflake.ID(1)
	demoCustomerID = snowflake.ID(100)
	demoOperatorID = snowflake.ID(900)
)

type demoInvoice struct {
	invoiceNo string
	amount    int64
	dueInDays int
}

var demoInvoices = []demoInvoice{
	{invoiceNo: "INV-DEMO-0001", amount: 150_000, dueInDays: -45},
	{invoiceNo: "INV-DEMO-0002", amount: 80_000, dueInDays: -10},
	{invoiceNo: "INV-DEMO-0003", amount: 240_000, dueInDays: 5},
	{invoiceNo: "INV-DEMO-0004", amount: 60_000, dueInDays: 25},
}

// EnsureDemoData inserts the demo ledger if it is not already present.
// Idempotent: re-running against a seeded database is a no-op.
func EnsureDemoData(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	now := time.Now().UTC()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range demoInvoices {
			if err := ensureInvoice(ctx, tx, node, item, now); err != nil {
				return err
			}
		}
		return ensurePayment(ctx, tx, node, now)
	})
}

func ensureInvoice(ctx context.Context, tx *gorm.DB, node *snowflake.Node, item demoInvoice, now time.Time) error {
	var existing invoicedomain.Invoice
	err := tx.WithContext(ctx).Where("invoice_no = ?", item.invoiceNo).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.WithContext(ctx).Create(&invoicedomain.Invoice{
		ID:         node.Generate(),
		OrgID:      demoOrgID,
		CustomerID: demoCustomerID,
		InvoiceNo:  item.invoiceNo,
		Amount:     item.amount,
		Balance:    item.amount,
		DueDate:    now.AddDate(0, 0, item.dueInDays),
		Status:     invoicedomain.InvoiceStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}).Error
}

func ensurePayment(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time) error {
	const bankRef = "DEMO-BANK-REF-0001"

	var existing paymentdomain.Payment
	err := tx.WithContext(ctx).Where("bank_ref = ?", bankRef).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.WithContext(ctx).Create(&paymentdomain.Payment{
		ID:              node.Generate(),
		OrgID:           demoOrgID,
		CustomerID:      demoCustomerID,
		PaymentNo:       "PAY-DEMO-0001",
		BankRef:         bankRef,
		Amount:          200_000,
		UnappliedAmount: 200_000,
		PaymentDate:     now.AddDate(0, 0, -1),
		PaymentMethod:   paymentdomain.MethodBankTransfer,
		Status:          paymentdomain.PaymentStatusUnapplied,
		CreatedBy:       demoOperatorID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}).Error
}
