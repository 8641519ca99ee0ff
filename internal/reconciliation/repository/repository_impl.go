package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/collecta/internal/invoice/domain"
	"github.com/smallbiznis/collecta/internal/reconciliation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindPair(ctx context.Context, db *gorm.DB, paymentID, invoiceID snowflake.ID) (*domain.Apply, error) {
	var item domain.Apply
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM ar_applies WHERE payment_id = ? AND invoice_id = ? LIMIT 1`,
		paymentID,
		invoiceID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, apply *domain.Apply) error {
	return db.WithContext(ctx).Create(apply).Error
}

func (r *repo) ListByPayment(ctx context.Context, db *gorm.DB, orgID, paymentID snowflake.ID) ([]domain.Apply, error) {
	var items []domain.Apply
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM ar_applies WHERE org_id = ? AND payment_id = ? ORDER BY created_at ASC`,
		orgID,
		paymentID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindInvoice(ctx context.Context, db *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var item invoicedomain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM ar_invoices WHERE id = ? LIMIT 1`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}
