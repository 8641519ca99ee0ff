package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/collecta/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Invoice, error) {
	var item domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM ar_invoices WHERE id = ? AND org_id = ? LIMIT 1`,
		id,
		orgID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, offset, limit int) ([]domain.Invoice, int64, error) {
	var total int64
	if err := r.buildListQuery(ctx, db, filter).Model(&domain.Invoice{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Invoice
	err := r.buildListQuery(ctx, db, filter).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) ListOpen(ctx context.Context, db *gorm.DB, orgID snowflake.ID, customerID *snowflake.ID) ([]domain.Invoice, error) {
	stmt := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Where("status IN ?", []domain.InvoiceStatus{domain.InvoiceStatusOpen, domain.InvoiceStatusPartial})
	if customerID != nil {
		stmt = stmt.Where("customer_id = ?", *customerID)
	}

	var items []domain.Invoice
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAllocations(ctx context.Context, db *gorm.DB, orgID, invoiceID snowflake.ID) ([]domain.InvoiceAllocation, error) {
	var items []domain.InvoiceAllocation
	err := db.WithContext(ctx).Raw(
		`SELECT a.id AS apply_id, a.payment_id, p.payment_no, a.applied_amount, a.operator_id, a.created_at
		 FROM ar_applies a
		 JOIN ar_payments p ON p.id = a.payment_id
		 WHERE a.org_id = ? AND a.invoice_id = ?
		 ORDER BY a.created_at ASC`,
		orgID,
		invoiceID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) UpdateBalance(ctx context.Context, db *gorm.DB, id snowflake.ID, version int32, balance int64, status domain.InvoiceStatus, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE ar_invoices
		 SET balance = ?, status = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		balance,
		string(status),
		now.UTC(),
		id,
		version,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) buildListQuery(ctx context.Context, db *gorm.DB, filter domain.ListFilter) *gorm.DB {
	stmt := db.WithContext(ctx).Where("org_id = ?", filter.OrgID)
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.OrderID != nil {
		stmt = stmt.Where("order_id = ?", *filter.OrderID)
	}
	if filter.Status != nil {
		stmt = stmt.Where("status = ?", *filter.Status)
	}
	return stmt
}
