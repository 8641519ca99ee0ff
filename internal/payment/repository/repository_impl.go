package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/collecta/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Payment, error) {
	var item domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM ar_payments WHERE id = ? AND org_id = ? LIMIT 1`,
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

func (r *repo) FindByBankRef(ctx context.Context, db *gorm.DB, bankRef string) (*domain.Payment, error) {
	var item domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM ar_payments WHERE bank_ref = ? LIMIT 1`,
		bankRef,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, offset, limit int) ([]domain.Payment, int64, error) {
	var total int64
	if err := r.buildListQuery(ctx, db, filter).Model(&domain.Payment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Payment
	err := r.buildListQuery(ctx, db, filter).
		Order("payment_date DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) ListAllocations(ctx context.Context, db *gorm.DB, orgID, paymentID snowflake.ID) ([]domain.PaymentAllocation, error) {
	var items []domain.PaymentAllocation
	err := db.WithContext(ctx).Raw(
		`SELECT a.id AS apply_id, a.invoice_id, i.invoice_no, a.applied_amount, a.operator_id, a.created_at
		 FROM ar_applies a
		 JOIN ar_invoices i ON i.id = a.invoice_id
		 WHERE a.org_id = ? AND a.payment_id = ?
		 ORDER BY a.created_at ASC`,
		orgID,
		paymentID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) UpdateUnapplied(ctx context.Context, db *gorm.DB, id snowflake.ID, version int32, unapplied int64, status domain.PaymentStatus, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE ar_payments
		 SET unapplied_amount = ?, status = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		unapplied,
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
	if filter.Status != nil {
		stmt = stmt.Where("status = ?", *filter.Status)
	}
	if filter.Method != "" {
		stmt = stmt.Where("payment_method = ?", filter.Method)
	}
	if filter.DateFrom != nil {
		stmt = stmt.Where("payment_date >= ?", filter.DateFrom.UTC())
	}
	if filter.DateTo != nil {
		stmt = stmt.Where("payment_date <= ?", filter.DateTo.UTC())
	}
	return stmt
}
