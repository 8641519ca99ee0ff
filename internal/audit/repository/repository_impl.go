package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/collecta/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, offset, limit int) ([]domain.AuditLog, int64, error) {
	var total int64
	if err := r.buildListQuery(ctx, db, filter).Model(&domain.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.AuditLog
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

func (r *repo) FindByResource(ctx context.Context, db *gorm.DB, orgID snowflake.ID, resourceType, resourceID string, limit int) ([]domain.AuditLog, error) {
	var items []domain.AuditLog
	err := db.WithContext(ctx).
		Where("org_id = ? AND resource_type = ? AND resource_id = ?", orgID, resourceType, resourceID).
		Order("created_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) buildListQuery(ctx context.Context, db *gorm.DB, filter domain.ListFilter) *gorm.DB {
	stmt := db.WithContext(ctx).Where("org_id = ?", filter.OrgID)
	if filter.ActorID != nil {
		stmt = stmt.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		stmt = stmt.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		stmt = stmt.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		stmt = stmt.Where("resource_id = ?", filter.ResourceID)
	}
	if filter.StartAt != nil {
		stmt = stmt.Where("created_at >= ?", filter.StartAt.UTC())
	}
	if filter.EndAt != nil {
		stmt = stmt.Where("created_at <= ?", filter.EndAt.UTC())
	}
	return stmt
}
