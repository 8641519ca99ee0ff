package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByKey(ctx context.Context, db *gorm.DB, orgID snowflake.ID, key string) (*Record, error)
	Insert(ctx context.Context, db *gorm.DB, record *Record) error
}
