package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	invoicedomain "github.com/smallbiznis/collecta/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (invoicedomain.Repository, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&invoicedomain.Invoice{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return Provide(), db, node
}

func TestUpdateBalanceVersionGuard(t *testing.T) {
	repo, db, node := setupRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	invoice := &invoicedomain.Invoice{
		ID:         node.Generate(),
		OrgID:      node.Generate(),
		CustomerID: node.Generate(),
		InvoiceNo:  "INV-CAS-1",
		Amount:     100_000,
		Balance:    100_000,
		DueDate:    now,
		Status:     invoicedomain.InvoiceStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repo.Insert(ctx, db, invoice))

	updated, err := repo.UpdateBalance(ctx, db, invoice.ID, 0, 60_000, invoicedomain.InvoiceStatusPartial, now)
	require.NoError(t, err)
	assert.True(t, updated)

	// The stale version loses.
	updated, err = repo.UpdateBalance(ctx, db, invoice.ID, 0, 0, invoicedomain.InvoiceStatusClosed, now)
	require.NoError(t, err)
	assert.False(t, updated)

	got, err := repo.FindByID(ctx, db, invoice.OrgID, invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(60_000), got.Balance)
	assert.Equal(t, int32(1), got.Version)
	assert.Equal(t, invoicedomain.InvoiceStatusPartial, got.Status)

	// The winner's new version succeeds.
	updated, err = repo.UpdateBalance(ctx, db, invoice.ID, 1, 0, invoicedomain.InvoiceStatusClosed, now)
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestFindByIDOrgScoped(t *testing.T) {
	repo, db, node := setupRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	orgID := node.Generate()
	invoice := &invoicedomain.Invoice{
		ID:         node.Generate(),
		OrgID:      orgID,
		CustomerID: node.Generate(),
		InvoiceNo:  "INV-SCOPE-1",
		Amount:     10_000,
		Balance:    10_000,
		DueDate:    now,
		Status:     invoicedomain.InvoiceStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repo.Insert(ctx, db, invoice))

	got, err := repo.FindByID(ctx, db, orgID, invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = repo.FindByID(ctx, db, node.Generate(), invoice.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
