package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/collecta/internal/clock"
	invoicedomain "github.com/smallbiznis/collecta/internal/invoice/domain"
	invoicerepository "github.com/smallbiznis/collecta/internal/invoice/repository"
	"github.com/smallbiznis/collecta/internal/orgcontext"
	"github.com/smallbiznis/collecta/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func setupInvoiceService(t *testing.T, clk clock.Clock) (invoicedomain.Service, *gorm.DB, *snowflake.Node) {
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

	node := mustNode(t)
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clk,
		Repo:  invoicerepository.Provide(),
	})
	return svc, db, node
}

func seedInvoice(t *testing.T, db *gorm.DB, node *snowflake.Node, orgID, customerID snowflake.ID, invoiceNo string, balance int64, dueDate time.Time, status invoicedomain.InvoiceStatus) *invoicedomain.Invoice {
	t.Helper()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	invoice := &invoicedomain.Invoice{
		ID:         node.Generate(),
		OrgID:      orgID,
		CustomerID: customerID,
		InvoiceNo:  invoiceNo,
		Amount:     balance,
		Balance:    balance,
		DueDate:    dueDate,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(invoice).Error)
	return invoice
}

func TestSummaryAgingBuckets(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupInvoiceService(t, clock.NewFakeClock(now))
	orgID := node.Generate()
	customerID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), orgID)

	// Not yet due, inside the 7-day upcoming window.
	seedInvoice(t, db, node, orgID, customerID, "INV-A1", 10_000, now.AddDate(0, 0, 3), invoicedomain.InvoiceStatusOpen)
	// Not yet due, beyond the window.
	seedInvoice(t, db, node, orgID, customerID, "INV-A2", 20_000, now.AddDate(0, 0, 20), invoicedomain.InvoiceStatusOpen)
	// Overdue buckets.
	seedInvoice(t, db, node, orgID, customerID, "INV-B1", 1_000, now.AddDate(0, 0, -10), invoicedomain.InvoiceStatusOpen)
	seedInvoice(t, db, node, orgID, customerID, "INV-B2", 2_000, now.AddDate(0, 0, -45), invoicedomain.InvoiceStatusPartial)
	seedInvoice(t, db, node, orgID, customerID, "INV-B3", 3_000, now.AddDate(0, 0, -75), invoicedomain.InvoiceStatusOpen)
	seedInvoice(t, db, node, orgID, customerID, "INV-B4", 4_000, now.AddDate(0, 0, -120), invoicedomain.InvoiceStatusOpen)
	// Closed invoices never count.
	closed := seedInvoice(t, db, node, orgID, customerID, "INV-C1", 5_000, now.AddDate(0, 0, -120), invoicedomain.InvoiceStatusClosed)
	require.NoError(t, db.Exec(`UPDATE ar_invoices SET balance = 0 WHERE id = ?`, closed.ID).Error)

	resp, err := svc.Summary(ctx, invoicedomain.SummaryRequest{})
	require.NoError(t, err)

	assert.Equal(t, int64(40_000), resp.TotalBalance)
	assert.Equal(t, int64(10_000), resp.OverdueBalance)
	assert.Equal(t, int64(30_000), resp.Aging.Current)
	assert.Equal(t, int64(1_000), resp.Aging.Days0To30)
	assert.Equal(t, int64(2_000), resp.Aging.Days31To60)
	assert.Equal(t, int64(3_000), resp.Aging.Days61To90)
	assert.Equal(t, int64(4_000), resp.Aging.Days90Plus)
	assert.Equal(t, int64(10_000), resp.UpcomingDue.Amount)
	assert.Equal(t, int64(1), resp.UpcomingDue.Count)
}

func TestSummaryDueWithinADayIsCurrent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupInvoiceService(t, clock.NewFakeClock(now))
	orgID := node.Generate()
	customerID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), orgID)

	// Due 12 hours from now: not yet overdue, but inside the upcoming window.
	seedInvoice(t, db, node, orgID, customerID, "INV-F1", 50_000, now.Add(12*time.Hour), invoicedomain.InvoiceStatusOpen)
	// Due 12 hours ago: overdue day zero.
	seedInvoice(t, db, node, orgID, customerID, "INV-F2", 7_000, now.Add(-12*time.Hour), invoicedomain.InvoiceStatusOpen)

	resp, err := svc.Summary(ctx, invoicedomain.SummaryRequest{})
	require.NoError(t, err)

	assert.Equal(t, int64(50_000), resp.Aging.Current)
	assert.Equal(t, int64(7_000), resp.Aging.Days0To30)
	assert.Equal(t, int64(7_000), resp.OverdueBalance)
	assert.Equal(t, int64(50_000), resp.UpcomingDue.Amount)
	assert.Equal(t, int64(1), resp.UpcomingDue.Count)
}

func TestSummaryScopedToCustomer(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupInvoiceService(t, clock.NewFakeClock(now))
	orgID := node.Generate()
	customerID := node.Generate()
	otherCustomerID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), orgID)

	seedInvoice(t, db, node, orgID, customerID, "INV-D1", 10_000, now.AddDate(0, 0, 10), invoicedomain.InvoiceStatusOpen)
	seedInvoice(t, db, node, orgID, otherCustomerID, "INV-D2", 99_000, now.AddDate(0, 0, 10), invoicedomain.InvoiceStatusOpen)

	resp, err := svc.Summary(ctx, invoicedomain.SummaryRequest{CustomerID: &customerID})
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), resp.TotalBalance)
}

func TestListInvoices(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupInvoiceService(t, clock.NewFakeClock(now))
	orgID := node.Generate()
	otherOrgID := node.Generate()
	customerID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), orgID)

	seedInvoice(t, db, node, orgID, customerID, "INV-E1", 10_000, now, invoicedomain.InvoiceStatusOpen)
	seedInvoice(t, db, node, orgID, customerID, "INV-E2", 20_000, now, invoicedomain.InvoiceStatusOpen)
	seedInvoice(t, db, node, otherOrgID, customerID, "INV-E3", 30_000, now, invoicedomain.InvoiceStatusOpen)

	resp, err := svc.List(ctx, invoicedomain.ListInvoiceRequest{
		Pagination: pagination.Pagination{Page: 1, PageSize: 10},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Invoices, 2)
	assert.Equal(t, int64(2), resp.Total)
}

func TestGetInvoiceNotFound(t *testing.T) {
	svc, _, node := setupInvoiceService(t, clock.NewSystemClock())
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	_, err := svc.Get(ctx, node.Generate())
	require.ErrorIs(t, err, invoicedomain.ErrNotFound)
}
