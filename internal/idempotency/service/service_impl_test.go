package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/collecta/internal/clock"
	idemdomain "github.com/smallbiznis/collecta/internal/idempotency/domain"
	idemrepository "github.com/smallbiznis/collecta/internal/idempotency/repository"
	"github.com/smallbiznis/collecta/internal/orgcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ledgerRow struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	Value string
}

func (ledgerRow) TableName() string { return "gate_test_rows" }

func setupGate(t *testing.T) (idemdomain.Gate, *gorm.DB, *snowflake.Node) {
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

	if err := db.AutoMigrate(&idemdomain.Record{}, &ledgerRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	gate := NewGate(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
		Repo:  idemrepository.Provide(),
	})
	return gate, db, node
}

func countRows(t *testing.T, db *gorm.DB) int {
	t.Helper()
	var count int
	require.NoError(t, db.Raw(`SELECT COUNT(1) FROM gate_test_rows`).Scan(&count).Error)
	return count
}

func TestExecuteStoresAndReplays(t *testing.T) {
	gate, db, node := setupGate(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	calls := 0
	fn := func(tx *gorm.DB) (any, error) {
		calls++
		row := ledgerRow{ID: node.Generate(), Value: "first"}
		if err := tx.Create(&row).Error; err != nil {
			return nil, err
		}
		return map[string]string{"value": row.Value}, nil
	}

	fingerprint := idemdomain.Fingerprint(map[string]string{"value": "first"})

	first, err := gate.Execute(ctx, "key-1", fingerprint, fn)
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.JSONEq(t, `{"value":"first"}`, string(first.Stored))
	assert.Equal(t, 1, calls)

	second, err := gate.Execute(ctx, "key-1", fingerprint, fn)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.JSONEq(t, string(first.Stored), string(second.Stored))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, countRows(t, db))
}

func TestExecuteFingerprintConflict(t *testing.T) {
	gate, _, node := setupGate(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	fn := func(tx *gorm.DB) (any, error) { return "ok", nil }

	_, err := gate.Execute(ctx, "key-2", "fingerprint-a", fn)
	require.NoError(t, err)

	_, err = gate.Execute(ctx, "key-2", "fingerprint-b", fn)
	require.ErrorIs(t, err, idemdomain.ErrKeyConflict)
}

func TestExecuteRollsBackOnFailure(t *testing.T) {
	gate, db, node := setupGate(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	boom := errors.New("boom")
	_, err := gate.Execute(ctx, "key-3", "fp", func(tx *gorm.DB) (any, error) {
		row := ledgerRow{ID: node.Generate(), Value: "doomed"}
		if err := tx.Create(&row).Error; err != nil {
			return nil, err
		}
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countRows(t, db))

	// Key is free again after the rollback.
	outcome, err := gate.Execute(ctx, "key-3", "fp", func(tx *gorm.DB) (any, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.False(t, outcome.Replayed)
}

func TestExecuteKeysAreOrgScoped(t *testing.T) {
	gate, _, node := setupGate(t)

	fnA := func(tx *gorm.DB) (any, error) { return "org-a", nil }
	fnB := func(tx *gorm.DB) (any, error) { return "org-b", nil }

	ctxA := orgcontext.WithOrgID(context.Background(), node.Generate())
	ctxB := orgcontext.WithOrgID(context.Background(), node.Generate())

	first, err := gate.Execute(ctxA, "shared-key", "fp", fnA)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := gate.Execute(ctxB, "shared-key", "fp", fnB)
	require.NoError(t, err)
	assert.False(t, second.Replayed)
	assert.JSONEq(t, `"org-b"`, string(second.Stored))
}

func TestExecuteRejectsBlankKey(t *testing.T) {
	gate, _, node := setupGate(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	_, err := gate.Execute(ctx, "   ", "fp", func(tx *gorm.DB) (any, error) { return nil, nil })
	require.ErrorIs(t, err, idemdomain.ErrInvalidKey)

	_, err = gate.Execute(context.Background(), "key", "fp", func(tx *gorm.DB) (any, error) { return nil, nil })
	require.ErrorIs(t, err, idemdomain.ErrInvalidOrganization)
}

func TestFingerprintStability(t *testing.T) {
	a := idemdomain.Fingerprint(map[string]int{"x": 1, "y": 2})
	b := idemdomain.Fingerprint(map[string]int{"y": 2, "x": 1})
	c := idemdomain.Fingerprint(map[string]int{"x": 1, "y": 3})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
