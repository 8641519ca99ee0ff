package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/collecta/internal/clock"
	idemdomain "github.com/smallbiznis/collecta/internal/idempotency/domain"
	"github.com/smallbiznis/collecta/internal/orgcontext"
	"github.com/smallbiznis/collecta/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  idemdomain.Repository
}

type Gate struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  idemdomain.Repository
}

func NewGate(p Params) idemdomain.Gate {
	return &Gate{
		db:    p.DB,
		log:   p.Log.Named("idempotency.gate"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Execute inserts the key record inside the same transaction as fn's
// writes, so the key and its effects commit or roll back together. When
// two requests race on a fresh key, the unique index lets exactly one
// commit; the loser surfaces ErrConcurrentKeyUse after its own work is
// rolled back.
func (g *Gate) Execute(ctx context.Context, key, fingerprint string, fn func(tx *gorm.DB) (any, error)) (*idemdomain.Result, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, idemdomain.ErrInvalidOrganization
	}
	if strings.TrimSpace(key) == "" {
		return nil, idemdomain.ErrInvalidKey
	}

	existing, err := g.repo.FindByKey(ctx, g.db, orgID, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Fingerprint != fingerprint {
			return nil, idemdomain.ErrKeyConflict
		}
		g.log.Info("replaying stored result for idempotency key",
			zap.String("key", key),
		)
		return &idemdomain.Result{Replayed: true, Stored: existing.Response}, nil
	}

	var result idemdomain.Result
	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		value, err := fn(tx)
		if err != nil {
			return err
		}

		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}

		record := &idemdomain.Record{
			ID:          g.genID.Generate(),
			OrgID:       orgID,
			Key:         key,
			Fingerprint: fingerprint,
			Response:    datatypes.JSON(raw),
			CreatedAt:   g.clock.Now(),
		}
		if err := g.repo.Insert(ctx, tx, record); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return idemdomain.ErrConcurrentKeyUse
			}
			return err
		}

		result = idemdomain.Result{Stored: record.Response, Value: value}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
