package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/collecta/internal/clock"
	"github.com/smallbiznis/collecta/internal/config"
	"github.com/smallbiznis/collecta/internal/metrics"
	"github.com/smallbiznis/collecta/internal/migration"
	"github.com/smallbiznis/collecta/internal/observability"
	"github.com/smallbiznis/collecta/internal/seed"
	"github.com/smallbiznis/collecta/internal/server"
	"github.com/smallbiznis/collecta/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		migration.Module,
		fx.Invoke(seedDemo),
		server.Module,
	)
	app.Run()
}

func seedDemo(cfg config.Config, gdb *gorm.DB, node *snowflake.Node) error {
	if !cfg.SeedDemo {
		return nil
	}
	return seed.EnsureDemoData(gdb, node)
}

func RegisterSnowflake(cfg config.Config) *snowflake.Node {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		panic(err)
	}
	return node
}
