// Package migration brings the schema up to date on boot. Postgres runs
// the versioned SQL migrations; other dialects fall back to AutoMigrate,
// which keeps the sqlite-backed tests and local mysql setups working
// without a migration history table.
package migration

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	auditdomain "github.com/smallbiznis/collecta/internal/audit/domain"
	"github.com/smallbiznis/collecta/internal/config"
	idemdomain "github.com/smallbiznis/collecta/internal/idempotency/domain"
	invoicedomain "github.com/smallbiznis/collecta/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/collecta/internal/payment/domain"
	recondomain "github.com/smallbiznis/collecta/internal/reconciliation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

func Run(cfg config.Config, gdb *gorm.DB, log *zap.Logger) error {
	logger := log.Named("migration")

	if cfg.DBType == "postgres" {
		return runVersioned(cfg, gdb, logger)
	}

	logger.Info("running auto migration", zap.String("db_type", cfg.DBType))
	return gdb.AutoMigrate(
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
		&recondomain.Apply{},
		&idemdomain.Record{},
		&auditdomain.AuditLog{},
	)
}

func runVersioned(cfg config.Config, gdb *gorm.DB, logger *zap.Logger) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, cfg.DBName, driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema already up to date")
			return nil
		}
		return err
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info("schema migrated",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
