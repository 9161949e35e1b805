package migration

import (
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	catalogdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/catalog/domain"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/config"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/events"
	orderdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/order/domain"
	subscriptiondomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/domain"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date. Postgres deployments run the
// embedded SQL migrations; the sqlite development database is auto-migrated
// from the models instead.
func RunMigrations(conn *gorm.DB, cfg config.Config) error {
	if strings.HasPrefix(cfg.DatabaseDSN, "postgres://") || strings.HasPrefix(cfg.DatabaseDSN, "postgresql://") {
		return runPostgres(conn)
	}
	return conn.AutoMigrate(
		&catalogdomain.Item{},
		&orderdomain.Order{},
		&orderdomain.Line{},
		&orderdomain.TimelineEntry{},
		&subscriptiondomain.Subscription{},
		&events.LifecycleEvent{},
	)
}

func runPostgres(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return err
	}
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
