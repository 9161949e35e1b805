package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/cart"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/catalog"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/clock"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/config"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/lifecycle"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/migration"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/observability"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/order"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/renewal"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/seed"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/server"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			if err := migration.RunMigrations(conn, cfg); err != nil {
				return err
			}
			return seed.EnsureCatalog(conn)
		}),

		catalog.Module,
		cart.Module,
		order.Module,
		subscription.Module,
		lifecycle.Module,
		renewal.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterAPIRoutes()
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
