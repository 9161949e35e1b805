package renewal

import (
	"context"

	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/clock"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/config"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/lifecycle"
	subscriptiondomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("renewal.worker",
	fx.Provide(func(cfg config.Config) Config {
		return Config{
			Schedule:  cfg.RenewalSchedule,
			BatchSize: cfg.RenewalBatchSize,
		}
	}),
	fx.Provide(func(cfg Config, db *gorm.DB, log *zap.Logger, clk clock.Clock, subs subscriptiondomain.Repository, coord *lifecycle.Coordinator) *Worker {
		return NewWorker(cfg, db, log, clk, subs, coord)
	}),
	fx.Invoke(func(lc fx.Lifecycle, w *Worker) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error { return w.Start() },
			OnStop: func(context.Context) error {
				w.Stop()
				return nil
			},
		})
	}),
)
