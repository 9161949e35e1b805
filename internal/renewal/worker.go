package renewal

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/clock"
	subscriptiondomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/domain"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Renewer attempts one renewal. The lifecycle coordinator satisfies this.
type Renewer interface {
	Renew(ctx context.Context, subID snowflake.ID) (*subscriptiondomain.Subscription, error)
}

// Worker sweeps due subscriptions on a cron schedule and drives each through
// a renewal attempt. Failures are recorded per subscription and never stop
// the sweep.
type Worker struct {
	cfg     Config
	db      *gorm.DB
	log     *zap.Logger
	clk     clock.Clock
	subs    subscriptiondomain.Repository
	renewer Renewer
	cron    *cron.Cron
}

func NewWorker(cfg Config, db *gorm.DB, log *zap.Logger, clk clock.Clock, subs subscriptiondomain.Repository, renewer Renewer) *Worker {
	return &Worker{
		cfg:     cfg.withDefaults(),
		db:      db,
		log:     log.Named("renewal.worker"),
		clk:     clk,
		subs:    subs,
		renewer: renewer,
		cron:    cron.New(),
	}
}

// Start schedules the sweep. Stop drains in-flight runs.
func (w *Worker) Start() error {
	_, err := w.cron.AddFunc(w.cfg.Schedule, func() {
		w.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}
	w.cron.Start()
	w.log.Info("renewal worker started", zap.String("schedule", w.cfg.Schedule))
	return nil
}

func (w *Worker) Stop() {
	<-w.cron.Stop().Done()
}

// RunOnce processes a single batch of due subscriptions and reports how many
// renewed.
func (w *Worker) RunOnce(ctx context.Context) int {
	due, err := w.subs.FindDue(ctx, w.db, w.clk.Now(), w.cfg.BatchSize)
	if err != nil {
		w.log.Error("listing due subscriptions", zap.Error(err))
		return 0
	}

	renewed := 0
	for _, sub := range due {
		if ctx.Err() != nil {
			break
		}
		if _, err := w.renewer.Renew(ctx, sub.ID); err != nil {
			switch {
			case errors.Is(err, subscriptiondomain.ErrRenewalFailed):
				// already recorded on the subscription, retried next sweep
			case errors.Is(err, subscriptiondomain.ErrVersionConflict):
				// a concurrent writer won, the next sweep sees fresh state
			default:
				w.log.Error("renewal attempt",
					zap.Int64("subscription_id", int64(sub.ID)),
					zap.Error(err),
				)
			}
			continue
		}
		renewed++
	}

	if len(due) > 0 {
		w.log.Info("renewal sweep",
			zap.Int("due", len(due)),
			zap.Int("renewed", renewed),
		)
	}
	return renewed
}
