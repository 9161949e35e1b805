package cart

import (
	"context"
	"time"

	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/cart/store"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/clock"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cart.store",
	fx.Provide(func(cfg config.Config, clk clock.Clock) *store.Store {
		return store.New(clk, cfg.CartTTL)
	}),
	fx.Invoke(runPruner),
)

// runPruner drops idle sessions in the background for the life of the app.
func runPruner(lc fx.Lifecycle, s *store.Store, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(10 * time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if n := s.Prune(); n > 0 {
							log.Debug("pruned idle carts", zap.Int("count", n))
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}
