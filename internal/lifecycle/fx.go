package lifecycle

import (
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/events"
	"go.uber.org/fx"
)

var Module = fx.Module("lifecycle.coordinator",
	fx.Provide(events.NewOutbox),
	fx.Provide(func() PaymentGateway { return NoopGateway{} }),
	fx.Provide(NewCoordinator),
)
