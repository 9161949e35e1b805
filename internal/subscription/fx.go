package subscription

import (
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/repository"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
