package order

import (
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/order/repository"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
