package catalog

import (
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(service.NewService),
)
