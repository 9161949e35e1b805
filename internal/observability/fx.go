package observability

import (
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/observability/logger"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/observability/tracing"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	logger.Module,
	tracing.Module,
)
