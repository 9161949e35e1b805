package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	cartstore "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/cart/store"
	catalogdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/catalog/domain"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/clock"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/config"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/lifecycle"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/observability/logger"
	orderdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/order/domain"
	subscriptiondomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config      config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	Clock       clock.Clock
	Engine      *gin.Engine
	Carts       *cartstore.Store
	CatalogSvc  catalogdomain.Service
	OrderSvc    orderdomain.Service
	SubSvc      subscriptiondomain.Service
	Coordinator *lifecycle.Coordinator
}

type Server struct {
	cfg     config.Config
	log     *zap.Logger
	db      *gorm.DB
	clk     clock.Clock
	engine  *gin.Engine
	carts   *cartstore.Store
	catalog catalogdomain.Service
	orders  orderdomain.Service
	subs    subscriptiondomain.Service
	coord   *lifecycle.Coordinator
	limiter *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:     p.Config,
		log:     p.Log.Named("server"),
		db:      p.DB,
		clk:     p.Clock,
		engine:  p.Engine,
		carts:   p.Carts,
		catalog: p.CatalogSvc,
		orders:  p.OrderSvc,
		subs:    p.SubSvc,
		coord:   p.Coordinator,
		limiter: newRateLimiter(p.Clock, 120, time.Minute),
	}
}

// NewEngine builds the gin engine with recovery and access logging.
func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(log))
	return engine
}

// RegisterAPIRoutes mounts the dashboard API.
func (s *Server) RegisterAPIRoutes() {
	s.engine.GET("/healthz", s.Health)

	api := s.engine.Group("/api")
	api.Use(s.RateLimit)

	api.GET("/catalog", s.ListCatalog)

	api.GET("/cart", s.GetCart)
	api.POST("/cart/items", s.AddCartItem)
	api.DELETE("/cart/items/:itemId", s.RemoveCartItem)

	api.GET("/orders", s.ListOrders)
	api.POST("/orders/create", s.CreateOrder)
	api.GET("/orders/:id", s.GetOrderByID)
	api.PATCH("/orders/:id/status", s.UpdateOrderStatus)
	api.POST("/orders/:id/cancel", s.CancelOrder)
	api.POST("/orders/:id/kickoff", s.MarkOrderKickoff)

	api.GET("/subscriptions", s.ListSubscriptions)
	api.GET("/subscriptions/:id", s.GetSubscriptionByID)
	api.POST("/subscriptions/:id/usage", s.RecordSubscriptionUsage)
	api.POST("/subscriptions/:id/cancel", s.CancelSubscription)
	api.POST("/subscriptions/:id/renew", s.RenewSubscription)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP starts the listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
