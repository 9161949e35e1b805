package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo orderdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo orderdomain.Repository
}

func NewService(p Params) orderdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("order.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) (orderdomain.ListOrdersResponse, error) {
	orders, err := s.repo.List(ctx, s.db)
	if err != nil {
		return orderdomain.ListOrdersResponse{}, err
	}
	if orders == nil {
		orders = []orderdomain.Order{}
	}
	return orderdomain.ListOrdersResponse{Orders: orders}, nil
}

func (s *Service) GetByID(ctx context.Context, req orderdomain.GetOrderRequest) (*orderdomain.Order, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return nil, orderdomain.ErrInvalidOrderID
	}
	return s.repo.FindByID(ctx, s.db, id)
}
