package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo subscriptiondomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo subscriptiondomain.Repository
}

func NewService(p Params) subscriptiondomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("subscription.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) (subscriptiondomain.ListSubscriptionsResponse, error) {
	subs, err := s.repo.List(ctx, s.db)
	if err != nil {
		return subscriptiondomain.ListSubscriptionsResponse{}, err
	}

	views := make([]subscriptiondomain.View, 0, len(subs))
	for _, sub := range subs {
		views = append(views, subscriptiondomain.NewView(sub))
	}
	return subscriptiondomain.ListSubscriptionsResponse{Subscriptions: views}, nil
}

func (s *Service) GetByID(ctx context.Context, req subscriptiondomain.GetSubscriptionRequest) (*subscriptiondomain.Subscription, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return nil, subscriptiondomain.ErrInvalidSubscriptionID
	}
	return s.repo.FindByID(ctx, s.db, id)
}
