package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/cache"
	catalogdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	listCacheKey = "catalog:list"
	listCacheTTL = 30 * time.Second
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	listCache *cache.TTLCache[string, []catalogdomain.Item]
	sfg       singleflight.Group
}

func NewService(p Params) catalogdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("catalog.service"),
		listCache: cache.NewTTLCache[string, []catalogdomain.Item](),
	}
}

// List returns the full catalog. The result is cached briefly and concurrent
// cache misses collapse into a single query.
func (s *Service) List(ctx context.Context) (catalogdomain.ListResponse, error) {
	if items, ok := s.listCache.Get(listCacheKey); ok {
		return catalogdomain.ListResponse{Items: items}, nil
	}

	v, err, _ := s.sfg.Do(listCacheKey, func() (any, error) {
		var items []catalogdomain.Item
		if err := s.db.WithContext(ctx).
			Order("code ASC").
			Find(&items).Error; err != nil {
			return nil, err
		}
		s.listCache.Set(listCacheKey, items, listCacheTTL)
		return items, nil
	})
	if err != nil {
		return catalogdomain.ListResponse{}, err
	}
	return catalogdomain.ListResponse{Items: v.([]catalogdomain.Item)}, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*catalogdomain.Item, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, catalogdomain.ErrInvalidCode
	}

	var item catalogdomain.Item
	err := s.db.WithContext(ctx).
		Where("code = ?", code).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalogdomain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}
