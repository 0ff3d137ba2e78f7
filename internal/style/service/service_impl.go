package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/quoteflow/internal/style/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("style.service"),
		repo: p.Repo,
	}
}

func (s *Service) GetByCode(ctx context.Context, code string) (domain.Style, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return domain.Style{}, domain.ErrInvalidCode
	}

	item, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Style{}, err
	}
	if item == nil {
		return domain.Style{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Default(ctx context.Context) (domain.Style, error) {
	item, err := s.repo.FindDefault(ctx, s.db)
	if err != nil {
		return domain.Style{}, err
	}
	if item == nil {
		return domain.Style{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Style, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	styles := make([]domain.Style, 0, len(items))
	for _, item := range items {
		styles = append(styles, *item)
	}
	return styles, nil
}
