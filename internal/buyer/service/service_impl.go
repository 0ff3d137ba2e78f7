package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quoteflow/internal/buyer/domain"
	"github.com/smallbiznis/quoteflow/internal/clock"
	"github.com/smallbiznis/quoteflow/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("buyer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, info domain.Info) (domain.Buyer, error) {
	info = normalizeInfo(info)
	if info.Name == "" {
		return domain.Buyer{}, domain.ErrInvalidName
	}

	buyer := s.newBuyer(info)
	if err := s.repo.Insert(ctx, s.db, &buyer); err != nil {
		return domain.Buyer{}, err
	}
	return buyer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.Buyer, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Buyer{}, err
	}
	info := normalizeInfo(req.Info)
	if info.Name == "" {
		return domain.Buyer{}, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Buyer{}, err
	}
	if existing == nil {
		return domain.Buyer{}, domain.ErrNotFound
	}

	existing.Name = info.Name
	existing.Phone = info.Phone
	existing.Email = info.Email
	existing.Address = info.Address
	existing.TaxID = info.TaxID
	existing.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return domain.Buyer{}, err
	}
	return *existing, nil
}

func (s *Service) GetByID(ctx context.Context, value string) (domain.Buyer, error) {
	id, err := parseID(value)
	if err != nil {
		return domain.Buyer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Buyer{}, err
	}
	if item == nil {
		return domain.Buyer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{Name: strings.ToLower(strings.TrimSpace(req.Name))}

	items, err := s.repo.List(ctx, s.db, filter, req.Pagination)
	if err != nil {
		return domain.ListResponse{}, err
	}
	items, pageInfo := pagination.Trim(items, req.Pagination)

	buyers := make([]domain.Buyer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		buyers = append(buyers, *item)
	}
	return domain.ListResponse{PageInfo: pageInfo, Buyers: buyers}, nil
}

// Delete refuses to remove a buyer that quotations still reference.
func (s *Service) Delete(ctx context.Context, value string) error {
	id, err := parseID(value)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		count, err := s.repo.CountQuotations(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrInUse
		}
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *Service) Resolve(ctx context.Context, tx *gorm.DB, info domain.Info) (domain.Buyer, error) {
	if tx == nil {
		tx = s.db
	}
	info = normalizeInfo(info)
	if info.Name == "" {
		info.Name = domain.WalkInName
	}

	existing, err := s.repo.FindByName(ctx, tx, info.Name)
	if err != nil {
		return domain.Buyer{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	buyer := s.newBuyer(info)
	if err := s.repo.Insert(ctx, tx, &buyer); err != nil {
		return domain.Buyer{}, err
	}
	s.log.Debug("buyer created on first reference",
		zap.String("buyer_id", buyer.ID.String()),
	)
	return buyer, nil
}

func (s *Service) newBuyer(info domain.Info) domain.Buyer {
	now := s.clock.Now().UTC()
	return domain.Buyer{
		ID:        s.genID.Generate(),
		Name:      info.Name,
		Phone:     info.Phone,
		Email:     info.Email,
		Address:   info.Address,
		TaxID:     info.TaxID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func normalizeInfo(info domain.Info) domain.Info {
	return domain.Info{
		Name:    strings.TrimSpace(info.Name),
		Phone:   strings.TrimSpace(info.Phone),
		Email:   strings.TrimSpace(info.Email),
		Address: strings.TrimSpace(info.Address),
		TaxID:   strings.ToUpper(strings.TrimSpace(info.TaxID)),
	}
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
