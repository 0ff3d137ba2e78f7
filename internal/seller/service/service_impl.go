package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quoteflow/internal/clock"
	"github.com/smallbiznis/quoteflow/internal/seller/domain"
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
		log:   p.Log.Named("seller.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.UpsertRequest) (domain.Seller, error) {
	req = normalizeRequest(req)
	if req.Name == "" {
		return domain.Seller{}, domain.ErrInvalidName
	}

	now := s.clock.Now().UTC()
	seller := domain.Seller{ID: s.genID.Generate(), CreatedAt: now}
	apply(&seller, req, now)

	if err := s.repo.Insert(ctx, s.db, &seller); err != nil {
		return domain.Seller{}, err
	}
	return seller, nil
}

func (s *Service) Update(ctx context.Context, value string, req domain.UpsertRequest) (domain.Seller, error) {
	id, err := parseID(value)
	if err != nil {
		return domain.Seller{}, err
	}
	req = normalizeRequest(req)
	if req.Name == "" {
		return domain.Seller{}, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Seller{}, err
	}
	if existing == nil {
		return domain.Seller{}, domain.ErrNotFound
	}

	apply(existing, req, s.clock.Now().UTC())
	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return domain.Seller{}, err
	}
	return *existing, nil
}

func (s *Service) GetByID(ctx context.Context, value string) (domain.Seller, error) {
	id, err := parseID(value)
	if err != nil {
		return domain.Seller{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Seller{}, err
	}
	if item == nil {
		return domain.Seller{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Seller, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	sellers := make([]domain.Seller, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		sellers = append(sellers, *item)
	}
	return sellers, nil
}

// Delete refuses to remove a seller that generated documents still reference.
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

		count, err := s.repo.CountSellerQuotes(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrInUse
		}
		return s.repo.Delete(ctx, tx, id)
	})
}

func apply(seller *domain.Seller, req domain.UpsertRequest, now time.Time) {
	seller.Name = req.Name
	seller.LegalName = req.LegalName
	seller.Address = req.Address
	seller.Phone = req.Phone
	seller.Email = req.Email
	seller.GSTIN = req.GSTIN
	seller.PAN = req.PAN
	seller.LogoPath = req.LogoPath
	seller.IsMain = req.IsMain
	seller.UpdatedAt = now
}

func normalizeRequest(req domain.UpsertRequest) domain.UpsertRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.LegalName = strings.TrimSpace(req.LegalName)
	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.GSTIN = strings.ToUpper(strings.TrimSpace(req.GSTIN))
	req.PAN = strings.ToUpper(strings.TrimSpace(req.PAN))
	req.LogoPath = strings.TrimSpace(req.LogoPath)
	return req
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
