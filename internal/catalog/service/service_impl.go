package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quoteflow/internal/catalog/domain"
	"github.com/smallbiznis/quoteflow/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxNameLength        = 200
	maxDescriptionLength = 500
	suggestionLimit      = 100
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
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Remember stores each non-empty item name with its latest description and
// each non-empty description as an instruction. Entries are written
// independently; the first failure is returned after all were attempted.
func (s *Service) Remember(ctx context.Context, entries []domain.Entry) error {
	now := s.clock.Now().UTC()
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, entry := range entries {
		name := strings.TrimSpace(entry.Item)
		desc := strings.TrimSpace(entry.Description)

		if name != "" {
			if utf8.RuneCountInString(name) > maxNameLength || utf8.RuneCountInString(desc) > maxDescriptionLength {
				record(fmt.Errorf("%w: %q", domain.ErrTooLong, name))
			} else {
				record(s.repo.UpsertCatalogItem(ctx, s.db, &domain.CatalogItem{
					ID:          s.genID.Generate(),
					Name:        name,
					Description: desc,
					LastUsed:    now,
				}))
			}
		}

		if desc != "" {
			if utf8.RuneCountInString(desc) > maxDescriptionLength {
				record(fmt.Errorf("%w: instruction", domain.ErrTooLong))
				continue
			}
			record(s.repo.UpsertInstruction(ctx, s.db, &domain.Instruction{
				ID:       s.genID.Generate(),
				Text:     desc,
				LastUsed: now,
			}))
		}
	}
	return firstErr
}

func (s *Service) ListCatalog(ctx context.Context, query string) ([]domain.CatalogItem, error) {
	return s.repo.ListCatalog(ctx, s.db, strings.TrimSpace(query), suggestionLimit)
}

func (s *Service) ListInstructions(ctx context.Context, query string) ([]string, error) {
	items, err := s.repo.ListInstructions(ctx, s.db, strings.TrimSpace(query), suggestionLimit)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(items))
	for _, item := range items {
		texts = append(texts, item.Text)
	}
	return texts, nil
}

func (s *Service) Suggest(ctx context.Context, query string) (domain.Suggestions, error) {
	catalog, err := s.ListCatalog(ctx, query)
	if err != nil {
		return domain.Suggestions{}, err
	}
	instructions, err := s.ListInstructions(ctx, query)
	if err != nil {
		return domain.Suggestions{}, err
	}
	return domain.Suggestions{Catalog: catalog, Instructions: instructions}, nil
}
