package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/folllow/folllow-server/internal/domain"
	apperrors "github.com/folllow/folllow-server/internal/errors"
	"github.com/folllow/folllow-server/internal/geo"
	"github.com/folllow/folllow-server/internal/id"
	"github.com/folllow/folllow-server/internal/store"
	"github.com/folllow/folllow-server/internal/store/sqlite"
)

// ViewEvent is one reported page impression. Events carry the page's
// slug, the only identifier the public page knows itself by.
type ViewEvent struct {
	Slug       string
	DedupKey   string
	Location   geo.Location
	AdsBlocked bool
}

// ClickEvent is one reported outbound link click.
type ClickEvent struct {
	Slug    string
	Element string
}

// PageService resolves public pages and records visitor events.
type PageService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewPageService creates a new page service.
func NewPageService(store *sqlite.Store, logger *slog.Logger) *PageService {
	return &PageService{
		store:  store,
		logger: logger,
	}
}

// Resolve returns the tree published under a slug.
func (s *PageService) Resolve(ctx context.Context, slug string) (*domain.Tree, error) {
	tree, err := s.store.GetTreeBySlug(ctx, slug)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("page not found")
		}
		return nil, err
	}
	return tree, nil
}

// RecordView stores a page impression. Repeat reports carrying the same
// dedup key count once; counted reports whether this one did.
func (s *PageService) RecordView(ctx context.Context, event ViewEvent) (counted bool, err error) {
	tree, err := s.store.GetTreeBySlug(ctx, event.Slug)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return false, apperrors.NotFound("page not found")
		}
		return false, err
	}

	view := &domain.View{
		ID:         id.MustGenerate(id.PrefixView),
		TreeID:     tree.ID,
		DedupKey:   event.DedupKey,
		Country:    event.Location.Country,
		Region:     event.Location.Region,
		City:       event.Location.City,
		AdsBlocked: event.AdsBlocked,
		CreatedAt:  time.Now().UTC(),
	}

	counted, err = s.store.InsertView(ctx, view)
	if err != nil {
		return false, err
	}
	if !counted {
		s.logger.Debug("duplicate view dropped", "slug", event.Slug)
	}
	return counted, nil
}

// RecordClick stores an outbound link click.
func (s *PageService) RecordClick(ctx context.Context, event ClickEvent) error {
	if event.Element == "" {
		return apperrors.Validation("element is required")
	}
	tree, err := s.store.GetTreeBySlug(ctx, event.Slug)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("page not found")
		}
		return err
	}

	return s.store.InsertClick(ctx, &domain.Click{
		ID:        id.MustGenerate(id.PrefixClick),
		TreeID:    tree.ID,
		Element:   event.Element,
		CreatedAt: time.Now().UTC(),
	})
}
