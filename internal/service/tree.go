package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/folllow/folllow-server/internal/domain"
	apperrors "github.com/folllow/folllow-server/internal/errors"
	"github.com/folllow/folllow-server/internal/id"
	"github.com/folllow/folllow-server/internal/store"
	"github.com/folllow/folllow-server/internal/store/sqlite"
)

// SlugTakenMessage is the issue reported when a slug is already claimed.
const SlugTakenMessage = "Already taken !"

// SlugCheck is the outcome of probing a candidate slug.
type SlugCheck struct {
	Available bool     `json:"available"`
	Issues    []string `json:"issues,omitempty"`
}

// LinkUpdate is one link in a tree replacement. Order in the slice is
// the display order that gets persisted.
type LinkUpdate struct {
	Media domain.SocialMedia
	URL   string
}

// TreeUpdate is a whole-record replacement of a tree's editable fields.
type TreeUpdate struct {
	Bio        string
	Theme      domain.Theme
	ImageKey   string
	AdsEnabled bool
	Links      []LinkUpdate
}

// TreeService manages creation and editing of link trees.
type TreeService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewTreeService creates a new tree service.
func NewTreeService(store *sqlite.Store, logger *slog.Logger) *TreeService {
	return &TreeService{
		store:  store,
		logger: logger,
	}
}

// slugIssues returns human-readable problems with a candidate slug.
func slugIssues(slug string) []string {
	var issues []string
	if len(slug) < domain.SlugMinLen {
		issues = append(issues, "must be at least 3 characters")
	}
	if len(slug) > domain.SlugMaxLen {
		issues = append(issues, "must not exceed 20 characters")
	}
	if !domain.SlugPattern.MatchString(slug) {
		issues = append(issues, "must start with @ followed by letters, numbers or underscores")
	}
	return issues
}

// CheckSlug probes whether a slug is well-formed and free. Any issue in
// the result blocks tree creation.
func (s *TreeService) CheckSlug(ctx context.Context, slug string) (*SlugCheck, error) {
	if issues := slugIssues(slug); len(issues) > 0 {
		return &SlugCheck{Available: false, Issues: issues}, nil
	}

	taken, err := s.store.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return &SlugCheck{Available: false, Issues: []string{SlugTakenMessage}}, nil
	}
	return &SlugCheck{Available: true}, nil
}

// Create claims a slug for the user and creates their tree with default
// settings. A user owns at most one tree.
func (s *TreeService) Create(ctx context.Context, userID, slug string) (*domain.Tree, error) {
	if issues := slugIssues(slug); len(issues) > 0 {
		return nil, apperrors.ValidationWithDetails("invalid slug", issues)
	}

	now := time.Now().UTC()
	tree := &domain.Tree{
		ID:        id.MustGenerate(id.PrefixTree),
		UserID:    userID,
		Slug:      slug,
		Theme:     domain.ThemeDark,
		Links:     []domain.Link{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateTree(ctx, tree); err != nil {
		if apperrors.Is(err, store.ErrAlreadyExists) {
			return nil, apperrors.Conflict(SlugTakenMessage)
		}
		return nil, err
	}

	s.logger.Info("tree created", "tree_id", tree.ID, "slug", tree.Slug)
	return tree, nil
}

// GetMine returns the tree owned by the user.
func (s *TreeService) GetMine(ctx context.Context, userID string) (*domain.Tree, error) {
	tree, err := s.store.GetTreeByUserID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("tree not found")
		}
		return nil, err
	}
	return tree, nil
}

// Replace overwrites the user's tree with the submitted state. Links
// are stored in exactly the order they arrive; the slug is immutable.
func (s *TreeService) Replace(ctx context.Context, userID string, update TreeUpdate) (*domain.Tree, error) {
	if err := validateUpdate(update); err != nil {
		return nil, err
	}

	tree, err := s.GetMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	tree.Bio = update.Bio
	tree.Theme = update.Theme
	tree.AdsEnabled = update.AdsEnabled
	if update.ImageKey != "" {
		tree.ImageKey = update.ImageKey
	}
	tree.UpdatedAt = time.Now().UTC()

	tree.Links = make([]domain.Link, len(update.Links))
	for i, l := range update.Links {
		tree.Links[i] = domain.Link{
			ID:       id.MustGenerate(id.PrefixLink),
			TreeID:   tree.ID,
			Position: i,
			Media:    l.Media,
			URL:      l.URL,
		}
	}

	if err := s.store.ReplaceTree(ctx, tree); err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("tree not found")
		}
		return nil, err
	}

	s.logger.Info("tree replaced", "tree_id", tree.ID, "links", len(tree.Links))
	return tree, nil
}

func validateUpdate(update TreeUpdate) error {
	fieldErrors := make(map[string]string)

	if len(update.Bio) > domain.BioMaxLen {
		fieldErrors["bio"] = "must not exceed 200 characters"
	}
	if !update.Theme.Valid() {
		fieldErrors["theme"] = "is not a known theme"
	}
	for _, l := range update.Links {
		if !l.Media.Valid() {
			fieldErrors["links"] = "contains an unknown platform"
			break
		}
		if len(l.URL) < domain.URLMinLen || len(l.URL) > domain.URLMaxLen {
			fieldErrors["links"] = "contains a URL outside the 1-160 character range"
			break
		}
	}

	if len(fieldErrors) > 0 {
		return apperrors.ValidationWithDetails("validation failed", fieldErrors)
	}
	return nil
}
