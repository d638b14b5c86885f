package service

import (
	"context"
	"log/slog"

	apperrors "github.com/folllow/folllow-server/internal/errors"
	"github.com/folllow/folllow-server/internal/store"
	"github.com/folllow/folllow-server/internal/store/sqlite"
	"github.com/folllow/folllow-server/internal/uploads"
)

// UploadService gates avatar upload tickets behind tree ownership.
type UploadService struct {
	store   *sqlite.Store
	uploads *uploads.Service
	logger  *slog.Logger
}

// NewUploadService creates a new upload service.
func NewUploadService(store *sqlite.Store, uploads *uploads.Service, logger *slog.Logger) *UploadService {
	return &UploadService{
		store:   store,
		uploads: uploads,
		logger:  logger,
	}
}

// PresignAvatarPost issues an upload ticket for the user's avatar.
// previousKey must be the key currently on the user's tree (or empty);
// anything else is rejected so one creator cannot evict another's image.
func (s *UploadService) PresignAvatarPost(ctx context.Context, userID, previousKey string) (*uploads.Ticket, error) {
	tree, err := s.store.GetTreeByUserID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("tree not found")
		}
		return nil, err
	}

	if previousKey != "" && previousKey != tree.ImageKey {
		return nil, apperrors.Forbidden("previous key does not match your tree")
	}

	ticket, err := s.uploads.PresignAvatarPost(ctx, previousKey)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "issue upload ticket")
	}

	s.logger.Info("upload ticket issued", "tree_id", tree.ID, "key", ticket.Key)
	return ticket, nil
}

// PublicURL derives the public URL of a stored avatar.
func (s *UploadService) PublicURL(key string) string {
	return s.uploads.PublicURL(key)
}
