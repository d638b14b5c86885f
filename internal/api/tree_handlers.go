package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/folllow/folllow-server/internal/domain"
	"github.com/folllow/folllow-server/internal/service"
	"github.com/folllow/folllow-server/internal/uploads"
)

func (s *Server) registerTreeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "check-slug",
		Method:      http.MethodGet,
		Path:        "/api/v1/trees/check-slug",
		Summary:     "Check slug availability",
		Description: "Reports whether a slug is well-formed and free to claim. Any issue blocks tree creation.",
		Tags:        []string{"Trees"},
	}, s.handleCheckSlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-tree",
		Method:      http.MethodPost,
		Path:        "/api/v1/trees",
		Summary:     "Create tree",
		Description: "Claims a slug and creates the caller's tree with default settings. A user owns at most one tree.",
		Tags:        []string{"Trees"},
	}, s.handleCreateTree)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-my-tree",
		Method:      http.MethodGet,
		Path:        "/api/v1/trees/me",
		Summary:     "Get my tree",
		Description: "Returns the caller's tree with links in display order.",
		Tags:        []string{"Trees"},
	}, s.handleGetMyTree)

	huma.Register(s.api, huma.Operation{
		OperationID: "post-tree",
		Method:      http.MethodPut,
		Path:        "/api/v1/trees/me",
		Summary:     "Replace my tree",
		Description: "Overwrites the tree's editable fields and full link set. Link order is the submitted order; the slug never changes.",
		Tags:        []string{"Trees"},
	}, s.handlePostTree)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-presigned-post",
		Method:      http.MethodPost,
		Path:        "/api/v1/uploads/avatar",
		Summary:     "Get avatar upload ticket",
		Description: "Issues a presigned multipart POST for uploading a new avatar straight to object storage. Commit the returned key via post-tree once the upload succeeds.",
		Tags:        []string{"Uploads"},
	}, s.handlePresignedPost)
}

// === DTOs ===

// LinkRequest is one link in a tree submission.
type LinkRequest struct {
	Media string `json:"media" validate:"required,max=20" doc:"Platform of the link (twitter, github, website, ...)"`
	URL   string `json:"url" validate:"required,min=1,max=160" doc:"Destination URL"`
}

// PostTreeRequest is the whole-record tree replacement body.
type PostTreeRequest struct {
	Bio        string        `json:"bio" validate:"max=200" doc:"Short bio shown under the avatar"`
	Theme      string        `json:"theme" validate:"required" doc:"Page theme name"`
	ImageKey   string        `json:"image,omitempty" validate:"omitempty,max=200" doc:"Avatar object key from a completed upload; empty keeps the current avatar"`
	AdsEnabled bool          `json:"ads_enabled" doc:"Whether ads run on the public page"`
	Links      []LinkRequest `json:"links" validate:"dive" doc:"Links in display order"`
}

// PostTreeInput wraps the tree replacement for Huma.
type PostTreeInput struct {
	Body PostTreeRequest
}

// CreateTreeRequest is the body for claiming a slug.
type CreateTreeRequest struct {
	Slug string `json:"slug" validate:"required,min=3,max=20" doc:"Page slug including the @ prefix"`
}

// CreateTreeInput wraps the create request for Huma.
type CreateTreeInput struct {
	Body CreateTreeRequest
}

// CheckSlugInput carries the candidate slug.
type CheckSlugInput struct {
	Slug string `query:"slug" required:"true" doc:"Candidate slug including the @ prefix"`
}

// CheckSlugOutput wraps the availability result for Huma.
type CheckSlugOutput struct {
	Body service.SlugCheck
}

// LinkResponse is one link on a tree.
type LinkResponse struct {
	ID       string `json:"id" doc:"Link ID"`
	Position int    `json:"position" doc:"Zero-based display position"`
	Media    string `json:"media" doc:"Platform of the link"`
	URL      string `json:"url" doc:"Destination URL"`
}

// TreeResponse is a tree as returned to its owner.
type TreeResponse struct {
	ID         string         `json:"id" doc:"Tree ID"`
	Slug       string         `json:"slug" doc:"Page slug"`
	Bio        string         `json:"bio" doc:"Short bio"`
	Theme      string         `json:"theme" doc:"Page theme name"`
	ImageKey   string         `json:"image,omitempty" doc:"Avatar object key"`
	ImageURL   string         `json:"image_url,omitempty" doc:"Public avatar URL"`
	AdsEnabled bool           `json:"ads_enabled" doc:"Whether ads run on the public page"`
	Links      []LinkResponse `json:"links" doc:"Links in display order"`
	CreatedAt  time.Time      `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt  time.Time      `json:"updated_at" doc:"Last update timestamp"`
}

// TreeOutput wraps a tree response for Huma.
type TreeOutput struct {
	Body TreeResponse
}

// PresignedPostRequest names the object key being replaced, if any.
type PresignedPostRequest struct {
	PreviousKey string `json:"previousKey,omitempty" validate:"omitempty,max=200" doc:"Object key currently on the tree, to be replaced"`
}

// PresignedPostInput wraps the ticket request for Huma.
type PresignedPostInput struct {
	Body PresignedPostRequest
}

// PresignedPostResponse is a two-phase upload descriptor.
type PresignedPostResponse struct {
	Post uploads.Ticket `json:"post" doc:"Presigned multipart POST target"`
	Key  string         `json:"key" doc:"Object key to commit via post-tree on success"`
}

// PresignedPostOutput wraps the descriptor for Huma.
type PresignedPostOutput struct {
	Body PresignedPostResponse
}

func (s *Server) treeResponse(tree *domain.Tree) TreeResponse {
	links := make([]LinkResponse, len(tree.Links))
	for i, l := range tree.Links {
		links[i] = LinkResponse{
			ID:       l.ID,
			Position: l.Position,
			Media:    string(l.Media),
			URL:      l.URL,
		}
	}
	return TreeResponse{
		ID:         tree.ID,
		Slug:       tree.Slug,
		Bio:        tree.Bio,
		Theme:      string(tree.Theme),
		ImageKey:   tree.ImageKey,
		ImageURL:   s.services.Upload.PublicURL(tree.ImageKey),
		AdsEnabled: tree.AdsEnabled,
		Links:      links,
		CreatedAt:  tree.CreatedAt,
		UpdatedAt:  tree.UpdatedAt,
	}
}

// === Handlers ===

func (s *Server) handleCheckSlug(ctx context.Context, input *CheckSlugInput) (*CheckSlugOutput, error) {
	check, err := s.services.Tree.CheckSlug(ctx, input.Slug)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to check slug", err)
	}
	return &CheckSlugOutput{Body: *check}, nil
}

func (s *Server) handleCreateTree(ctx context.Context, input *CreateTreeInput) (*TreeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, huma.Error400BadRequest("invalid request", err)
	}

	tree, err := s.services.Tree.Create(ctx, userID, input.Body.Slug)
	if err != nil {
		return nil, huma.Error400BadRequest("failed to create tree", err)
	}
	return &TreeOutput{Body: s.treeResponse(tree)}, nil
}

func (s *Server) handleGetMyTree(ctx context.Context, _ *struct{}) (*TreeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	tree, err := s.services.Tree.GetMine(ctx, userID)
	if err != nil {
		return nil, huma.Error404NotFound("tree not found", err)
	}
	return &TreeOutput{Body: s.treeResponse(tree)}, nil
}

func (s *Server) handlePostTree(ctx context.Context, input *PostTreeInput) (*TreeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, huma.Error400BadRequest("invalid request", err)
	}

	update := service.TreeUpdate{
		Bio:        input.Body.Bio,
		Theme:      domain.Theme(input.Body.Theme),
		ImageKey:   input.Body.ImageKey,
		AdsEnabled: input.Body.AdsEnabled,
		Links:      make([]service.LinkUpdate, len(input.Body.Links)),
	}
	for i, l := range input.Body.Links {
		update.Links[i] = service.LinkUpdate{
			Media: domain.SocialMedia(l.Media),
			URL:   l.URL,
		}
	}

	tree, err := s.services.Tree.Replace(ctx, userID, update)
	if err != nil {
		return nil, huma.Error400BadRequest("failed to update tree", err)
	}
	return &TreeOutput{Body: s.treeResponse(tree)}, nil
}

func (s *Server) handlePresignedPost(ctx context.Context, input *PresignedPostInput) (*PresignedPostOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	ticket, err := s.services.Upload.PresignAvatarPost(ctx, userID, input.Body.PreviousKey)
	if err != nil {
		return nil, huma.Error400BadRequest("failed to issue upload ticket", err)
	}

	return &PresignedPostOutput{Body: PresignedPostResponse{
		Post: *ticket,
		Key:  ticket.Key,
	}}, nil
}
