// Package editor implements the tree edit session used by the CLI:
// form state mirrored to a local file on every change, async slug
// checks guarded by sequence numbers, and a two-phase avatar upload.
package editor

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/folllow/folllow-server/internal/api"
	"github.com/folllow/folllow-server/internal/service"
)

// Client talks to the Folllow API on behalf of a signed-in creator.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates an API client. token is a session token as issued
// by the sign-in flow; it is sent as a bearer header.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// wire mirrors the response envelope.
type wire[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func do[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return zero, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	var envelope wire[T]
	if err := json.UnmarshalRead(resp.Body, &envelope); err != nil {
		return zero, fmt.Errorf("decode response: %w", err)
	}
	if !envelope.Success {
		msg := envelope.Message
		if msg == "" {
			msg = envelope.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		return zero, fmt.Errorf("server: %s", msg)
	}
	return envelope.Data, nil
}

// GetMyTree fetches the caller's tree.
func (c *Client) GetMyTree(ctx context.Context) (api.TreeResponse, error) {
	return do[api.TreeResponse](ctx, c, http.MethodGet, "/api/v1/trees/me", nil)
}

// CreateTree claims a slug.
func (c *Client) CreateTree(ctx context.Context, slug string) (api.TreeResponse, error) {
	return do[api.TreeResponse](ctx, c, http.MethodPost, "/api/v1/trees", api.CreateTreeRequest{Slug: slug})
}

// CheckSlug asks the server whether a slug is free.
func (c *Client) CheckSlug(ctx context.Context, slug string) (service.SlugCheck, error) {
	return do[service.SlugCheck](ctx, c, http.MethodGet, "/api/v1/trees/check-slug?slug="+slug, nil)
}

// PostTree replaces the tree's editable fields and link set.
func (c *Client) PostTree(ctx context.Context, body api.PostTreeRequest) (api.TreeResponse, error) {
	return do[api.TreeResponse](ctx, c, http.MethodPut, "/api/v1/trees/me", body)
}

// PresignAvatarPost requests an upload ticket for a new avatar.
func (c *Client) PresignAvatarPost(ctx context.Context, previousKey string) (api.PresignedPostResponse, error) {
	return do[api.PresignedPostResponse](ctx, c, http.MethodPost, "/api/v1/uploads/avatar",
		api.PresignedPostRequest{PreviousKey: previousKey})
}

// UploadAvatar performs the direct multipart POST to object storage.
// The ticket fields go first, then the file part, matching the policy
// the presigned POST was signed over.
func (c *Client) UploadAvatar(ctx context.Context, ticket api.PresignedPostResponse, imagePath string) error {
	file, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range ticket.Post.Fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write field %s: %w", name, err)
		}
	}
	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ticket.Post.URL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("upload rejected: %s", resp.Status)
	}
	return nil
}
