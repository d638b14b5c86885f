package service

import (
	"context"
	"strings"
	"testing"

	"github.com/folllow/folllow-server/internal/domain"
	apperrors "github.com/folllow/folllow-server/internal/errors"
)

func TestCheckSlug(t *testing.T) {
	s := newTestStore(t)
	svc := NewTreeService(s, testLogger())
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")
	if _, err := svc.Create(ctx, "user-1", "@alice"); err != nil {
		t.Fatalf("create tree: %v", err)
	}

	tests := []struct {
		name      string
		slug      string
		available bool
	}{
		{"free slug", "@bob", true},
		{"minimum length", "@ab", true},
		{"taken", "@alice", false},
		{"taken different case", "@ALICE", false},
		{"missing at sign", "alice", false},
		{"too short", "@a", false},
		{"too long", "@" + strings.Repeat("x", 20), false},
		{"illegal characters", "@a-b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check, err := svc.CheckSlug(ctx, tt.slug)
			if err != nil {
				t.Fatalf("check slug: %v", err)
			}
			if check.Available != tt.available {
				t.Errorf("available = %v, want %v (issues: %v)", check.Available, tt.available, check.Issues)
			}
			if !tt.available && len(check.Issues) == 0 {
				t.Error("expected issues for unavailable slug")
			}
		})
	}
}

func TestCheckSlug_TakenMessage(t *testing.T) {
	s := newTestStore(t)
	svc := NewTreeService(s, testLogger())
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")
	if _, err := svc.Create(ctx, "user-1", "@alice"); err != nil {
		t.Fatalf("create tree: %v", err)
	}

	check, err := svc.CheckSlug(ctx, "@alice")
	if err != nil {
		t.Fatalf("check slug: %v", err)
	}
	if len(check.Issues) != 1 || check.Issues[0] != SlugTakenMessage {
		t.Errorf("expected %q, got %v", SlugTakenMessage, check.Issues)
	}
}

func TestCreate_InvalidSlug(t *testing.T) {
	s := newTestStore(t)
	svc := NewTreeService(s, testLogger())

	createTestUser(t, s, "user-1", "a@example.com")
	_, err := svc.Create(context.Background(), "user-1", "nope")
	if !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreate_SlugConflict(t *testing.T) {
	s := newTestStore(t)
	svc := NewTreeService(s, testLogger())
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")
	createTestUser(t, s, "user-2", "b@example.com")

	if _, err := svc.Create(ctx, "user-1", "@alice"); err != nil {
		t.Fatalf("create tree: %v", err)
	}
	_, err := svc.Create(ctx, "user-2", "@alice")
	if !apperrors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestReplace(t *testing.T) {
	s := newTestStore(t)
	svc := NewTreeService(s, testLogger())
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")
	if _, err := svc.Create(ctx, "user-1", "@alice"); err != nil {
		t.Fatalf("create tree: %v", err)
	}

	got, err := svc.Replace(ctx, "user-1", TreeUpdate{
		Bio:        "my new bio",
		Theme:      domain.ThemeForest,
		ImageKey:   "avatars/img-abc",
		AdsEnabled: true,
		Links: []LinkUpdate{
			{Media: domain.SocialYoutube, URL: "https://youtube.com/@alice"},
			{Media: domain.SocialGithub, URL: "https://github.com/alice"},
		},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	if got.Bio != "my new bio" || got.Theme != domain.ThemeForest || !got.AdsEnabled {
		t.Errorf("fields not applied: %+v", got)
	}
	if got.ImageKey != "avatars/img-abc" {
		t.Errorf("image key not committed: %q", got.ImageKey)
	}
	// Submitted order is the stored order.
	if got.Links[0].Media != domain.SocialYoutube || got.Links[0].Position != 0 {
		t.Errorf("unexpected first link: %+v", got.Links[0])
	}
	if got.Links[1].Media != domain.SocialGithub || got.Links[1].Position != 1 {
		t.Errorf("unexpected second link: %+v", got.Links[1])
	}

	// Slug survives the replace untouched.
	mine, err := svc.GetMine(ctx, "user-1")
	if err != nil {
		t.Fatalf("get mine: %v", err)
	}
	if mine.Slug != "@alice" {
		t.Errorf("slug changed to %q", mine.Slug)
	}
}

func TestReplace_EmptyImageKeyKeepsExisting(t *testing.T) {
	s := newTestStore(t)
	svc := NewTreeService(s, testLogger())
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")
	if _, err := svc.Create(ctx, "user-1", "@alice"); err != nil {
		t.Fatalf("create tree: %v", err)
	}

	if _, err := svc.Replace(ctx, "user-1", TreeUpdate{Theme: domain.ThemeDark, ImageKey: "avatars/first"}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	// A failed upload submits without an image key; the old one stays.
	got, err := svc.Replace(ctx, "user-1", TreeUpdate{Theme: domain.ThemeDark})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got.ImageKey != "avatars/first" {
		t.Errorf("expected image key to persist, got %q", got.ImageKey)
	}
}

func TestReplace_Validation(t *testing.T) {
	s := newTestStore(t)
	svc := NewTreeService(s, testLogger())
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")
	if _, err := svc.Create(ctx, "user-1", "@alice"); err != nil {
		t.Fatalf("create tree: %v", err)
	}

	tests := []struct {
		name   string
		update TreeUpdate
	}{
		{"bio too long", TreeUpdate{Bio: strings.Repeat("x", 201), Theme: domain.ThemeDark}},
		{"unknown theme", TreeUpdate{Theme: "neon"}},
		{"unknown platform", TreeUpdate{Theme: domain.ThemeDark, Links: []LinkUpdate{{Media: "myspace", URL: "https://x.com"}}}},
		{"empty url", TreeUpdate{Theme: domain.ThemeDark, Links: []LinkUpdate{{Media: domain.SocialGithub, URL: ""}}}},
		{"url too long", TreeUpdate{Theme: domain.ThemeDark, Links: []LinkUpdate{{Media: domain.SocialGithub, URL: "https://" + strings.Repeat("x", 160)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Replace(ctx, "user-1", tt.update); !apperrors.Is(err, apperrors.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetMine_NoTree(t *testing.T) {
	s := newTestStore(t)
	svc := NewTreeService(s, testLogger())

	createTestUser(t, s, "user-1", "a@example.com")
	_, err := svc.GetMine(context.Background(), "user-1")
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
