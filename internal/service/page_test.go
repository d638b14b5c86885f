package service

import (
	"context"
	"testing"

	apperrors "github.com/folllow/folllow-server/internal/errors"
	"github.com/folllow/folllow-server/internal/geo"
)

func setupTree(t *testing.T) (*PageService, string) {
	t.Helper()
	s := newTestStore(t)
	createTestUser(t, s, "user-1", "a@example.com")
	tree, err := NewTreeService(s, testLogger()).Create(context.Background(), "user-1", "@alice")
	if err != nil {
		t.Fatalf("create tree: %v", err)
	}
	return NewPageService(s, testLogger()), tree.ID
}

func TestResolve(t *testing.T) {
	svc, treeID := setupTree(t)

	tree, err := svc.Resolve(context.Background(), "@alice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tree.ID != treeID {
		t.Errorf("resolved wrong tree: %+v", tree)
	}

	_, err = svc.Resolve(context.Background(), "@nobody")
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRecordView_Idempotent(t *testing.T) {
	svc, _ := setupTree(t)
	ctx := context.Background()

	event := ViewEvent{
		Slug:     "@alice",
		DedupKey: "visit-1",
		Location: geo.Location{Country: "FR", City: "Paris"},
	}

	counted, err := svc.RecordView(ctx, event)
	if err != nil {
		t.Fatalf("record view: %v", err)
	}
	if !counted {
		t.Error("first view should count")
	}

	// Same dedup key reported again, e.g. a client retry.
	counted, err = svc.RecordView(ctx, event)
	if err != nil {
		t.Fatalf("record view: %v", err)
	}
	if counted {
		t.Error("repeat view should not count")
	}

	// A new visit counts again.
	counted, err = svc.RecordView(ctx, ViewEvent{Slug: "@alice", DedupKey: "visit-2"})
	if err != nil {
		t.Fatalf("record view: %v", err)
	}
	if !counted {
		t.Error("distinct dedup key should count")
	}
}

func TestRecordView_UnknownSlug(t *testing.T) {
	svc, _ := setupTree(t)

	_, err := svc.RecordView(context.Background(), ViewEvent{Slug: "@nobody"})
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRecordClick(t *testing.T) {
	svc, _ := setupTree(t)
	ctx := context.Background()

	if err := svc.RecordClick(ctx, ClickEvent{Slug: "@alice", Element: "github"}); err != nil {
		t.Fatalf("record click: %v", err)
	}

	err := svc.RecordClick(ctx, ClickEvent{Slug: "@alice"})
	if !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error for empty element, got %v", err)
	}

	err = svc.RecordClick(ctx, ClickEvent{Slug: "@nobody", Element: "github"})
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
