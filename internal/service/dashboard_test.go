package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/folllow/folllow-server/internal/domain"
)

func TestGetDashboard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")
	tree, err := NewTreeService(s, testLogger()).Create(ctx, "user-1", "@alice")
	if err != nil {
		t.Fatalf("create tree: %v", err)
	}
	if _, err := NewTreeService(s, testLogger()).Replace(ctx, "user-1", TreeUpdate{Theme: domain.ThemeDark, AdsEnabled: true}); err != nil {
		t.Fatalf("enable ads: %v", err)
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	// 2 views last month, 3 this month; 4 clicks last month, 1 this month.
	insertView := func(id string, at time.Time) {
		t.Helper()
		if _, err := s.InsertView(ctx, &domain.View{ID: id, TreeID: tree.ID, DedupKey: id, CreatedAt: at}); err != nil {
			t.Fatalf("insert view: %v", err)
		}
	}
	insertClick := func(id string, at time.Time) {
		t.Helper()
		if err := s.InsertClick(ctx, &domain.Click{ID: id, TreeID: tree.ID, Element: "github", CreatedAt: at}); err != nil {
			t.Fatalf("insert click: %v", err)
		}
	}

	lastMonth := monthStart.Add(-time.Hour)
	thisMonth := monthStart.Add(time.Minute)

	insertView("v1", lastMonth)
	insertView("v2", lastMonth)
	insertView("v3", thisMonth)
	insertView("v4", thisMonth)
	insertView("v5", thisMonth)

	insertClick("c1", lastMonth)
	insertClick("c2", lastMonth)
	insertClick("c3", lastMonth)
	insertClick("c4", lastMonth)
	insertClick("c5", thisMonth)

	svc := NewDashboardService(s, testLogger())
	dash, err := svc.GetDashboard(ctx, "user-1")
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}

	// No payout account yet: revenue stays a call-to-action.
	if dash.PaymentLinked || dash.Revenue != 0 {
		t.Errorf("unlinked revenue: linked=%v revenue=%v", dash.PaymentLinked, dash.Revenue)
	}

	if err := s.CreatePayment(ctx, &domain.Payment{
		ID: "pay-1", UserID: "user-1", Provider: "stripe", CreatedAt: now,
	}); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	dash, err = svc.GetDashboard(ctx, "user-1")
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}

	if dash.Slug != "@alice" {
		t.Errorf("slug = %q", dash.Slug)
	}
	if dash.TotalViews != 5 || dash.ViewsThisMonth != 3 {
		t.Errorf("views: total=%d thisMonth=%d", dash.TotalViews, dash.ViewsThisMonth)
	}
	// Views: 2 -> 3 is +50% more.
	if dash.ViewsDelta.Trend != TrendMore || math.Abs(dash.ViewsDelta.Percent-50) > 1e-9 {
		t.Errorf("views delta: %+v", dash.ViewsDelta)
	}
	// Clicks are measured against clicks, not views: 4 -> 1 is -75%.
	if dash.ClicksThisMonth != 1 {
		t.Errorf("clicks this month = %d", dash.ClicksThisMonth)
	}
	if dash.ClicksDelta.Trend != TrendLess || math.Abs(dash.ClicksDelta.Percent-75) > 1e-9 {
		t.Errorf("clicks delta: %+v", dash.ClicksDelta)
	}
	// Payout linked and ads on: this month's views earn.
	if !dash.PaymentLinked {
		t.Error("payment not reflected")
	}
	if math.Abs(dash.Revenue-3*RevenuePerView) > 1e-9 {
		t.Errorf("revenue = %v", dash.Revenue)
	}
}

func TestGetDashboard_RevenueNeedsAds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")
	tree, err := NewTreeService(s, testLogger()).Create(ctx, "user-1", "@alice")
	if err != nil {
		t.Fatalf("create tree: %v", err)
	}
	if err := s.CreatePayment(ctx, &domain.Payment{
		ID: "pay-1", UserID: "user-1", Provider: "stripe", CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if _, err := s.InsertView(ctx, &domain.View{
		ID: "v1", TreeID: tree.ID, DedupKey: "v1", CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("insert view: %v", err)
	}

	// Ads are off, so views earn nothing even with a payout account.
	dash, err := NewDashboardService(s, testLogger()).GetDashboard(ctx, "user-1")
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}
	if !dash.PaymentLinked || dash.AdsEnabled {
		t.Errorf("flags: linked=%v ads=%v", dash.PaymentLinked, dash.AdsEnabled)
	}
	if dash.Revenue != 0 {
		t.Errorf("revenue = %v", dash.Revenue)
	}
}

func TestGetDashboard_FreshTree(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")
	if _, err := NewTreeService(s, testLogger()).Create(ctx, "user-1", "@alice"); err != nil {
		t.Fatalf("create tree: %v", err)
	}

	dash, err := NewDashboardService(s, testLogger()).GetDashboard(ctx, "user-1")
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}

	// Zero history must not divide by zero.
	if dash.ViewsDelta.Percent != 0 || dash.ViewsDelta.Trend != TrendSame {
		t.Errorf("views delta: %+v", dash.ViewsDelta)
	}
	if dash.Revenue != 0 {
		t.Errorf("revenue = %v", dash.Revenue)
	}
}
