package service

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/folllow/folllow-server/internal/errors"
	"github.com/folllow/folllow-server/internal/store"
	"github.com/folllow/folllow-server/internal/store/sqlite"
)

// Dashboard is the headline summary for a creator's home screen.
// Deltas compare the current calendar month against the previous one,
// each metric against its own history.
type Dashboard struct {
	Slug            string `json:"slug"`
	TotalViews      int    `json:"totalViews"`
	ViewsThisMonth  int    `json:"viewsThisMonth"`
	ViewsDelta      Delta  `json:"viewsDelta"`
	ClicksThisMonth int    `json:"clicksThisMonth"`
	ClicksDelta     Delta  `json:"clicksDelta"`
	// Revenue is only a number when a payout account is linked and ads
	// run on the page; otherwise the frontend shows a call-to-action.
	Revenue       float64 `json:"revenue"`
	PaymentLinked bool    `json:"paymentLinked"`
	AdsEnabled    bool    `json:"adsEnabled"`
}

// DashboardService assembles the dashboard summary.
type DashboardService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store *sqlite.Store, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		store:  store,
		logger: logger,
	}
}

// GetDashboard returns the summary for the user's tree.
func (s *DashboardService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	tree, err := s.store.GetTreeByUserID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("tree not found")
		}
		return nil, err
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	totalViews, err := s.store.CountViews(ctx, tree.ID)
	if err != nil {
		return nil, err
	}

	viewsThisMonth, err := s.store.CountViewsBetween(ctx, tree.ID, monthStart, now)
	if err != nil {
		return nil, err
	}
	viewsLastMonth, err := s.store.CountViewsBetween(ctx, tree.ID, prevMonthStart, monthStart)
	if err != nil {
		return nil, err
	}

	clicksThisMonth, err := s.store.CountClicksBetween(ctx, tree.ID, monthStart, now)
	if err != nil {
		return nil, err
	}
	clicksLastMonth, err := s.store.CountClicksBetween(ctx, tree.ID, prevMonthStart, monthStart)
	if err != nil {
		return nil, err
	}

	payments, err := s.store.ListPaymentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	paymentLinked := len(payments) > 0

	return &Dashboard{
		Slug:            tree.Slug,
		TotalViews:      totalViews,
		ViewsThisMonth:  viewsThisMonth,
		ViewsDelta:      PercentChange(viewsLastMonth, viewsThisMonth),
		ClicksThisMonth: clicksThisMonth,
		ClicksDelta:     PercentChange(clicksLastMonth, clicksThisMonth),
		Revenue:         Revenue(viewsThisMonth, paymentLinked && tree.AdsEnabled),
		PaymentLinked:   paymentLinked,
		AdsEnabled:      tree.AdsEnabled,
	}, nil
}
