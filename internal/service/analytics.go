package service

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/folllow/folllow-server/internal/domain"
	apperrors "github.com/folllow/folllow-server/internal/errors"
	"github.com/folllow/folllow-server/internal/store"
	"github.com/folllow/folllow-server/internal/store/sqlite"
)

// RevenuePerView is the estimated ad revenue earned by one page view,
// derived from observed AdSense RPM.
const RevenuePerView = 0.10404

// Trend labels for month-over-month deltas.
const (
	TrendMore = "more"
	TrendLess = "less"
	TrendSame = "same"
)

const (
	viewWindowDays   = 31
	clickWindowMonths = 12
)

// DayCount is one day of views, bucketed by UTC date.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// ClickBucket is one month of clicks, split by the clicked element.
// Date is the first instant of the month in UTC.
type ClickBucket struct {
	Date     time.Time      `json:"date"`
	Elements map[string]int `json:"elements"`
}

// Delta describes how a metric moved against the previous month.
type Delta struct {
	Percent float64 `json:"percent"`
	Trend   string  `json:"trend"`
}

// Analytics is the chart payload for a creator's analytics page.
type Analytics struct {
	Views  []DayCount    `json:"views"`
	Clicks []ClickBucket `json:"clicks"`
}

// AnalyticsService aggregates raw view and click events into charts.
type AnalyticsService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(store *sqlite.Store, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:  store,
		logger: logger,
	}
}

// GetAnalytics returns the chart data for the user's tree: views per day
// over the past 31 days and clicks per month over the past 12 months.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, userID string) (*Analytics, error) {
	tree, err := s.store.GetTreeByUserID(ctx, userID)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("tree not found")
		}
		return nil, err
	}

	now := time.Now().UTC()

	views, err := s.store.ListViewsSince(ctx, tree.ID, now.AddDate(0, 0, -viewWindowDays))
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	clicks, err := s.store.ListClicksSince(ctx, tree.ID, monthStart.AddDate(0, -(clickWindowMonths-1), 0))
	if err != nil {
		return nil, err
	}

	return &Analytics{
		Views:  BucketViewsByDay(views),
		Clicks: BucketClicksByMonth(clicks),
	}, nil
}

// BucketViewsByDay groups views by their UTC calendar date, ascending.
// Days without views produce no bucket.
func BucketViewsByDay(views []domain.View) []DayCount {
	byDay := make(map[time.Time]int)
	for _, v := range views {
		t := v.CreatedAt.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		byDay[day]++
	}

	buckets := make([]DayCount, 0, len(byDay))
	for day, count := range byDay {
		buckets = append(buckets, DayCount{Date: day, Count: count})
	}
	slices.SortFunc(buckets, func(a, b DayCount) int {
		return a.Date.Compare(b.Date)
	})
	return buckets
}

// BucketClicksByMonth groups clicks by UTC month start and, within each
// month, by the clicked element. Months without clicks produce no bucket.
func BucketClicksByMonth(clicks []domain.Click) []ClickBucket {
	byMonth := make(map[time.Time]map[string]int)
	for _, c := range clicks {
		t := c.CreatedAt.UTC()
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		if byMonth[month] == nil {
			byMonth[month] = make(map[string]int)
		}
		byMonth[month][c.Element]++
	}

	buckets := make([]ClickBucket, 0, len(byMonth))
	for month, elements := range byMonth {
		buckets = append(buckets, ClickBucket{Date: month, Elements: elements})
	}
	slices.SortFunc(buckets, func(a, b ClickBucket) int {
		return a.Date.Compare(b.Date)
	})
	return buckets
}

// PercentChange compares a metric against its previous value.
// The magnitude is |current-previous|/previous*100; a zero baseline
// reports 0% so a first month never shows an infinite jump.
func PercentChange(previous, current int) Delta {
	trend := TrendSame
	switch {
	case current > previous:
		trend = TrendMore
	case current < previous:
		trend = TrendLess
	}

	if previous == 0 {
		return Delta{Percent: 0, Trend: trend}
	}

	pct := math.Abs(float64(current)-float64(previous)) / float64(previous) * 100
	return Delta{Percent: pct, Trend: trend}
}

// Revenue estimates ad earnings for a number of views. Trees with ads
// disabled earn nothing.
func Revenue(views int, adsEnabled bool) float64 {
	if !adsEnabled {
		return 0
	}
	return float64(views) * RevenuePerView
}
