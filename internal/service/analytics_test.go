package service

import (
	"math"
	"testing"
	"time"

	"github.com/folllow/folllow-server/internal/domain"
)

func TestBucketViewsByDay(t *testing.T) {
	views := []domain.View{
		{ID: "v1", CreatedAt: time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)},
		{ID: "v2", CreatedAt: time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC)},
		{ID: "v3", CreatedAt: time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)},
		// 01:30 CEST is 23:30 UTC the previous day.
		{ID: "v4", CreatedAt: time.Date(2026, 3, 11, 1, 30, 0, 0, time.FixedZone("CEST", 2*3600))},
	}

	buckets := BucketViewsByDay(views)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 day buckets, got %d: %+v", len(buckets), buckets)
	}

	day10 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	day11 := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	if !buckets[0].Date.Equal(day10) || buckets[0].Count != 2 {
		t.Errorf("unexpected first bucket: %+v", buckets[0])
	}
	if !buckets[1].Date.Equal(day11) || buckets[1].Count != 2 {
		t.Errorf("unexpected second bucket: %+v", buckets[1])
	}
}

func TestBucketViewsByDay_Empty(t *testing.T) {
	if got := BucketViewsByDay(nil); len(got) != 0 {
		t.Errorf("expected no buckets, got %+v", got)
	}
}

func TestBucketClicksByMonth(t *testing.T) {
	clicks := []domain.Click{
		{Element: "github", CreatedAt: time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC)},
		{Element: "github", CreatedAt: time.Date(2026, 3, 1, 0, 5, 0, 0, time.UTC)},
		{Element: "twitter", CreatedAt: time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)},
		{Element: "github", CreatedAt: time.Date(2026, 3, 25, 10, 0, 0, 0, time.UTC)},
	}

	buckets := BucketClicksByMonth(clicks)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 month buckets, got %d: %+v", len(buckets), buckets)
	}

	feb := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if !buckets[0].Date.Equal(feb) || buckets[0].Elements["github"] != 1 {
		t.Errorf("unexpected february bucket: %+v", buckets[0])
	}
	if !buckets[1].Date.Equal(mar) {
		t.Errorf("expected march bucket, got %+v", buckets[1])
	}
	if buckets[1].Elements["github"] != 2 || buckets[1].Elements["twitter"] != 1 {
		t.Errorf("unexpected march elements: %+v", buckets[1].Elements)
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name        string
		previous    int
		current     int
		wantPercent float64
		wantTrend   string
	}{
		{"growth", 100, 150, 50, TrendMore},
		{"decline", 100, 75, 25, TrendLess},
		{"flat", 40, 40, 0, TrendSame},
		{"zero baseline growth", 0, 50, 0, TrendMore},
		{"zero baseline flat", 0, 0, 0, TrendSame},
		{"to zero", 80, 0, 100, TrendLess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentChange(tt.previous, tt.current)
			if math.Abs(got.Percent-tt.wantPercent) > 1e-9 {
				t.Errorf("percent = %v, want %v", got.Percent, tt.wantPercent)
			}
			if got.Trend != tt.wantTrend {
				t.Errorf("trend = %q, want %q", got.Trend, tt.wantTrend)
			}
		})
	}
}

func TestRevenue(t *testing.T) {
	got := Revenue(1000, true)
	if math.Abs(got-104.04) > 1e-9 {
		t.Errorf("revenue = %v, want 104.04", got)
	}

	if got := Revenue(1000, false); got != 0 {
		t.Errorf("expected no revenue with ads disabled, got %v", got)
	}
}
