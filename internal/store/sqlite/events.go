package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/folllow/folllow-server/internal/domain"
)

// InsertView records a page impression. When the view carries a dedup
// key that was already seen for the same tree, the insert is dropped
// and counted=false is returned.
func (s *Store) InsertView(ctx context.Context, view *domain.View) (counted bool, err error) {
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO views (id, tree_id, dedup_key, country, region, city, ads_blocked, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		view.ID,
		view.TreeID,
		view.DedupKey,
		view.Country,
		view.Region,
		view.City,
		boolToInt(view.AdsBlocked),
		formatTime(view.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// InsertClick records an outbound link click.
func (s *Store) InsertClick(ctx context.Context, click *domain.Click) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clicks (id, tree_id, element, created_at)
		VALUES (?, ?, ?, ?)`,
		click.ID,
		click.TreeID,
		click.Element,
		formatTime(click.CreatedAt),
	)
	return err
}

// ListViewsSince returns every view for a tree recorded at or after
// since, oldest first.
func (s *Store) ListViewsSince(ctx context.Context, treeID string, since time.Time) ([]domain.View, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tree_id, country, region, city, ads_blocked, created_at
		FROM views WHERE tree_id = ? AND created_at >= ?
		ORDER BY created_at ASC`,
		treeID, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []domain.View
	for rows.Next() {
		var v domain.View
		var adsBlocked int
		var createdAt string
		if err := rows.Scan(&v.ID, &v.TreeID, &v.Country, &v.Region, &v.City, &adsBlocked, &createdAt); err != nil {
			return nil, err
		}
		v.AdsBlocked = adsBlocked != 0
		v.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// ListClicksSince returns every click for a tree recorded at or after
// since, oldest first.
func (s *Store) ListClicksSince(ctx context.Context, treeID string, since time.Time) ([]domain.Click, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tree_id, element, created_at
		FROM clicks WHERE tree_id = ? AND created_at >= ?
		ORDER BY created_at ASC`,
		treeID, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clicks []domain.Click
	for rows.Next() {
		var c domain.Click
		var createdAt string
		if err := rows.Scan(&c.ID, &c.TreeID, &c.Element, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}

// CountViewsBetween counts views for a tree in [from, to).
func (s *Store) CountViewsBetween(ctx context.Context, treeID string, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM views
		WHERE tree_id = ? AND created_at >= ? AND created_at < ?`,
		treeID, formatTime(from), formatTime(to)).Scan(&n)
	return n, err
}

// CountClicksBetween counts clicks for a tree in [from, to).
func (s *Store) CountClicksBetween(ctx context.Context, treeID string, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM clicks
		WHERE tree_id = ? AND created_at >= ? AND created_at < ?`,
		treeID, formatTime(from), formatTime(to)).Scan(&n)
	return n, err
}

// CountViews counts every view ever recorded for a tree.
func (s *Store) CountViews(ctx context.Context, treeID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM views WHERE tree_id = ?`, treeID).Scan(&n)
	return n, err
}
