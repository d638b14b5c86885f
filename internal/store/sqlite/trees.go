package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/folllow/folllow-server/internal/domain"
	"github.com/folllow/folllow-server/internal/store"
)

// treeColumns is the ordered list of columns selected in tree queries.
// Must match the scan order in scanTree.
const treeColumns = `id, user_id, slug, bio, theme, image_key, ads_enabled, created_at, updated_at`

// scanTree scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tree.
// Links are loaded separately.
func scanTree(scanner interface{ Scan(dest ...any) error }) (*domain.Tree, error) {
	var t domain.Tree

	var (
		theme      string
		imageKey   sql.NullString
		adsEnabled int
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&t.ID,
		&t.UserID,
		&t.Slug,
		&t.Bio,
		&theme,
		&imageKey,
		&adsEnabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Theme = domain.Theme(theme)
	if imageKey.Valid {
		t.ImageKey = imageKey.String
	}
	t.AdsEnabled = adsEnabled != 0

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// loadLinks fetches a tree's links in display order.
func (s *Store) loadLinks(ctx context.Context, treeID string) ([]domain.Link, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tree_id, position, media, url FROM links
		WHERE tree_id = ? ORDER BY position ASC`, treeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		var l domain.Link
		var media string
		if err := rows.Scan(&l.ID, &l.TreeID, &l.Position, &media, &l.URL); err != nil {
			return nil, err
		}
		l.Media = domain.SocialMedia(media)
		links = append(links, l)
	}
	return links, rows.Err()
}

// insertLinks writes a tree's links inside an existing transaction.
func insertLinks(ctx context.Context, tx *sql.Tx, treeID string, links []domain.Link) error {
	for _, l := range links {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO links (id, tree_id, position, media, url)
			VALUES (?, ?, ?, ?, ?)`,
			l.ID, treeID, l.Position, string(l.Media), l.URL)
		if err != nil {
			return fmt.Errorf("insert link %s: %w", l.ID, err)
		}
	}
	return nil
}

// CreateTree inserts a new tree and its links.
// Returns store.ErrAlreadyExists if the slug is taken or the user
// already owns a tree.
func (s *Store) CreateTree(ctx context.Context, tree *domain.Tree) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trees (id, user_id, slug, bio, theme, image_key, ads_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tree.ID,
		tree.UserID,
		tree.Slug,
		tree.Bio,
		string(tree.Theme),
		nullString(tree.ImageKey),
		boolToInt(tree.AdsEnabled),
		formatTime(tree.CreatedAt),
		formatTime(tree.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithMessage("slug already taken")
		}
		return err
	}

	if err := insertLinks(ctx, tx, tree.ID, tree.Links); err != nil {
		return err
	}

	return tx.Commit()
}

// GetTree retrieves a tree by ID, links included.
func (s *Store) GetTree(ctx context.Context, id string) (*domain.Tree, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+treeColumns+` FROM trees WHERE id = ?`, id)
	return s.finishTree(ctx, row)
}

// GetTreeBySlug retrieves a tree by its slug (case-insensitive), links included.
func (s *Store) GetTreeBySlug(ctx context.Context, slug string) (*domain.Tree, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+treeColumns+` FROM trees WHERE slug = ?`, slug)
	return s.finishTree(ctx, row)
}

// GetTreeByUserID retrieves the tree owned by a user, links included.
func (s *Store) GetTreeByUserID(ctx context.Context, userID string) (*domain.Tree, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+treeColumns+` FROM trees WHERE user_id = ?`, userID)
	return s.finishTree(ctx, row)
}

func (s *Store) finishTree(ctx context.Context, row *sql.Row) (*domain.Tree, error) {
	tree, err := scanTree(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("tree not found")
	}
	if err != nil {
		return nil, err
	}

	tree.Links, err = s.loadLinks(ctx, tree.ID)
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// SlugExists reports whether a slug is already taken (case-insensitive).
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM trees WHERE slug = ?`, slug).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReplaceTree overwrites a tree's editable fields and its full link set.
// The stored link order is exactly the positions carried by tree.Links.
// Returns store.ErrNotFound if the tree does not exist.
func (s *Store) ReplaceTree(ctx context.Context, tree *domain.Tree) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE trees SET bio = ?, theme = ?, image_key = ?, ads_enabled = ?, updated_at = ?
		WHERE id = ?`,
		tree.Bio,
		string(tree.Theme),
		nullString(tree.ImageKey),
		boolToInt(tree.AdsEnabled),
		formatTime(tree.UpdatedAt),
		tree.ID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound.WithMessage("tree not found")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE tree_id = ?`, tree.ID); err != nil {
		return err
	}
	if err := insertLinks(ctx, tx, tree.ID, tree.Links); err != nil {
		return err
	}

	return tx.Commit()
}
