package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/folllow/folllow-server/internal/domain"
	"github.com/folllow/folllow-server/internal/store"
)

const accountColumns = `id, user_id, provider, provider_account_id, created_at`

func scanAccount(scanner interface{ Scan(dest ...any) error }) (*domain.Account, error) {
	var a domain.Account
	var createdAt string

	err := scanner.Scan(
		&a.ID,
		&a.UserID,
		&a.Provider,
		&a.ProviderAccountID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAccount links a user to an external sign-in provider.
// Returns store.ErrAlreadyExists if the provider account is already linked.
func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, provider, provider_account_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		account.ID,
		account.UserID,
		account.Provider,
		account.ProviderAccountID,
		formatTime(account.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithMessage("account already linked")
		}
		return err
	}
	return nil
}

// GetAccountByProvider looks up an account by provider and the provider's
// own account identifier. Returns store.ErrNotFound if no link exists.
func (s *Store) GetAccountByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		WHERE provider = ? AND provider_account_id = ?`,
		provider, providerAccountID)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("account not found")
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccountsByUser returns every provider link for a user, oldest first.
func (s *Store) ListAccountsByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
