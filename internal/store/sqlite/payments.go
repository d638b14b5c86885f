package sqlite

import (
	"context"

	"github.com/folllow/folllow-server/internal/domain"
)

// CreatePayment links a creator to a payout account.
func (s *Store) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, user_id, provider, external_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		payment.ID,
		payment.UserID,
		payment.Provider,
		payment.ExternalID,
		formatTime(payment.CreatedAt),
	)
	return err
}

// ListPaymentsByUser returns a user's payout accounts, newest first.
func (s *Store) ListPaymentsByUser(ctx context.Context, userID string) ([]*domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, provider, external_id, created_at
		FROM payments WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var p domain.Payment
		var createdAt string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Provider, &p.ExternalID, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}
