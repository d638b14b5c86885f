package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/folllow/folllow-server/internal/domain"
)

func TestPayments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "user-1", "a@example.com")
	createTestUser(t, s, "user-2", "b@example.com")

	base := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	err := s.CreatePayment(ctx, &domain.Payment{
		ID:         "pay-1",
		UserID:     "user-1",
		Provider:   "stripe",
		ExternalID: "acct_123",
		CreatedAt:  base,
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	err = s.CreatePayment(ctx, &domain.Payment{
		ID:        "pay-2",
		UserID:    "user-1",
		Provider:  "paypal",
		CreatedAt: base.AddDate(0, 0, 1),
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	payments, err := s.ListPaymentsByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}
	// Newest first.
	if payments[0].ID != "pay-2" || payments[1].ID != "pay-1" {
		t.Errorf("unexpected order: %s, %s", payments[0].ID, payments[1].ID)
	}
	if payments[1].Provider != "stripe" || payments[1].ExternalID != "acct_123" {
		t.Errorf("payment fields did not round-trip: %+v", payments[1])
	}
	if !payments[1].CreatedAt.Equal(base) {
		t.Errorf("created_at = %v", payments[1].CreatedAt)
	}

	others, err := s.ListPaymentsByUser(ctx, "user-2")
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(others) != 0 {
		t.Errorf("expected no payments for user-2, got %d", len(others))
	}
}
