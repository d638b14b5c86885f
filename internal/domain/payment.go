package domain

import "time"

// Payment links a creator to an ad revenue payout account. Its presence
// is what turns the dashboard's revenue call-to-action into a number.
type Payment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Provider   string    `json:"provider"`
	ExternalID string    `json:"externalId"`
	CreatedAt  time.Time `json:"createdAt"`
}
