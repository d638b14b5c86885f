package domain

import "time"

// User is an authenticated creator.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Account links a user to an external sign-in provider. A user can have
// several accounts; the one used for the current session is reported by
// the account endpoint.
type Account struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Provider          string    `json:"provider"`
	ProviderAccountID string    `json:"providerAccountId"`
	CreatedAt         time.Time `json:"createdAt"`
}
