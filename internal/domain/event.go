package domain

import "time"

// View records one impression of a public tree page.
// DedupKey is a caller-scoped idempotency key; two views carrying the
// same key for the same tree count once.
type View struct {
	ID         string    `json:"id"`
	TreeID     string    `json:"treeId"`
	DedupKey   string    `json:"-"`
	Country    string    `json:"country,omitempty"`
	Region     string    `json:"region,omitempty"`
	City       string    `json:"city,omitempty"`
	AdsBlocked bool      `json:"adsBlocked"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Click records one outbound click on a tree link. Element carries the
// platform name of the clicked link so analytics can rank destinations.
type Click struct {
	ID        string    `json:"id"`
	TreeID    string    `json:"treeId"`
	Element   string    `json:"element"`
	CreatedAt time.Time `json:"createdAt"`
}
