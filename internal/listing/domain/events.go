package domain

import "time"

// ListingEvent is published on the listing.* subjects.
type ListingEvent struct {
	ListingID  string    `json:"listingId"`
	OwnerID    string    `json:"ownerId"`
	Title      string    `json:"title,omitempty"`
	IsActive   bool      `json:"isActive"`
	OccurredAt time.Time `json:"occurredAt"`
}

// FavoriteEvent is published on the favorite.* subjects.
type FavoriteEvent struct {
	UserID     string    `json:"userId"`
	ListingID  string    `json:"listingId"`
	OccurredAt time.Time `json:"occurredAt"`
}
