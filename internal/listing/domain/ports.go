package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Named gateway operations issued by this package.
const (
	OpCreateListing  = "createListing"
	OpUpdateListing  = "updateListing"
	OpDeleteListing  = "deleteListing"
	OpGetListing     = "getListing"
	OpListListings   = "listListings"
	OpCreateFavorite = "createFavorite"
	OpDeleteFavorite = "deleteFavorite"
	OpListFavorites  = "listFavorites"
)

// Envelope is the gateway's result-or-errors response.
type Envelope struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors GatewayErrors   `json:"errors,omitempty"`
}

// Gateway is the remote data gateway transport. A non-nil error means the
// call itself failed; operation-level failures arrive in Envelope.Errors.
type Gateway interface {
	Execute(ctx context.Context, operation string, variables map[string]any) (*Envelope, error)
}

// Locator addresses a stored object.
type Locator struct {
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
}

type ObjectStorage interface {
	Put(ctx context.Context, path string, data []byte, contentType string, metadata map[string]string) (Locator, error)
	Copy(ctx context.Context, srcPath, dstPath string) error
	// Delete reports whether an object was removed. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// AssetState is a step of the image lifecycle.
type AssetState string

const (
	AssetUploaded   AssetState = "uploaded"
	AssetPromoted   AssetState = "promoted"
	AssetReferenced AssetState = "referenced"
	AssetDeleted    AssetState = "deleted"
)

// AssetLedger remembers where each stored image is in its lifecycle so that
// assets stuck between steps can be found and swept.
type AssetLedger interface {
	Record(ctx context.Context, path string, state AssetState) error
	// State returns "" for paths the ledger has never seen.
	State(ctx context.Context, path string) (AssetState, error)
	Stale(ctx context.Context, state AssetState, before time.Time) ([]string, error)
}

// Event subjects.
const (
	SubjectListingCreated  = "listing.created"
	SubjectListingUpdated  = "listing.updated"
	SubjectListingDeleted  = "listing.deleted"
	SubjectFavoriteAdded   = "favorite.added"
	SubjectFavoriteRemoved = "favorite.removed"
)

type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Session identifies the acting user. It is passed explicitly to every
// operation that needs an identity.
type Session struct {
	UserID string
	Token  string
}

func (s Session) RequireUser() (string, error) {
	if s.UserID == "" {
		return "", ErrAuthenticationRequired
	}
	return s.UserID, nil
}
