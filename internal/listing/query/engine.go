// Package query issues listing and favorite operations against the remote
// gateway and finishes on the client what the gateway cannot express.
package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
)

const DefaultPageSize = 20

type Engine struct {
	gateway  domain.Gateway
	pageSize int
}

func NewEngine(gateway domain.Gateway, pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{gateway: gateway, pageSize: pageSize}
}

type listingConnection struct {
	Items     []*domain.Listing `json:"items"`
	NextToken string            `json:"nextToken,omitempty"`
}

type favoriteConnection struct {
	Items     []*domain.Favorite `json:"items"`
	NextToken string             `json:"nextToken,omitempty"`
}

func (e *Engine) CreateListing(ctx context.Context, in domain.CreateInput) (*domain.Listing, error) {
	var out domain.Listing
	if err := e.exec(ctx, domain.OpCreateListing, map[string]any{"input": in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *Engine) UpdateListing(ctx context.Context, in domain.UpdateInput) (*domain.Listing, error) {
	var out domain.Listing
	if err := e.exec(ctx, domain.OpUpdateListing, map[string]any{"input": in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *Engine) DeleteListing(ctx context.Context, id string) error {
	return e.exec(ctx, domain.OpDeleteListing, map[string]any{"input": map[string]any{"id": id}}, nil)
}

func (e *Engine) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	var out *domain.Listing
	if err := e.exec(ctx, domain.OpGetListing, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrListingNotFound, id)
	}
	return out, nil
}

// Search runs a filtered search. The gateway returns at most Limit records;
// residual filters can shrink the batch further, so Items may be shorter
// than BatchSize even when more results exist behind NextToken.
func (e *Engine) Search(ctx context.Context, f domain.Filter) (domain.Page[*domain.Listing], error) {
	return e.list(ctx, SearchPredicate(f), f)
}

// ListByOwner lists one owner's listings, drafts included.
func (e *Engine) ListByOwner(ctx context.Context, ownerID string, f domain.Filter) (domain.Page[*domain.Listing], error) {
	return e.list(ctx, OwnerPredicate(ownerID), f)
}

func (e *Engine) list(ctx context.Context, pred Predicate, f domain.Filter) (domain.Page[*domain.Listing], error) {
	var conn listingConnection
	if err := e.exec(ctx, domain.OpListListings, e.listVariables(pred, f.Limit, f.NextToken), &conn); err != nil {
		return domain.Page[*domain.Listing]{}, err
	}

	items := ApplyResidual(conn.Items, f)
	SortListings(items, f.SortBy, f.SortOrder)

	return domain.Page[*domain.Listing]{
		Items:     items,
		NextToken: conn.NextToken,
		BatchSize: len(conn.Items),
	}, nil
}

func (e *Engine) CreateFavorite(ctx context.Context, userID, listingID string) (*domain.Favorite, error) {
	in := map[string]any{"userId": userID, "listingId": listingID}
	var out domain.Favorite
	if err := e.exec(ctx, domain.OpCreateFavorite, map[string]any{"input": in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *Engine) DeleteFavorite(ctx context.Context, id string) error {
	return e.exec(ctx, domain.OpDeleteFavorite, map[string]any{"input": map[string]any{"id": id}}, nil)
}

// FindFavorites lists favorites of userID, narrowed to listingID when set.
func (e *Engine) FindFavorites(ctx context.Context, userID, listingID string, limit int, nextToken string) (domain.Page[*domain.Favorite], error) {
	var conn favoriteConnection
	vars := e.listVariables(FavoritePredicate(userID, listingID), limit, nextToken)
	if err := e.exec(ctx, domain.OpListFavorites, vars, &conn); err != nil {
		return domain.Page[*domain.Favorite]{}, err
	}
	return domain.Page[*domain.Favorite]{
		Items:     conn.Items,
		NextToken: conn.NextToken,
		BatchSize: len(conn.Items),
	}, nil
}

func (e *Engine) listVariables(pred Predicate, limit int, nextToken string) map[string]any {
	if limit <= 0 {
		limit = e.pageSize
	}
	vars := map[string]any{"filter": pred, "limit": limit}
	if nextToken != "" {
		vars["nextToken"] = nextToken
	}
	return vars
}

// exec runs one named operation and decodes its data into out (when non-nil).
// Gateway error batches are returned as domain.GatewayErrors.
func (e *Engine) exec(ctx context.Context, op string, vars map[string]any, out any) error {
	env, err := e.gateway.Execute(ctx, op, vars)
	if err != nil {
		return fmt.Errorf("execute %s: %w", op, err)
	}
	if env == nil {
		return fmt.Errorf("execute %s: %w: empty response", op, domain.ErrGateway)
	}
	if len(env.Errors) > 0 {
		return fmt.Errorf("execute %s: %w", op, env.Errors)
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		if op == domain.OpGetListing {
			return nil
		}
		return fmt.Errorf("execute %s: %w: no data returned", op, domain.ErrGateway)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s response: %w: %v", op, domain.ErrGateway, err)
	}
	return nil
}
