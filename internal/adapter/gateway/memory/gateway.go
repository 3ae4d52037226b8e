// Package memory serves the named gateway operations from process memory.
// It backs local runs and end-to-end tests of the listing flows.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/query"
	"github.com/google/uuid"
)

const maxPageSize = 100

type Gateway struct {
	mu        sync.RWMutex
	listings  []*domain.Listing
	favorites []*domain.Favorite
	now       func() time.Time
	newID     func() string
}

func NewGateway() *Gateway {
	return &Gateway{now: time.Now, newID: uuid.NewString}
}

type listVariables struct {
	Filter    query.Predicate `json:"filter"`
	Limit     int             `json:"limit"`
	NextToken string          `json:"nextToken"`
}

type connection[T any] struct {
	Items     []T    `json:"items"`
	NextToken string `json:"nextToken,omitempty"`
}

func (g *Gateway) Execute(ctx context.Context, op string, vars map[string]any) (*domain.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(vars)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s variables: %v", domain.ErrGateway, op, err)
	}

	var (
		data  any
		opErr *domain.GatewayError
	)
	switch op {
	case domain.OpCreateListing:
		data, opErr = g.createListing(raw)
	case domain.OpUpdateListing:
		data, opErr = g.updateListing(raw)
	case domain.OpDeleteListing:
		data, opErr = g.deleteListing(raw)
	case domain.OpGetListing:
		data, opErr = g.getListing(raw)
	case domain.OpListListings:
		data, opErr = list(raw, g.listingsSnapshot(), func(l *domain.Listing) string { return l.ID })
	case domain.OpCreateFavorite:
		data, opErr = g.createFavorite(raw)
	case domain.OpDeleteFavorite:
		data, opErr = g.deleteFavorite(raw)
	case domain.OpListFavorites:
		data, opErr = list(raw, g.favoritesSnapshot(), func(f *domain.Favorite) string { return f.ID })
	default:
		opErr = &domain.GatewayError{ErrorType: "UnknownOperation", Message: fmt.Sprintf("operation %q is not supported", op)}
	}
	if opErr != nil {
		opErr.Path = []string{op}
		return &domain.Envelope{Errors: domain.GatewayErrors{*opErr}}, nil
	}

	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s result: %v", domain.ErrGateway, op, err)
	}
	return &domain.Envelope{Data: body}, nil
}

func invalid(format string, args ...any) *domain.GatewayError {
	return &domain.GatewayError{ErrorType: "ValidationError", Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) *domain.GatewayError {
	return &domain.GatewayError{ErrorType: "NotFound", Message: fmt.Sprintf(format, args...)}
}

func variable(raw []byte, key string) (json.RawMessage, *domain.GatewayError) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, invalid("malformed variables: %v", err)
	}
	v, ok := wrapper[key]
	if !ok {
		return nil, invalid("variable %q is required", key)
	}
	return v, nil
}

func decode[T any](raw []byte, key string) (T, *domain.GatewayError) {
	var out T
	v, opErr := variable(raw, key)
	if opErr != nil {
		return out, opErr
	}
	if err := json.Unmarshal(v, &out); err != nil {
		return out, invalid("variable %q: %v", key, err)
	}
	return out, nil
}

func (g *Gateway) createListing(raw []byte) (*domain.Listing, *domain.GatewayError) {
	input, opErr := variable(raw, "input")
	if opErr != nil {
		return nil, opErr
	}
	var l domain.Listing
	if err := json.Unmarshal(input, &l); err != nil {
		return nil, invalid("input: %v", err)
	}
	if l.OwnerID == "" {
		return nil, invalid("ownerId is required")
	}
	if l.Title == "" {
		return nil, invalid("title is required")
	}

	now := g.now().UTC()
	l.ID = g.newID()
	l.CreatedAt, l.UpdatedAt = now, now
	l.Owner = nil

	g.mu.Lock()
	defer g.mu.Unlock()
	g.listings = append(g.listings, &l)
	return clone(&l), nil
}

// updateListing overlays the fields present in the input onto the stored record.
func (g *Gateway) updateListing(raw []byte) (*domain.Listing, *domain.GatewayError) {
	input, opErr := variable(raw, "input")
	if opErr != nil {
		return nil, opErr
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(input, &fields); err != nil {
		return nil, invalid("input: %v", err)
	}
	var id string
	if err := json.Unmarshal(fields["id"], &id); err != nil || id == "" {
		return nil, invalid("id is required")
	}
	delete(fields, "id")

	g.mu.Lock()
	defer g.mu.Unlock()
	i := slices.IndexFunc(g.listings, func(l *domain.Listing) bool { return l.ID == id })
	if i < 0 {
		return nil, notFound("listing %s not found", id)
	}

	current, err := json.Marshal(g.listings[i])
	if err != nil {
		return nil, invalid("encode listing: %v", err)
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(current, &merged); err != nil {
		return nil, invalid("decode listing: %v", err)
	}
	for k, v := range fields {
		merged[k] = v
	}
	body, err := json.Marshal(merged)
	if err != nil {
		return nil, invalid("encode update: %v", err)
	}
	var next domain.Listing
	if err := json.Unmarshal(body, &next); err != nil {
		return nil, invalid("input: %v", err)
	}
	next.ID = id
	next.CreatedAt = g.listings[i].CreatedAt
	next.UpdatedAt = g.now().UTC()

	g.listings[i] = &next
	return clone(&next), nil
}

func (g *Gateway) deleteListing(raw []byte) (*domain.Listing, *domain.GatewayError) {
	in, opErr := decode[struct {
		ID string `json:"id"`
	}](raw, "input")
	if opErr != nil {
		return nil, opErr
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	i := slices.IndexFunc(g.listings, func(l *domain.Listing) bool { return l.ID == in.ID })
	if i < 0 {
		return nil, notFound("listing %s not found", in.ID)
	}
	removed := g.listings[i]
	g.listings = slices.Delete(g.listings, i, i+1)
	return removed, nil
}

// getListing returns null data when the listing does not exist.
func (g *Gateway) getListing(raw []byte) (*domain.Listing, *domain.GatewayError) {
	id, opErr := decode[string](raw, "id")
	if opErr != nil {
		return nil, opErr
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, l := range g.listings {
		if l.ID == id {
			return clone(l), nil
		}
	}
	return nil, nil
}

// createFavorite returns the existing record when the pair is already stored.
func (g *Gateway) createFavorite(raw []byte) (*domain.Favorite, *domain.GatewayError) {
	in, opErr := decode[struct {
		UserID    string `json:"userId"`
		ListingID string `json:"listingId"`
	}](raw, "input")
	if opErr != nil {
		return nil, opErr
	}
	if in.UserID == "" || in.ListingID == "" {
		return nil, invalid("userId and listingId are required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for _, f := range g.favorites {
		if f.UserID == in.UserID && f.ListingID == in.ListingID {
			cp := *f
			return &cp, nil
		}
	}
	f := &domain.Favorite{ID: g.newID(), UserID: in.UserID, ListingID: in.ListingID, CreatedAt: g.now().UTC()}
	g.favorites = append(g.favorites, f)
	cp := *f
	return &cp, nil
}

func (g *Gateway) deleteFavorite(raw []byte) (*domain.Favorite, *domain.GatewayError) {
	in, opErr := decode[struct {
		ID string `json:"id"`
	}](raw, "input")
	if opErr != nil {
		return nil, opErr
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	i := slices.IndexFunc(g.favorites, func(f *domain.Favorite) bool { return f.ID == in.ID })
	if i < 0 {
		return nil, notFound("favorite %s not found", in.ID)
	}
	removed := g.favorites[i]
	g.favorites = slices.Delete(g.favorites, i, i+1)
	return removed, nil
}

func (g *Gateway) listingsSnapshot() []*domain.Listing {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*domain.Listing, len(g.listings))
	for i, l := range g.listings {
		out[i] = clone(l)
	}
	return out
}

func (g *Gateway) favoritesSnapshot() []*domain.Favorite {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*domain.Favorite, len(g.favorites))
	for i, f := range g.favorites {
		cp := *f
		out[i] = &cp
	}
	return out
}

// list returns the records after the cursor that match the filter, in
// insertion order. The next token is the id of the last returned record.
func list[T any](raw []byte, records []T, idOf func(T) string) (connection[T], *domain.GatewayError) {
	var vars listVariables
	if err := json.Unmarshal(raw, &vars); err != nil {
		return connection[T]{}, invalid("malformed variables: %v", err)
	}
	limit := vars.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	start := 0
	if vars.NextToken != "" {
		i := slices.IndexFunc(records, func(r T) bool { return idOf(r) == vars.NextToken })
		if i < 0 {
			return connection[T]{}, invalid("invalid nextToken")
		}
		start = i + 1
	}

	out := connection[T]{Items: []T{}}
	for _, r := range records[start:] {
		ok, err := vars.Filter.Match(r)
		if err != nil {
			return connection[T]{}, invalid("filter: %v", err)
		}
		if !ok {
			continue
		}
		if len(out.Items) == limit {
			out.NextToken = idOf(out.Items[limit-1])
			break
		}
		out.Items = append(out.Items, r)
	}
	return out, nil
}

func clone(l *domain.Listing) *domain.Listing {
	cp := *l
	cp.Images = slices.Clone(l.Images)
	cp.Amenities = slices.Clone(l.Amenities)
	cp.NearbyFacilities = slices.Clone(l.NearbyFacilities)
	cp.Utilities = slices.Clone(l.Utilities)
	cp.Rules = slices.Clone(l.Rules)
	return &cp
}
