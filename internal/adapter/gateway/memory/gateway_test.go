package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(pageSize int) (*query.Engine, *Gateway) {
	g := NewGateway()
	n := 0
	g.newID = func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}
	return query.NewEngine(g, pageSize), g
}

func input(title, city string, price float64, active bool) domain.CreateInput {
	return domain.CreateInput{
		OwnerID:          "owner-1",
		Title:            title,
		City:             city,
		Price:            price,
		GenderPreference: domain.GenderAny,
		IsAvailable:      active,
		IsActive:         active,
	}
}

func TestGateway_CreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(10)

	created, err := engine.CreateListing(ctx, input("Room", "Penang", 500, true))
	require.NoError(t, err)
	assert.Equal(t, "id-01", created.ID)

	price := 550.0
	images := []string{"a.png", "b.png"}
	idx := 1
	updated, err := engine.UpdateListing(ctx, domain.UpdateInput{ID: created.ID, Price: &price, Images: &images, MainImageIndex: &idx})
	require.NoError(t, err)
	assert.Equal(t, 550.0, updated.Price)
	assert.Equal(t, "Room", updated.Title, "absent fields are kept")
	assert.Equal(t, images, updated.Images)
	assert.Equal(t, 1, updated.MainImageIndex)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := engine.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Images, got.Images)

	require.NoError(t, engine.DeleteListing(ctx, created.ID))
	_, err = engine.GetListing(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestGateway_UpdateMissingListing(t *testing.T) {
	engine, _ := newTestEngine(10)
	title := "x"

	_, err := engine.UpdateListing(context.Background(), domain.UpdateInput{ID: "nope", Title: &title})

	var batch domain.GatewayErrors
	require.ErrorAs(t, err, &batch)
	first, _ := batch.First()
	assert.Equal(t, "NotFound", first.ErrorType)
	assert.Equal(t, []string{domain.OpUpdateListing}, first.Path)
}

func TestGateway_SearchFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(2)

	for i, l := range []domain.CreateInput{
		input("A", "Penang", 300, true),
		input("Draft", "Penang", 300, false),
		input("B", "Penang", 900, true),
		input("C", "Ipoh", 400, true),
		input("D", "Penang", 450, true),
		input("E", "Penang", 500, true),
	} {
		_, err := engine.CreateListing(ctx, l)
		require.NoError(t, err, "listing %d", i)
	}

	maxPrice := 600.0
	f := domain.Filter{City: "Penang", MaxPrice: &maxPrice}

	first, err := engine.Search(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "D"}, titles(first.Items))
	require.NotEmpty(t, first.NextToken)

	f.NextToken = first.NextToken
	second, err := engine.Search(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"E"}, titles(second.Items))
	assert.Empty(t, second.NextToken)

	owned, err := engine.ListByOwner(ctx, "owner-1", domain.Filter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, owned.Items, 6)
}

func TestGateway_FavoritesAreUniquePerPair(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(10)

	a, err := engine.CreateFavorite(ctx, "user-1", "listing-1")
	require.NoError(t, err)
	b, err := engine.CreateFavorite(ctx, "user-1", "listing-1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	page, err := engine.FindFavorites(ctx, "user-1", "listing-1", 0, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	require.NoError(t, engine.DeleteFavorite(ctx, a.ID))
	err = engine.DeleteFavorite(ctx, a.ID)
	var batch domain.GatewayErrors
	assert.ErrorAs(t, err, &batch)
}

func TestGateway_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	engine, g := newTestEngine(10)
	_, err := engine.CreateListing(ctx, input("A", "Penang", 300, true))
	require.NoError(t, err)

	env, err := g.Execute(ctx, "unknownOp", nil)
	require.NoError(t, err)
	first, _ := env.Errors.First()
	assert.Equal(t, "UnknownOperation", first.ErrorType)

	env, err = g.Execute(ctx, domain.OpListListings, map[string]any{"filter": query.Predicate{"price": map[string]any{"regex": "x"}}})
	require.NoError(t, err)
	first, _ = env.Errors.First()
	assert.Equal(t, "ValidationError", first.ErrorType)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = g.Execute(cancelled, domain.OpGetListing, map[string]any{"id": "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func titles(ls []*domain.Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Title
	}
	return out
}
