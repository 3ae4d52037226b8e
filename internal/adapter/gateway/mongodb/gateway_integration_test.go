//go:build integration

package mongodb

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/query"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var testDBClient *mongo.Client

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "5.0",
		Env: []string{
			"MONGO_INITDB_ROOT_USERNAME=root",
			"MONGO_INITDB_ROOT_PASSWORD=password",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start MongoDB resource: %s", err)
	}
	uri := fmt.Sprintf("mongodb://root:password@%s/?authSource=admin", resource.GetHostPort("27017/tcp"))

	if err := pool.Retry(func() error {
		testDBClient, err = mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		return testDBClient.Ping(context.Background(), nil)
	}); err != nil {
		log.Fatalf("Could not connect to MongoDB: %s", err)
	}

	code := m.Run()

	if err := testDBClient.Disconnect(context.Background()); err != nil {
		log.Printf("Could not disconnect MongoDB client: %s", err)
	}
	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge MongoDB resource: %s", err)
	}
	os.Exit(code)
}

func newTestEngine(t *testing.T) (*query.Engine, *mongo.Database) {
	t.Helper()
	db := testDBClient.Database(fmt.Sprintf("rental_%d", os.Getpid()))
	t.Cleanup(func() { _ = db.Drop(context.Background()) })
	require.NoError(t, db.Drop(context.Background()))

	g := NewGateway(db, logger.NewNop())
	require.NoError(t, g.EnsureIndexes(context.Background()))
	return query.NewEngine(g, 2), db
}

func sampleInput(owner, title, city string, price float64) domain.CreateInput {
	return domain.CreateInput{
		OwnerID:          owner,
		Title:            title,
		Price:            price,
		Currency:         domain.DefaultCurrency,
		RoomType:         domain.RoomSingle,
		City:             city,
		AvailableFrom:    "2026-05-01",
		GenderPreference: domain.GenderAny,
		Amenities:        []string{"WiFi"},
		IsAvailable:      true,
		IsActive:         true,
	}
}

func TestGateway_ListingLifecycle(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	created, err := engine.CreateListing(ctx, sampleInput("owner-1", "Cozy room", "Penang", 500))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, []string{}, created.Images)

	got, err := engine.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cozy room", got.Title)
	assert.Nil(t, got.Owner)

	title := "Cozy room near LRT"
	images := []string{"public/listing-images/owner-1/x/a.png"}
	updated, err := engine.UpdateListing(ctx, domain.UpdateInput{ID: created.ID, Title: &title, Images: &images})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, images, updated.Images)
	assert.Equal(t, 500.0, updated.Price)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	require.NoError(t, engine.DeleteListing(ctx, created.ID))
	_, err = engine.GetListing(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	err = engine.DeleteListing(ctx, created.ID)
	var batch domain.GatewayErrors
	require.ErrorAs(t, err, &batch)
	first, ok := batch.First()
	require.True(t, ok)
	assert.Equal(t, "NotFound", first.ErrorType)
}

func TestGateway_GetListingIncludesOwner(t *testing.T) {
	ctx := context.Background()
	engine, db := newTestEngine(t)

	res, err := db.Collection(usersCollection).InsertOne(ctx, bson.M{"username": "aina", "email": "aina@example.com"})
	require.NoError(t, err)
	ownerID := res.InsertedID.(primitive.ObjectID).Hex()

	created, err := engine.CreateListing(ctx, sampleInput(ownerID, "Studio", "Ipoh", 400))
	require.NoError(t, err)

	got, err := engine.GetListing(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "aina", got.Owner.Name)
	assert.Equal(t, "aina@example.com", got.Owner.Email)
}

func TestGateway_SearchPaginatesWithCursor(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	for i, price := range []float64{300, 450, 600, 900} {
		_, err := engine.CreateListing(ctx, sampleInput("owner-1", fmt.Sprintf("Room %d", i), "Penang", price))
		require.NoError(t, err)
	}
	hidden := sampleInput("owner-1", "Draft", "Penang", 350)
	hidden.IsActive = false
	_, err := engine.CreateListing(ctx, hidden)
	require.NoError(t, err)

	maxPrice := 700.0
	f := domain.Filter{City: "Penang", MaxPrice: &maxPrice}

	var titles []string
	for {
		page, err := engine.Search(ctx, f)
		require.NoError(t, err)
		for _, l := range page.Items {
			titles = append(titles, l.Title)
		}
		if page.NextToken == "" {
			break
		}
		f.NextToken = page.NextToken
	}
	assert.ElementsMatch(t, []string{"Room 0", "Room 1", "Room 2"}, titles)

	owned, err := engine.ListByOwner(ctx, "owner-1", domain.Filter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, owned.Items, 5)
	assert.Empty(t, owned.NextToken)
}

func TestGateway_Favorites(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	first, err := engine.CreateFavorite(ctx, "user-1", "listing-1")
	require.NoError(t, err)
	again, err := engine.CreateFavorite(ctx, "user-1", "listing-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = engine.CreateFavorite(ctx, "user-1", "listing-2")
	require.NoError(t, err)

	page, err := engine.FindFavorites(ctx, "user-1", "listing-1", 0, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	all, err := engine.FindFavorites(ctx, "user-1", "", 10, "")
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	require.NoError(t, engine.DeleteFavorite(ctx, first.ID))
	page, err = engine.FindFavorites(ctx, "user-1", "listing-1", 0, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestGateway_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	_, err := engine.CreateListing(ctx, domain.CreateInput{OwnerID: "owner-1"})

	var batch domain.GatewayErrors
	require.ErrorAs(t, err, &batch)
	first, _ := batch.First()
	assert.Equal(t, "ValidationError", first.ErrorType)
}
