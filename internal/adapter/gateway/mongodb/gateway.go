// internal/adapter/gateway/mongodb/gateway.go
// Package mongodb serves the named gateway operations from MongoDB.
package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	listingsCollection  = "listings"
	favoritesCollection = "favorites"
	usersCollection     = "users"

	maxPageSize = 100
)

// Gateway implements domain.Gateway on top of a Mongo database.
type Gateway struct {
	listings  *mongo.Collection
	favorites *mongo.Collection
	users     *mongo.Collection
	logger    *logger.Logger
	now       func() time.Time
}

func NewGateway(db *mongo.Database, log *logger.Logger) *Gateway {
	return &Gateway{
		listings:  db.Collection(listingsCollection),
		favorites: db.Collection(favoritesCollection),
		users:     db.Collection(usersCollection),
		logger:    log,
		now:       time.Now,
	}
}

// EnsureIndexes creates the lookup indexes and the (user, listing) uniqueness
// constraint on favorites.
func (g *Gateway) EnsureIndexes(ctx context.Context) error {
	_, err := g.listings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "is_available", Value: 1}, {Key: "is_active", Value: 1}, {Key: "city", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create listing indexes: %w", err)
	}
	_, err = g.favorites.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "listing_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create favorite indexes: %w", err)
	}
	g.logger.Info("Gateway.EnsureIndexes: indexes ensured")
	return nil
}

// operationError is reported in the envelope rather than as a transport failure.
type operationError struct {
	kind string
	msg  string
}

func (e *operationError) Error() string { return e.kind + ": " + e.msg }

func invalid(format string, args ...any) error {
	return &operationError{kind: "ValidationError", msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &operationError{kind: "NotFound", msg: fmt.Sprintf(format, args...)}
}

type connection[T any] struct {
	Items     []T    `json:"items"`
	NextToken string `json:"nextToken,omitempty"`
}

type listVariables struct {
	Filter    map[string]any `json:"filter"`
	Limit     int            `json:"limit"`
	NextToken string         `json:"nextToken"`
}

type idInput struct {
	ID string `json:"id"`
}

func (g *Gateway) Execute(ctx context.Context, op string, vars map[string]any) (*domain.Envelope, error) {
	raw, err := json.Marshal(vars)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s variables: %v", domain.ErrGateway, op, err)
	}

	var data any
	switch op {
	case domain.OpCreateListing:
		data, err = g.createListing(ctx, raw)
	case domain.OpUpdateListing:
		data, err = g.updateListing(ctx, raw)
	case domain.OpDeleteListing:
		data, err = g.deleteListing(ctx, raw)
	case domain.OpGetListing:
		data, err = g.getListing(ctx, raw)
	case domain.OpListListings:
		data, err = g.listListings(ctx, raw)
	case domain.OpCreateFavorite:
		data, err = g.createFavorite(ctx, raw)
	case domain.OpDeleteFavorite:
		data, err = g.deleteFavorite(ctx, raw)
	case domain.OpListFavorites:
		data, err = g.listFavorites(ctx, raw)
	default:
		err = &operationError{kind: "UnknownOperation", msg: fmt.Sprintf("operation %q is not supported", op)}
	}

	if err != nil {
		var opErr *operationError
		if errors.As(err, &opErr) {
			g.logger.Info("Gateway.Execute: operation rejected",
				zap.String("operation", op), zap.String("error_type", opErr.kind), zap.String("message", opErr.msg))
			return &domain.Envelope{Errors: domain.GatewayErrors{{
				Message:   opErr.msg,
				ErrorType: opErr.kind,
				Path:      []string{op},
			}}}, nil
		}
		g.logger.Error("Gateway.Execute: operation failed", zap.String("operation", op), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s result: %v", domain.ErrGateway, op, err)
	}
	return &domain.Envelope{Data: body}, nil
}

func decode[T any](raw []byte, key string) (T, error) {
	var wrapper map[string]json.RawMessage
	var out T
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return out, invalid("malformed variables: %v", err)
	}
	field, ok := wrapper[key]
	if !ok {
		return out, invalid("variable %q is required", key)
	}
	if err := json.Unmarshal(field, &out); err != nil {
		return out, invalid("variable %q: %v", key, err)
	}
	return out, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, invalid("invalid id %q", id)
	}
	return objID, nil
}

func (g *Gateway) createListing(ctx context.Context, raw []byte) (*domain.Listing, error) {
	in, err := decode[domain.CreateInput](raw, "input")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, invalid("ownerId is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalid("title is required")
	}

	doc := toListingDocument(in, g.now().UTC())
	res, err := g.listings.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID) // _id is omitempty, the driver generates it
	g.logger.Info("Gateway.createListing: listing inserted",
		zap.String("listing_id", doc.ID.Hex()), zap.String("owner_id", doc.OwnerID))
	return toDomainListing(doc), nil
}

func (g *Gateway) updateListing(ctx context.Context, raw []byte) (*domain.Listing, error) {
	in, err := decode[domain.UpdateInput](raw, "input")
	if err != nil {
		return nil, err
	}
	objID, err := parseID(in.ID)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc listingDocument
	err = g.listings.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": updateSet(in, g.now().UTC())}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("listing %s not found", in.ID)
		}
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return toDomainListing(&doc), nil
}

func (g *Gateway) deleteListing(ctx context.Context, raw []byte) (*domain.Listing, error) {
	in, err := decode[idInput](raw, "input")
	if err != nil {
		return nil, err
	}
	objID, err := parseID(in.ID)
	if err != nil {
		return nil, err
	}

	var doc listingDocument
	if err := g.listings.FindOneAndDelete(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("listing %s not found", in.ID)
		}
		return nil, fmt.Errorf("delete listing: %w", err)
	}
	return toDomainListing(&doc), nil
}

// getListing returns null data when the listing does not exist.
func (g *Gateway) getListing(ctx context.Context, raw []byte) (*domain.Listing, error) {
	id, err := decode[string](raw, "id")
	if err != nil {
		return nil, err
	}
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil // a malformed id cannot match anything: data is null
	}

	var doc listingDocument
	if err := g.listings.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find listing: %w", err)
	}

	listing := toDomainListing(&doc)
	// Owner sub-record from the user service's collection; a failed join
	// still returns the listing.
	owner, err := g.owner(ctx, doc.OwnerID)
	if err != nil {
		g.logger.Warn("Gateway.getListing: owner lookup failed", zap.String("owner_id", doc.OwnerID), zap.Error(err))
	}
	listing.Owner = owner
	return listing, nil
}

// owner returns nil when the owner id is not a user document.
func (g *Gateway) owner(ctx context.Context, ownerID string) (*domain.Owner, error) {
	objID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, nil
	}
	var doc ownerDocument
	if err := g.users.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainOwner(&doc), nil
}

func (g *Gateway) listListings(ctx context.Context, raw []byte) (connection[*domain.Listing], error) {
	docs, next, err := findPage(ctx, g.listings, raw, func(d *listingDocument) primitive.ObjectID { return d.ID })
	if err != nil {
		return connection[*domain.Listing]{}, err
	}
	return connection[*domain.Listing]{Items: toDomainListings(docs), NextToken: next}, nil
}

// createFavorite is idempotent per (user, listing): a second create returns
// the existing record.
func (g *Gateway) createFavorite(ctx context.Context, raw []byte) (*domain.Favorite, error) {
	type favoriteInput struct {
		UserID    string `json:"userId"`
		ListingID string `json:"listingId"`
	}
	in, err := decode[favoriteInput](raw, "input")
	if err != nil {
		return nil, err
	}
	if in.UserID == "" || in.ListingID == "" {
		return nil, invalid("userId and listingId are required")
	}

	key := bson.M{"user_id": in.UserID, "listing_id": in.ListingID}
	update := bson.M{"$setOnInsert": bson.M{
		"user_id":    in.UserID,
		"listing_id": in.ListingID,
		"created_at": g.now().UTC(),
	}}
	if _, err := g.favorites.UpdateOne(ctx, key, update, options.Update().SetUpsert(true)); err != nil {
		// Two concurrent upserts can both miss and insert; the unique index
		// rejects the second, which then reads the winner below.
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("upsert favorite: %w", err)
		}
	}

	var doc favoriteDocument
	if err := g.favorites.FindOne(ctx, key).Decode(&doc); err != nil {
		return nil, fmt.Errorf("read favorite: %w", err)
	}
	return toDomainFavorite(&doc), nil
}

func (g *Gateway) deleteFavorite(ctx context.Context, raw []byte) (*domain.Favorite, error) {
	in, err := decode[idInput](raw, "input")
	if err != nil {
		return nil, err
	}
	objID, err := parseID(in.ID)
	if err != nil {
		return nil, err
	}

	var doc favoriteDocument
	if err := g.favorites.FindOneAndDelete(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("favorite %s not found", in.ID)
		}
		return nil, fmt.Errorf("delete favorite: %w", err)
	}
	return toDomainFavorite(&doc), nil
}

func (g *Gateway) listFavorites(ctx context.Context, raw []byte) (connection[*domain.Favorite], error) {
	docs, next, err := findPage(ctx, g.favorites, raw, func(d *favoriteDocument) primitive.ObjectID { return d.ID })
	if err != nil {
		return connection[*domain.Favorite]{}, err
	}
	return connection[*domain.Favorite]{Items: toDomainFavorites(docs), NextToken: next}, nil
}

// findPage reads one _id-ordered batch. The next token is the last _id of
// the batch and is only set when another record follows it.
func findPage[D any](ctx context.Context, coll *mongo.Collection, raw []byte, idOf func(*D) primitive.ObjectID) ([]*D, string, error) {
	var vars listVariables
	if err := json.Unmarshal(raw, &vars); err != nil {
		return nil, "", invalid("malformed variables: %v", err)
	}
	filter, err := translate(vars.Filter)
	if err != nil {
		return nil, "", invalid("filter: %v", err)
	}
	if vars.NextToken != "" {
		after, err := primitive.ObjectIDFromHex(vars.NextToken)
		if err != nil {
			return nil, "", invalid("invalid nextToken")
		}
		filter = bson.M{"$and": []bson.M{filter, {"_id": bson.M{"$gt": after}}}} // resume after the last returned record
	}

	limit := vars.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	// One extra record tells whether another page follows.
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit + 1))

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, "", fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []*D{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", coll.Name(), err)
	}

	next := ""
	if len(docs) > limit {
		docs = docs[:limit]
		next = idOf(docs[limit-1]).Hex()
	}
	return docs, next, nil
}
