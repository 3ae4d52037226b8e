// internal/adapter/gateway/mongodb/models.go
package mongodb

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listingDocument is the stored shape of a listing. Enumerations are kept as
// their canonical tokens.
type listingDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID            string             `bson:"owner_id"`
	Title              string             `bson:"title"`
	Description        string             `bson:"description"`
	Price              float64            `bson:"price"`
	Currency           string             `bson:"currency"`
	RoomType           string             `bson:"room_type"`
	PropertyType       string             `bson:"property_type"`
	Address            string             `bson:"address"`
	City               string             `bson:"city"`
	State              string             `bson:"state"`
	Location           string             `bson:"location"`
	Furnishing         string             `bson:"furnishing"`
	Bedrooms           int                `bson:"bedrooms"`
	Bathrooms          int                `bson:"bathrooms"`
	AvailableFrom      string             `bson:"available_from"`
	AvailableTo        string             `bson:"available_to,omitempty"`
	SmokingAllowed     bool               `bson:"smoking_allowed"`
	PetsAllowed        bool               `bson:"pets_allowed"`
	VisitorsAllowed    bool               `bson:"visitors_allowed"`
	GenderPreference   string             `bson:"gender_preference"`
	ReligionPreference string             `bson:"religion_preference,omitempty"`
	Images             []string           `bson:"images"`
	MainImageIndex     int                `bson:"main_image_index"`
	Amenities          []string           `bson:"amenities"`
	NearbyFacilities   []string           `bson:"nearby_facilities"`
	Utilities          []string           `bson:"utilities"`
	Rules              []string           `bson:"rules"`
	Deposit            float64            `bson:"deposit"`
	NoticePeriod       int                `bson:"notice_period"`
	IsAvailable        bool               `bson:"is_available"`
	IsActive           bool               `bson:"is_active"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

type favoriteDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	ListingID string             `bson:"listing_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

// ownerDocument reads the few user fields the owner sub-record needs.
type ownerDocument struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"username"`
	Email string             `bson:"email"`
	Phone string             `bson:"phone_number"`
}

// fieldNames maps the gateway's record field names to document keys.
var fieldNames = map[string]string{
	"id":                 "_id",
	"ownerId":            "owner_id",
	"title":              "title",
	"description":        "description",
	"price":              "price",
	"currency":           "currency",
	"roomType":           "room_type",
	"propertyType":       "property_type",
	"address":            "address",
	"city":               "city",
	"state":              "state",
	"location":           "location",
	"furnishing":         "furnishing",
	"bedrooms":           "bedrooms",
	"bathrooms":          "bathrooms",
	"availableFrom":      "available_from",
	"availableTo":        "available_to",
	"smokingAllowed":     "smoking_allowed",
	"petsAllowed":        "pets_allowed",
	"visitorsAllowed":    "visitors_allowed",
	"genderPreference":   "gender_preference",
	"religionPreference": "religion_preference",
	"images":             "images",
	"mainImageIndex":     "main_image_index",
	"amenities":          "amenities",
	"nearbyFacilities":   "nearby_facilities",
	"utilities":          "utilities",
	"rules":              "rules",
	"deposit":            "deposit",
	"noticePeriod":       "notice_period",
	"isAvailable":        "is_available",
	"isActive":           "is_active",
	"createdAt":          "created_at",
	"updatedAt":          "updated_at",
	"userId":             "user_id",
	"listingId":          "listing_id",
}

// arrayFields hold string lists; contains on them is element membership.
var arrayFields = map[string]bool{
	"images":            true,
	"amenities":         true,
	"nearby_facilities": true,
	"utilities":         true,
	"rules":             true,
}

func toListingDocument(in domain.CreateInput, now time.Time) *listingDocument {
	return &listingDocument{
		OwnerID:            in.OwnerID,
		Title:              in.Title,
		Description:        in.Description,
		Price:              in.Price,
		Currency:           in.Currency,
		RoomType:           string(in.RoomType),
		PropertyType:       string(in.PropertyType),
		Address:            in.Address,
		City:               in.City,
		State:              in.State,
		Location:           in.Location,
		Furnishing:         string(in.Furnishing),
		Bedrooms:           in.Bedrooms,
		Bathrooms:          in.Bathrooms,
		AvailableFrom:      in.AvailableFrom,
		AvailableTo:        in.AvailableTo,
		SmokingAllowed:     in.SmokingAllowed,
		PetsAllowed:        in.PetsAllowed,
		VisitorsAllowed:    in.VisitorsAllowed,
		GenderPreference:   string(in.GenderPreference),
		ReligionPreference: in.ReligionPreference,
		Images:             nonNil(in.Images), // stored as [] rather than null
		MainImageIndex:     in.MainImageIndex,
		Amenities:          nonNil(in.Amenities),
		NearbyFacilities:   nonNil(in.NearbyFacilities),
		Utilities:          nonNil(in.Utilities),
		Rules:              nonNil(in.Rules),
		Deposit:            in.Deposit,
		NoticePeriod:       in.NoticePeriod,
		IsAvailable:        in.IsAvailable,
		IsActive:           in.IsActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func toDomainListing(doc *listingDocument) *domain.Listing {
	if doc == nil {
		return nil
	}
	return &domain.Listing{
		ID:                 doc.ID.Hex(),
		OwnerID:            doc.OwnerID,
		Title:              doc.Title,
		Description:        doc.Description,
		Price:              doc.Price,
		Currency:           doc.Currency,
		RoomType:           domain.RoomType(doc.RoomType),
		PropertyType:       domain.PropertyType(doc.PropertyType),
		Address:            doc.Address,
		City:               doc.City,
		State:              doc.State,
		Location:           doc.Location,
		Furnishing:         domain.Furnishing(doc.Furnishing),
		Bedrooms:           doc.Bedrooms,
		Bathrooms:          doc.Bathrooms,
		AvailableFrom:      doc.AvailableFrom,
		AvailableTo:        doc.AvailableTo,
		SmokingAllowed:     doc.SmokingAllowed,
		PetsAllowed:        doc.PetsAllowed,
		VisitorsAllowed:    doc.VisitorsAllowed,
		GenderPreference:   domain.GenderPreference(doc.GenderPreference),
		ReligionPreference: doc.ReligionPreference,
		Images:             doc.Images,
		MainImageIndex:     doc.MainImageIndex,
		Amenities:          doc.Amenities,
		NearbyFacilities:   doc.NearbyFacilities,
		Utilities:          doc.Utilities,
		Rules:              doc.Rules,
		Deposit:            doc.Deposit,
		NoticePeriod:       doc.NoticePeriod,
		IsAvailable:        doc.IsAvailable,
		IsActive:           doc.IsActive,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, len(docs))
	for i, d := range docs {
		out[i] = toDomainListing(d)
	}
	return out
}

func toDomainFavorite(doc *favoriteDocument) *domain.Favorite {
	if doc == nil {
		return nil
	}
	return &domain.Favorite{
		ID:        doc.ID.Hex(),
		UserID:    doc.UserID,
		ListingID: doc.ListingID,
		CreatedAt: doc.CreatedAt,
	}
}

func toDomainFavorites(docs []*favoriteDocument) []*domain.Favorite {
	out := make([]*domain.Favorite, len(docs))
	for i, d := range docs {
		out[i] = toDomainFavorite(d)
	}
	return out
}

func toDomainOwner(doc *ownerDocument) *domain.Owner {
	return &domain.Owner{ID: doc.ID.Hex(), Name: doc.Name, Email: doc.Email, Phone: doc.Phone}
}

// updateSet builds the $set document for the fields present in the input.
func updateSet(in domain.UpdateInput, now time.Time) bson.M {
	set := bson.M{"updated_at": now} // always bumped, even for an empty patch
	setIf(set, "title", in.Title)
	setIf(set, "description", in.Description)
	setIf(set, "price", in.Price)
	setIf(set, "currency", in.Currency)
	setIf(set, "room_type", in.RoomType)
	setIf(set, "property_type", in.PropertyType)
	setIf(set, "address", in.Address)
	setIf(set, "city", in.City)
	setIf(set, "state", in.State)
	setIf(set, "location", in.Location)
	setIf(set, "furnishing", in.Furnishing)
	setIf(set, "bedrooms", in.Bedrooms)
	setIf(set, "bathrooms", in.Bathrooms)
	setIf(set, "available_from", in.AvailableFrom)
	setIf(set, "available_to", in.AvailableTo)
	setIf(set, "smoking_allowed", in.SmokingAllowed)
	setIf(set, "pets_allowed", in.PetsAllowed)
	setIf(set, "visitors_allowed", in.VisitorsAllowed)
	setIf(set, "gender_preference", in.GenderPreference)
	setIf(set, "religion_preference", in.ReligionPreference)
	setIf(set, "images", in.Images)
	setIf(set, "main_image_index", in.MainImageIndex)
	setIf(set, "amenities", in.Amenities)
	setIf(set, "nearby_facilities", in.NearbyFacilities)
	setIf(set, "utilities", in.Utilities)
	setIf(set, "rules", in.Rules)
	setIf(set, "deposit", in.Deposit)
	setIf(set, "notice_period", in.NoticePeriod)
	setIf(set, "is_available", in.IsAvailable)
	setIf(set, "is_active", in.IsActive)
	return set
}

func setIf[T any](set bson.M, key string, v *T) {
	if v != nil {
		set[key] = *v
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
