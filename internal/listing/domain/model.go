package domain

import "time"

const DefaultCurrency = "MYR"

// Listing is the canonical remote record.
type Listing struct {
	ID                 string           `json:"id"`
	OwnerID            string           `json:"ownerId"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Price              float64          `json:"price"`
	Currency           string           `json:"currency"`
	RoomType           RoomType         `json:"roomType"`
	PropertyType       PropertyType     `json:"propertyType"`
	Address            string           `json:"address"`
	City               string           `json:"city"`
	State              string           `json:"state"`
	Location           string           `json:"location"`
	Furnishing         Furnishing       `json:"furnishing"`
	Bedrooms           int              `json:"bedrooms"`
	Bathrooms          int              `json:"bathrooms"`
	AvailableFrom      string           `json:"availableFrom"`
	AvailableTo        string           `json:"availableTo,omitempty"`
	SmokingAllowed     bool             `json:"smokingAllowed"`
	PetsAllowed        bool             `json:"petsAllowed"`
	VisitorsAllowed    bool             `json:"visitorsAllowed"`
	GenderPreference   GenderPreference `json:"genderPreference"`
	ReligionPreference string           `json:"religionPreference,omitempty"`
	Images             []string         `json:"images"`
	MainImageIndex     int              `json:"mainImageIndex"`
	Amenities          []string         `json:"amenities"`
	NearbyFacilities   []string         `json:"nearbyFacilities"`
	Utilities          []string         `json:"utilities"`
	Rules              []string         `json:"rules"`
	Deposit            float64          `json:"deposit"`
	NoticePeriod       int              `json:"noticePeriod"`
	IsAvailable        bool             `json:"isAvailable"`
	IsActive           bool             `json:"isActive"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
	Owner              *Owner           `json:"owner,omitempty"`
}

// Owner is the denormalized owner sub-record some gateway selections include.
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CreateInput is the variables record for the createListing operation.
type CreateInput struct {
	OwnerID            string           `json:"ownerId"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Price              float64          `json:"price"`
	Currency           string           `json:"currency"`
	RoomType           RoomType         `json:"roomType"`
	PropertyType       PropertyType     `json:"propertyType"`
	Address            string           `json:"address"`
	City               string           `json:"city"`
	State              string           `json:"state"`
	Location           string           `json:"location"`
	Furnishing         Furnishing       `json:"furnishing"`
	Bedrooms           int              `json:"bedrooms"`
	Bathrooms          int              `json:"bathrooms"`
	AvailableFrom      string           `json:"availableFrom"`
	AvailableTo        string           `json:"availableTo,omitempty"`
	SmokingAllowed     bool             `json:"smokingAllowed"`
	PetsAllowed        bool             `json:"petsAllowed"`
	VisitorsAllowed    bool             `json:"visitorsAllowed"`
	GenderPreference   GenderPreference `json:"genderPreference"`
	ReligionPreference string           `json:"religionPreference,omitempty"`
	Images             []string         `json:"images"`
	MainImageIndex     int              `json:"mainImageIndex"`
	Amenities          []string         `json:"amenities"`
	NearbyFacilities   []string         `json:"nearbyFacilities"`
	Utilities          []string         `json:"utilities"`
	Rules              []string         `json:"rules"`
	Deposit            float64          `json:"deposit"`
	NoticePeriod       int              `json:"noticePeriod"`
	IsAvailable        bool             `json:"isAvailable"`
	IsActive           bool             `json:"isActive"`
}

// UpdateInput is the variables record for updateListing. Nil fields are not sent.
type UpdateInput struct {
	ID                 string            `json:"id"`
	Title              *string           `json:"title,omitempty"`
	Description        *string           `json:"description,omitempty"`
	Price              *float64          `json:"price,omitempty"`
	Currency           *string           `json:"currency,omitempty"`
	RoomType           *RoomType         `json:"roomType,omitempty"`
	PropertyType       *PropertyType     `json:"propertyType,omitempty"`
	Address            *string           `json:"address,omitempty"`
	City               *string           `json:"city,omitempty"`
	State              *string           `json:"state,omitempty"`
	Location           *string           `json:"location,omitempty"`
	Furnishing         *Furnishing       `json:"furnishing,omitempty"`
	Bedrooms           *int              `json:"bedrooms,omitempty"`
	Bathrooms          *int              `json:"bathrooms,omitempty"`
	AvailableFrom      *string           `json:"availableFrom,omitempty"`
	AvailableTo        *string           `json:"availableTo,omitempty"`
	SmokingAllowed     *bool             `json:"smokingAllowed,omitempty"`
	PetsAllowed        *bool             `json:"petsAllowed,omitempty"`
	VisitorsAllowed    *bool             `json:"visitorsAllowed,omitempty"`
	GenderPreference   *GenderPreference `json:"genderPreference,omitempty"`
	ReligionPreference *string           `json:"religionPreference,omitempty"`
	Images             *[]string         `json:"images,omitempty"`
	MainImageIndex     *int              `json:"mainImageIndex,omitempty"`
	Amenities          *[]string         `json:"amenities,omitempty"`
	NearbyFacilities   *[]string         `json:"nearbyFacilities,omitempty"`
	Utilities          *[]string         `json:"utilities,omitempty"`
	Rules              *[]string         `json:"rules,omitempty"`
	Deposit            *float64          `json:"deposit,omitempty"`
	NoticePeriod       *int              `json:"noticePeriod,omitempty"`
	IsAvailable        *bool             `json:"isAvailable,omitempty"`
	IsActive           *bool             `json:"isActive,omitempty"`
}

// DisplayListing is what the UI renders. Enumerations use UI spellings.
type DisplayListing struct {
	ID                 string
	OwnerID            string
	Title              string
	Description        string
	Price              float64
	Currency           string
	RoomType           string
	PropertyType       string
	Address            string
	City               string
	State              string
	Location           string
	Furnishing         string
	Furnished          bool
	Bedrooms           int
	Bathrooms          int
	AvailableFrom      string
	AvailableTo        string
	SmokingAllowed     bool
	PetsAllowed        bool
	VisitorsAllowed    bool
	GenderPreference   string
	ReligionPreference string
	Images             []string
	ImageURLs          []string
	MainImageIndex     int
	Amenities          []string
	NearbyFacilities   []string
	Utilities          []string
	Rules              []string
	Deposit            float64
	NoticePeriod       int
	IsAvailable        bool
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Owner              *Owner
}

type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ListingID string    `json:"listingId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Page is one batch of a cursor-paginated list. BatchSize is the number of
// records the gateway returned, before any client-side filtering; it is not
// a total.
type Page[T any] struct {
	Items     []T
	NextToken string
	BatchSize int
}

// ValidMainImageIndex returns idx when it points into a list of n images, 0 otherwise.
func ValidMainImageIndex(idx, n int) int {
	if idx < 0 || idx >= n {
		return 0
	}
	return idx
}
