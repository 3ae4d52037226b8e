package domain

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort keys understood by the client-side comparator.
const (
	SortByPrice         = "price"
	SortByTitle         = "title"
	SortByCity          = "city"
	SortByCreatedAt     = "createdAt"
	SortByAvailableFrom = "availableFrom"
	SortByBedrooms      = "bedrooms"
)

// Filter holds optional search criteria. Zero values mean "not set".
type Filter struct {
	City          string
	RoomType      string // UI or canonical token
	MinPrice      *float64
	MaxPrice      *float64
	Gender        string // UI or canonical token
	Religion      string
	PetFriendly   *bool
	Amenities     []string
	Query         string
	AvailableFrom string // YYYY-MM-DD
	SortBy        string
	SortOrder     SortOrder
	Limit         int
	NextToken     string
}
