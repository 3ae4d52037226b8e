package domain

// ImageFile is a raw file handle attached to a draft.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f ImageFile) Size() int64 { return int64(len(f.Data)) }

// ListingForm is the UI draft. It is never persisted directly.
type ListingForm struct {
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
	Bedrooms           int
	Bathrooms          int
	AvailableFrom      string
	AvailableTo        string
	SmokingAllowed     bool
	PetsAllowed        bool
	VisitorsAllowed    bool
	GenderPreference   string
	ReligionPreference string

	// UI groups merged into Listing.Amenities.
	Amenities       []string
	Security        []string
	Kitchen         []string
	ExtraFacilities []string

	NearbyFacilities []string
	Utilities        []string
	Rules            []string
	Deposit          float64
	NoticePeriod     int // 0 means unset

	Images         []ImageFile
	MainImageIndex int
	IsDraft        bool
}

// ListingFormPatch carries only the fields the user changed.
type ListingFormPatch struct {
	Title              *string
	Description        *string
	Price              *float64
	Currency           *string
	RoomType           *string
	PropertyType       *string
	Address            *string
	City               *string
	State              *string
	Location           *string
	Furnishing         *string
	Bedrooms           *int
	Bathrooms          *int
	AvailableFrom      *string
	AvailableTo        *string
	SmokingAllowed     *bool
	PetsAllowed        *bool
	VisitorsAllowed    *bool
	GenderPreference   *string
	ReligionPreference *string

	Amenities       *[]string
	Security        *[]string
	Kitchen         *[]string
	ExtraFacilities *[]string

	NearbyFacilities *[]string
	Utilities        *[]string
	Rules            *[]string
	Deposit          *float64
	NoticePeriod     *int
	IsAvailable      *bool
	IsActive         *bool

	// RetainedImages lists the existing locators to keep, in order. Nil keeps
	// the current set. NewImages are appended after the retained ones.
	RetainedImages *[]string
	NewImages      []ImageFile
	MainImageIndex *int
}

// TouchesImages reports whether applying the patch changes the image set.
func (p *ListingFormPatch) TouchesImages() bool {
	return p.RetainedImages != nil || len(p.NewImages) > 0
}
