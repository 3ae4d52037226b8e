package transform

import (
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedTransformer() *Transformer {
	tr := New(0)
	tr.Now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return tr
}

func sampleDraft() *domain.ListingForm {
	return &domain.ListingForm{
		Title:              "Bright room near LRT",
		Description:        "Walking distance to the station",
		Price:              850,
		Currency:           "MYR",
		RoomType:           "single-room",
		PropertyType:       "independent-house",
		Address:            "12 Jalan Ampang",
		City:               "Kuala Lumpur",
		State:              "WP",
		Location:           "Ampang",
		Furnishing:         "semi-furnished",
		Bedrooms:           3,
		Bathrooms:          2,
		AvailableFrom:      "2026-04-01",
		AvailableTo:        "2027-04-01",
		SmokingAllowed:     false,
		PetsAllowed:        true,
		VisitorsAllowed:    true,
		GenderPreference:   "no-preference",
		ReligionPreference: "any",
		Amenities:          []string{"wifi", "aircon"},
		Security:           []string{"cctv", "guard"},
		Kitchen:            []string{"fridge"},
		ExtraFacilities:    []string{"pool", "wifi"},
		NearbyFacilities:   []string{"mall"},
		Utilities:          []string{"water"},
		Rules:              []string{"no parties"},
		Deposit:            1700,
		NoticePeriod:       60,
		MainImageIndex:     1,
	}
}

func TestToCreateInput_MapsEnumsAndMergesAmenities(t *testing.T) {
	in := fixedTransformer().ToCreateInput(sampleDraft(), "owner-1", []string{"a.jpg", "b.jpg"})

	assert.Equal(t, "owner-1", in.OwnerID)
	assert.Equal(t, domain.RoomSingle, in.RoomType)
	assert.Equal(t, domain.PropertyIndependentHouse, in.PropertyType)
	assert.Equal(t, domain.FurnishingSemi, in.Furnishing)
	assert.Equal(t, domain.GenderAny, in.GenderPreference)
	assert.Equal(t, []string{"wifi", "aircon", "cctv", "guard", "fridge", "pool"}, in.Amenities)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, in.Images)
	assert.Equal(t, 1, in.MainImageIndex)
	assert.Equal(t, 60, in.NoticePeriod)
	assert.True(t, in.IsAvailable)
	assert.True(t, in.IsActive)
}

func TestToCreateInput_UnknownTokensPassThrough(t *testing.T) {
	draft := sampleDraft()
	draft.RoomType = "loft-bed"
	draft.PropertyType = "houseboat"

	in := fixedTransformer().ToCreateInput(draft, "owner-1", nil)

	assert.Equal(t, domain.RoomType("loft-bed"), in.RoomType)
	assert.Equal(t, domain.PropertyType("houseboat"), in.PropertyType)
}

func TestToCreateInput_Defaults(t *testing.T) {
	draft := &domain.ListingForm{Title: "Bare", IsDraft: true, MainImageIndex: 4}

	in := fixedTransformer().ToCreateInput(draft, "owner-1", nil)

	assert.Equal(t, "2026-03-14", in.AvailableFrom)
	assert.Equal(t, DefaultNoticePeriod, in.NoticePeriod)
	assert.Equal(t, domain.DefaultCurrency, in.Currency)
	assert.False(t, in.IsAvailable)
	assert.False(t, in.IsActive)
	assert.NotNil(t, in.Images)
	assert.Empty(t, in.Images)
	assert.Equal(t, 0, in.MainImageIndex)
	assert.NotNil(t, in.Amenities)
}

func TestToCreateInput_MainImageIndexStaysInRange(t *testing.T) {
	draft := sampleDraft()
	draft.MainImageIndex = 5

	in := fixedTransformer().ToCreateInput(draft, "owner-1", []string{"a", "b"})

	assert.Equal(t, 0, in.MainImageIndex)
}

func TestRoundTrip_LosslessFields(t *testing.T) {
	draft := sampleDraft()
	locators := []string{"p/a.jpg", "p/b.jpg"}

	in := fixedTransformer().ToCreateInput(draft, "owner-1", locators)
	out := FromRemote(ToListing("listing-1", in))

	require.NotNil(t, out)
	assert.Equal(t, "listing-1", out.ID)
	assert.Equal(t, "owner-1", out.OwnerID)
	assert.Equal(t, draft.Title, out.Title)
	assert.Equal(t, draft.Description, out.Description)
	assert.Equal(t, draft.Price, out.Price)
	assert.Equal(t, draft.Currency, out.Currency)
	assert.Equal(t, draft.RoomType, out.RoomType)
	assert.Equal(t, draft.PropertyType, out.PropertyType)
	assert.Equal(t, draft.Furnishing, out.Furnishing)
	assert.Equal(t, draft.GenderPreference, out.GenderPreference)
	assert.Equal(t, draft.Address, out.Address)
	assert.Equal(t, draft.City, out.City)
	assert.Equal(t, draft.State, out.State)
	assert.Equal(t, draft.Location, out.Location)
	assert.Equal(t, draft.Bedrooms, out.Bedrooms)
	assert.Equal(t, draft.Bathrooms, out.Bathrooms)
	assert.Equal(t, draft.AvailableFrom, out.AvailableFrom)
	assert.Equal(t, draft.AvailableTo, out.AvailableTo)
	assert.Equal(t, draft.SmokingAllowed, out.SmokingAllowed)
	assert.Equal(t, draft.PetsAllowed, out.PetsAllowed)
	assert.Equal(t, draft.VisitorsAllowed, out.VisitorsAllowed)
	assert.Equal(t, draft.ReligionPreference, out.ReligionPreference)
	assert.Equal(t, draft.NearbyFacilities, out.NearbyFacilities)
	assert.Equal(t, draft.Utilities, out.Utilities)
	assert.Equal(t, draft.Rules, out.Rules)
	assert.Equal(t, draft.Deposit, out.Deposit)
	assert.Equal(t, draft.NoticePeriod, out.NoticePeriod)
	assert.Equal(t, locators, out.Images)
	assert.Equal(t, draft.MainImageIndex, out.MainImageIndex)
}

func TestRoundTrip_CanonicalGenderSpellings(t *testing.T) {
	for _, token := range []string{"male", "female"} {
		draft := sampleDraft()
		draft.GenderPreference = token
		in := fixedTransformer().ToCreateInput(draft, "o", nil)
		assert.Equal(t, token, FromRemote(ToListing("id", in)).GenderPreference)
	}
}

func TestFromRemote_FurnishedFlag(t *testing.T) {
	tests := []struct {
		furnishing domain.Furnishing
		want       bool
	}{
		{domain.FurnishingFull, true},
		{domain.FurnishingSemi, false},
		{domain.FurnishingNone, false},
		{domain.Furnishing("partly"), false},
	}
	for _, tt := range tests {
		d := FromRemote(&domain.Listing{Furnishing: tt.furnishing})
		assert.Equal(t, tt.want, d.Furnished, string(tt.furnishing))
	}
}

func TestFromRemote_PreservesOwner(t *testing.T) {
	owner := &domain.Owner{ID: "u1", Name: "Aina", Email: "aina@example.com"}
	d := FromRemote(&domain.Listing{ID: "l1", Owner: owner})

	require.NotNil(t, d.Owner)
	assert.Equal(t, *owner, *d.Owner)
	assert.Nil(t, FromRemote(&domain.Listing{ID: "l2"}).Owner)
	assert.Nil(t, FromRemote(nil))
}

func TestToUpdateInput_CopiesOnlyPresentFields(t *testing.T) {
	title := "New title"
	price := 0.0
	pets := false
	patch := &domain.ListingFormPatch{Title: &title, Price: &price, PetsAllowed: &pets}

	in := ToUpdateInput("l1", patch, nil, nil)

	assert.Equal(t, "l1", in.ID)
	require.NotNil(t, in.Title)
	assert.Equal(t, title, *in.Title)
	require.NotNil(t, in.Price)
	assert.Equal(t, 0.0, *in.Price)
	require.NotNil(t, in.PetsAllowed)
	assert.False(t, *in.PetsAllowed)
	assert.Nil(t, in.Description)
	assert.Nil(t, in.Amenities)
	assert.Nil(t, in.Images)
	assert.Nil(t, in.MainImageIndex)
	assert.Nil(t, in.RoomType)
}

func TestToUpdateInput_MapsEnums(t *testing.T) {
	room := "shared-room"
	furnishing := "fully-furnished"
	gender := "female"
	patch := &domain.ListingFormPatch{RoomType: &room, Furnishing: &furnishing, GenderPreference: &gender}

	in := ToUpdateInput("l1", patch, nil, nil)

	assert.Equal(t, domain.RoomShared, *in.RoomType)
	assert.Equal(t, domain.FurnishingFull, *in.Furnishing)
	assert.Equal(t, domain.GenderFemale, *in.GenderPreference)
}

func TestToUpdateInput_AmenityGroups(t *testing.T) {
	security := []string{"cctv"}
	kitchen := []string{"oven", "cctv"}
	patch := &domain.ListingFormPatch{Security: &security, Kitchen: &kitchen}

	in := ToUpdateInput("l1", patch, nil, nil)

	require.NotNil(t, in.Amenities)
	assert.Equal(t, []string{"cctv", "oven"}, *in.Amenities)
}

func TestToUpdateInput_AmenityGroupsKeepCurrentSet(t *testing.T) {
	current := []string{"WiFi", "CCTV"}
	kitchen := []string{"Fridge"}

	in := ToUpdateInput("l1", &domain.ListingFormPatch{Kitchen: &kitchen}, nil, current)

	require.NotNil(t, in.Amenities)
	assert.Equal(t, []string{"WiFi", "CCTV", "Fridge"}, *in.Amenities)
	assert.Equal(t, []string{"WiFi", "CCTV"}, current)

	// An Amenities group is the full canonical set and may drop entries.
	amenities := []string{"WiFi"}
	in = ToUpdateInput("l1", &domain.ListingFormPatch{Amenities: &amenities, Kitchen: &kitchen}, nil, current)
	assert.Equal(t, []string{"WiFi", "Fridge"}, *in.Amenities)

	in = ToUpdateInput("l1", &domain.ListingFormPatch{}, nil, current)
	assert.Nil(t, in.Amenities, "untouched groups send nothing")
}

func TestToUpdateInput_ImagesDefaultMainIndex(t *testing.T) {
	locators := []string{"x", "y"}

	in := ToUpdateInput("l1", &domain.ListingFormPatch{}, &locators, nil)

	require.NotNil(t, in.Images)
	assert.Equal(t, locators, *in.Images)
	require.NotNil(t, in.MainImageIndex)
	assert.Equal(t, 0, *in.MainImageIndex)

	idx := 1
	in = ToUpdateInput("l1", &domain.ListingFormPatch{MainImageIndex: &idx}, &locators, nil)
	assert.Equal(t, 1, *in.MainImageIndex)

	idx = 7
	in = ToUpdateInput("l1", &domain.ListingFormPatch{MainImageIndex: &idx}, &locators, nil)
	assert.Equal(t, 0, *in.MainImageIndex)
}
