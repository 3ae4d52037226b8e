// Package transform maps UI drafts to canonical gateway inputs and canonical
// records back to display records. All functions are pure.
package transform

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
)

const DefaultNoticePeriod = 30

const dateLayout = "2006-01-02"

// Transformer carries the defaults applied during creation.
type Transformer struct {
	NoticePeriod int
	Now          func() time.Time
}

func New(noticePeriod int) *Transformer {
	if noticePeriod <= 0 {
		noticePeriod = DefaultNoticePeriod
	}
	return &Transformer{NoticePeriod: noticePeriod, Now: time.Now}
}

// ToCreateInput builds the createListing input for a draft owned by ownerID.
// imageLocators replace the draft's raw files, in the same order.
func (t *Transformer) ToCreateInput(draft *domain.ListingForm, ownerID string, imageLocators []string) domain.CreateInput {
	availableFrom := draft.AvailableFrom
	if availableFrom == "" {
		availableFrom = t.Now().Format(dateLayout)
	}
	noticePeriod := draft.NoticePeriod
	if noticePeriod <= 0 {
		noticePeriod = t.NoticePeriod
	}
	currency := draft.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	images := nonNil(imageLocators)

	return domain.CreateInput{
		OwnerID:            ownerID,
		Title:              draft.Title,
		Description:        draft.Description,
		Price:              draft.Price,
		Currency:           currency,
		RoomType:           domain.ParseRoomType(draft.RoomType),
		PropertyType:       domain.ParsePropertyType(draft.PropertyType),
		Address:            draft.Address,
		City:               draft.City,
		State:              draft.State,
		Location:           draft.Location,
		Furnishing:         domain.ParseFurnishing(draft.Furnishing),
		Bedrooms:           draft.Bedrooms,
		Bathrooms:          draft.Bathrooms,
		AvailableFrom:      availableFrom,
		AvailableTo:        draft.AvailableTo,
		SmokingAllowed:     draft.SmokingAllowed,
		PetsAllowed:        draft.PetsAllowed,
		VisitorsAllowed:    draft.VisitorsAllowed,
		GenderPreference:   domain.ParseGenderPreference(draft.GenderPreference),
		ReligionPreference: draft.ReligionPreference,
		Images:             images,
		MainImageIndex:     domain.ValidMainImageIndex(draft.MainImageIndex, len(images)),
		Amenities:          mergeAmenities(draft.Amenities, draft.Security, draft.Kitchen, draft.ExtraFacilities),
		NearbyFacilities:   nonNil(draft.NearbyFacilities),
		Utilities:          nonNil(draft.Utilities),
		Rules:              nonNil(draft.Rules),
		Deposit:            draft.Deposit,
		NoticePeriod:       noticePeriod,
		IsAvailable:        !draft.IsDraft,
		IsActive:           !draft.IsDraft,
	}
}

// ToUpdateInput copies only the fields present in patch. When imageLocators
// is non-nil it becomes the new image list and mainImageIndex defaults to 0.
// currentAmenities is the listing's canonical amenity set before the patch.
func ToUpdateInput(id string, patch *domain.ListingFormPatch, imageLocators *[]string, currentAmenities []string) domain.UpdateInput {
	in := domain.UpdateInput{
		ID:                 id,
		Title:              patch.Title,
		Description:        patch.Description,
		Price:              patch.Price,
		Currency:           patch.Currency,
		Address:            patch.Address,
		City:               patch.City,
		State:              patch.State,
		Location:           patch.Location,
		Bedrooms:           patch.Bedrooms,
		Bathrooms:          patch.Bathrooms,
		AvailableFrom:      patch.AvailableFrom,
		AvailableTo:        patch.AvailableTo,
		SmokingAllowed:     patch.SmokingAllowed,
		PetsAllowed:        patch.PetsAllowed,
		VisitorsAllowed:    patch.VisitorsAllowed,
		ReligionPreference: patch.ReligionPreference,
		NearbyFacilities:   patch.NearbyFacilities,
		Utilities:          patch.Utilities,
		Rules:              patch.Rules,
		Deposit:            patch.Deposit,
		NoticePeriod:       patch.NoticePeriod,
		IsAvailable:        patch.IsAvailable,
		IsActive:           patch.IsActive,
	}

	if patch.RoomType != nil {
		v := domain.ParseRoomType(*patch.RoomType)
		in.RoomType = &v
	}
	if patch.PropertyType != nil {
		v := domain.ParsePropertyType(*patch.PropertyType)
		in.PropertyType = &v
	}
	if patch.Furnishing != nil {
		v := domain.ParseFurnishing(*patch.Furnishing)
		in.Furnishing = &v
	}
	if patch.GenderPreference != nil {
		v := domain.ParseGenderPreference(*patch.GenderPreference)
		in.GenderPreference = &v
	}

	// The display form carries the whole canonical set in Amenities, so a
	// present Amenities group replaces it. The other groups only add to it.
	if patch.Amenities != nil || patch.Security != nil || patch.Kitchen != nil || patch.ExtraFacilities != nil {
		base := currentAmenities
		if patch.Amenities != nil {
			base = *patch.Amenities
		}
		merged := mergeAmenities(base, deref(patch.Security), deref(patch.Kitchen), deref(patch.ExtraFacilities))
		in.Amenities = &merged
	}

	if imageLocators != nil {
		images := nonNil(*imageLocators)
		idx := 0
		if patch.MainImageIndex != nil {
			idx = *patch.MainImageIndex
		}
		idx = domain.ValidMainImageIndex(idx, len(images))
		in.Images = &images
		in.MainImageIndex = &idx
	} else if patch.MainImageIndex != nil {
		in.MainImageIndex = patch.MainImageIndex
	}

	return in
}

// FromRemote maps a canonical record to its display form.
func FromRemote(l *domain.Listing) *domain.DisplayListing {
	if l == nil {
		return nil
	}
	d := &domain.DisplayListing{
		ID:                 l.ID,
		OwnerID:            l.OwnerID,
		Title:              l.Title,
		Description:        l.Description,
		Price:              l.Price,
		Currency:           l.Currency,
		RoomType:           l.RoomType.UIToken(),
		PropertyType:       l.PropertyType.UIToken(),
		Address:            l.Address,
		City:               l.City,
		State:              l.State,
		Location:           l.Location,
		Furnishing:         l.Furnishing.UIToken(),
		Furnished:          l.Furnishing.Furnished(),
		Bedrooms:           l.Bedrooms,
		Bathrooms:          l.Bathrooms,
		AvailableFrom:      l.AvailableFrom,
		AvailableTo:        l.AvailableTo,
		SmokingAllowed:     l.SmokingAllowed,
		PetsAllowed:        l.PetsAllowed,
		VisitorsAllowed:    l.VisitorsAllowed,
		GenderPreference:   l.GenderPreference.UIToken(),
		ReligionPreference: l.ReligionPreference,
		Images:             nonNil(l.Images),
		MainImageIndex:     l.MainImageIndex,
		Amenities:          nonNil(l.Amenities),
		NearbyFacilities:   nonNil(l.NearbyFacilities),
		Utilities:          nonNil(l.Utilities),
		Rules:              nonNil(l.Rules),
		Deposit:            l.Deposit,
		NoticePeriod:       l.NoticePeriod,
		IsAvailable:        l.IsAvailable,
		IsActive:           l.IsActive,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
	if l.Owner != nil {
		owner := *l.Owner
		d.Owner = &owner
	}
	return d
}

// FromRemoteList maps a batch of records.
func FromRemoteList(ls []*domain.Listing) []*domain.DisplayListing {
	out := make([]*domain.DisplayListing, 0, len(ls))
	for _, l := range ls {
		out = append(out, FromRemote(l))
	}
	return out
}

// ToListing returns the record a successful create would produce, used when
// the gateway echoes only the identifier.
func ToListing(id string, in domain.CreateInput) *domain.Listing {
	return &domain.Listing{
		ID:                 id,
		OwnerID:            in.OwnerID,
		Title:              in.Title,
		Description:        in.Description,
		Price:              in.Price,
		Currency:           in.Currency,
		RoomType:           in.RoomType,
		PropertyType:       in.PropertyType,
		Address:            in.Address,
		City:               in.City,
		State:              in.State,
		Location:           in.Location,
		Furnishing:         in.Furnishing,
		Bedrooms:           in.Bedrooms,
		Bathrooms:          in.Bathrooms,
		AvailableFrom:      in.AvailableFrom,
		AvailableTo:        in.AvailableTo,
		SmokingAllowed:     in.SmokingAllowed,
		PetsAllowed:        in.PetsAllowed,
		VisitorsAllowed:    in.VisitorsAllowed,
		GenderPreference:   in.GenderPreference,
		ReligionPreference: in.ReligionPreference,
		Images:             nonNil(in.Images),
		MainImageIndex:     in.MainImageIndex,
		Amenities:          nonNil(in.Amenities),
		NearbyFacilities:   nonNil(in.NearbyFacilities),
		Utilities:          nonNil(in.Utilities),
		Rules:              nonNil(in.Rules),
		Deposit:            in.Deposit,
		NoticePeriod:       in.NoticePeriod,
		IsAvailable:        in.IsAvailable,
		IsActive:           in.IsActive,
	}
}

// mergeAmenities concatenates the groups in order, dropping exact duplicates.
func mergeAmenities(groups ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, g := range groups {
		for _, a := range g {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func deref(s *[]string) []string {
	if s == nil {
		return nil
	}
	return *s
}
