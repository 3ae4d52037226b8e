package domain

// enumCodec maps between UI spellings and canonical remote tokens for one
// enumerated domain. Unknown tokens pass through unchanged in both directions.
type enumCodec[T ~string] struct {
	canonical map[string]T
	ui        map[T]string
}

// newEnumCodec takes (ui, canonical) pairs. When several UI tokens map to the
// same canonical value, the first one is used for display.
func newEnumCodec[T ~string](pairs ...[2]string) enumCodec[T] {
	c := enumCodec[T]{
		canonical: make(map[string]T, len(pairs)),
		ui:        make(map[T]string, len(pairs)),
	}
	for _, p := range pairs {
		v := T(p[1])
		c.canonical[p[0]] = v
		if _, ok := c.ui[v]; !ok {
			c.ui[v] = p[0]
		}
	}
	return c
}

func (c enumCodec[T]) decode(token string) T {
	if v, ok := c.canonical[token]; ok {
		return v
	}
	return T(token)
}

func (c enumCodec[T]) encode(v T) string {
	if s, ok := c.ui[v]; ok {
		return s
	}
	return string(v)
}

type RoomType string

const (
	RoomSingle      RoomType = "single_room"
	RoomShared      RoomType = "shared_room"
	RoomPrivate     RoomType = "private_room"
	RoomEntirePlace RoomType = "entire_place"
)

var roomTypes = newEnumCodec[RoomType](
	[2]string{"single-room", string(RoomSingle)},
	[2]string{"shared-room", string(RoomShared)},
	[2]string{"private-room", string(RoomPrivate)},
	[2]string{"entire-place", string(RoomEntirePlace)},
)

func ParseRoomType(ui string) RoomType { return roomTypes.decode(ui) }
func (r RoomType) UIToken() string { return roomTypes.encode(r) }

type PropertyType string

const (
	PropertyApartment        PropertyType = "apartment"
	PropertyIndependentHouse PropertyType = "independent_house"
	PropertyPG               PropertyType = "pg"
	PropertyHostel           PropertyType = "hostel"
	PropertyStudio           PropertyType = "studio"
	PropertyVilla            PropertyType = "villa"
)

var propertyTypes = newEnumCodec[PropertyType](
	[2]string{"apartment", string(PropertyApartment)},
	[2]string{"independent-house", string(PropertyIndependentHouse)},
	[2]string{"paying-guest", string(PropertyPG)},
	[2]string{"hostel", string(PropertyHostel)},
	[2]string{"studio", string(PropertyStudio)},
	[2]string{"villa", string(PropertyVilla)},
)

func ParsePropertyType(ui string) PropertyType { return propertyTypes.decode(ui) }
func (p PropertyType) UIToken() string { return propertyTypes.encode(p) }

type Furnishing string

const (
	FurnishingFull Furnishing = "fully_furnished"
	FurnishingSemi Furnishing = "semi_furnished"
	FurnishingNone Furnishing = "unfurnished"
)

var furnishings = newEnumCodec[Furnishing](
	[2]string{"fully-furnished", string(FurnishingFull)},
	[2]string{"semi-furnished", string(FurnishingSemi)},
	[2]string{"unfurnished", string(FurnishingNone)},
)

func ParseFurnishing(ui string) Furnishing { return furnishings.decode(ui) }
func (f Furnishing) UIToken() string { return furnishings.encode(f) }

// Furnished is the lossy boolean view of the furnishing level.
func (f Furnishing) Furnished() bool { return f == FurnishingFull }

type GenderPreference string

const (
	GenderMale   GenderPreference = "male"
	GenderFemale GenderPreference = "female"
	GenderAny    GenderPreference = "any"
)

var genderPreferences = newEnumCodec[GenderPreference](
	[2]string{"male", string(GenderMale)},
	[2]string{"female", string(GenderFemale)},
	[2]string{"no-preference", string(GenderAny)},
	[2]string{"any", string(GenderAny)},
)

func ParseGenderPreference(ui string) GenderPreference { return genderPreferences.decode(ui) }
func (g GenderPreference) UIToken() string { return genderPreferences.encode(g) }
