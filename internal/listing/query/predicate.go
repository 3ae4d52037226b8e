package query

import "github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"

// Predicate is the gateway filter grammar: logical nodes "and", "or", "not"
// and field nodes {field: {op: value}} with ops eq, ne, gt, ge, lt, le,
// between, contains, beginsWith.
type Predicate map[string]any

func And(ps ...Predicate) Predicate { return Predicate{"and": ps} }
func Or(ps ...Predicate) Predicate { return Predicate{"or": ps} }

func Eq(field string, v any) Predicate { return field1(field, "eq", v) }
func Ge(field string, v any) Predicate { return field1(field, "ge", v) }
func Le(field string, v any) Predicate { return field1(field, "le", v) }

func Between(field string, lo, hi any) Predicate {
	return field1(field, "between", []any{lo, hi})
}

func field1(field, op string, v any) Predicate {
	return Predicate{field: map[string]any{op: v}}
}

// SearchPredicate builds the remote predicate for a public search. Only
// available, active listings are ever matched.
func SearchPredicate(f domain.Filter) Predicate {
	conds := []Predicate{
		Eq("isAvailable", true),
		Eq("isActive", true),
	}

	if f.City != "" {
		conds = append(conds, Eq("city", f.City))
	}
	if f.RoomType != "" {
		conds = append(conds, Eq("roomType", string(domain.ParseRoomType(f.RoomType))))
	}

	switch {
	case f.MinPrice != nil && f.MaxPrice != nil:
		conds = append(conds, Between("price", *f.MinPrice, *f.MaxPrice))
	case f.MinPrice != nil:
		conds = append(conds, Ge("price", *f.MinPrice))
	case f.MaxPrice != nil:
		conds = append(conds, Le("price", *f.MaxPrice))
	}

	if f.Gender != "" {
		g := domain.ParseGenderPreference(f.Gender)
		if g == domain.GenderAny {
			conds = append(conds, Eq("genderPreference", string(domain.GenderAny)))
		} else {
			conds = append(conds, Or(
				Eq("genderPreference", string(g)),
				Eq("genderPreference", string(domain.GenderAny)),
			))
		}
	}
	if f.Religion != "" {
		conds = append(conds, Eq("religionPreference", f.Religion))
	}
	if f.PetFriendly != nil {
		conds = append(conds, Eq("petsAllowed", *f.PetFriendly))
	}
	if f.AvailableFrom != "" {
		conds = append(conds, Ge("availableFrom", f.AvailableFrom))
	}

	return And(conds...)
}

// OwnerPredicate matches every listing of one owner, drafts included.
func OwnerPredicate(ownerID string) Predicate {
	return And(Eq("ownerId", ownerID))
}

// FavoritePredicate matches favorites of userID, narrowed to listingID when set.
func FavoritePredicate(userID, listingID string) Predicate {
	conds := []Predicate{Eq("userId", userID)}
	if listingID != "" {
		conds = append(conds, Eq("listingId", listingID))
	}
	return And(conds...)
}
