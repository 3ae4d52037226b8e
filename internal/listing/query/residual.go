package query

import (
	"strings"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"golang.org/x/text/cases"
)

// ApplyResidual applies the filters the gateway predicate grammar cannot
// express: amenity overlap and free-text search. Order is preserved.
func ApplyResidual(listings []*domain.Listing, f domain.Filter) []*domain.Listing {
	if len(f.Amenities) == 0 && strings.TrimSpace(f.Query) == "" {
		return listings
	}

	fold := cases.Fold()
	wanted := make([]string, 0, len(f.Amenities))
	for _, a := range f.Amenities {
		wanted = append(wanted, fold.String(a))
	}
	q := fold.String(strings.TrimSpace(f.Query))

	out := make([]*domain.Listing, 0, len(listings))
	for _, l := range listings {
		if len(wanted) > 0 && !hasAnyAmenity(fold, l.Amenities, wanted) {
			continue
		}
		if q != "" && !matchesText(fold, l, q) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func hasAnyAmenity(fold cases.Caser, have, wanted []string) bool {
	for _, h := range have {
		h = fold.String(h)
		for _, w := range wanted {
			if h == w {
				return true
			}
		}
	}
	return false
}

func matchesText(fold cases.Caser, l *domain.Listing, q string) bool {
	for _, field := range []string{l.Title, l.Description, l.Location, l.City} {
		if strings.Contains(fold.String(field), q) {
			return true
		}
	}
	return false
}
