package query

import (
	"cmp"
	"slices"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"golang.org/x/text/cases"
)

// SortListings sorts in place with a stable comparator. Strings compare
// case-insensitively. Unknown keys leave the order untouched.
func SortListings(listings []*domain.Listing, by string, order domain.SortOrder) {
	compare := comparator(by)
	if compare == nil {
		return
	}
	desc := order == domain.SortDesc
	slices.SortStableFunc(listings, func(a, b *domain.Listing) int {
		if desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
}

func comparator(by string) func(a, b *domain.Listing) int {
	switch by {
	case domain.SortByPrice:
		return func(a, b *domain.Listing) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortByBedrooms:
		return func(a, b *domain.Listing) int { return cmp.Compare(a.Bedrooms, b.Bedrooms) }
	case domain.SortByCreatedAt:
		return func(a, b *domain.Listing) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case domain.SortByTitle:
		return foldCompare(func(l *domain.Listing) string { return l.Title })
	case domain.SortByCity:
		return foldCompare(func(l *domain.Listing) string { return l.City })
	case domain.SortByAvailableFrom:
		return foldCompare(func(l *domain.Listing) string { return l.AvailableFrom })
	}
	return nil
}

func foldCompare(key func(*domain.Listing) string) func(a, b *domain.Listing) int {
	fold := cases.Fold()
	return func(a, b *domain.Listing) int {
		return cmp.Compare(fold.String(key(a)), fold.String(key(b)))
	}
}
