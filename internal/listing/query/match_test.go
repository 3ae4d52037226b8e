package query

import (
	"testing"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matching(t *testing.T, p Predicate, in []*domain.Listing) []string {
	t.Helper()
	var out []string
	for _, l := range in {
		ok, err := p.Match(l)
		require.NoError(t, err)
		if ok {
			out = append(out, l.ID)
		}
	}
	return out
}

func visible(id string, mutate func(*domain.Listing)) *domain.Listing {
	l := &domain.Listing{ID: id, IsAvailable: true, IsActive: true}
	if mutate != nil {
		mutate(l)
	}
	return l
}

func TestMatch_GenderIncludesAny(t *testing.T) {
	in := []*domain.Listing{
		visible("m", func(l *domain.Listing) { l.GenderPreference = domain.GenderMale }),
		visible("a", func(l *domain.Listing) { l.GenderPreference = domain.GenderAny }),
		visible("f", func(l *domain.Listing) { l.GenderPreference = domain.GenderFemale }),
	}

	got := matching(t, SearchPredicate(domain.Filter{Gender: "male"}), in)

	assert.Equal(t, []string{"m", "a"}, got)
}

func TestMatch_ExcludesDraftsAndUnavailable(t *testing.T) {
	in := []*domain.Listing{
		visible("live", nil),
		{ID: "draft", IsAvailable: false, IsActive: false},
		{ID: "let", IsAvailable: false, IsActive: true},
	}

	got := matching(t, SearchPredicate(domain.Filter{}), in)

	assert.Equal(t, []string{"live"}, got)
}

func TestMatch_PriceRangeInclusive(t *testing.T) {
	in := []*domain.Listing{
		visible("low", func(l *domain.Listing) { l.Price = 299 }),
		visible("edge-lo", func(l *domain.Listing) { l.Price = 300 }),
		visible("mid", func(l *domain.Listing) { l.Price = 650 }),
		visible("edge-hi", func(l *domain.Listing) { l.Price = 900 }),
		visible("high", func(l *domain.Listing) { l.Price = 901 }),
	}
	lo, hi := 300.0, 900.0

	got := matching(t, SearchPredicate(domain.Filter{MinPrice: &lo, MaxPrice: &hi}), in)

	assert.Equal(t, []string{"edge-lo", "mid", "edge-hi"}, got)
}

func TestMatch_AvailableFromAndRoomType(t *testing.T) {
	in := []*domain.Listing{
		visible("early", func(l *domain.Listing) { l.AvailableFrom = "2026-01-01"; l.RoomType = domain.RoomSingle }),
		visible("late", func(l *domain.Listing) { l.AvailableFrom = "2026-06-01"; l.RoomType = domain.RoomSingle }),
		visible("other", func(l *domain.Listing) { l.AvailableFrom = "2026-06-01"; l.RoomType = domain.RoomShared }),
	}

	got := matching(t, SearchPredicate(domain.Filter{AvailableFrom: "2026-03-01", RoomType: "single-room"}), in)

	assert.Equal(t, []string{"late"}, got)
}

func TestMatch_NotAndUnsupported(t *testing.T) {
	l := visible("x", func(l *domain.Listing) { l.City = "Ipoh" })

	ok, err := Predicate{"not": Eq("city", "Ipoh")}.Match(l)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Predicate{"city": map[string]any{"regex": "I.*"}}.Match(l)
	assert.Error(t, err)
}
