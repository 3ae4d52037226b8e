package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/metrics"
	"go.uber.org/zap"
)

// FavoriteStore is the favorite side of the query engine.
type FavoriteStore interface {
	CreateFavorite(ctx context.Context, userID, listingID string) (*domain.Favorite, error)
	DeleteFavorite(ctx context.Context, id string) error
	FindFavorites(ctx context.Context, userID, listingID string, limit int, nextToken string) (domain.Page[*domain.Favorite], error)
}

// FavoriteUsecase manages the user↔listing relationship. Toggle is a check
// followed by an act; two concurrent toggles by the same user can interleave.
// Removal deletes every matching record so duplicates left by such a race
// disappear on the next toggle.
type FavoriteUsecase struct {
	store   FavoriteStore
	events  domain.EventPublisher
	metrics *metrics.Manager
	logger  *logger.Logger
	obs     instrumentation
	now     func() time.Time
}

func NewFavoriteUsecase(store FavoriteStore, events domain.EventPublisher, m *metrics.Manager, log *logger.Logger) *FavoriteUsecase {
	return &FavoriteUsecase{
		store:   store,
		events:  events,
		metrics: m,
		logger:  log,
		obs:     newInstrumentation(m, log),
		now:     time.Now,
	}
}

func (uc *FavoriteUsecase) IsFavorite(ctx context.Context, sess domain.Session, listingID string) (_ bool, err error) {
	const op = "FavoriteUsecase.IsFavorite"
	ctx, finish := uc.obs.start(ctx, op)
	defer func() { err = finish(err) }()

	userID, err := sess.RequireUser()
	if err != nil {
		return false, err
	}
	// An empty id would widen the lookup to every favorite of the user.
	if listingID == "" {
		return false, fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}
	page, err := uc.store.FindFavorites(ctx, userID, listingID, 1, "")
	if err != nil {
		return false, err
	}
	return len(page.Items) > 0, nil
}

// ToggleFavorite flips the relationship and returns the new state.
func (uc *FavoriteUsecase) ToggleFavorite(ctx context.Context, sess domain.Session, listingID string) (_ bool, err error) {
	const op = "FavoriteUsecase.ToggleFavorite"
	ctx, finish := uc.obs.start(ctx, op)
	defer func() { err = finish(err) }()

	userID, err := sess.RequireUser()
	if err != nil {
		return false, err
	}
	if listingID == "" {
		return false, fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}
	uc.logger.Info("FavoriteUsecase.ToggleFavorite: toggling favorite",
		zap.String("user_id", userID), zap.String("listing_id", listingID))

	existing, err := uc.matches(ctx, userID, listingID)
	if err != nil {
		return false, err
	}

	if len(existing) == 0 {
		if _, err := uc.store.CreateFavorite(ctx, userID, listingID); err != nil {
			return false, err
		}
		uc.metrics.FavoriteToggles.WithLabelValues("added").Inc()
		uc.publish(ctx, domain.SubjectFavoriteAdded, userID, listingID)
		return true, nil
	}

	for _, f := range existing {
		if err := uc.store.DeleteFavorite(ctx, f.ID); err != nil {
			return true, err
		}
	}
	if len(existing) > 1 {
		uc.logger.Warn("FavoriteUsecase.ToggleFavorite: removed duplicate favorites",
			zap.String("user_id", userID), zap.String("listing_id", listingID), zap.Int("count", len(existing)))
	}
	uc.metrics.FavoriteToggles.WithLabelValues("removed").Inc()
	uc.publish(ctx, domain.SubjectFavoriteRemoved, userID, listingID)
	return false, nil
}

// ListFavorites returns one batch of the caller's favorites.
func (uc *FavoriteUsecase) ListFavorites(ctx context.Context, sess domain.Session, limit int, nextToken string) (_ domain.Page[*domain.Favorite], err error) {
	const op = "FavoriteUsecase.ListFavorites"
	ctx, finish := uc.obs.start(ctx, op)
	defer func() { err = finish(err) }()

	userID, err := sess.RequireUser()
	if err != nil {
		return domain.Page[*domain.Favorite]{}, err
	}
	return uc.store.FindFavorites(ctx, userID, "", limit, nextToken)
}

// matches collects every favorite of (userID, listingID) across all pages.
func (uc *FavoriteUsecase) matches(ctx context.Context, userID, listingID string) ([]*domain.Favorite, error) {
	var (
		out   []*domain.Favorite
		token string
	)
	for {
		page, err := uc.store.FindFavorites(ctx, userID, listingID, 0, token)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if page.NextToken == "" || page.NextToken == token {
			return out, nil
		}
		token = page.NextToken
	}
}

func (uc *FavoriteUsecase) publish(ctx context.Context, subject, userID, listingID string) {
	if uc.events == nil {
		return
	}
	evt := domain.FavoriteEvent{UserID: userID, ListingID: listingID, OccurredAt: uc.now().UTC()}
	if err := uc.events.Publish(ctx, subject, evt); err != nil {
		uc.logger.Warn("FavoriteUsecase: event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
