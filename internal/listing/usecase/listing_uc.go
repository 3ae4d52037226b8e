package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/transform"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/metrics"
	"go.uber.org/zap"
)

// ListingStore is the listing side of the query engine.
type ListingStore interface {
	CreateListing(ctx context.Context, in domain.CreateInput) (*domain.Listing, error)
	UpdateListing(ctx context.Context, in domain.UpdateInput) (*domain.Listing, error)
	DeleteListing(ctx context.Context, id string) error
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	Search(ctx context.Context, f domain.Filter) (domain.Page[*domain.Listing], error)
	ListByOwner(ctx context.Context, ownerID string, f domain.Filter) (domain.Page[*domain.Listing], error)
}

type ListingUsecase struct {
	store       ListingStore
	images      *ImageCoordinator
	transformer *transform.Transformer
	events      domain.EventPublisher
	metrics     *metrics.Manager
	logger      *logger.Logger
	obs         instrumentation
	now         func() time.Time
}

// NewListingUsecase wires the listing flows. events may be nil.
func NewListingUsecase(store ListingStore, images *ImageCoordinator, transformer *transform.Transformer, events domain.EventPublisher, m *metrics.Manager, log *logger.Logger) *ListingUsecase {
	return &ListingUsecase{
		store:       store,
		images:      images,
		transformer: transformer,
		events:      events,
		metrics:     m,
		logger:      log,
		obs:         newInstrumentation(m, log),
		now:         time.Now,
	}
}

// CreateListing uploads the draft's images, creates the listing, then moves
// the images into the listing's namespace.
func (uc *ListingUsecase) CreateListing(ctx context.Context, sess domain.Session, draft *domain.ListingForm) (_ *domain.DisplayListing, err error) {
	const op = "ListingUsecase.CreateListing"
	ctx, finish := uc.obs.start(ctx, op)
	defer func() { err = finish(err) }()

	ownerID, err := sess.RequireUser()
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("%w: empty draft", domain.ErrInvalidInput)
	}
	uc.logger.Info("ListingUsecase.CreateListing: creating listing",
		zap.String("owner_id", ownerID), zap.String("title", draft.Title),
		zap.Int("images", len(draft.Images)), zap.Bool("draft", draft.IsDraft))

	temp, err := uc.images.UploadTemp(ctx, ownerID, draft.Images)
	if err != nil {
		return nil, err
	}

	created, err := uc.store.CreateListing(ctx, uc.transformer.ToCreateInput(draft, ownerID, temp))
	if err != nil {
		uc.images.Discard(ctx, temp)
		return nil, err
	}

	promotion := uc.images.Promote(ctx, ownerID, created.ID, created.Images)
	if promotion.Changed() {
		idx := domain.ValidMainImageIndex(created.MainImageIndex, len(promotion.Paths))
		patched, perr := uc.store.UpdateListing(ctx, domain.UpdateInput{
			ID:             created.ID,
			Images:         &promotion.Paths,
			MainImageIndex: &idx,
		})
		if perr != nil {
			uc.logger.Warn("ListingUsecase.CreateListing: image patch failed, listing keeps temporary locators",
				zap.String("listing_id", created.ID), zap.Error(perr))
			uc.images.Abandon(ctx, promotion)
		} else {
			uc.images.Commit(ctx, promotion)
			created = patched
		}
	} else {
		uc.images.MarkReferenced(ctx, created.Images)
	}

	uc.metrics.ListingsCreated.Inc()
	uc.publish(ctx, domain.SubjectListingCreated, created)
	uc.logger.Info("ListingUsecase.CreateListing: listing created", zap.String("listing_id", created.ID))
	return uc.display(ctx, created), nil
}

// UpdateListing applies a partial update. Images dropped from the set are
// deleted from storage after the update succeeds; those deletions are best-effort.
func (uc *ListingUsecase) UpdateListing(ctx context.Context, sess domain.Session, id string, patch *domain.ListingFormPatch) (_ *domain.DisplayListing, err error) {
	const op = "ListingUsecase.UpdateListing"
	ctx, finish := uc.obs.start(ctx, op)
	defer func() { err = finish(err) }()

	if patch == nil {
		patch = &domain.ListingFormPatch{}
	}
	existing, err := uc.ownedListing(ctx, sess, id, "ListingUsecase.UpdateListing")
	if err != nil {
		return nil, err
	}

	var (
		locators *[]string
		uploaded []string
	)
	if patch.TouchesImages() {
		retained := existing.Images
		if patch.RetainedImages != nil {
			// Only locators the listing already owns may be kept.
			retained = slices.DeleteFunc(slices.Clone(*patch.RetainedImages), func(p string) bool {
				return !slices.Contains(existing.Images, p)
			})
		}
		uploaded, err = uc.images.Upload(ctx, existing.OwnerID, existing.ID, patch.NewImages)
		if err != nil {
			return nil, err
		}
		next := append(slices.Clone(retained), uploaded...)
		locators = &next
	} else if patch.MainImageIndex != nil {
		// An index-only patch must point into the images the listing already has.
		idx := *patch.MainImageIndex
		if domain.ValidMainImageIndex(idx, len(existing.Images)) != idx {
			return nil, fmt.Errorf("%w: main image index %d is out of range for %d images",
				domain.ErrInvalidInput, idx, len(existing.Images))
		}
	}

	updated, err := uc.store.UpdateListing(ctx, transform.ToUpdateInput(id, patch, locators, existing.Amenities))
	if err != nil {
		uc.images.Discard(ctx, uploaded)
		return nil, err
	}

	if locators != nil {
		uc.images.MarkReferenced(ctx, uploaded)
		if removed := Removed(existing.Images, *locators); len(removed) > 0 {
			n := uc.images.DeleteBestEffort(ctx, removed)
			uc.logger.Info("ListingUsecase.UpdateListing: dropped images deleted",
				zap.String("listing_id", id), zap.Int("dropped", len(removed)), zap.Int("deleted", n))
		}
	}

	uc.metrics.ListingsUpdated.Inc()
	uc.publish(ctx, domain.SubjectListingUpdated, updated)
	return uc.display(ctx, updated), nil
}

// DeleteListing removes the listing's images, then the listing itself.
func (uc *ListingUsecase) DeleteListing(ctx context.Context, sess domain.Session, id string) (err error) {
	const op = "ListingUsecase.DeleteListing"
	ctx, finish := uc.obs.start(ctx, op)
	defer func() { err = finish(err) }()

	existing, err := uc.ownedListing(ctx, sess, id, "ListingUsecase.DeleteListing")
	if err != nil {
		return err
	}

	if n := uc.images.DeleteBestEffort(ctx, existing.Images); n < len(existing.Images) {
		uc.logger.Warn("ListingUsecase.DeleteListing: some images were not deleted",
			zap.String("listing_id", id), zap.Int("images", len(existing.Images)), zap.Int("deleted", n))
	}
	if err := uc.store.DeleteListing(ctx, id); err != nil {
		return err
	}

	uc.metrics.ListingsDeleted.Inc()
	uc.publish(ctx, domain.SubjectListingDeleted, existing)
	uc.logger.Info("ListingUsecase.DeleteListing: listing deleted", zap.String("listing_id", id))
	return nil
}

func (uc *ListingUsecase) GetListing(ctx context.Context, id string) (_ *domain.DisplayListing, err error) {
	const op = "ListingUsecase.GetListing"
	ctx, finish := uc.obs.start(ctx, op)
	defer func() { err = finish(err) }()

	l, err := uc.store.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.display(ctx, l), nil
}

// SearchListings returns one batch of available, active listings matching f.
func (uc *ListingUsecase) SearchListings(ctx context.Context, f domain.Filter) (_ domain.Page[*domain.DisplayListing], err error) {
	const op = "ListingUsecase.SearchListings"
	ctx, finish := uc.obs.start(ctx, op)
	defer func() { err = finish(err) }()

	page, err := uc.store.Search(ctx, f)
	if err != nil {
		return domain.Page[*domain.DisplayListing]{}, err
	}
	return uc.displayPage(ctx, page), nil
}

// ListOwnerListings returns one batch of the caller's own listings, drafts included.
func (uc *ListingUsecase) ListOwnerListings(ctx context.Context, sess domain.Session, f domain.Filter) (_ domain.Page[*domain.DisplayListing], err error) {
	const op = "ListingUsecase.ListOwnerListings"
	ctx, finish := uc.obs.start(ctx, op)
	defer func() { err = finish(err) }()

	ownerID, err := sess.RequireUser()
	if err != nil {
		return domain.Page[*domain.DisplayListing]{}, err
	}
	page, err := uc.store.ListByOwner(ctx, ownerID, f)
	if err != nil {
		return domain.Page[*domain.DisplayListing]{}, err
	}
	return uc.displayPage(ctx, page), nil
}

func (uc *ListingUsecase) ownedListing(ctx context.Context, sess domain.Session, id, logPrefix string) (*domain.Listing, error) {
	userID, err := sess.RequireUser()
	if err != nil {
		return nil, err
	}
	uc.logger.Info(logPrefix+": loading listing", zap.String("listing_id", id), zap.String("user_id", userID))

	listing, err := uc.store.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != userID {
		uc.logger.Warn(logPrefix+": forbidden",
			zap.String("listing_id", id), zap.String("listing_owner_id", listing.OwnerID), zap.String("user_id", userID))
		return nil, fmt.Errorf("%w: listing %s", domain.ErrForbidden, id)
	}
	return listing, nil
}

func (uc *ListingUsecase) display(ctx context.Context, l *domain.Listing) *domain.DisplayListing {
	d := transform.FromRemote(l)
	if d != nil {
		d.ImageURLs = uc.images.ResolveURLs(ctx, d.Images)
	}
	return d
}

func (uc *ListingUsecase) displayPage(ctx context.Context, page domain.Page[*domain.Listing]) domain.Page[*domain.DisplayListing] {
	items := make([]*domain.DisplayListing, 0, len(page.Items))
	for _, l := range page.Items {
		items = append(items, uc.display(ctx, l))
	}
	return domain.Page[*domain.DisplayListing]{Items: items, NextToken: page.NextToken, BatchSize: page.BatchSize}
}

func (uc *ListingUsecase) publish(ctx context.Context, subject string, l *domain.Listing) {
	if uc.events == nil {
		return
	}
	evt := domain.ListingEvent{
		ListingID:  l.ID,
		OwnerID:    l.OwnerID,
		Title:      l.Title,
		IsActive:   l.IsActive,
		OccurredAt: uc.now().UTC(),
	}
	if err := uc.events.Publish(ctx, subject, evt); err != nil {
		uc.logger.Warn("ListingUsecase: event publish failed",
			zap.String("subject", subject), zap.String("listing_id", l.ID), zap.Error(err))
	}
}
