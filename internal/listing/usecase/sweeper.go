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

// ListingLookup lists one owner's listings, drafts included.
type ListingLookup interface {
	ListByOwner(ctx context.Context, ownerID string, f domain.Filter) (domain.Page[*domain.Listing], error)
}

// Sweeper removes image objects that a failed create or update left behind.
type Sweeper struct {
	storage  domain.ObjectStorage
	ledger   domain.AssetLedger
	images   *ImageCoordinator
	listings ListingLookup
	metrics  *metrics.Manager
	logger   *logger.Logger
	now      func() time.Time
}

func NewSweeper(storage domain.ObjectStorage, ledger domain.AssetLedger, images *ImageCoordinator, listings ListingLookup, m *metrics.Manager, log *logger.Logger) *Sweeper {
	return &Sweeper{
		storage:  storage,
		ledger:   ledger,
		images:   images,
		listings: listings,
		metrics:  m,
		logger:   log,
		now:      time.Now,
	}
}

// SweepStale deletes assets that have been sitting in the uploaded or
// promoted state for longer than olderThan. Referenced assets are never
// touched, whatever the ledger says: every candidate is checked against the
// images of its owner's listings first.
func (s *Sweeper) SweepStale(ctx context.Context, olderThan time.Duration) (int, error) {
	before := s.now().Add(-olderThan)

	var stale []string
	for _, state := range []domain.AssetState{domain.AssetUploaded, domain.AssetPromoted} {
		paths, err := s.ledger.Stale(ctx, state, before)
		if err != nil {
			return 0, fmt.Errorf("list stale %s assets: %w", state, err)
		}
		stale = append(stale, paths...)
	}
	stale = s.unreferenced(ctx, stale)
	if len(stale) == 0 {
		return 0, nil
	}

	n := s.images.DeleteBestEffort(ctx, stale)
	s.metrics.OrphanAssetsSwept.Add(float64(n))
	s.logger.Info("Sweeper.SweepStale: stale assets removed",
		zap.Int("candidates", len(stale)), zap.Int("removed", n), zap.Time("before", before))
	return n, nil
}

// SweepOwnerTemp deletes objects under the owner's temporary namespace that
// the ledger does not track, or that it already considers deleted.
func (s *Sweeper) SweepOwnerTemp(ctx context.Context, ownerID string) (int, error) {
	if ownerID == "" {
		return 0, fmt.Errorf("%w: owner id is required", domain.ErrInvalidInput)
	}
	prefix := s.images.ContainerPrefix(ownerID, TempContainer)
	paths, err := s.storage.List(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", prefix, err)
	}

	var orphans []string
	for _, p := range paths {
		state, err := s.ledger.State(ctx, p)
		if err != nil {
			return 0, fmt.Errorf("ledger state of %s: %w", p, err)
		}
		if state == "" || state == domain.AssetDeleted {
			orphans = append(orphans, p)
		}
	}
	orphans = s.unreferenced(ctx, orphans)
	if len(orphans) == 0 {
		return 0, nil
	}

	n := s.images.DeleteBestEffort(ctx, orphans)
	s.metrics.OrphanAssetsSwept.Add(float64(n))
	s.logger.Info("Sweeper.SweepOwnerTemp: untracked temporary objects removed",
		zap.String("owner_id", ownerID), zap.Int("listed", len(paths)), zap.Int("removed", n))
	return n, nil
}

// unreferenced drops the paths a listing still points to and marks them
// referenced again. Paths whose owner cannot be resolved or listed are kept
// out of the result.
func (s *Sweeper) unreferenced(ctx context.Context, paths []string) []string {
	refs := make(map[string]map[string]struct{})
	var (
		out      []string
		repaired []string
	)
	for _, p := range paths {
		ownerID, ok := s.images.OwnerOf(p)
		if !ok {
			s.logger.Warn("Sweeper: path outside the image namespace skipped", zap.String("path", p))
			continue
		}
		images, seen := refs[ownerID]
		if !seen {
			var err error
			images, err = s.referencedBy(ctx, ownerID)
			if err != nil {
				s.logger.Warn("Sweeper: cannot list owner listings, skipping their assets",
					zap.String("owner_id", ownerID), zap.Error(err))
			}
			refs[ownerID] = images
		}
		if images == nil {
			continue
		}
		if _, live := images[p]; live {
			repaired = append(repaired, p)
			continue
		}
		out = append(out, p)
	}
	if len(repaired) > 0 {
		s.images.MarkReferenced(ctx, repaired)
		s.logger.Warn("Sweeper: ledger lagged behind live listings, states repaired", zap.Int("count", len(repaired)))
	}
	return out
}

// referencedBy collects every image locator of ownerID's listings. A nil map
// means the listings could not be read.
func (s *Sweeper) referencedBy(ctx context.Context, ownerID string) (map[string]struct{}, error) {
	refs := make(map[string]struct{})
	var token string
	for {
		page, err := s.listings.ListByOwner(ctx, ownerID, domain.Filter{NextToken: token})
		if err != nil {
			return nil, err
		}
		for _, l := range page.Items {
			for _, img := range l.Images {
				refs[img] = struct{}{}
			}
		}
		if page.NextToken == "" || page.NextToken == token {
			return refs, nil
		}
		token = page.NextToken
	}
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval, olderThan time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Sweeper.Run: started", zap.Duration("interval", interval), zap.Duration("older_than", olderThan))
	for {
		if _, err := s.SweepStale(ctx, olderThan); err != nil {
			s.logger.Error("Sweeper.Run: sweep failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper.Run: stopped")
			return
		case <-ticker.C:
		}
	}
}
