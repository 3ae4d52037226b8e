package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/metrics"
	"github.com/cenkalti/backoff/v4"
	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TempContainer is the container segment used before a listing exists.
const TempContainer = "temp"

type ImageConfig struct {
	Root          string
	ImagePrefix   string
	MaxImageBytes int64
	AllowedTypes  []string
	SignedURLTTL  time.Duration
	UploadWorkers int
	// StepRetries is how many times a failed put, copy or delete is retried.
	StepRetries   int
	RetryInterval time.Duration
}

// ImageCoordinator drives images through uploaded → promoted → referenced →
// deleted. Each step is recorded in the ledger so that assets stuck between
// steps can be found by the Sweeper.
type ImageCoordinator struct {
	storage domain.ObjectStorage
	ledger  domain.AssetLedger
	cfg     ImageConfig
	metrics *metrics.Manager
	logger  *logger.Logger
	newName func() string
}

func NewImageCoordinator(storage domain.ObjectStorage, ledger domain.AssetLedger, cfg ImageConfig, m *metrics.Manager, log *logger.Logger) *ImageCoordinator {
	if cfg.UploadWorkers <= 0 {
		cfg.UploadWorkers = 4
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 100 * time.Millisecond
	}
	return &ImageCoordinator{
		storage: storage,
		ledger:  ledger,
		cfg:     cfg,
		metrics: m,
		logger:  log,
		newName: func() string { return uuid.New().String() },
	}
}

// ContainerPrefix is the storage prefix shared by every image of one owner's container.
func (c *ImageCoordinator) ContainerPrefix(ownerID, containerID string) string {
	return path.Join(c.cfg.Root, c.cfg.ImagePrefix, ownerID, containerID) + "/"
}

// OwnerOf returns the owner segment of a path written by this coordinator.
func (c *ImageCoordinator) OwnerOf(p string) (string, bool) {
	rest, ok := strings.CutPrefix(p, path.Join(c.cfg.Root, c.cfg.ImagePrefix)+"/")
	if !ok {
		return "", false
	}
	ownerID, _, ok := strings.Cut(rest, "/")
	return ownerID, ok && ownerID != ""
}

// Validate checks every file against the size cap and the allowed image types.
func (c *ImageCoordinator) Validate(files []domain.ImageFile) error {
	for _, f := range files {
		if _, err := c.contentType(f); err != nil {
			return err
		}
	}
	return nil
}

func (c *ImageCoordinator) contentType(f domain.ImageFile) (string, error) {
	if c.cfg.MaxImageBytes > 0 && f.Size() > c.cfg.MaxImageBytes {
		return "", fmt.Errorf("%w: %s is %d bytes, limit is %d", domain.ErrFileTooLarge, f.Name, f.Size(), c.cfg.MaxImageBytes)
	}
	ct := f.ContentType
	if ct == "" {
		ct = http.DetectContentType(f.Data)
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ct = strings.ToLower(ct)
	if len(c.cfg.AllowedTypes) > 0 && !slices.Contains(c.cfg.AllowedTypes, ct) {
		return "", fmt.Errorf("%w: %s has type %q", domain.ErrUnsupportedFileType, f.Name, ct)
	}
	return ct, nil
}

// UploadTemp uploads files into the owner's temporary namespace.
func (c *ImageCoordinator) UploadTemp(ctx context.Context, ownerID string, files []domain.ImageFile) ([]string, error) {
	return c.Upload(ctx, ownerID, TempContainer, files)
}

// Upload validates files and stores them in parallel under the given
// container. The returned paths follow the input order. If any upload fails,
// the ones that succeeded are removed again and the error is returned.
func (c *ImageCoordinator) Upload(ctx context.Context, ownerID, containerID string, files []domain.ImageFile) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}
	types := make([]string, len(files))
	for i, f := range files {
		ct, err := c.contentType(f)
		if err != nil {
			return nil, err
		}
		types[i] = ct
	}

	prefix := c.ContainerPrefix(ownerID, containerID)
	paths := make([]string, len(files))
	errs := make([]error, len(files))

	c.forEach(len(files), func(i int) {
		f := files[i]
		objectPath := prefix + c.newName() + extensionFor(f.Name, types[i])
		meta := map[string]string{"owner-id": ownerID, "original-filename": f.Name}
		var loc domain.Locator
		err := c.retry(ctx, func() (err error) {
			loc, err = c.storage.Put(ctx, objectPath, f.Data, types[i], meta)
			return err
		})
		if err != nil {
			errs[i] = fmt.Errorf("upload %s: %w", f.Name, err)
			return
		}
		paths[i] = loc.Path
		c.record(ctx, loc.Path, domain.AssetUploaded)
		c.metrics.ImagesUploaded.Inc()
	})

	for _, err := range errs {
		if err != nil {
			c.Discard(ctx, slices.DeleteFunc(slices.Clone(paths), func(p string) bool { return p == "" }))
			return nil, err
		}
	}
	c.logger.Info("ImageCoordinator.Upload: images stored",
		zap.String("owner_id", ownerID), zap.String("container", containerID), zap.Int("count", len(paths)))
	return paths, nil
}

// Promotion is the outcome of copying temporary images into a listing's namespace.
type Promotion struct {
	// Paths is the new locator list, in the original order. Images whose copy
	// failed keep their temporary path.
	Paths []string
	// Copies are the newly written listing-scoped objects.
	Copies []string
	// Superseded are the temporary objects that now have a copy.
	Superseded []string
}

func (p Promotion) Changed() bool { return len(p.Copies) > 0 }

// Promote copies every temporary image of ownerID into the listing's
// namespace. Temporary objects are left in place until Commit.
func (c *ImageCoordinator) Promote(ctx context.Context, ownerID, listingID string, paths []string) Promotion {
	tempPrefix := c.ContainerPrefix(ownerID, TempContainer)
	dstPrefix := c.ContainerPrefix(ownerID, listingID)

	out := slices.Clone(paths)
	copied := make([]bool, len(paths))
	c.forEach(len(paths), func(i int) {
		src := paths[i]
		if !strings.HasPrefix(src, tempPrefix) {
			return
		}
		dst := dstPrefix + path.Base(src)
		if err := c.retry(ctx, func() error { return c.storage.Copy(ctx, src, dst) }); err != nil {
			c.metrics.PromotionFallbacks.Inc()
			c.logger.Warn("ImageCoordinator.Promote: copy failed, keeping temporary locator",
				zap.String("listing_id", listingID), zap.String("path", src), zap.Error(err))
			return
		}
		c.record(ctx, dst, domain.AssetPromoted)
		out[i] = dst
		copied[i] = true
	})

	p := Promotion{Paths: out}
	for i, ok := range copied {
		if ok {
			p.Copies = append(p.Copies, out[i])
			p.Superseded = append(p.Superseded, paths[i])
		}
	}
	return p
}

// Commit finishes a promotion once the listing references p.Paths.
func (c *ImageCoordinator) Commit(ctx context.Context, p Promotion) {
	c.DeleteBestEffort(ctx, p.Superseded)
	c.MarkReferenced(ctx, p.Paths)
}

// Abandon rolls a promotion back when the listing could not be patched; the
// listing keeps pointing at the temporary objects.
func (c *ImageCoordinator) Abandon(ctx context.Context, p Promotion) {
	c.DeleteBestEffort(ctx, p.Copies)
	c.MarkReferenced(ctx, p.Superseded)
}

func (c *ImageCoordinator) MarkReferenced(ctx context.Context, paths []string) {
	for _, p := range paths {
		c.record(ctx, p, domain.AssetReferenced)
	}
}

// Discard removes objects that never became referenced.
func (c *ImageCoordinator) Discard(ctx context.Context, paths []string) {
	c.DeleteBestEffort(ctx, paths)
}

// DeleteBestEffort deletes every path, logging failures instead of returning
// them. It reports how many objects were removed.
func (c *ImageCoordinator) DeleteBestEffort(ctx context.Context, paths []string) int {
	var (
		mu      sync.Mutex
		removed int
	)
	c.forEach(len(paths), func(i int) {
		p := paths[i]
		var ok bool
		err := c.retry(ctx, func() (err error) {
			ok, err = c.storage.Delete(ctx, p)
			return err
		})
		if err != nil {
			c.metrics.StorageDeleteFailures.Inc()
			c.logger.Warn("ImageCoordinator.DeleteBestEffort: delete failed", zap.String("path", p), zap.Error(err))
			return
		}
		c.record(ctx, p, domain.AssetDeleted)
		if ok {
			mu.Lock()
			removed++
			mu.Unlock()
		}
	})
	return removed
}

// ResolveURLs returns a time-limited retrieval URL per path. A path whose URL
// cannot be signed yields "".
func (c *ImageCoordinator) ResolveURLs(ctx context.Context, paths []string) []string {
	urls := make([]string, len(paths))
	for i, p := range paths {
		u, err := c.storage.SignedURL(ctx, p, c.cfg.SignedURLTTL)
		if err != nil {
			c.logger.Warn("ImageCoordinator.ResolveURLs: cannot sign url", zap.String("path", p), zap.Error(err))
			continue
		}
		urls[i] = u
	}
	return urls
}

// Removed returns the paths of current that are absent from next.
func Removed(current, next []string) []string {
	keep := make(map[string]struct{}, len(next))
	for _, p := range next {
		keep[p] = struct{}{}
	}
	var out []string
	for _, p := range current {
		if _, ok := keep[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

func (c *ImageCoordinator) record(ctx context.Context, p string, state domain.AssetState) {
	if c.ledger == nil {
		return
	}
	if err := c.ledger.Record(ctx, p, state); err != nil {
		c.logger.Warn("ImageCoordinator: ledger update failed",
			zap.String("path", p), zap.String("state", string(state)), zap.Error(err))
	}
}

// retry runs one idempotent storage step, retrying failures with exponential
// backoff. A missing object is not retried.
func (c *ImageCoordinator) retry(ctx context.Context, step func() error) error {
	if c.cfg.StepRetries <= 0 {
		return step()
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.StepRetries)), ctx)
	return backoff.Retry(func() error {
		err := step()
		if errors.Is(err, domain.ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// forEach runs fn for 0..n-1 on a bounded worker pool and waits for all of them.
func (c *ImageCoordinator) forEach(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workers := min(c.cfg.UploadWorkers, n)
	wp := workerpool.New(workers)
	for i := 0; i < n; i++ {
		wp.Submit(func() { fn(i) })
	}
	wp.StopWait()
}

var extensionsByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

func extensionFor(name, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		return ext
	}
	return extensionsByType[contentType]
}
