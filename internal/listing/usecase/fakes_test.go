package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/metrics"
	"github.com/stretchr/testify/mock"
)

var errBoom = errors.New("boom")

// memStorage is an in-memory ObjectStorage with per-path failure injection.
type memStorage struct {
	mu         sync.Mutex
	objects    map[string][]byte
	putDelay   map[string]time.Duration // by original filename
	failPut    map[string]bool          // by original filename
	failCopy   map[string]bool          // by source path
	failDelete map[string]bool
	flakyCopy  map[string]int // failures left before a copy of src succeeds
	copyCalls  map[string]int
	deleted    []string
}

func newMemStorage() *memStorage {
	return &memStorage{
		objects:    map[string][]byte{},
		putDelay:   map[string]time.Duration{},
		failPut:    map[string]bool{},
		failCopy:   map[string]bool{},
		failDelete: map[string]bool{},
		flakyCopy:  map[string]int{},
		copyCalls:  map[string]int{},
	}
}

func (s *memStorage) Put(_ context.Context, path string, data []byte, _ string, metadata map[string]string) (domain.Locator, error) {
	name := metadata["original-filename"]
	s.mu.Lock()
	delay, fail := s.putDelay[name], s.failPut[name]
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return domain.Locator{}, fmt.Errorf("%w: put %s", domain.ErrStorage, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
	return domain.Locator{Path: path}, nil
}

func (s *memStorage) Copy(_ context.Context, src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copyCalls[src]++
	if s.flakyCopy[src] > 0 {
		s.flakyCopy[src]--
		return fmt.Errorf("%w: transient copy failure %s", domain.ErrStorage, src)
	}
	if s.failCopy[src] {
		return fmt.Errorf("%w: copy %s", domain.ErrStorage, src)
	}
	data, ok := s.objects[src]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, src)
	}
	s.objects[dst] = data
	return nil
}

func (s *memStorage) Delete(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete[path] {
		return false, fmt.Errorf("%w: delete %s", domain.ErrStorage, path)
	}
	_, ok := s.objects[path]
	delete(s.objects, path)
	if ok {
		s.deleted = append(s.deleted, path)
	}
	return ok, nil
}

func (s *memStorage) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for p := range s.objects {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *memStorage) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://cdn.test/%s?ttl=%d", path, int(ttl.Seconds())), nil
}

func (s *memStorage) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}

func (s *memStorage) deletedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.deleted...)
	sort.Strings(out)
	return out
}

type ledgerEntry struct {
	state domain.AssetState
	at    time.Time
}

// memLedger is an in-memory AssetLedger with a settable clock. Writes of a
// state listed in failRecord are rejected.
type memLedger struct {
	mu         sync.Mutex
	entries    map[string]ledgerEntry
	failRecord map[domain.AssetState]bool
	now        time.Time
}

func newMemLedger() *memLedger {
	return &memLedger{
		entries:    map[string]ledgerEntry{},
		failRecord: map[domain.AssetState]bool{},
		now:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (l *memLedger) Record(_ context.Context, path string, state domain.AssetState) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failRecord[state] {
		return fmt.Errorf("ledger unavailable: record %s", state)
	}
	l.entries[path] = ledgerEntry{state: state, at: l.now}
	return nil
}

func (l *memLedger) State(_ context.Context, path string) (domain.AssetState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[path].state, nil
}

func (l *memLedger) Stale(_ context.Context, state domain.AssetState, before time.Time) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for p, e := range l.entries {
		if e.state == state && e.at.Before(before) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (l *memLedger) stateOf(path string) domain.AssetState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[path].state
}

type MockListingStore struct{ mock.Mock }

func (m *MockListingStore) CreateListing(ctx context.Context, in domain.CreateInput) (*domain.Listing, error) {
	args := m.Called(ctx, in)
	if fn, ok := args.Get(0).(func(domain.CreateInput) *domain.Listing); ok {
		return fn(in), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingStore) UpdateListing(ctx context.Context, in domain.UpdateInput) (*domain.Listing, error) {
	args := m.Called(ctx, in)
	if fn, ok := args.Get(0).(func(domain.UpdateInput) *domain.Listing); ok {
		return fn(in), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingStore) DeleteListing(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockListingStore) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingStore) Search(ctx context.Context, f domain.Filter) (domain.Page[*domain.Listing], error) {
	args := m.Called(ctx, f)
	return args.Get(0).(domain.Page[*domain.Listing]), args.Error(1)
}
func (m *MockListingStore) ListByOwner(ctx context.Context, ownerID string, f domain.Filter) (domain.Page[*domain.Listing], error) {
	args := m.Called(ctx, ownerID, f)
	return args.Get(0).(domain.Page[*domain.Listing]), args.Error(1)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, payload any) error {
	args := m.Called(ctx, subject, payload)
	return args.Error(0)
}

// memFavorites is a FavoriteStore backed by a slice; pageSize bounds each batch.
type memFavorites struct {
	mu        sync.Mutex
	items     []*domain.Favorite
	seq       int
	pageSize  int
	failFind  error
	failWrite error
}

func (s *memFavorites) CreateFavorite(_ context.Context, userID, listingID string) (*domain.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		return nil, s.failWrite
	}
	s.seq++
	f := &domain.Favorite{ID: fmt.Sprintf("fav-%d", s.seq), UserID: userID, ListingID: listingID, CreatedAt: time.Now()}
	s.items = append(s.items, f)
	return f, nil
}

func (s *memFavorites) DeleteFavorite(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		return s.failWrite
	}
	for i, f := range s.items {
		if f.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrFavoriteNotFound
}

func (s *memFavorites) FindFavorites(_ context.Context, userID, listingID string, limit int, nextToken string) (domain.Page[*domain.Favorite], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFind != nil {
		return domain.Page[*domain.Favorite]{}, s.failFind
	}
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit <= 0 {
		limit = 20
	}
	var matched []*domain.Favorite
	for _, f := range s.items {
		if f.UserID == userID && (listingID == "" || f.ListingID == listingID) {
			matched = append(matched, f)
		}
	}
	start := 0
	if nextToken != "" {
		fmt.Sscanf(nextToken, "%d", &start)
	}
	end := min(start+limit, len(matched))
	page := domain.Page[*domain.Favorite]{Items: matched[start:end], BatchSize: end - start}
	if end < len(matched) {
		page.NextToken = fmt.Sprintf("%d", end)
	}
	return page, nil
}

func (s *memFavorites) count(userID, listingID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.items {
		if f.UserID == userID && f.ListingID == listingID {
			n++
		}
	}
	return n
}

func testImageConfig() ImageConfig {
	return ImageConfig{
		Root:          "public",
		ImagePrefix:   "listing-images",
		MaxImageBytes: 1024,
		AllowedTypes:  []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
		SignedURLTTL:  time.Hour,
		UploadWorkers: 4,
		StepRetries:   2,
		RetryInterval: time.Millisecond,
	}
}

func newTestCoordinator(storage *memStorage, ledger *memLedger) *ImageCoordinator {
	c := NewImageCoordinator(storage, ledger, testImageConfig(), metrics.NewManager("test"), logger.NewNop())
	var (
		mu sync.Mutex
		n  int
	)
	c.newName = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("img-%03d", n)
	}
	return c
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngFile(name string) domain.ImageFile {
	return domain.ImageFile{Name: name, ContentType: "image/png", Data: pngHeader}
}
