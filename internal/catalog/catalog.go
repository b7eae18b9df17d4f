package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"market-search/internal/cache"
	"market-search/internal/category"
	"market-search/internal/filter"
	"market-search/internal/models"
	"market-search/internal/normalize"
)

// ErrNotFound is returned when no listing matches a (kind, id) identity.
var ErrNotFound = errors.New("listing not found")

// ErrNoData is returned when neither the upstream nor the persisted
// snapshot could provide a collection.
var ErrNoData = errors.New("no listing data available")

// Fetcher is the upstream read side the catalog refreshes from.
type Fetcher interface {
	FetchListings(ctx context.Context, kind models.Kind) ([]models.RawListing, error)
}

// SnapshotStore persists the last-known-good normalized collection.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, listings []models.NormalizedListing) error
	LoadSnapshot(ctx context.Context) ([]models.NormalizedListing, error)
}

// SearchResult is the view model handed to rendering clients: the flat
// filtered collection plus per-kind category buckets built from it.
type SearchResult struct {
	Total       int                                     `json:"total"`
	Listings    []models.NormalizedListing              `json:"listings"`
	Buckets     map[models.Kind][]models.CategoryBucket `json:"buckets"`
	RefreshedAt time.Time                               `json:"refreshed_at"`
}

// Supported sort orders. Sorting is a post-processing step over the
// filtered set, not part of the predicate engine.
const (
	SortPriceLowHigh = "price_low_high"
	SortPriceHighLow = "price_high_low"
	SortRating       = "rating"
)

// Catalog owns the in-memory normalized collection and runs the
// filter/aggregate pipeline against it. Refreshes are guarded by a
// monotonically increasing sequence token so an older in-flight refresh
// can never clobber a newer one.
type Catalog struct {
	fetcher   Fetcher
	store     SnapshotStore
	wishlist  normalize.WishlistChecker
	engine    *filter.Engine
	respCache cache.Cache
	log       *slog.Logger

	seq atomic.Uint64

	mu          sync.RWMutex
	listings    []models.NormalizedListing
	refreshedAt time.Time
	appliedSeq  uint64
}

// New wires a Catalog. respCache may be a NoOpCache but not nil.
func New(fetcher Fetcher, store SnapshotStore, wl normalize.WishlistChecker, engine *filter.Engine, respCache cache.Cache, log *slog.Logger) *Catalog {
	return &Catalog{
		fetcher:   fetcher,
		store:     store,
		wishlist:  wl,
		engine:    engine,
		respCache: respCache,
		log:       log,
	}
}

// Refresh fetches all three kinds from the upstream, normalizes them and
// commits the result. A refresh that completes after a newer one is
// discarded. On any fetch failure the current collection stays untouched.
func (c *Catalog) Refresh(ctx context.Context) error {
	token := c.seq.Add(1)

	collections := make([][]models.NormalizedListing, len(models.Kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range models.Kinds {
		g.Go(func() error {
			raws, err := c.fetcher.FetchListings(gctx, kind)
			if err != nil {
				return fmt.Errorf("fetch %s listings: %w", kind, err)
			}
			collections[i] = normalize.NormalizeAll(raws, kind, c.wishlist, c.log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.log.Warn("catalog: refresh failed, keeping previous collection", "error", err)
		return err
	}

	var listings []models.NormalizedListing
	for _, col := range collections {
		listings = append(listings, col...)
	}

	if !c.commit(token, listings) {
		c.log.Info("catalog: discarding stale refresh", "token", token)
		return nil
	}

	if err := c.store.SaveSnapshot(ctx, listings); err != nil {
		c.log.Warn("catalog: snapshot persist failed", "error", err)
	}
	c.invalidate(ctx)

	c.log.Info("catalog: refreshed", "listings", len(listings), "token", token)
	return nil
}

// commit installs a refreshed collection unless a newer token already won.
func (c *Catalog) commit(token uint64, listings []models.NormalizedListing) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token < c.appliedSeq {
		return false
	}
	c.appliedSeq = token
	c.listings = listings
	c.refreshedAt = time.Now()
	return true
}

// LoadFromSnapshot seeds the collection from the persisted last-known-good
// snapshot, for cold starts with the upstream down.
func (c *Catalog) LoadFromSnapshot(ctx context.Context) error {
	listings, err := c.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if len(listings) == 0 {
		return ErrNoData
	}
	c.commit(c.seq.Add(1), listings)
	c.log.Info("catalog: serving persisted snapshot", "listings", len(listings))
	return nil
}

// Run refreshes the catalog on a fixed interval until ctx is cancelled.
func (c *Catalog) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Errors already degrade to last-known-good inside Refresh.
			_ = c.Refresh(ctx)
		}
	}
}

// Search runs the full pipeline: reconcile wishlist flags, filter, sort,
// aggregate. It never fails; an empty catalog yields an empty result.
func (c *Catalog) Search(criteria models.FilterCriteria, sortBy string) SearchResult {
	c.mu.RLock()
	listings := c.listings
	refreshedAt := c.refreshedAt
	c.mu.RUnlock()

	// Wishlist state moves independently of refreshes, so the flag is
	// reconciled against the cache at search time.
	reconciled := make([]models.NormalizedListing, len(listings))
	for i, l := range listings {
		if c.wishlist != nil {
			l.IsWishlisted = c.wishlist.IsWishlisted(l.Kind, l.ID)
		}
		reconciled[i] = l
	}

	filtered := c.engine.Apply(reconciled, criteria)
	Sort(filtered, sortBy)

	return SearchResult{
		Total:       len(filtered),
		Listings:    filtered,
		Buckets:     category.AggregateAll(filtered),
		RefreshedAt: refreshedAt,
	}
}

// Get returns one listing by identity, with its wishlist flag reconciled.
func (c *Catalog) Get(kind models.Kind, id int64) (models.NormalizedListing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.listings {
		if l.Kind == kind && l.ID == id {
			if c.wishlist != nil {
				l.IsWishlisted = c.wishlist.IsWishlisted(kind, id)
			}
			return l, nil
		}
	}
	return models.NormalizedListing{}, ErrNotFound
}

// Listings returns a copy of the current collection in presentation order.
func (c *Catalog) Listings() []models.NormalizedListing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.NormalizedListing, len(c.listings))
	copy(out, c.listings)
	return out
}

// Size returns the collection size and its refresh time.
func (c *Catalog) Size() (int, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.listings), c.refreshedAt
}

// InvalidateSearchCache drops cached search responses. Called after
// wishlist toggles as well as refreshes.
func (c *Catalog) InvalidateSearchCache(ctx context.Context) {
	c.invalidate(ctx)
}

func (c *Catalog) invalidate(ctx context.Context) {
	if err := c.respCache.DeleteByPattern(ctx, cache.KeyPrefixSearch+":*"); err != nil {
		c.log.Warn("catalog: search cache invalidation failed", "error", err)
	}
	if err := c.respCache.DeleteByPattern(ctx, cache.KeyPrefixOptions+":*"); err != nil {
		c.log.Warn("catalog: options cache invalidation failed", "error", err)
	}
}

// Sort orders listings in place. Unknown sort keys leave the upstream
// presentation order untouched. Sorting is stable so equal keys keep
// their relative order.
func Sort(listings []models.NormalizedListing, sortBy string) {
	switch sortBy {
	case SortPriceLowHigh:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Price < listings[j].Price
		})
	case SortPriceHighLow:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Price > listings[j].Price
		})
	case SortRating:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Rating > listings[j].Rating
		})
	}
}
