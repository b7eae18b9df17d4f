package wishlist

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"market-search/internal/models"
)

// confirmTimeout bounds the upstream confirmation round trip so a hung
// request never leaves a toggle waiting.
const confirmTimeout = 10 * time.Second

// Store persists the wishlist set locally so favorites survive restarts
// even when the upstream backend is unreachable.
type Store interface {
	LoadWishlist(ctx context.Context) ([]models.WishlistItem, error)
	SaveWishlist(ctx context.Context, items []models.WishlistItem) error
}

// Confirmer reconciles wishlist changes with the upstream backend.
type Confirmer interface {
	FetchWishlist(ctx context.Context) ([]models.WishlistItem, error)
	ConfirmToggle(ctx context.Context, item models.WishlistItem) (bool, error)
}

// Cache tracks favorited listing identities. Reads are pure in-memory
// lookups; Toggle flips the flag optimistically, persists to the local
// store, then confirms with the backend in the background. A failed
// confirmation keeps the optimistic state (last-writer-wins, offline
// friendly) rather than rolling back.
type Cache struct {
	mu        sync.RWMutex
	items     map[string]models.WishlistItem
	store     Store
	confirmer Confirmer
	log       *slog.Logger
}

// New creates an empty cache. Call Load to seed it.
func New(store Store, confirmer Confirmer, log *slog.Logger) *Cache {
	return &Cache{
		items:     make(map[string]models.WishlistItem),
		store:     store,
		confirmer: confirmer,
		log:       log,
	}
}

// Key builds the canonical "{kind}_{id}" identity string.
func Key(kind models.Kind, id int64) string {
	return fmt.Sprintf("%s_%d", kind, id)
}

// Load seeds the cache: upstream state when reachable, otherwise the last
// locally persisted set, otherwise empty.
func (c *Cache) Load(ctx context.Context) {
	items, err := c.confirmer.FetchWishlist(ctx)
	if err != nil {
		c.log.Warn("wishlist: upstream seed failed, falling back to local store", "error", err)
		items, err = c.store.LoadWishlist(ctx)
		if err != nil {
			c.log.Warn("wishlist: local store unavailable, starting empty", "error", err)
			items = nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]models.WishlistItem, len(items))
	for _, it := range items {
		c.items[Key(it.ItemType, it.ItemID)] = it
	}
}

// IsWishlisted reports whether (kind, id) is favorited. No I/O.
func (c *Cache) IsWishlisted(kind models.Kind, id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[Key(kind, id)]
	return ok
}

// Toggle flips the wishlist flag for (kind, id) and returns the new state
// immediately. The flip and the store write happen under the same critical
// section: releasing the lock between them would let two concurrent toggles
// persist their full-set snapshots out of order, losing the later update.
// Upstream confirmation happens in the background and its failure is only
// logged.
func (c *Cache) Toggle(ctx context.Context, kind models.Kind, id int64) bool {
	key := Key(kind, id)

	c.mu.Lock()
	_, had := c.items[key]
	if had {
		delete(c.items, key)
	} else {
		c.items[key] = models.WishlistItem{ItemType: kind, ItemID: id}
	}
	if err := c.store.SaveWishlist(ctx, c.itemsLocked()); err != nil {
		c.log.Warn("wishlist: persist failed", "error", err)
	}
	c.mu.Unlock()

	go c.confirm(models.WishlistItem{ItemType: kind, ItemID: id})

	return !had
}

// Items returns the current wishlist set in deterministic order.
func (c *Cache) Items() []models.WishlistItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.itemsLocked()
}

// itemsLocked materializes the set; callers must hold at least a read lock.
func (c *Cache) itemsLocked() []models.WishlistItem {
	items := make([]models.WishlistItem, 0, len(c.items))
	for _, it := range c.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].ItemType != items[j].ItemType {
			return items[i].ItemType < items[j].ItemType
		}
		return items[i].ItemID < items[j].ItemID
	})
	return items
}

func (c *Cache) confirm(item models.WishlistItem) {
	ctx, cancel := context.WithTimeout(context.Background(), confirmTimeout)
	defer cancel()

	if _, err := c.confirmer.ConfirmToggle(ctx, item); err != nil {
		// Optimistic state is kept on purpose; see package doc.
		c.log.Warn("wishlist: toggle confirmation failed",
			"kind", item.ItemType, "id", item.ItemID, "error", err)
	}
}
