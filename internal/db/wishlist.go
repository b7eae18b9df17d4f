package db

import (
	"context"
	"fmt"

	"market-search/internal/models"
)

// LoadWishlist returns the locally persisted wishlist set.
func (db *DB) LoadWishlist(ctx context.Context) ([]models.WishlistItem, error) {
	var rows []struct {
		ItemType string `db:"item_type"`
		ItemID   int64  `db:"item_id"`
	}
	err := db.SelectContext(ctx, &rows,
		"SELECT item_type, item_id FROM wishlist ORDER BY item_type, item_id")
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}

	items := make([]models.WishlistItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, models.WishlistItem{
			ItemType: models.Kind(r.ItemType),
			ItemID:   r.ItemID,
		})
	}
	return items, nil
}

// SaveWishlist replaces the persisted wishlist with the given set.
func (db *DB) SaveWishlist(ctx context.Context, items []models.WishlistItem) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin wishlist tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM wishlist"); err != nil {
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}
	for _, it := range items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO wishlist (item_type, item_id) VALUES (?, ?)",
			string(it.ItemType), it.ItemID)
		if err != nil {
			return fmt.Errorf("failed to insert wishlist item: %w", err)
		}
	}

	return tx.Commit()
}
