package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"market-search/internal/models"
)

// SaveSnapshot replaces the persisted last-known-good collection with the
// given listings.
func (db *DB) SaveSnapshot(ctx context.Context, listings []models.NormalizedListing) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM listing_snapshot"); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, l := range listings {
		payload, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("failed to encode listing: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO listing_snapshot (kind, id, payload, fetched_at)
			VALUES (?, ?, ?, ?)`,
			string(l.Kind), l.ID, string(payload), now)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot row: %w", err)
		}
	}

	return tx.Commit()
}

// LoadSnapshot returns the persisted last-known-good collection.
func (db *DB) LoadSnapshot(ctx context.Context) ([]models.NormalizedListing, error) {
	var rows []struct {
		Payload string `db:"payload"`
	}
	err := db.SelectContext(ctx, &rows,
		"SELECT payload FROM listing_snapshot ORDER BY kind, id")
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	listings := make([]models.NormalizedListing, 0, len(rows))
	for _, r := range rows {
		var l models.NormalizedListing
		if err := json.Unmarshal([]byte(r.Payload), &l); err != nil {
			// A corrupt row should not take down the whole snapshot.
			continue
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// SnapshotInfo returns the size and age of the persisted snapshot.
func (db *DB) SnapshotInfo(ctx context.Context) (count int, fetchedAt time.Time, err error) {
	var row struct {
		Count     int     `db:"count"`
		FetchedAt *string `db:"fetched_at"`
	}
	err = db.GetContext(ctx, &row,
		"SELECT COUNT(*) AS count, MAX(fetched_at) AS fetched_at FROM listing_snapshot")
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to read snapshot info: %w", err)
	}
	if row.FetchedAt != nil {
		fetchedAt, _ = time.Parse(time.RFC3339, *row.FetchedAt)
	}
	return row.Count, fetchedAt, nil
}
