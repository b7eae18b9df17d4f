package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"market-search/internal/models"
)

// ErrUpstreamUnavailable wraps any transport or status failure talking to
// the backend. Callers degrade to last-known-good data instead of
// propagating it into the pipeline.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

const (
	// requestTimeout is the per-attempt client-side timeout. A hung
	// request must never leave the pipeline waiting.
	requestTimeout = 10 * time.Second

	maxRetries = 3
)

// kindPaths maps listing kinds to their collection endpoints.
var kindPaths = map[models.Kind]string{
	models.KindProperty:   "/properties",
	models.KindExperience: "/experiences",
	models.KindService:    "/services",
}

// Client talks to the marketplace REST backend. The backend contract is
// treated as opaque: arrays of loosely-typed records whose field names the
// normalizer sorts out.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// New creates a Client for the given base URL (no trailing slash).
func New(baseURL string, log *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// FetchListings returns the raw records for one kind. Idempotent GETs are
// retried with quadratic backoff before giving up.
func (c *Client) FetchListings(ctx context.Context, kind models.Kind) ([]models.RawListing, error) {
	path, ok := kindPaths[kind]
	if !ok {
		return nil, fmt.Errorf("unknown listing kind %q", kind)
	}

	var raws []models.RawListing
	err := c.retryGet(ctx, path, &raws)
	if err != nil {
		return nil, err
	}
	return raws, nil
}

// FetchWishlist returns the authoritative wishlist set from the backend.
func (c *Client) FetchWishlist(ctx context.Context) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := c.retryGet(ctx, "/wishlist", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ConfirmToggle reports the server-side wishlist state after a toggle.
// Not retried: the operation is not idempotent.
func (c *Client) ConfirmToggle(ctx context.Context, item models.WishlistItem) (bool, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return false, fmt.Errorf("encode toggle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/wishlist/toggle", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build toggle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: toggle returned %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var out struct {
		Wishlisted bool `json:"wishlisted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode toggle response: %w", err)
	}
	return out.Wishlisted, nil
}

// retryGet fetches path and decodes the JSON body into out, retrying
// transient failures with quadratic backoff.
func (c *Client) retryGet(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			c.log.Warn("upstream: retrying", "path", path, "attempt", attempt+1, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := c.get(ctx, path, out); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("all %d attempts failed for %s: %w", maxRetries, path, lastErr)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrUpstreamUnavailable, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
