// workers/geocode_worker.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"leftover-food-system/models"

	"gorm.io/gorm"
)

const (
	DefaultGeoapifyURL = "https://api.geoapify.com"
	geocodeBatchSize   = 20
	maxGeocodeMisses   = 3
)

var errNoMatch = errors.New("no geocoding match")

// geoapifyResponse is the format=json shape of /v1/geocode/search.
type geoapifyResponse struct {
	Results []struct {
		Lat       float64 `json:"lat"`
		Lon       float64 `json:"lon"`
		Formatted string  `json:"formatted"`
	} `json:"results"`
}

// GeocodeWorker fills latitude/longitude for listings that only have an address.
type GeocodeWorker struct {
	db         *gorm.DB
	interval   time.Duration
	baseURL    string // e.g., "https://api.geoapify.com"
	apiKey     string
	httpClient *http.Client

	// listing id → failed lookups; owned by the run goroutine
	misses map[uint]int
}

func NewGeocodeWorker(db *gorm.DB, baseURL, apiKey string, interval time.Duration) *GeocodeWorker {
	return &GeocodeWorker{
		db:       db,
		interval: interval,
		baseURL:  baseURL,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		misses: make(map[uint]int),
	}
}

// Run blocks until ctx is done, geocoding one batch per tick.
func (w *GeocodeWorker) Run(ctx context.Context) {
	log.Println("🔁 [GEOCODE] Starting geocode worker…")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if n, err := w.syncBatch(ctx); err != nil {
			log.Printf("❌ [GEOCODE] Batch failed: %v", err)
		} else if n > 0 {
			log.Printf("📍 [GEOCODE] Geocoded %d listing(s)", n)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			log.Println("⏹️ [GEOCODE] Geocode worker stopped")
			return
		}
	}
}

// syncBatch geocodes up to geocodeBatchSize listings and returns how many were updated.
func (w *GeocodeWorker) syncBatch(ctx context.Context) (int, error) {
	if err := w.pruneMisses(ctx); err != nil {
		return 0, err
	}

	q := w.db.WithContext(ctx).
		Select("id", "address").
		Where("latitude IS NULL AND longitude IS NULL AND address <> ''")
	if exhausted := w.exhausted(); len(exhausted) > 0 {
		q = q.Where("id NOT IN ?", exhausted)
	}

	var pending []models.FoodItem
	if err := q.Order("id ASC").Limit(geocodeBatchSize).Find(&pending).Error; err != nil {
		return 0, fmt.Errorf("failed to load pending listings: %w", err)
	}

	updated := 0
	for _, item := range pending {
		lat, lon, err := w.lookup(ctx, item.Address)
		if err != nil {
			if ctx.Err() != nil {
				return updated, ctx.Err()
			}
			w.misses[item.ID]++
			log.Printf("⚠️  [GEOCODE] Listing %d (attempt %d): %v", item.ID, w.misses[item.ID], err)
			continue
		}

		// Only fill coordinates nobody has set in the meantime.
		res := w.db.WithContext(ctx).Model(&models.FoodItem{}).
			Where("id = ? AND latitude IS NULL AND longitude IS NULL", item.ID).
			Updates(map[string]interface{}{"latitude": lat, "longitude": lon})
		if res.Error != nil {
			return updated, fmt.Errorf("failed to store coordinates for listing %d: %w", item.ID, res.Error)
		}
		delete(w.misses, item.ID)
		updated += int(res.RowsAffected)
	}
	return updated, nil
}

// exhausted lists the listings that used up their lookups.
func (w *GeocodeWorker) exhausted() []uint {
	var ids []uint
	for id, n := range w.misses {
		if n >= maxGeocodeMisses {
			ids = append(ids, id)
		}
	}
	return ids
}

// pruneMisses forgets listings that got coordinates elsewhere or lost their address.
func (w *GeocodeWorker) pruneMisses(ctx context.Context) error {
	if len(w.misses) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(w.misses))
	for id := range w.misses {
		ids = append(ids, id)
	}

	var stillPending []uint
	if err := w.db.WithContext(ctx).Model(&models.FoodItem{}).
		Where("id IN ? AND latitude IS NULL AND longitude IS NULL AND address <> ''", ids).
		Pluck("id", &stillPending).Error; err != nil {
		return fmt.Errorf("failed to check failed lookups: %w", err)
	}

	keep := make(map[uint]bool, len(stillPending))
	for _, id := range stillPending {
		keep[id] = true
	}
	for id := range w.misses {
		if !keep[id] {
			delete(w.misses, id)
		}
	}
	return nil
}

func (w *GeocodeWorker) lookup(ctx context.Context, address string) (float64, float64, error) {
	u, err := url.Parse(w.baseURL)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid geocoder URL '%s': %w", w.baseURL, err)
	}
	u = u.JoinPath("/v1/geocode/search")

	q := u.Query()
	q.Set("text", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("apiKey", w.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to call geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, 0, fmt.Errorf("geocoder returned status %d: %s", resp.StatusCode, string(body))
	}

	var out geoapifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, 0, fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	if len(out.Results) == 0 {
		return 0, 0, errNoMatch
	}
	return out.Results[0].Lat, out.Results[0].Lon, nil
}
