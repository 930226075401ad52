package ingestion

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yakshaver/go-tide-times/internal/models"
	"github.com/yakshaver/go-tide-times/internal/observability"
	"github.com/yakshaver/go-tide-times/internal/repository"
)

// referenceMeanRange is the mean tidal range in metres at the reference
// station (Dublin Port). A tide with this range scores a coefficient of 100.
const referenceMeanRange = 3.5

const timeLayout = "2006-01-02T15:04:05Z"

// TideFetcher guarantees that classified tide data exists in the store for a
// station and date range, fetching from the ERDDAP tabledap service when the
// cache misses.
type TideFetcher struct {
	repo       repository.TideRepository
	baseURL    string
	refStation string
	client     *http.Client
}

func NewTideFetcher(repo repository.TideRepository, baseURL, refStation string) *TideFetcher {
	return &TideFetcher{
		repo:       repo,
		baseURL:    baseURL,
		refStation: refStation,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// EnsureRange makes sure observations for [startDate, endDate] (inclusive
// UTC calendar days) are cached. The presence check only probes the first
// and last day; gaps inside an already-bracketed range go undetected. A
// fetch or store failure is a hard error; an empty or malformed CSV body
// yields zero rows and stores nothing.
func (f *TideFetcher) EnsureRange(ctx context.Context, stationID string, startDate, endDate time.Time) error {
	cached, err := f.isRangeCached(ctx, stationID, startDate, endDate)
	if err != nil {
		return err
	}
	if cached {
		observability.IncTideCacheHit()
		return nil
	}

	// Fetch one padded day each side so extrema at the window boundary
	// classify against their real neighbours.
	obs, err := f.fetch(ctx, stationID, startDate.AddDate(0, 0, -1), endDate.AddDate(0, 0, 1))
	if err != nil {
		return err
	}

	obs = Classify(obs)
	obs = filterWindow(obs, startDate, endDate)

	if len(obs) == 0 {
		return nil
	}

	if err := f.repo.InsertTideBatch(ctx, obs); err != nil {
		return fmt.Errorf("error storing tide batch: %w", err)
	}
	if err := f.repo.BackfillRanges(ctx); err != nil {
		return err
	}
	return f.repo.BackfillCoefficients(ctx, f.refStation, referenceMeanRange)
}

func (f *TideFetcher) isRangeCached(ctx context.Context, stationID string, startDate, endDate time.Time) (bool, error) {
	for _, day := range []string{dayString(startDate), dayString(endDate)} {
		ok, err := f.repo.HasTideDay(ctx, stationID, day)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (f *TideFetcher) fetch(ctx context.Context, stationID string, startDate, endDate time.Time) ([]models.TideObservation, error) {
	queryURL := f.buildQuery(stationID, startDate, endDate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	slog.Info("fetching tide data", "station", stationID, "url", queryURL)
	observability.IncTideFetch()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching tide data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tide service returned status %d for %s", resp.StatusCode, stationID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading tide response: %w", err)
	}

	return parseCSV(body, stationID), nil
}

// buildQuery assembles a tabledap query selecting the six fixed columns,
// constrained to the station and time bounds and ordered by time. The whole
// constraint string is percent-encoded as tabledap expects.
func (f *TideFetcher) buildQuery(stationID string, startDate, endDate time.Time) string {
	columns := "time,stationID,longitude,latitude,Water_Level,Water_Level_ODM"
	constraints := strings.Join([]string{
		`stationID="` + stationID + `"`,
		"time>=" + dayString(startDate) + "T00:00:00Z",
		"time<=" + dayString(endDate) + "T23:59:59Z",
		`orderBy("time")`,
	}, "&")

	return f.baseURL + "?" + url.QueryEscape(columns+"&"+constraints)
}

// parseCSV converts a tabledap CSV body into observations. The first two
// lines are column names and units. Rows with fewer than six columns or an
// unparseable timestamp are skipped; non-numeric level fields become nil.
func parseCSV(body []byte, stationID string) []models.TideObservation {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil || len(records) < 3 {
		return nil
	}

	var obs []models.TideObservation
	for _, rec := range records[2:] {
		if len(rec) < 6 {
			continue
		}

		t, err := time.Parse(timeLayout, rec[0])
		if err != nil {
			continue
		}

		sid := rec[1]
		if sid == "" {
			sid = stationID
		}

		obs = append(obs, models.TideObservation{
			StationID: sid,
			Time:      t,
			Level:     parseLevel(rec[4]),
			LevelODM:  parseLevel(rec[5]),
		})
	}

	return obs
}

func parseLevel(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// filterWindow drops the padding rows, keeping only observations within the
// originally requested calendar days.
func filterWindow(obs []models.TideObservation, startDate, endDate time.Time) []models.TideObservation {
	windowStart := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 23, 59, 59, 0, time.UTC)

	kept := obs[:0]
	for _, o := range obs {
		if o.Time.Before(windowStart) || o.Time.After(windowEnd) {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}

func dayString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
