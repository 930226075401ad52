package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yakshaver/go-tide-times/internal/models"
	"github.com/yakshaver/go-tide-times/internal/observability"
	"github.com/yakshaver/go-tide-times/internal/repository"
)

var phaseCodes = map[string]string{
	"New Moon":      models.MoonNew,
	"First Quarter": models.MoonFirstQuarter,
	"Full Moon":     models.MoonFull,
	"Last Quarter":  models.MoonLastQuarter,
}

// MoonCache fetches yearly moon phase lists from the USNO API and caches
// them. Phase data is enrichment only: every failure is logged and swallowed
// so callers just see whatever is, or is not, cached.
type MoonCache struct {
	repo    repository.MoonRepository
	baseURL string
	client  *http.Client
}

func NewMoonCache(repo repository.MoonRepository, baseURL string) *MoonCache {
	return &MoonCache{
		repo:    repo,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// EnsureYears caches phase events for each distinct requested year that is
// not already covered. At most one fetch per year is ever issued.
func (m *MoonCache) EnsureYears(ctx context.Context, years []int) {
	seen := make(map[int]bool, len(years))

	for _, year := range years {
		if seen[year] {
			continue
		}
		seen[year] = true

		cached, err := m.repo.HasMoonYear(ctx, year)
		if err != nil {
			slog.Warn("moon phase cache check failed", "year", year, "error", err)
			continue
		}
		if cached {
			continue
		}

		phases, err := m.fetchYear(ctx, year)
		if err != nil {
			slog.Warn("moon phase fetch failed", "year", year, "error", err)
			continue
		}
		if err := m.repo.InsertMoonPhases(ctx, phases); err != nil {
			slog.Warn("moon phase store failed", "year", year, "error", err)
		}
	}
}

// PhasesForRange returns cached phase codes keyed by calendar day.
func (m *MoonCache) PhasesForRange(ctx context.Context, start, end time.Time) (map[string]string, error) {
	return m.repo.MoonPhasesByDay(ctx, start, end)
}

type usnoResponse struct {
	PhaseData []usnoPhase `json:"phasedata"`
}

type usnoPhase struct {
	Phase string `json:"phase"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Time  string `json:"time"` // HH:MM
}

func (m *MoonCache) fetchYear(ctx context.Context, year int) ([]models.MoonPhase, error) {
	// The ID parameter identifies this client to the USNO, per their API
	// guidance.
	url := fmt.Sprintf("%s?ID=tidetimes&year=%d", m.baseURL, year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	observability.IncMoonFetch()

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching moon phases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moon phase API returned status %d", resp.StatusCode)
	}

	var data usnoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding moon phase response: %w", err)
	}
	if len(data.PhaseData) == 0 {
		return nil, fmt.Errorf("moon phase response for %d is empty", year)
	}

	return parsePhases(data.PhaseData), nil
}

// parsePhases maps API phase names to short codes and builds UTC timestamps.
// Unrecognised phase names and incomplete entries are dropped.
func parsePhases(entries []usnoPhase) []models.MoonPhase {
	var phases []models.MoonPhase

	for _, e := range entries {
		code, ok := phaseCodes[e.Phase]
		if !ok {
			continue
		}
		if e.Year == 0 || e.Month == 0 || e.Day == 0 {
			continue
		}

		hhmm := e.Time
		if hhmm == "" {
			hhmm = "00:00"
		}

		t, err := time.Parse(timeLayout, fmt.Sprintf("%04d-%02d-%02dT%s:00Z", e.Year, e.Month, e.Day, hhmm))
		if err != nil {
			continue
		}

		phases = append(phases, models.MoonPhase{Time: t, Phase: code})
	}

	return phases
}
