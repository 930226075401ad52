// Package schedule assembles the display-ready tide schedule for a station:
// it drives the tide, moon phase and warning caches, reads back the stored
// high/low events and merges everything into dated display rows.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/yakshaver/go-tide-times/internal/catalog"
	"github.com/yakshaver/go-tide-times/internal/models"
	"github.com/yakshaver/go-tide-times/internal/observability"
)

// DefaultDays is the window length used when the caller passes none.
const DefaultDays = 7

// The reference station window is wider than any display window so that
// coefficient propagation always finds a same-category extremum nearby.
const (
	refPadBefore = 2
	refPadAfter  = 14
)

type TideEnsurer interface {
	EnsureRange(ctx context.Context, stationID string, startDate, endDate time.Time) error
}

type MoonSource interface {
	EnsureYears(ctx context.Context, years []int)
	PhasesForRange(ctx context.Context, start, end time.Time) (map[string]string, error)
}

type WarningSource interface {
	EnsureUpdated(ctx context.Context)
	ForStation(ctx context.Context, stationID string, start, end time.Time) (map[string]models.DayWarning, error)
}

type EventStore interface {
	ListTideEvents(ctx context.Context, stationID string, start, end time.Time) ([]models.TideObservation, error)
}

// Deps bundles the opened pipeline collaborators.
type Deps struct {
	Store    EventStore
	Tides    TideEnsurer
	Moons    MoonSource
	Warnings WarningSource
	Path     string
	Close    func() error
}

// Event is one display row: a merged high/low extremum with its enrichment.
type Event struct {
	Label       string    `json:"label"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Mid         time.Time `json:"mid"`
	Level       string    `json:"level"`
	Category    string    `json:"category"`
	Coefficient *int      `json:"coefficient,omitempty"`
	MoonPhase   *string   `json:"moonPhase,omitempty"`
	WarningIcon *string   `json:"warningIcon,omitempty"`
}

// Schedule is the full result handed to the rendering layer. InitError and
// FetchError are mutually exclusive with a populated Events list; enrichment
// gaps are invisible (the optional fields are simply nil).
type Schedule struct {
	StationID     string  `json:"stationId"`
	StationName   string  `json:"stationName"`
	Days          int     `json:"days"`
	Ready         bool    `json:"ready"`
	StorePath     string  `json:"storePath,omitempty"`
	InitError     string  `json:"initError,omitempty"`
	FetchError    string  `json:"fetchError,omitempty"`
	Events        []Event `json:"events"`
	HeaderWarning *string `json:"headerWarning,omitempty"`
}

// Builder runs the schedule pipeline. Runs are serialized: the store is a
// single local file with a single-writer assumption.
type Builder struct {
	mu         sync.Mutex
	open       func(ctx context.Context) (*Deps, error)
	deps       *Deps
	refStation string
}

// New creates a Builder. The open callback initializes the store and the
// fetchers on first use; an open failure is reported per-call as an
// initialization error rather than crashing the process.
func New(refStation string, open func(ctx context.Context) (*Deps, error)) *Builder {
	return &Builder{open: open, refStation: refStation}
}

// Close releases the underlying store if it was opened.
func (b *Builder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deps == nil || b.deps.Close == nil {
		return nil
	}
	return b.deps.Close()
}

// Build runs one synchronous pipeline pass for the station and day window
// anchored at today, UTC midnight. An empty station id yields a ready but
// empty schedule. Tide data problems abort the run with FetchError set; moon
// phase and warning problems only leave their fields empty.
func (b *Builder) Build(ctx context.Context, stationID string, days int) Schedule {
	b.mu.Lock()
	defer b.mu.Unlock()

	began := time.Now()
	defer func() {
		observability.ObserveScheduleBuild(time.Since(began))
	}()

	if days < 1 {
		days = DefaultDays
	}

	s := Schedule{
		StationID: stationID,
		Days:      days,
		Events:    []Event{},
	}
	if stationID != "" {
		s.StationName = catalog.Label(stationID)
	}

	if b.deps == nil {
		deps, err := b.open(ctx)
		if err != nil {
			s.InitError = fmt.Sprintf("store initialization failed: %v", err)
			slog.Error("store initialization failed", "error", err)
			return s
		}
		b.deps = deps
	}
	s.Ready = true
	s.StorePath = b.deps.Path

	if stationID == "" {
		return s
	}

	start := startOfDayUTC(clock.Now())
	end := start.AddDate(0, 0, days-1)

	// The reference station is always cached first: coefficient propagation
	// for every other station samples its extrema.
	if err := b.deps.Tides.EnsureRange(ctx, b.refStation, start.AddDate(0, 0, -refPadBefore), start.AddDate(0, 0, refPadAfter)); err != nil {
		s.FetchError = fmt.Sprintf("tide data fetch failed: %v", err)
		slog.Error("reference station fetch failed", "station", b.refStation, "error", err)
		return s
	}

	// One padded day each side so boundary extrema classify correctly.
	if err := b.deps.Tides.EnsureRange(ctx, stationID, start.AddDate(0, 0, -1), end.AddDate(0, 0, 1)); err != nil {
		s.FetchError = fmt.Sprintf("tide data fetch failed: %v", err)
		slog.Error("station fetch failed", "station", stationID, "error", err)
		return s
	}

	years := []int{start.Year()}
	if end.Year() != start.Year() {
		years = append(years, end.Year())
	}
	b.deps.Moons.EnsureYears(ctx, years)

	moonPhases, err := b.deps.Moons.PhasesForRange(ctx, start.AddDate(0, 0, -1), end)
	if err != nil {
		slog.Warn("moon phase lookup failed", "error", err)
		moonPhases = nil
	}

	b.deps.Warnings.EnsureUpdated(ctx)
	warnings, err := b.deps.Warnings.ForStation(ctx, stationID, start, end)
	if err != nil {
		slog.Warn("warning lookup failed", "station", stationID, "error", err)
		warnings = nil
	}

	// Read from 17:00 UTC the day before so the previous day's last extremum
	// is included when its merged event spills into the window.
	readStart := start.AddDate(0, 0, -1).Add(17 * time.Hour)
	readEnd := end.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	rows, err := b.deps.Store.ListTideEvents(ctx, stationID, readStart, readEnd)
	if err != nil {
		s.FetchError = fmt.Sprintf("tide data read failed: %v", err)
		slog.Error("tide event read failed", "station", stationID, "error", err)
		return s
	}

	s.Events = buildEvents(mergeRuns(rows), moonPhases, warnings)

	for _, ev := range s.Events {
		if ev.WarningIcon == nil {
			continue
		}
		if s.HeaderWarning == nil {
			icon := *ev.WarningIcon
			s.HeaderWarning = &icon
		} else {
			icon := models.HigherIcon(*s.HeaderWarning, *ev.WarningIcon)
			s.HeaderWarning = &icon
		}
	}

	return s
}

// run is a maximal sequence of consecutive stored rows sharing the same
// category and exact level, e.g. a plateau held across several samples.
type run struct {
	category    models.TideCategory
	level       *float64
	coefficient *int
	start, end  time.Time
}

func mergeRuns(rows []models.TideObservation) []run {
	var merged []run
	var cur *run

	for _, row := range rows {
		if !row.Category.IsExtreme() {
			continue
		}
		if cur != nil && cur.category == row.Category && levelEqual(cur.level, row.Level) {
			cur.end = row.Time
			continue
		}
		if cur != nil {
			merged = append(merged, *cur)
		}
		cur = &run{
			category:    row.Category,
			level:       row.Level,
			coefficient: row.Coefficient,
			start:       row.Time,
			end:         row.Time,
		}
	}
	if cur != nil {
		merged = append(merged, *cur)
	}

	return merged
}

func buildEvents(runs []run, moonPhases map[string]string, warnings map[string]models.DayWarning) []Event {
	events := make([]Event, 0, len(runs))

	for _, r := range runs {
		mid := midpoint(r.start, r.end)
		dateKey := mid.Format("2006-01-02")

		ev := Event{
			Label:       r.start.Format("2006-01-02 15:04") + " - " + r.end.Format("2006-01-02 15:04"),
			Start:       r.start,
			End:         r.end,
			Mid:         mid,
			Category:    r.category.Label(),
			Coefficient: r.coefficient,
		}
		if r.level != nil {
			ev.Level = fmt.Sprintf("%.2f", *r.level)
		}
		if phase, ok := moonPhases[dateKey]; ok {
			ev.MoonPhase = &phase
		}
		if dw, ok := warnings[dateKey]; ok {
			ev.WarningIcon = dw.Primary()
		}

		events = append(events, ev)
	}

	return events
}

func midpoint(start, end time.Time) time.Time {
	mean := math.Round(float64(start.Unix()+end.Unix()) / 2)
	return time.Unix(int64(mean), 0).UTC()
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func levelEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
