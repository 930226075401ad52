package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/yakshaver/go-tide-times/internal/models"
)

type ensureCall struct {
	station    string
	start, end time.Time
}

type fakeTides struct {
	calls []ensureCall
	err   error
}

func (f *fakeTides) EnsureRange(ctx context.Context, stationID string, startDate, endDate time.Time) error {
	f.calls = append(f.calls, ensureCall{stationID, startDate, endDate})
	return f.err
}

type fakeMoons struct {
	years  []int
	phases map[string]string
	err    error
}

func (f *fakeMoons) EnsureYears(ctx context.Context, years []int) {
	f.years = append(f.years, years...)
}

func (f *fakeMoons) PhasesForRange(ctx context.Context, start, end time.Time) (map[string]string, error) {
	return f.phases, f.err
}

type fakeWarnings struct {
	updated bool
	days    map[string]models.DayWarning
	err     error
}

func (f *fakeWarnings) EnsureUpdated(ctx context.Context) {
	f.updated = true
}

func (f *fakeWarnings) ForStation(ctx context.Context, stationID string, start, end time.Time) (map[string]models.DayWarning, error) {
	return f.days, f.err
}

type fakeStore struct {
	rows []models.TideObservation
	err  error
}

func (f *fakeStore) ListTideEvents(ctx context.Context, stationID string, start, end time.Time) ([]models.TideObservation, error) {
	return f.rows, f.err
}

func freezeToday(t *testing.T, at time.Time) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })
}

func newTestBuilder(deps *Deps) *Builder {
	return New("Dublin_Port", func(ctx context.Context) (*Deps, error) {
		return deps, nil
	})
}

func extremum(ts time.Time, category models.TideCategory, level float64, coef *int) models.TideObservation {
	return models.TideObservation{
		StationID:   "Howth",
		Time:        ts,
		Category:    category,
		Level:       &level,
		Coefficient: coef,
	}
}

func TestBuild_EmptyStationIsReadyAndEmpty(t *testing.T) {
	freezeToday(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC))

	tides := &fakeTides{}
	b := newTestBuilder(&Deps{
		Store:    &fakeStore{},
		Tides:    tides,
		Moons:    &fakeMoons{},
		Warnings: &fakeWarnings{},
		Path:     "/tmp/test.db",
	})

	s := b.Build(context.Background(), "", 7)

	if !s.Ready {
		t.Error("expected ready schedule")
	}
	if s.InitError != "" || s.FetchError != "" {
		t.Errorf("expected no errors, got init=%q fetch=%q", s.InitError, s.FetchError)
	}
	if len(s.Events) != 0 {
		t.Errorf("expected no events, got %d", len(s.Events))
	}
	if len(tides.calls) != 0 {
		t.Errorf("expected no fetches for an empty station, got %d", len(tides.calls))
	}
}

func TestBuild_OpenFailureSetsInitError(t *testing.T) {
	freezeToday(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC))

	opens := 0
	b := New("Dublin_Port", func(ctx context.Context) (*Deps, error) {
		opens++
		return nil, errors.New("disk full")
	})

	s := b.Build(context.Background(), "Howth", 7)
	if s.Ready {
		t.Error("expected not ready")
	}
	if s.InitError == "" {
		t.Error("expected an initialization error")
	}

	// The store is retried on the next run, not poisoned forever.
	b.Build(context.Background(), "Howth", 7)
	if opens != 2 {
		t.Errorf("expected open to be retried, got %d attempts", opens)
	}
}

func TestBuild_TideFailureSetsFetchError(t *testing.T) {
	freezeToday(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC))

	b := newTestBuilder(&Deps{
		Store:    &fakeStore{},
		Tides:    &fakeTides{err: errors.New("tabledap down")},
		Moons:    &fakeMoons{},
		Warnings: &fakeWarnings{},
	})

	s := b.Build(context.Background(), "Howth", 7)
	if !s.Ready {
		t.Error("expected ready: the store opened fine")
	}
	if s.FetchError == "" {
		t.Error("expected a fetch error")
	}
	if len(s.Events) != 0 {
		t.Errorf("expected no events on fetch failure, got %d", len(s.Events))
	}
}

func TestBuild_WindowsAndDefaults(t *testing.T) {
	freezeToday(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC))

	tides := &fakeTides{}
	moons := &fakeMoons{}
	b := newTestBuilder(&Deps{
		Store:    &fakeStore{},
		Tides:    tides,
		Moons:    moons,
		Warnings: &fakeWarnings{},
	})

	s := b.Build(context.Background(), "Howth", 0)
	if s.Days != DefaultDays {
		t.Errorf("expected %d days by default, got %d", DefaultDays, s.Days)
	}

	if len(tides.calls) != 2 {
		t.Fatalf("expected 2 ensure calls, got %d", len(tides.calls))
	}

	ref := tides.calls[0]
	if ref.station != "Dublin_Port" {
		t.Errorf("expected the reference station first, got %s", ref.station)
	}
	if !ref.start.Equal(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)) ||
		!ref.end.Equal(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected reference window %v..%v", ref.start, ref.end)
	}

	target := tides.calls[1]
	if target.station != "Howth" {
		t.Errorf("expected the target station second, got %s", target.station)
	}
	if !target.start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) ||
		!target.end.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected target window %v..%v", target.start, target.end)
	}

	if len(moons.years) != 1 || moons.years[0] != 2026 {
		t.Errorf("expected moon year [2026], got %v", moons.years)
	}
}

func TestBuild_SpansYearBoundary(t *testing.T) {
	freezeToday(t, time.Date(2026, 12, 29, 8, 0, 0, 0, time.UTC))

	moons := &fakeMoons{}
	b := newTestBuilder(&Deps{
		Store:    &fakeStore{},
		Tides:    &fakeTides{},
		Moons:    moons,
		Warnings: &fakeWarnings{},
	})

	b.Build(context.Background(), "Howth", 7)

	if len(moons.years) != 2 || moons.years[0] != 2026 || moons.years[1] != 2027 {
		t.Errorf("expected moon years [2026 2027], got %v", moons.years)
	}
}

func TestBuild_MergesPlateauAndAttachesEnrichment(t *testing.T) {
	freezeToday(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC))

	coef := 95
	rows := []models.TideObservation{
		extremum(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC), models.TideHigh, 3.1, &coef),
		extremum(time.Date(2026, 3, 2, 6, 10, 0, 0, time.UTC), models.TideHigh, 3.1, &coef),
		extremum(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), models.TideLow, 0.5, nil),
	}
	red := "red"
	warnings := &fakeWarnings{days: map[string]models.DayWarning{
		"2026-03-02": {Weather: &red},
	}}
	moons := &fakeMoons{phases: map[string]string{"2026-03-02": models.MoonFull}}

	b := newTestBuilder(&Deps{
		Store:    &fakeStore{rows: rows},
		Tides:    &fakeTides{},
		Moons:    moons,
		Warnings: warnings,
	})

	s := b.Build(context.Background(), "Howth", 7)

	if !warnings.updated {
		t.Error("expected the warning cache to be refreshed")
	}
	if len(s.Events) != 2 {
		t.Fatalf("expected 2 merged events, got %d", len(s.Events))
	}

	high := s.Events[0]
	if high.Category != "High water" {
		t.Errorf("expected High water, got %s", high.Category)
	}
	if high.Label != "2026-03-02 06:00 - 2026-03-02 06:10" {
		t.Errorf("unexpected label %q", high.Label)
	}
	if !high.Mid.Equal(time.Date(2026, 3, 2, 6, 5, 0, 0, time.UTC)) {
		t.Errorf("expected midpoint 06:05, got %v", high.Mid)
	}
	if high.Level != "3.10" {
		t.Errorf("expected level 3.10, got %q", high.Level)
	}
	if high.Coefficient == nil || *high.Coefficient != 95 {
		t.Errorf("expected coefficient 95, got %v", high.Coefficient)
	}
	if high.MoonPhase == nil || *high.MoonPhase != models.MoonFull {
		t.Errorf("expected full moon, got %v", high.MoonPhase)
	}
	if high.WarningIcon == nil || *high.WarningIcon != "red" {
		t.Errorf("expected red warning icon, got %v", high.WarningIcon)
	}

	low := s.Events[1]
	if low.Category != "Low water" {
		t.Errorf("expected Low water, got %s", low.Category)
	}
	if !low.Start.Equal(low.End) {
		t.Error("expected a single-row event to have equal start and end")
	}

	if s.HeaderWarning == nil || *s.HeaderWarning != "red" {
		t.Errorf("expected red header banner, got %v", s.HeaderWarning)
	}
}

func TestBuild_DistinctLevelsNotMerged(t *testing.T) {
	freezeToday(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC))

	rows := []models.TideObservation{
		extremum(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC), models.TideHigh, 3.1, nil),
		extremum(time.Date(2026, 3, 2, 6, 10, 0, 0, time.UTC), models.TideHigh, 3.2, nil),
	}
	b := newTestBuilder(&Deps{
		Store:    &fakeStore{rows: rows},
		Tides:    &fakeTides{},
		Moons:    &fakeMoons{},
		Warnings: &fakeWarnings{},
	})

	s := b.Build(context.Background(), "Howth", 7)
	if len(s.Events) != 2 {
		t.Errorf("expected 2 events for distinct levels, got %d", len(s.Events))
	}
}

func TestBuild_NonExtremeRowsIgnored(t *testing.T) {
	freezeToday(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC))

	rows := []models.TideObservation{
		extremum(time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC), models.TideFlood, 2.8, nil),
		extremum(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC), models.TideHigh, 3.1, nil),
		extremum(time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC), models.TideEbb, 2.9, nil),
		extremum(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), models.TideLow, 0.5, nil),
	}
	b := newTestBuilder(&Deps{
		Store:    &fakeStore{rows: rows},
		Tides:    &fakeTides{},
		Moons:    &fakeMoons{},
		Warnings: &fakeWarnings{},
	})

	s := b.Build(context.Background(), "Howth", 7)
	if len(s.Events) != 2 {
		t.Fatalf("expected only the 2 extrema, got %d events", len(s.Events))
	}
	if s.Events[0].Category != "High water" || s.Events[1].Category != "Low water" {
		t.Errorf("expected [High water, Low water], got [%s, %s]",
			s.Events[0].Category, s.Events[1].Category)
	}
}

func TestBuild_SoftFailuresLeaveEnrichmentEmpty(t *testing.T) {
	freezeToday(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC))

	rows := []models.TideObservation{
		extremum(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC), models.TideHigh, 3.1, nil),
	}
	b := newTestBuilder(&Deps{
		Store:    &fakeStore{rows: rows},
		Tides:    &fakeTides{},
		Moons:    &fakeMoons{err: errors.New("usno down")},
		Warnings: &fakeWarnings{err: errors.New("met.ie down")},
	})

	s := b.Build(context.Background(), "Howth", 7)

	if s.FetchError != "" {
		t.Errorf("enrichment failures must not fail the run, got %q", s.FetchError)
	}
	if len(s.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(s.Events))
	}
	if s.Events[0].MoonPhase != nil || s.Events[0].WarningIcon != nil {
		t.Error("expected empty enrichment fields")
	}
	if s.HeaderWarning != nil {
		t.Error("expected no header banner")
	}
}

func TestBuild_HeaderKeepsHighestIcon(t *testing.T) {
	freezeToday(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC))

	rows := []models.TideObservation{
		extremum(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC), models.TideHigh, 3.1, nil),
		extremum(time.Date(2026, 3, 3, 6, 40, 0, 0, time.UTC), models.TideHigh, 3.0, nil),
	}
	yellow, red := "yellow", "red"
	b := newTestBuilder(&Deps{
		Store: &fakeStore{rows: rows},
		Tides: &fakeTides{},
		Moons: &fakeMoons{},
		Warnings: &fakeWarnings{days: map[string]models.DayWarning{
			"2026-03-02": {Weather: &yellow},
			"2026-03-03": {Weather: &red},
		}},
	})

	s := b.Build(context.Background(), "Howth", 7)
	if s.HeaderWarning == nil || *s.HeaderWarning != "red" {
		t.Errorf("expected red banner, got %v", s.HeaderWarning)
	}
}
