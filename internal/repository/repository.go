package repository

import (
	"context"
	"time"

	"github.com/yakshaver/go-tide-times/internal/models"
)

// StationRepository manages the seeded station reference rows.
type StationRepository interface {
	UpsertStations(ctx context.Context, stations []models.Station) error
	StationAreaCodes(ctx context.Context, stationID string) ([]string, error)
}

// TideRepository owns the TideData table. Inserted rows are never
// overwritten; the back-fill passes only fill columns that are still NULL.
type TideRepository interface {
	HasTideDay(ctx context.Context, stationID, day string) (bool, error)
	InsertTideBatch(ctx context.Context, obs []models.TideObservation) error
	BackfillRanges(ctx context.Context) error
	BackfillCoefficients(ctx context.Context, refStationID string, refMeanRange float64) error
	ListTideEvents(ctx context.Context, stationID string, start, end time.Time) ([]models.TideObservation, error)
}

// MoonRepository is the append-only moon phase cache.
type MoonRepository interface {
	HasMoonYear(ctx context.Context, year int) (bool, error)
	InsertMoonPhases(ctx context.Context, phases []models.MoonPhase) error
	MoonPhasesByDay(ctx context.Context, start, end time.Time) (map[string]string, error)
}

// WarningRepository holds the current warning set plus the freshness token
// used for conditional feed fetches.
type WarningRepository interface {
	UpsertWarning(ctx context.Context, w *models.WeatherWarning) error
	DeleteWarningsNotIn(ctx context.Context, identifiers []string) error
	DeleteAllWarnings(ctx context.Context) error
	ListMarineWarnings(ctx context.Context, start, end time.Time) ([]models.WeatherWarning, error)
	StationAreaCodes(ctx context.Context, stationID string) ([]string, error)
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
}
