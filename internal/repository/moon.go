package repository

import (
	"context"
	"time"

	"github.com/yakshaver/go-tide-times/internal/models"
)

// HasMoonYear reports whether any phase events are cached for the year.
func (s *SQLiteDB) HasMoonYear(ctx context.Context, year int) (bool, error) {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC)

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM TideMoonPhases WHERE PhaseDT >= ? AND PhaseDT <= ?",
		formatDT(start), formatDT(end),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SQLiteDB) InsertMoonPhases(ctx context.Context, phases []models.MoonPhase) error {
	if len(phases) == 0 {
		return nil
	}

	stmt, err := s.db.PrepareContext(ctx,
		"INSERT OR IGNORE INTO TideMoonPhases (PhaseDT, Phase) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range phases {
		if _, err := stmt.ExecContext(ctx, formatDT(p.Time), p.Phase); err != nil {
			return err
		}
	}
	return nil
}

// MoonPhasesByDay returns phase codes keyed by calendar day (YYYY-MM-DD) for
// the inclusive day range. Days without an event are absent from the map.
func (s *SQLiteDB) MoonPhasesByDay(ctx context.Context, start, end time.Time) (map[string]string, error) {
	startDT := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDT := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)

	rows, err := s.db.QueryContext(ctx,
		"SELECT PhaseDT, Phase FROM TideMoonPhases WHERE PhaseDT >= ? AND PhaseDT <= ? ORDER BY PhaseDT ASC",
		formatDT(startDT), formatDT(endDT))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var dt, phase string
		if err := rows.Scan(&dt, &phase); err != nil {
			return nil, err
		}
		if len(dt) >= 10 {
			result[dt[:10]] = phase
		}
	}

	return result, rows.Err()
}
