package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yakshaver/go-tide-times/internal/models"
)

// HasTideDay reports whether at least one observation exists for the station
// on the given calendar day (YYYY-MM-DD).
func (s *SQLiteDB) HasTideDay(ctx context.Context, stationID, day string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM TideData WHERE StationID = ? AND substr(TideDT, 1, 10) = ? LIMIT 1",
		stationID, day,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertTideBatch stores classified observations in a single transaction.
// Duplicates of already-stored (station, timestamp) rows are silently
// dropped, never overwritten.
func (s *SQLiteDB) InsertTideBatch(ctx context.Context, obs []models.TideObservation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO TideData
			(StationID, TideDT, TideCategory, TideCoefficient, WLM, WLODMM, TideRange)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, o := range obs {
		_, err := stmt.ExecContext(ctx,
			o.StationID, formatDT(o.Time), string(o.Category),
			o.Coefficient, o.Level, o.LevelODM, o.Range,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error inserting tide row %s/%s: %w", o.StationID, formatDT(o.Time), err)
		}
	}

	return tx.Commit()
}

// BackfillRanges fills TideRange for rows that still lack one, pairing each
// extremum (and the trend rows relabelled with it) with the nearest later
// opposing extremum at a different level. Runs over all stations.
func (s *SQLiteDB) BackfillRanges(ctx context.Context) error {
	updateHigh := `
		UPDATE TideData AS TD
		   SET TideRange = round(abs(WLM - (
		       SELECT WLM FROM TideData
		        WHERE StationID = TD.StationID
		          AND TideDT > TD.TideDT
		          AND TideCategory = 'low'
		          AND WLM <> TD.WLM
		        ORDER BY TideDT ASC
		        LIMIT 1
		   )), 2)
		 WHERE TideCategory IN ('high', 'ebb')
		   AND TideRange IS NULL`

	updateLow := `
		UPDATE TideData AS TD
		   SET TideRange = round(abs(WLM - (
		       SELECT WLM FROM TideData
		        WHERE StationID = TD.StationID
		          AND TideDT > TD.TideDT
		          AND TideCategory = 'high'
		          AND WLM <> TD.WLM
		        ORDER BY TideDT ASC
		        LIMIT 1
		   )), 2)
		 WHERE TideCategory IN ('low', 'flood')
		   AND TideRange IS NULL`

	for _, q := range []string{updateHigh, updateLow} {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("error backfilling tide ranges: %w", err)
		}
	}
	return nil
}

// BackfillCoefficients resolves coefficients for extrema with a known range.
// The reference station gets round(range*100/refMeanRange); every other
// station copies the coefficient of a reference extremum of the same
// category within one hour. Existing coefficients are never recomputed.
func (s *SQLiteDB) BackfillCoefficients(ctx context.Context, refStationID string, refMeanRange float64) error {
	refUpdate := `
		UPDATE TideData
		   SET TideCoefficient = CAST(round(TideRange * 100 / ?, 0) AS INTEGER)
		 WHERE TideCategory IN ('high', 'low')
		   AND TideRange IS NOT NULL
		   AND TideCoefficient IS NULL
		   AND StationID = ?`

	if _, err := s.db.ExecContext(ctx, refUpdate, refMeanRange, refStationID); err != nil {
		return fmt.Errorf("error computing reference coefficients: %w", err)
	}

	propagate := `
		UPDATE TideData AS TD
		   SET TideCoefficient = (
		       SELECT TD1.TideCoefficient FROM TideData TD1
		        WHERE TD1.StationID = ?
		          AND TD1.TideCategory = TD.TideCategory
		          AND abs(strftime('%s', TD1.TideDT) - strftime('%s', TD.TideDT)) <= 3600
		        LIMIT 1
		   )
		 WHERE TD.TideCategory IN ('high', 'low')
		   AND TD.StationID <> ?
		   AND TD.TideRange IS NOT NULL
		   AND TD.TideCoefficient IS NULL`

	if _, err := s.db.ExecContext(ctx, propagate, refStationID, refStationID); err != nil {
		return fmt.Errorf("error propagating coefficients: %w", err)
	}
	return nil
}

// ListTideEvents returns the high/low rows for a station within [start, end],
// ordered by time. Flood/ebb rows are derivation detail and never displayed.
func (s *SQLiteDB) ListTideEvents(ctx context.Context, stationID string, start, end time.Time) ([]models.TideObservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT TideDT, TideCategory, WLM, TideCoefficient
		  FROM TideData
		 WHERE StationID = ?
		   AND TideDT BETWEEN ? AND ?
		   AND TideCategory IN ('high', 'low')
		 ORDER BY TideDT ASC`,
		stationID, formatDT(start), formatDT(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TideObservation
	for rows.Next() {
		var (
			dt   string
			cat  string
			wlm  sql.NullFloat64
			coef sql.NullInt64
		)
		if err := rows.Scan(&dt, &cat, &wlm, &coef); err != nil {
			return nil, err
		}

		t, err := time.Parse(dtLayout, dt)
		if err != nil {
			return nil, fmt.Errorf("stored tide timestamp %q invalid: %w", dt, err)
		}

		o := models.TideObservation{
			StationID: stationID,
			Time:      t,
			Category:  models.TideCategory(cat),
		}
		if wlm.Valid {
			v := wlm.Float64
			o.Level = &v
		}
		if coef.Valid {
			c := int(coef.Int64)
			o.Coefficient = &c
		}
		out = append(out, o)
	}

	return out, rows.Err()
}
