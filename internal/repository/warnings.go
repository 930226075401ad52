package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/yakshaver/go-tide-times/internal/models"
)

func (s *SQLiteDB) UpsertWarning(ctx context.Context, w *models.WeatherWarning) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO WeatherWarnings
			(Identifier, Event, Category, Headline, Description, Severity,
			 AwarenessLevel, Onset, Expires, AreaCodes, RetrievedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(Identifier) DO UPDATE SET
			Event = excluded.Event,
			Category = excluded.Category,
			Headline = excluded.Headline,
			Description = excluded.Description,
			Severity = excluded.Severity,
			AwarenessLevel = excluded.AwarenessLevel,
			Onset = excluded.Onset,
			Expires = excluded.Expires,
			AreaCodes = excluded.AreaCodes,
			RetrievedAt = excluded.RetrievedAt`,
		w.Identifier, w.Event, string(w.Category), w.Headline, w.Description,
		w.Severity, w.AwarenessLevel, formatDT(w.Onset), formatDT(w.Expires),
		strings.Join(w.AreaCodes, ","), formatDT(w.RetrievedAt),
	)
	if err != nil {
		return fmt.Errorf("error upserting warning %s: %w", w.Identifier, err)
	}
	return nil
}

// DeleteWarningsNotIn prunes warnings absent from the current feed. A nil or
// empty identifier list is a no-op; clearing everything is DeleteAllWarnings.
func (s *SQLiteDB) DeleteWarningsNotIn(ctx context.Context, identifiers []string) error {
	if len(identifiers) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(identifiers)), ",")
	args := make([]any, len(identifiers))
	for i, id := range identifiers {
		args[i] = id
	}

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM WeatherWarnings WHERE Identifier NOT IN ("+placeholders+")", args...)
	return err
}

func (s *SQLiteDB) DeleteAllWarnings(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM WeatherWarnings")
	return err
}

// ListMarineWarnings returns warnings overlapping [start, end] that are
// Marine-category or small craft advisories, most severe first.
func (s *SQLiteDB) ListMarineWarnings(ctx context.Context, start, end time.Time) ([]models.WeatherWarning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT Identifier, Event, Category, Headline, Description, Severity,
		       AwarenessLevel, Onset, Expires, AreaCodes, RetrievedAt
		  FROM WeatherWarnings
		 WHERE Onset <= ? AND Expires >= ?
		   AND (Category = 'Marine' OR Event LIKE '%Small Craft%')
		 ORDER BY AwarenessLevel DESC`,
		formatDT(end), formatDT(start))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WeatherWarning
	for rows.Next() {
		var (
			w                      models.WeatherWarning
			cat, onset, expires    string
			areaCodes, retrievedAt string
			headline, description  sql.NullString
		)
		err := rows.Scan(&w.Identifier, &w.Event, &cat, &headline, &description,
			&w.Severity, &w.AwarenessLevel, &onset, &expires, &areaCodes, &retrievedAt)
		if err != nil {
			return nil, err
		}

		w.Category = models.WarningCategory(cat)
		w.Headline = headline.String
		w.Description = description.String
		if w.Onset, err = time.Parse(dtLayout, onset); err != nil {
			return nil, fmt.Errorf("stored onset %q invalid: %w", onset, err)
		}
		if w.Expires, err = time.Parse(dtLayout, expires); err != nil {
			return nil, fmt.Errorf("stored expiry %q invalid: %w", expires, err)
		}
		if w.RetrievedAt, err = time.Parse(dtLayout, retrievedAt); err != nil {
			return nil, fmt.Errorf("stored retrieval time %q invalid: %w", retrievedAt, err)
		}
		w.AreaCodes = models.Station{AreaCodes: areaCodes}.AreaCodeList()

		out = append(out, w)
	}

	return out, rows.Err()
}

func (s *SQLiteDB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT Value FROM WeatherWarningsMeta WHERE Key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *SQLiteDB) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO WeatherWarningsMeta (Key, Value) VALUES (?, ?)
		ON CONFLICT(Key) DO UPDATE SET Value = excluded.Value`,
		key, value)
	return err
}
