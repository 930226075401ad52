package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yakshaver/go-tide-times/internal/catalog"
	"github.com/yakshaver/go-tide-times/internal/models"
)

// Stored datetimes are UTC ISO-8601 with a literal Z and second precision,
// so lexicographic comparison in SQL matches chronological order.
const dtLayout = "2006-01-02T15:04:05Z"

func formatDT(t time.Time) string {
	return t.UTC().Format(dtLayout)
}

type SQLiteDB struct {
	db *sql.DB
}

var (
	_ StationRepository = (*SQLiteDB)(nil)
	_ TideRepository    = (*SQLiteDB)(nil)
	_ MoonRepository    = (*SQLiteDB)(nil)
	_ WarningRepository = (*SQLiteDB)(nil)
)

// Open prepares the SQLite file: creates the parent directory, connects,
// enables foreign keys, migrates the schema and seeds the station catalog
// when the station table is empty. Any failure here is an initialization
// error for the whole pipeline.
func Open(path string) (*SQLiteDB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}

	s := &SQLiteDB{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}
	if err := s.seedStations(); err != nil {
		return nil, fmt.Errorf("error seeding stations: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS TideStations (
			StationID TEXT PRIMARY KEY,
			StationName TEXT,
			LonDegE REAL,
			LatDegN REAL,
			RefStationID TEXT DEFAULT NULL,
			RefStationHWTimeOffset TEXT DEFAULT NULL,
			RefStationLWTimeOffset TEXT DEFAULT NULL,
			RefStationHWLOffset REAL DEFAULT NULL,
			RefStationLWLOffset REAL DEFAULT NULL,
			AreaCodes TEXT DEFAULT NULL
		);

		CREATE TABLE IF NOT EXISTS TideData (
			StationID TEXT NOT NULL,
			TideDT TEXT NOT NULL,
			TideCategory TEXT NOT NULL,
			TideCoefficient INTEGER DEFAULT NULL,
			WLM REAL,
			WLODMM REAL,
			TideRange REAL DEFAULT NULL,
			PRIMARY KEY (StationID, TideDT),
			FOREIGN KEY (StationID) REFERENCES TideStations(StationID) ON DELETE CASCADE ON UPDATE CASCADE
		);

		CREATE TABLE IF NOT EXISTS TideMoonPhases (
			PhaseDT TEXT NOT NULL PRIMARY KEY,
			Phase TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS WeatherWarnings (
			Identifier TEXT PRIMARY KEY,
			Event TEXT NOT NULL,
			Category TEXT NOT NULL,
			Headline TEXT,
			Description TEXT,
			Severity TEXT NOT NULL,
			AwarenessLevel INTEGER DEFAULT 0,
			Onset TEXT NOT NULL,
			Expires TEXT NOT NULL,
			AreaCodes TEXT NOT NULL,
			RetrievedAt TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS WeatherWarningsMeta (
			Key TEXT PRIMARY KEY,
			Value TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tidedata_station_date ON TideData (StationID, TideDT);
		CREATE INDEX IF NOT EXISTS idx_warnings_onset_expires ON WeatherWarnings (Onset, Expires);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) seedStations() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM TideStations").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.UpsertStations(context.Background(), catalog.Stations())
}

func (s *SQLiteDB) UpsertStations(ctx context.Context, stations []models.Station) error {
	if len(stations) == 0 {
		return nil
	}

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO TideStations (
			StationID, StationName, LonDegE, LatDegN,
			RefStationID, RefStationHWTimeOffset, RefStationLWTimeOffset,
			RefStationHWLOffset, RefStationLWLOffset, AreaCodes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(StationID) DO UPDATE SET
			StationName = excluded.StationName,
			LonDegE = excluded.LonDegE,
			LatDegN = excluded.LatDegN,
			RefStationID = excluded.RefStationID,
			RefStationHWTimeOffset = excluded.RefStationHWTimeOffset,
			RefStationLWTimeOffset = excluded.RefStationLWTimeOffset,
			RefStationHWLOffset = excluded.RefStationHWLOffset,
			RefStationLWLOffset = excluded.RefStationLWLOffset,
			AreaCodes = excluded.AreaCodes`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, st := range stations {
		_, err := stmt.ExecContext(ctx,
			st.ID, st.Name, st.Longitude, st.Latitude,
			st.RefStationID, st.RefHWTimeOffset, st.RefLWTimeOffset,
			st.RefHWLevelOffset, st.RefLWLevelOffset, st.AreaCodes,
		)
		if err != nil {
			return fmt.Errorf("error upserting station %s: %w", st.ID, err)
		}
	}

	return nil
}

func (s *SQLiteDB) StationAreaCodes(ctx context.Context, stationID string) ([]string, error) {
	var codes sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT AreaCodes FROM TideStations WHERE StationID = ?", stationID,
	).Scan(&codes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !codes.Valid {
		return nil, nil
	}
	return models.Station{AreaCodes: codes.String}.AreaCodeList(), nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
