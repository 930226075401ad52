package models

import "time"

type TideCategory string

const (
	TideFlood TideCategory = "flood"
	TideEbb   TideCategory = "ebb"
	TideHigh  TideCategory = "high"
	TideLow   TideCategory = "low"
)

// IsExtreme reports whether the category marks a turning point.
func (c TideCategory) IsExtreme() bool {
	return c == TideHigh || c == TideLow
}

func (c TideCategory) Label() string {
	switch c {
	case TideHigh:
		return "High water"
	case TideLow:
		return "Low water"
	case TideEbb:
		return "Ebbing"
	case TideFlood:
		return "Flooding"
	default:
		return ""
	}
}

// TideObservation is one water-level sample for a station. Level and
// LevelODM are nil when the feed carried a non-numeric value; Range and
// Coefficient stay nil until the back-fill passes resolve them.
type TideObservation struct {
	StationID   string
	Time        time.Time // UTC
	Category    TideCategory
	Level       *float64 // metres, mean sea level
	LevelODM    *float64 // metres, Ordnance Datum Malin
	Range       *float64 // metres to the nearest later opposing extreme
	Coefficient *int     // amplitude index, reference station range = 100
}
