package models

import (
	"strings"
	"time"
)

type WarningCategory string

const (
	WarningWeather WarningCategory = "Weather"
	WarningMarine  WarningCategory = "Marine"
)

// WeatherWarning is one CAP alert from the warnings feed. The stored set
// always mirrors the most recent successful feed fetch.
type WeatherWarning struct {
	Identifier     string
	Event          string
	Category       WarningCategory
	Headline       string
	Description    string
	Severity       string
	AwarenessLevel int // 0-4, parsed from the awareness_level parameter
	Onset          time.Time
	Expires        time.Time
	AreaCodes      []string
	RetrievedAt    time.Time
}

// IsSmallCraft reports whether this is a small craft advisory, which gets its
// own display treatment independent of the weather severity track.
func (w WeatherWarning) IsSmallCraft() bool {
	return strings.Contains(strings.ToLower(w.Event), "small craft")
}

// DayWarning is the per-calendar-day warning summary for a station: a small
// craft flag and the icon of the highest-awareness weather warning.
type DayWarning struct {
	SmallCraft *string `json:"smallCraft"`
	Weather    *string `json:"weather"`
}

// Primary returns the icon to show in a day cell. Small craft takes priority.
func (d DayWarning) Primary() *string {
	if d.SmallCraft != nil {
		return d.SmallCraft
	}
	return d.Weather
}

var severityIcons = map[string]string{
	"Minor":    "green",
	"Advisory": "green",
	"Moderate": "yellow",
	"Severe":   "orange",
	"Extreme":  "red",
}

// SeverityIcon maps CAP severity text to a display icon, defaulting to yellow
// for unrecognised values.
func SeverityIcon(severity string) string {
	if icon, ok := severityIcons[severity]; ok {
		return icon
	}
	return "yellow"
}

var iconPriority = map[string]int{
	"small-craft": 1,
	"green":       2,
	"yellow":      3,
	"orange":      4,
	"red":         5,
}

// HigherIcon returns the more severe of two icons. On equal priority the
// first argument wins, so the earliest icon is kept.
func HigherIcon(a, b string) string {
	if iconPriority[a] >= iconPriority[b] {
		return a
	}
	return b
}
