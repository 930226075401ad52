package models

import "time"

const (
	MoonNew          = "new"
	MoonFirstQuarter = "1q"
	MoonFull         = "full"
	MoonLastQuarter  = "2q"
)

// MoonPhase is a single lunar phase event, cached one calendar year at a time.
type MoonPhase struct {
	Time  time.Time // UTC
	Phase string
}
