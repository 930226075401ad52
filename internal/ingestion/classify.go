package ingestion

import (
	"sort"

	"github.com/yakshaver/go-tide-times/internal/models"
)

// Classify assigns a tide category to every observation in the batch. The
// batch must cover one station; it is sorted chronologically in place.
//
// Two passes. The trend pass compares each level to its predecessor: rising
// is flood, falling is ebb, and an equal or unknown level carries the
// previous category forward (flood when there is none yet). The extremum
// pass walks backwards over adjacent pairs: a flood-then-ebb transition read
// forward marks the last flood point as a high, ebb-then-flood marks a low.
// A run of points sharing the extremum's exact level is relabelled with it,
// so flat plateaus at a peak or trough become part of the extremum.
func Classify(obs []models.TideObservation) []models.TideObservation {
	sort.Slice(obs, func(i, j int) bool {
		return obs[i].Time.Before(obs[j].Time)
	})

	prevCategory := models.TideCategory("")
	var prevLevel *float64

	for i := range obs {
		level := obs[i].Level

		switch {
		case i == 0 || prevLevel == nil || level == nil:
			obs[i].Category = carryForward(prevCategory)
		case *level > *prevLevel:
			obs[i].Category = models.TideFlood
		case *level < *prevLevel:
			obs[i].Category = models.TideEbb
		default:
			obs[i].Category = carryForward(prevCategory)
		}

		prevCategory = obs[i].Category
		prevLevel = level
	}

	for i := len(obs) - 1; i > 1; i-- {
		var extremum models.TideCategory

		switch {
		case obs[i].Category == models.TideEbb && obs[i-1].Category == models.TideFlood:
			extremum = models.TideHigh
		case obs[i].Category == models.TideFlood && obs[i-1].Category == models.TideEbb:
			extremum = models.TideLow
		default:
			continue
		}

		target := obs[i-1].Level
		for j := i - 1; j >= 0; j-- {
			if !levelEqual(obs[j].Level, target) {
				break
			}
			obs[j].Category = extremum
		}
	}

	return obs
}

func carryForward(prev models.TideCategory) models.TideCategory {
	if prev == "" {
		return models.TideFlood
	}
	return prev
}

func levelEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
