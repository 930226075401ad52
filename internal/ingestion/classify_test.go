package ingestion

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/yakshaver/go-tide-times/internal/models"
)

func obsAt(minute int, level float64) models.TideObservation {
	return models.TideObservation{
		StationID: "Howth",
		Time:      time.Date(2026, 3, 1, 0, minute, 0, 0, time.UTC),
		Level:     &level,
	}
}

func categories(obs []models.TideObservation) []models.TideCategory {
	out := make([]models.TideCategory, len(obs))
	for i, o := range obs {
		out[i] = o.Category
	}
	return out
}

func TestClassify_RiseAndFall(t *testing.T) {
	obs := []models.TideObservation{
		obsAt(0, 1.2),
		obsAt(10, 1.5),
		obsAt(20, 1.8),
		obsAt(30, 1.6),
		obsAt(40, 1.2),
	}

	got := categories(Classify(obs))
	want := []models.TideCategory{
		models.TideFlood,
		models.TideFlood,
		models.TideHigh,
		models.TideEbb,
		models.TideEbb,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_TroughMarkedLow(t *testing.T) {
	obs := []models.TideObservation{
		obsAt(0, 1.8),
		obsAt(10, 1.4),
		obsAt(20, 1.0),
		obsAt(30, 1.3),
		obsAt(40, 1.7),
	}

	got := categories(Classify(obs))
	want := []models.TideCategory{
		models.TideFlood, // no predecessor, default
		models.TideEbb,
		models.TideLow,
		models.TideFlood,
		models.TideFlood,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_FlatRunCarriesForward(t *testing.T) {
	obs := []models.TideObservation{
		obsAt(0, 1.0),
		obsAt(10, 1.3),
		obsAt(20, 1.3),
		obsAt(30, 1.3),
		obsAt(40, 1.5),
	}

	got := categories(Classify(obs))
	want := []models.TideCategory{
		models.TideFlood,
		models.TideFlood,
		models.TideFlood,
		models.TideFlood,
		models.TideFlood,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_PeakPlateauRelabelled(t *testing.T) {
	obs := []models.TideObservation{
		obsAt(0, 1.2),
		obsAt(10, 1.8),
		obsAt(20, 1.8),
		obsAt(30, 1.8),
		obsAt(40, 1.4),
	}

	got := categories(Classify(obs))
	want := []models.TideCategory{
		models.TideFlood,
		models.TideHigh,
		models.TideHigh,
		models.TideHigh,
		models.TideEbb,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_NilLevelCarriesForward(t *testing.T) {
	obs := []models.TideObservation{
		obsAt(0, 1.2),
		obsAt(10, 1.5),
		{StationID: "Howth", Time: time.Date(2026, 3, 1, 0, 20, 0, 0, time.UTC)},
		obsAt(30, 1.6),
	}

	got := categories(Classify(obs))
	want := []models.TideCategory{
		models.TideFlood,
		models.TideFlood,
		models.TideFlood,
		models.TideFlood,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_SortsByTime(t *testing.T) {
	obs := []models.TideObservation{
		obsAt(40, 1.2),
		obsAt(0, 1.2),
		obsAt(20, 1.8),
		obsAt(30, 1.6),
		obsAt(10, 1.5),
	}

	got := Classify(obs)
	for i := 1; i < len(got); i++ {
		if got[i].Time.Before(got[i-1].Time) {
			t.Fatalf("observations not sorted at index %d", i)
		}
	}
	if got[2].Category != models.TideHigh {
		t.Errorf("expected high at peak, got %s", got[2].Category)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	obs := []models.TideObservation{
		obsAt(0, 1.2),
		obsAt(10, 1.5),
		obsAt(20, 1.8),
		obsAt(30, 1.6),
		obsAt(40, 1.2),
	}

	once := categories(Classify(obs))
	twice := categories(Classify(obs))
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second pass changed categories (-once +twice):\n%s", diff)
	}
}

func TestClassify_Empty(t *testing.T) {
	if got := Classify(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d observations", len(got))
	}
}
