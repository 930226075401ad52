package models

import "testing"

func TestIsSmallCraft(t *testing.T) {
	tests := []struct {
		event string
		want  bool
	}{
		{"Small Craft Advisory", true},
		{"SMALL CRAFT warning", true},
		{"Gale Warning", false},
		{"", false},
	}
	for _, tc := range tests {
		w := WeatherWarning{Event: tc.event}
		if got := w.IsSmallCraft(); got != tc.want {
			t.Errorf("IsSmallCraft(%q) = %v, want %v", tc.event, got, tc.want)
		}
	}
}

func TestSeverityIcon(t *testing.T) {
	tests := []struct {
		severity string
		want     string
	}{
		{"Minor", "green"},
		{"Advisory", "green"},
		{"Moderate", "yellow"},
		{"Severe", "orange"},
		{"Extreme", "red"},
		{"Apocalyptic", "yellow"}, // unknown defaults to yellow
		{"", "yellow"},
	}
	for _, tc := range tests {
		if got := SeverityIcon(tc.severity); got != tc.want {
			t.Errorf("SeverityIcon(%q) = %q, want %q", tc.severity, got, tc.want)
		}
	}
}

func TestHigherIcon(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"green", "red", "red"},
		{"red", "green", "red"},
		{"small-craft", "green", "green"},
		{"yellow", "yellow", "yellow"},
		{"orange", "orange", "orange"},
	}
	for _, tc := range tests {
		if got := HigherIcon(tc.a, tc.b); got != tc.want {
			t.Errorf("HigherIcon(%q, %q) = %q, want %q", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDayWarningPrimary(t *testing.T) {
	sc, weather := "small-craft", "orange"

	if got := (DayWarning{}).Primary(); got != nil {
		t.Errorf("expected nil for an empty day, got %q", *got)
	}
	if got := (DayWarning{Weather: &weather}).Primary(); got == nil || *got != "orange" {
		t.Errorf("expected orange, got %v", got)
	}
	if got := (DayWarning{SmallCraft: &sc, Weather: &weather}).Primary(); got == nil || *got != "small-craft" {
		t.Errorf("expected small craft to win the day cell, got %v", got)
	}
}

func TestTideCategoryLabel(t *testing.T) {
	tests := []struct {
		category TideCategory
		want     string
	}{
		{TideHigh, "High water"},
		{TideLow, "Low water"},
		{TideEbb, "Ebbing"},
		{TideFlood, "Flooding"},
		{TideCategory("bogus"), ""},
	}
	for _, tc := range tests {
		if got := tc.category.Label(); got != tc.want {
			t.Errorf("Label(%q) = %q, want %q", tc.category, got, tc.want)
		}
	}
}

func TestTideCategoryIsExtreme(t *testing.T) {
	if !TideHigh.IsExtreme() || !TideLow.IsExtreme() {
		t.Error("high and low are extrema")
	}
	if TideFlood.IsExtreme() || TideEbb.IsExtreme() {
		t.Error("flood and ebb are not extrema")
	}
}
