package models

import "strings"

// Station is immutable reference data for one tide station. The RefStation*
// fields are legacy correction offsets kept for schema compatibility; the
// coefficient derivation does not read them.
type Station struct {
	ID               string
	Name             string
	Longitude        float64
	Latitude         float64
	RefStationID     *string
	RefHWTimeOffset  *string
	RefLWTimeOffset  *string
	RefHWLevelOffset *float64
	RefLWLevelOffset *float64
	AreaCodes        string // comma-separated EMMA_ID/FIPS codes
}

// AreaCodeList splits the stored comma-separated area codes, dropping blanks.
func (s Station) AreaCodeList() []string {
	var codes []string
	for _, c := range strings.Split(s.AreaCodes, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}
