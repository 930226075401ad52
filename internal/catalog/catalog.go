// Package catalog holds the embedded station reference data. The list is
// versioned with the binary and seeded into the store on first run; it is
// never modified at runtime.
package catalog

import "github.com/yakshaver/go-tide-times/internal/models"

var stations = []models.Station{
	{ID: "Achill_Island_MODELLED", Name: "Achill Island", Longitude: -10.1016, Latitude: 53.9522, AreaCodes: "EI20,EI819"},
	{ID: "Aranmore", Name: "Aranmore", Longitude: -8.49562, Latitude: 54.9896, AreaCodes: "EI06,EI820,EI821"},
	{ID: "Arklow", Name: "Arklow", Longitude: -6.145231, Latitude: 52.79205, AreaCodes: "EI31,EI811"},
	{ID: "Ballycotton", Name: "Ballycotton", Longitude: -8.0007, Latitude: 51.82776, AreaCodes: "EI04,EI814"},
	{ID: "Ballyglass", Name: "Ballyglass", Longitude: -9.89, Latitude: 54.253, AreaCodes: "EI20,EI819,EI820"},
	{ID: "Bray_Harbour_MODELLED", Name: "Bray Harbour", Longitude: -6.0901, Latitude: 53.2191, AreaCodes: "EI31,EI810,EI811"},
	{ID: "Buncranna", Name: "Buncranna", Longitude: -7.464125, Latitude: 55.12662, AreaCodes: "EI06,EI805,EI822"},
	{ID: "Carrigaholt_MODELLED", Name: "Carrigaholt", Longitude: -9.6812, Latitude: 52.5965, AreaCodes: "EI03,EI817,EI818"},
	{ID: "Castletownbere", Name: "Castletownbere", Longitude: -9.9034, Latitude: 51.6496, AreaCodes: "EI04,EI815,EI816"},
	{ID: "Clare_Island_MODELLED", Name: "Clare Island", Longitude: -9.9443, Latitude: 53.8019, AreaCodes: "EI20,EI819"},
	{ID: "Crosshaven_MODELLED", Name: "Crosshaven", Longitude: -8.2411, Latitude: 51.7794, AreaCodes: "EI04,EI814,EI815"},
	{ID: "Dingle", Name: "Dingle", Longitude: -10.27732, Latitude: 52.13924, AreaCodes: "EI11,EI816,EI817"},
	{ID: "Dublin_Port", Name: "Dublin Port", Longitude: -6.22166, Latitude: 53.34574, AreaCodes: "EI07,EI809,EI810,EI823"},
	{ID: "Dungarvan_MODELLED", Name: "Dungarvan", Longitude: -7.5521, Latitude: 52.0672, AreaCodes: "EI27,EI813,EI814"},
	{ID: "Dunmore", Name: "Dunmore", Longitude: -6.99166, Latitude: 52.14754, AreaCodes: "EI27,EI812,EI813"},
	{ID: "Fenit", Name: "Fenit", Longitude: -9.8644, Latitude: 52.27129, AreaCodes: "EI11,EI817"},
	{ID: "Galway", Name: "Galway", Longitude: -9.04796, Latitude: 53.26895, AreaCodes: "EI10,EI818"},
	{ID: "Howth", Name: "Howth", Longitude: -6.0683, Latitude: 53.39148, AreaCodes: "EI07,EI809,EI810,EI823"},
	{ID: "Inishmore", Name: "Inishmore", Longitude: -9.66, Latitude: 53.126, AreaCodes: "EI10,EI818"},
	{ID: "Killary_Harbour_MODELLED", Name: "Killary Harbour", Longitude: -9.9016, Latitude: 53.6316, AreaCodes: "EI10,EI20,EI818,EI819"},
	{ID: "Killybegs", Name: "Killybegs", Longitude: -8.3949, Latitude: 54.6364, AreaCodes: "EI06,EI820,EI821"},
	{ID: "Kilrush", Name: "Kilrush", Longitude: -9.50208, Latitude: 52.63191, AreaCodes: "EI03,EI817,EI818"},
	{ID: "Kinsale_MODELLED", Name: "Kinsale", Longitude: -8.446, Latitude: 51.6777, AreaCodes: "EI04,EI815"},
	{ID: "Lahinch_MODELLED", Name: "Lahinch", Longitude: -9.3899, Latitude: 52.911, AreaCodes: "EI03,EI818"},
	{ID: "Letterfrack_MODELLED", Name: "Letterfrack", Longitude: -10.0388, Latitude: 53.582, AreaCodes: "EI10,EI818,EI819"},
	{ID: "Malin_Head", Name: "Malin Head", Longitude: -7.33432, Latitude: 55.37168, AreaCodes: "EI06,EI805,EI822"},
	{ID: "Port_Oriel", Name: "Port Oriel", Longitude: -6.221713, Latitude: 53.79899, AreaCodes: "EI19,EI808,EI809"},
	{ID: "Ringaskiddy", Name: "Ringaskiddy", Longitude: -8.304, Latitude: 51.84, AreaCodes: "EI04,EI814,EI815"},
	{ID: "Roonagh", Name: "Roonagh", Longitude: -9.90442, Latitude: 53.76235, AreaCodes: "EI20,EI819"},
	{ID: "Rossaveel", Name: "Rossaveel", Longitude: -9.562056, Latitude: 53.26693, AreaCodes: "EI10,EI818"},
	{ID: "Rosslare", Name: "Rosslare", Longitude: -6.334861, Latitude: 52.2546, AreaCodes: "EI30,EI811,EI812,EI823"},
	{ID: "Skerries", Name: "Skerries", Longitude: -6.108117, Latitude: 53.585, AreaCodes: "EI07,EI808,EI809"},
	{ID: "Sligo", Name: "Sligo", Longitude: -8.5689, Latitude: 54.3046, AreaCodes: "EI25,EI819,EI820"},
	{ID: "Tom_Clarke_Bridge", Name: "Tom Clarke Bridge", Longitude: -6.227383, Latitude: 53.34623, AreaCodes: "EI07,EI809,EI810,EI823"},
	{ID: "Tory_Island_MODELLED", Name: "Tory Island", Longitude: -8.1962, Latitude: 55.2508, AreaCodes: "EI06,EI821,EI822"},
	{ID: "Union_Hall", Name: "Union Hall", Longitude: -9.1335, Latitude: 51.559, AreaCodes: "EI04,EI815,EI816"},
	{ID: "Wexford", Name: "Wexford", Longitude: -6.4589, Latitude: 52.33852, AreaCodes: "EI30,EI811,EI812"},
	{ID: "Wicklow_MODELLED", Name: "Wicklow", Longitude: -6.0127, Latitude: 52.9889, AreaCodes: "EI31,EI810,EI811"},
}

var byID = func() map[string]models.Station {
	m := make(map[string]models.Station, len(stations))
	for _, s := range stations {
		m[s.ID] = s
	}
	return m
}()

// Stations returns a copy of the full station list.
func Stations() []models.Station {
	return append([]models.Station(nil), stations...)
}

// Find looks up a station by identifier.
func Find(id string) (models.Station, bool) {
	s, ok := byID[id]
	return s, ok
}

// Label returns the display name for a station, falling back to the raw
// identifier when unknown.
func Label(id string) string {
	if s, ok := byID[id]; ok {
		return s.Name
	}
	return id
}
