package types

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PlaceSuggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"placeId"`
}

type PlaceDetails struct {
	PlaceID      string   `json:"placeId"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Location     LatLng   `json:"location"`
	Rating       *float64 `json:"rating,omitempty"`
	OpeningHours []string `json:"openingHours,omitempty"`
	OpenNow      *bool    `json:"openNow,omitempty"`
	Photos       []string `json:"photos,omitempty"`
}

// NearbyKind selects the kind of place returned by a nearby search.
type NearbyKind string

const (
	NearbyAttraction NearbyKind = "tourist_attraction"
	NearbyRestaurant NearbyKind = "restaurant"
)

type NearbyPlace struct {
	PlaceID    string   `json:"placeId"`
	Name       string   `json:"name"`
	Vicinity   string   `json:"vicinity"`
	Location   LatLng   `json:"location"`
	Rating     *float64 `json:"rating,omitempty"`
	OpenNow    *bool    `json:"openNow,omitempty"`
	DistanceKm float64  `json:"distanceKm"`
}

// RouteLeg is one leg returned by the directions provider.
type RouteLeg struct {
	DistanceText string `json:"distanceText"`
	DurationText string `json:"durationText"`
	StartAddress string `json:"startAddress"`
	EndAddress   string `json:"endAddress"`
}

type Route struct {
	Legs []RouteLeg `json:"legs"`
}

// SearchNotice accompanies a degraded result after a non-fatal provider failure.
type SearchNotice struct {
	Message string `json:"message"`
}

// PlaceSearchResult is returned by place search. Notice is set when the
// provider failed and Suggestions is empty because of it.
type PlaceSearchResult struct {
	Suggestions []PlaceSuggestion `json:"suggestions"`
	Notice      *SearchNotice     `json:"notice,omitempty"`
}

type NearbyResult struct {
	Places []NearbyPlace `json:"places"`
	Notice *SearchNotice `json:"notice,omitempty"`
}
