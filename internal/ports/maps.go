package ports

import (
	"context"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// TravelMode is the directions mode requested from the maps provider.
type TravelMode string

const (
	TravelDriving TravelMode = "driving"
	TravelWalking TravelMode = "walking"
)

// MapsProvider is the boundary to the places, directions and geocoding service.
// A lookup that legitimately finds nothing returns types.ErrNotFound; any
// other failure wraps types.ErrProviderFailure.
type MapsProvider interface {
	// Return place suggestions for query, biased around bias within radiusMeters.
	SearchPlaces(ctx context.Context, query string, bias types.LatLng, radiusMeters int) ([]types.PlaceSuggestion, error)
	GetPlaceDetails(ctx context.Context, placeID string) (types.PlaceDetails, error)
	// Return the legs between origin and destination for the given mode.
	ComputeRoute(ctx context.Context, origin, destination string, mode TravelMode) (types.Route, error)
	ReverseGeocode(ctx context.Context, at types.LatLng) (string, error)
	NearbySearch(ctx context.Context, kind types.NearbyKind, at types.LatLng, radiusMeters int) ([]types.NearbyPlace, error)
}
