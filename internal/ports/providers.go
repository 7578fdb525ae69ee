package ports

import (
	"context"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// WeatherProvider returns raw readings for the coordinate, one per day,
// ordered by time.
type WeatherProvider interface {
	DailyForecast(ctx context.Context, at types.LatLng) ([]types.ForecastPoint, error)
}

// HotelProvider searches accommodation. No result is types.ErrNotFound.
type HotelProvider interface {
	SearchDestinations(ctx context.Context, query string) ([]types.HotelDestination, error)
	GetDetails(ctx context.Context, q types.HotelQuery) (types.HotelDetails, error)
}

type ProductProvider interface {
	SearchProducts(ctx context.Context, keywords string, page int, sort types.ProductSort) ([]types.Product, error)
}
