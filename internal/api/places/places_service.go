package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

const (
	maxRadiusMeters        = 50000
	attractionRadiusMeters = 30000
	restaurantRadiusMeters = 5000
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Search returns autocomplete suggestions biased to the city.
	Search(ctx context.Context, query string) (*types.PlaceSearchResult, error)
	Details(ctx context.Context, placeID string) (*types.PlaceDetails, error)
	// Nearby lists places of kind around at, closest first. A radius of 0
	// uses the default for the kind.
	Nearby(ctx context.Context, kind types.NearbyKind, at types.LatLng, radiusMeters int) (*types.NearbyResult, error)
}

type Options struct {
	City         types.LatLng
	RadiusMeters int
	DetailsTTL   time.Duration
}

type ServiceImpl struct {
	logger  *slog.Logger
	maps    ports.MapsProvider
	opts    Options
	details *cache.Cache
}

func NewServiceImpl(maps ports.MapsProvider, opts Options, logger *slog.Logger) *ServiceImpl {
	if opts.RadiusMeters <= 0 {
		opts.RadiusMeters = maxRadiusMeters
	}
	if opts.DetailsTTL <= 0 {
		opts.DetailsTTL = time.Hour
	}
	return &ServiceImpl{
		logger:  logger,
		maps:    maps,
		opts:    opts,
		details: cache.New(opts.DetailsTTL, 2*opts.DetailsTTL),
	}
}

func (s *ServiceImpl) Search(ctx context.Context, query string) (*types.PlaceSearchResult, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Search"))

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &types.ValidationError{Problems: []string{"query is required"}}
	}

	res := &types.PlaceSearchResult{Suggestions: []types.PlaceSuggestion{}}
	suggestions, err := s.maps.SearchPlaces(ctx, query, s.opts.City, s.opts.RadiusMeters)
	switch {
	case err == nil:
		res.Suggestions = suggestions
	case errors.Is(err, types.ErrNotFound):
		l.DebugContext(ctx, "No places matched", slog.String("query", query))
	default:
		l.WarnContext(ctx, "Place search failed", slog.Any("error", err))
		span.RecordError(err)
		res.Notice = &types.SearchNotice{Message: "Place search is temporarily unavailable. You can still type the place name."}
	}
	span.SetStatus(codes.Ok, "Search done")
	return res, nil
}

func (s *ServiceImpl) Details(ctx context.Context, placeID string) (*types.PlaceDetails, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Details", trace.WithAttributes(
		attribute.String("place.id", placeID),
	))
	defer span.End()

	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, &types.ValidationError{Problems: []string{"placeId is required"}}
	}
	if v, ok := s.details.Get(placeID); ok {
		span.AddEvent("cache hit")
		d := v.(types.PlaceDetails)
		return &d, nil
	}

	d, err := s.maps.GetPlaceDetails(ctx, placeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Details failed")
		return nil, fmt.Errorf("place %s: %w", placeID, err)
	}
	s.details.SetDefault(placeID, d)
	span.SetStatus(codes.Ok, "Details fetched")
	return &d, nil
}

func (s *ServiceImpl) Nearby(ctx context.Context, kind types.NearbyKind, at types.LatLng, radiusMeters int) (*types.NearbyResult, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Nearby", trace.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.Float64("lat", at.Lat),
		attribute.Float64("lng", at.Lng),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Nearby"), slog.String("kind", string(kind)))

	var problems []string
	switch kind {
	case types.NearbyAttraction:
		if radiusMeters == 0 {
			radiusMeters = attractionRadiusMeters
		}
	case types.NearbyRestaurant:
		if radiusMeters == 0 {
			radiusMeters = restaurantRadiusMeters
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown kind %q", kind))
	}
	if radiusMeters < 0 || radiusMeters > maxRadiusMeters {
		problems = append(problems, fmt.Sprintf("radius must be between 1 and %d meters", maxRadiusMeters))
	}
	if at.Lat < -90 || at.Lat > 90 || at.Lng < -180 || at.Lng > 180 {
		problems = append(problems, "lat must be within [-90, 90] and lng within [-180, 180]")
	}
	if len(problems) > 0 {
		return nil, &types.ValidationError{Problems: problems}
	}

	res := &types.NearbyResult{Places: []types.NearbyPlace{}}
	found, err := s.maps.NearbySearch(ctx, kind, at, radiusMeters)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrNotFound):
		return res, nil
	default:
		l.WarnContext(ctx, "Nearby search failed", slog.Any("error", err))
		span.RecordError(err)
		res.Notice = &types.SearchNotice{Message: "Nearby search is temporarily unavailable."}
		return res, nil
	}

	for _, p := range found {
		p.DistanceKm = math.Round(HaversineKm(at, p.Location)*10) / 10
		res.Places = append(res.Places, p)
	}
	sort.SliceStable(res.Places, func(i, j int) bool {
		return res.Places[i].DistanceKm < res.Places[j].DistanceKm
	})
	span.SetAttributes(attribute.Int("results", len(res.Places)))
	span.SetStatus(codes.Ok, "Nearby done")
	return res, nil
}

// HaversineKm returns the great-circle distance between a and b in kilometers.
func HaversineKm(a, b types.LatLng) float64 {
	const earthRadiusKm = 6371

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dlat := lat2 - lat1
	dlng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
