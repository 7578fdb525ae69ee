package route

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/collection"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// MockMaps is a mock implementation of ports.MapsProvider
type MockMaps struct {
	mock.Mock
}

func (m *MockMaps) SearchPlaces(ctx context.Context, query string, bias types.LatLng, radiusMeters int) ([]types.PlaceSuggestion, error) {
	args := m.Called(ctx, query, bias, radiusMeters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PlaceSuggestion), args.Error(1)
}

func (m *MockMaps) GetPlaceDetails(ctx context.Context, placeID string) (types.PlaceDetails, error) {
	args := m.Called(ctx, placeID)
	return args.Get(0).(types.PlaceDetails), args.Error(1)
}

func (m *MockMaps) ComputeRoute(ctx context.Context, origin, destination string, mode ports.TravelMode) (types.Route, error) {
	args := m.Called(ctx, origin, destination, mode)
	return args.Get(0).(types.Route), args.Error(1)
}

func (m *MockMaps) ReverseGeocode(ctx context.Context, at types.LatLng) (string, error) {
	args := m.Called(ctx, at)
	return args.String(0), args.Error(1)
}

func (m *MockMaps) NearbySearch(ctx context.Context, kind types.NearbyKind, at types.LatLng, radiusMeters int) ([]types.NearbyPlace, error) {
	args := m.Called(ctx, kind, at, radiusMeters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.NearbyPlace), args.Error(1)
}

func leg(distance, duration string) types.Route {
	return types.Route{Legs: []types.RouteLeg{{DistanceText: distance, DurationText: duration}}}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupRouteTest(t *testing.T, maps ports.MapsProvider, start string, stops ...string) (*ServiceImpl, collection.Service, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	collections := collection.NewServiceImpl(collection.NewMemoryStore(), nil, collection.Options{MaxTripDays: 7}, testLogger())
	b := 3000.0
	resp, err := collections.Create(ctx, types.CreateCollectionRequest{
		Name:      "Route test",
		Category:  types.CategorySolo,
		StartDate: types.NewDate(2025, time.April, 10),
		EndDate:   types.NewDate(2025, time.April, 10),
		Budget:    &b,
	})
	require.NoError(t, err)

	_, err = collections.Mutate(ctx, resp.Collection.ID, func(c *types.Collection) error {
		p := c.Plan(1)
		p.StartLocation = start
		for _, s := range stops {
			p.Stops = append(p.Stops, types.Stop{Name: s})
		}
		return nil
	})
	require.NoError(t, err)

	svc := NewServiceImpl(collections, maps, Options{LegTimeout: time.Second, MaxConcurrentLegs: 2}, testLogger())
	return svc, collections, resp.Collection.ID
}

func TestServiceImpl_RecomputeRouteSegments(t *testing.T) {
	ctx := context.Background()

	t.Run("chain from start through every stop", func(t *testing.T) {
		m := new(MockMaps)
		m.On("ComputeRoute", mock.Anything, "Airport", "A", ports.TravelDriving).Return(leg("8 km", "15 mins"), nil)
		m.On("ComputeRoute", mock.Anything, "A", "B", ports.TravelDriving).Return(leg("2 km", "5 mins"), nil)
		m.On("ComputeRoute", mock.Anything, "B", "C", ports.TravelDriving).Return(leg("3 km", "7 mins"), nil)
		svc, _, id := setupRouteTest(t, m, "Airport", "A", "B", "C")

		res, err := svc.RecomputeRouteSegments(ctx, id, 1)
		require.NoError(t, err)
		require.Len(t, res.Segments, 3)
		assert.False(t, res.Aborted)
		assert.Empty(t, res.Warnings)
		for i, seg := range res.Segments {
			assert.Equal(t, i, seg.Index)
		}
		assert.Equal(t, "Airport", res.Segments[0].From)
		assert.Equal(t, "C", res.Segments[2].To)
		assert.Equal(t, "7 mins", res.Segments[2].Duration)
		m.AssertExpectations(t)
	})

	t.Run("empty start gives no segments", func(t *testing.T) {
		m := new(MockMaps)
		svc, _, id := setupRouteTest(t, m, "", "A", "B")

		res, err := svc.RecomputeRouteSegments(ctx, id, 1)
		require.NoError(t, err)
		assert.Empty(t, res.Segments)
		assert.NotNil(t, res.Segments)
		m.AssertNotCalled(t, "ComputeRoute", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no stops gives no segments", func(t *testing.T) {
		m := new(MockMaps)
		svc, _, id := setupRouteTest(t, m, "Airport")

		res, err := svc.RecomputeRouteSegments(ctx, id, 1)
		require.NoError(t, err)
		assert.Empty(t, res.Segments)
	})

	t.Run("failed middle leg is skipped with a warning", func(t *testing.T) {
		m := new(MockMaps)
		m.On("ComputeRoute", mock.Anything, "Airport", "A", ports.TravelDriving).Return(leg("8 km", "15 mins"), nil)
		m.On("ComputeRoute", mock.Anything, "A", "B", ports.TravelDriving).Return(types.Route{}, types.ErrProviderFailure)
		m.On("ComputeRoute", mock.Anything, "B", "C", ports.TravelDriving).Return(leg("3 km", "7 mins"), nil)
		svc, _, id := setupRouteTest(t, m, "Airport", "A", "B", "C")

		res, err := svc.RecomputeRouteSegments(ctx, id, 1)
		require.NoError(t, err)
		require.Len(t, res.Segments, 2)
		assert.Equal(t, 0, res.Segments[0].Index)
		assert.Equal(t, 2, res.Segments[1].Index)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], `"A"`)
		assert.Contains(t, res.Warnings[0], `"B"`)
	})

	t.Run("failed first leg clears the chain", func(t *testing.T) {
		m := new(MockMaps)
		m.On("ComputeRoute", mock.Anything, "Nowhere", "A", ports.TravelDriving).Return(types.Route{}, types.ErrNotFound)
		m.On("ComputeRoute", mock.Anything, "A", "B", ports.TravelDriving).Return(leg("2 km", "5 mins"), nil).Maybe()
		svc, _, id := setupRouteTest(t, m, "Nowhere", "A", "B")

		res, err := svc.RecomputeRouteSegments(ctx, id, 1)
		require.NoError(t, err)
		assert.True(t, res.Aborted)
		assert.Empty(t, res.Segments)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "Nowhere")
	})

	t.Run("blank stops are not chain members", func(t *testing.T) {
		m := new(MockMaps)
		m.On("ComputeRoute", mock.Anything, "Airport", "A", ports.TravelDriving).Return(leg("8 km", "15 mins"), nil)
		m.On("ComputeRoute", mock.Anything, "A", "B", ports.TravelDriving).Return(leg("2 km", "5 mins"), nil)
		svc, _, id := setupRouteTest(t, m, "Airport", "A", "  ", "B")

		res, err := svc.RecomputeRouteSegments(ctx, id, 1)
		require.NoError(t, err)
		assert.Len(t, res.Segments, 2)
		m.AssertExpectations(t)
	})

	t.Run("unknown day", func(t *testing.T) {
		svc, _, id := setupRouteTest(t, new(MockMaps), "Airport", "A")
		_, err := svc.RecomputeRouteSegments(ctx, id, 3)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

// slowMaps answers later legs faster so completion order differs from
// chain order, and tracks peak concurrency.
type slowMaps struct {
	MockMaps
	inFlight atomic.Int32
	peak     atomic.Int32
	mu       sync.Mutex
	delays   map[string]time.Duration
}

func (s *slowMaps) ComputeRoute(ctx context.Context, origin, destination string, _ ports.TravelMode) (types.Route, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	s.mu.Lock()
	d := s.delays[origin]
	s.mu.Unlock()
	select {
	case <-time.After(d):
	case <-ctx.Done():
		return types.Route{}, ctx.Err()
	}
	return leg(origin+"-"+destination, "1 min"), nil
}

func TestServiceImpl_ConcurrentLegsKeepOrder(t *testing.T) {
	maps := &slowMaps{delays: map[string]time.Duration{
		"S": 40 * time.Millisecond,
		"A": 30 * time.Millisecond,
		"B": 20 * time.Millisecond,
		"C": 10 * time.Millisecond,
		"D": 0,
	}}
	svc, _, id := setupRouteTest(t, maps, "S", "A", "B", "C", "D", "E")

	res, err := svc.RecomputeRouteSegments(context.Background(), id, 1)
	require.NoError(t, err)
	require.Len(t, res.Segments, 5)
	want := []string{"S-A", "A-B", "B-C", "C-D", "D-E"}
	for i, seg := range res.Segments {
		assert.Equal(t, want[i], seg.Distance)
	}
	assert.LessOrEqual(t, maps.peak.Load(), int32(2))
}

func TestServiceImpl_LegTimeout(t *testing.T) {
	maps := &slowMaps{delays: map[string]time.Duration{"S": 0, "A": time.Minute}}
	svc, _, id := setupRouteTest(t, maps, "S", "A", "B")
	svc.opts.LegTimeout = 20 * time.Millisecond

	res, err := svc.RecomputeRouteSegments(context.Background(), id, 1)
	require.NoError(t, err)
	assert.Len(t, res.Segments, 1)
	assert.Len(t, res.Warnings, 1)
}

func TestServiceImpl_DisplaySegment(t *testing.T) {
	ctx := context.Background()
	m := new(MockMaps)
	m.On("ComputeRoute", mock.Anything, "Airport", "A", ports.TravelDriving).Return(leg("8 km", "15 mins"), nil)
	m.On("ComputeRoute", mock.Anything, "A", "B", ports.TravelDriving).Return(leg("2 km", "5 mins"), nil)
	svc, collections, id := setupRouteTest(t, m, "Airport", "A", "B")

	t.Run("computes on first use then reuses the chain", func(t *testing.T) {
		seg, err := svc.DisplaySegment(ctx, id, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, "A", seg.From)
		m.AssertNumberOfCalls(t, "ComputeRoute", 2)

		_, err = svc.DisplaySegment(ctx, id, 1, 0)
		require.NoError(t, err)
		m.AssertNumberOfCalls(t, "ComputeRoute", 2)

		v, ok := svc.chains.Get(chainKey(id, 1))
		require.True(t, ok)
		assert.Equal(t, 0, v.(*chainState).result.Focus)
	})

	t.Run("invalidation forces a recompute", func(t *testing.T) {
		svc.Invalidate(id, 1)
		_, err := svc.DisplaySegment(ctx, id, 1, 0)
		require.NoError(t, err)
		m.AssertNumberOfCalls(t, "ComputeRoute", 4)
	})

	t.Run("changed stops are detected without explicit invalidation", func(t *testing.T) {
		m.On("ComputeRoute", mock.Anything, "B", "C", ports.TravelDriving).Return(leg("1 km", "3 mins"), nil)
		_, err := collections.Mutate(ctx, id, func(c *types.Collection) error {
			c.Plan(1).Stops = append(c.Plan(1).Stops, types.Stop{Name: "C"})
			return nil
		})
		require.NoError(t, err)

		seg, err := svc.DisplaySegment(ctx, id, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, "C", seg.To)
	})

	t.Run("display never writes the collection", func(t *testing.T) {
		before, err := collections.Get(ctx, id)
		require.NoError(t, err)
		_, err = svc.DisplaySegment(ctx, id, 1, 1)
		require.NoError(t, err)
		after, err := collections.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, before.Revision, after.Revision)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := svc.DisplaySegment(ctx, id, 1, 9)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestServiceImpl_SetStart(t *testing.T) {
	ctx := context.Background()

	t.Run("accommodation is cleared as start", func(t *testing.T) {
		svc, collections, id := setupRouteTest(t, new(MockMaps), "")
		_, err := collections.Mutate(ctx, id, func(c *types.Collection) error {
			c.Plan(1).Accommodation = "Kosa Hotel"
			return nil
		})
		require.NoError(t, err)

		p, err := svc.SetStartLocation(ctx, id, 1, "Kosa Hotel")
		require.NoError(t, err)
		assert.Empty(t, p.StartLocation)

		stored, err := collections.Get(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, stored.Plan(1).StartLocation)

		p, err = svc.SetStartLocation(ctx, id, 1, " Khon Kaen Railway Station ")
		require.NoError(t, err)
		assert.Equal(t, "Khon Kaen Railway Station", p.StartLocation)
	})

	t.Run("coordinates are reverse geocoded", func(t *testing.T) {
		m := new(MockMaps)
		at := types.LatLng{Lat: 16.4419, Lng: 102.8391}
		m.On("ReverseGeocode", mock.Anything, at).Return("Srichan Rd, Khon Kaen", nil)
		svc, _, id := setupRouteTest(t, m, "")

		p, err := svc.SetStartFromCoordinates(ctx, id, 1, at)
		require.NoError(t, err)
		assert.Equal(t, "Srichan Rd, Khon Kaen", p.StartLocation)
	})

	t.Run("geocoded hotel street is treated like typed text", func(t *testing.T) {
		m := new(MockMaps)
		at := types.LatLng{Lat: 16.43, Lng: 102.83}
		m.On("ReverseGeocode", mock.Anything, at).Return("Hotel Rd, Khon Kaen", nil)
		svc, _, id := setupRouteTest(t, m, "")

		p, err := svc.SetStartFromCoordinates(ctx, id, 1, at)
		require.NoError(t, err)
		assert.Empty(t, p.StartLocation)
		typed, err := svc.SetStartLocation(ctx, id, 1, "Hotel Rd, Khon Kaen")
		require.NoError(t, err)
		assert.Equal(t, typed.StartLocation, p.StartLocation)
	})

	t.Run("geocoding failure keeps the start location", func(t *testing.T) {
		m := new(MockMaps)
		at := types.LatLng{Lat: 16.4, Lng: 102.8}
		m.On("ReverseGeocode", mock.Anything, at).Return("", errors.Join(types.ErrProviderFailure, errors.New("timeout")))
		svc, collections, id := setupRouteTest(t, m, "Bus Terminal 3")

		_, err := svc.SetStartFromCoordinates(ctx, id, 1, at)
		assert.ErrorIs(t, err, types.ErrProviderFailure)

		c, err := collections.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Bus Terminal 3", c.Plan(1).StartLocation)
	})

	t.Run("out of range coordinates", func(t *testing.T) {
		svc, _, id := setupRouteTest(t, new(MockMaps), "")
		_, err := svc.SetStartFromCoordinates(ctx, id, 1, types.LatLng{Lat: 91})
		assert.ErrorIs(t, err, types.ErrValidation)
	})
}
