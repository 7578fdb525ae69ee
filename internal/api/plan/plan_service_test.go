package plan

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/collection"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/itinerary"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

type spyInvalidator struct {
	mu    sync.Mutex
	calls []int
}

func (s *spyInvalidator) Invalidate(_ uuid.UUID, day int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, day)
}

func (s *spyInvalidator) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var tripStart = types.NewDate(2025, time.April, 10)

type forecastStub struct{}

func (forecastStub) Forecast(_ context.Context, start, _ types.Date) types.ForecastResult {
	return types.ForecastResult{
		Status: types.ForecastAvailable,
		Entries: []types.WeatherSnapshot{
			{Date: start, Temperature: 33, Condition: "Clear"},
			{Date: start.AddDays(1), Temperature: 31, Condition: "Rain"},
		},
	}
}

func setupPlanTest(t *testing.T) (*ServiceImpl, collection.Service, *spyInvalidator, uuid.UUID) {
	t.Helper()
	collections := collection.NewServiceImpl(collection.NewMemoryStore(), forecastStub{}, collection.Options{MaxTripDays: 7}, testLogger())
	b := 9000.0
	resp, err := collections.Create(context.Background(), types.CreateCollectionRequest{
		Name:      "ขอนแก่น 3 วัน",
		Category:  types.CategoryFamily,
		StartDate: tripStart,
		EndDate:   tripStart.AddDays(2),
		Budget:    &b,
	})
	require.NoError(t, err)
	spy := &spyInvalidator{}
	return NewServiceImpl(collections, spy, time.UTC, testLogger()), collections, spy, resp.Collection.ID
}

func TestServiceImpl_Stops(t *testing.T) {
	ctx := context.Background()

	t.Run("add keeps end location on the last stop", func(t *testing.T) {
		svc, _, spy, id := setupPlanTest(t)

		p, err := svc.AddStop(ctx, id, 1, types.Stop{Name: "Wat Nong Wang", TimeStart: "09:00", TimeEnd: "10:30"})
		require.NoError(t, err)
		assert.Equal(t, "Wat Nong Wang", p.EndLocation)

		p, err = svc.AddStop(ctx, id, 1, types.Stop{Name: "Ton Tann Market"})
		require.NoError(t, err)
		assert.Len(t, p.Stops, 2)
		assert.Equal(t, "Ton Tann Market", p.EndLocation)
		assert.Equal(t, 2, spy.count())
	})

	t.Run("blank stop is accepted", func(t *testing.T) {
		svc, _, _, id := setupPlanTest(t)
		p, err := svc.AddStop(ctx, id, 1, types.Stop{})
		require.NoError(t, err)
		assert.Len(t, p.Stops, 1)
	})

	t.Run("invalid clock is rejected before any write", func(t *testing.T) {
		svc, collections, spy, id := setupPlanTest(t)
		before, err := collections.Get(ctx, id)
		require.NoError(t, err)

		_, err = svc.AddStop(ctx, id, 1, types.Stop{Name: "x", TimeStart: "9am"})
		assert.ErrorIs(t, err, types.ErrValidation)

		after, err := collections.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, before.Revision, after.Revision)
		assert.Zero(t, spy.count())
	})

	t.Run("remove out of range is a validation error", func(t *testing.T) {
		svc, _, spy, id := setupPlanTest(t)
		_, err := svc.RemoveStop(ctx, id, 1, 0)
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.Zero(t, spy.count())
	})

	t.Run("remove last stop moves end location back", func(t *testing.T) {
		svc, _, _, id := setupPlanTest(t)
		_, err := svc.ReplaceStops(ctx, id, 1, []types.Stop{{Name: "A"}, {Name: "B"}, {Name: "C"}})
		require.NoError(t, err)

		p, err := svc.RemoveStop(ctx, id, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, "B", p.EndLocation)
		assert.Equal(t, []string{"A", "B"}, []string{p.Stops[0].Name, p.Stops[1].Name})
	})

	t.Run("update field", func(t *testing.T) {
		svc, _, _, id := setupPlanTest(t)
		_, err := svc.AddStop(ctx, id, 1, types.Stop{Name: "A"})
		require.NoError(t, err)

		p, err := svc.UpdateStopField(ctx, id, 1, 0, itinerary.FieldName, "Kaen Nakhon Lake")
		require.NoError(t, err)
		assert.Equal(t, "Kaen Nakhon Lake", p.Stops[0].Name)
		assert.Equal(t, "Kaen Nakhon Lake", p.EndLocation)

		_, err = svc.UpdateStopField(ctx, id, 1, 0, itinerary.FieldTimeEnd, "25:00")
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("unknown day is not found", func(t *testing.T) {
		svc, _, _, id := setupPlanTest(t)
		_, err := svc.AddStop(ctx, id, 4, types.Stop{Name: "A"})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestServiceImpl_Transportation(t *testing.T) {
	ctx := context.Background()

	t.Run("override then fall back to last stop", func(t *testing.T) {
		svc, _, spy, id := setupPlanTest(t)
		_, err := svc.ReplaceStops(ctx, id, 1, []types.Stop{{Name: "A"}, {Name: "B"}})
		require.NoError(t, err)
		calls := spy.count()

		p, err := svc.UpdateTransportation(ctx, id, 1, "Khon Kaen Airport", "Central Plaza", "Rental car")
		require.NoError(t, err)
		assert.Equal(t, "Central Plaza", p.EndLocation)
		assert.Equal(t, "Rental car", p.Transportation)
		assert.Equal(t, calls+1, spy.count())

		p, err = svc.UpdateTransportation(ctx, id, 1, "Khon Kaen Airport", "", "Rental car")
		require.NoError(t, err)
		assert.Equal(t, "B", p.EndLocation)
		assert.Equal(t, calls+1, spy.count(), "unchanged start does not invalidate routes")
	})

	t.Run("accommodation-like start is cleared on save", func(t *testing.T) {
		svc, _, _, id := setupPlanTest(t)
		_, err := svc.UpdateAccommodation(ctx, id, 1, "Pullman Khon Kaen")
		require.NoError(t, err)

		p, err := svc.UpdateTransportation(ctx, id, 1, "Pullman Khon Kaen", "", "Tuk-tuk")
		require.NoError(t, err)
		assert.Empty(t, p.StartLocation)

		p, err = svc.UpdateTransportation(ctx, id, 1, "โรงแรมในตัวเมือง", "", "Tuk-tuk")
		require.NoError(t, err)
		assert.Empty(t, p.StartLocation)
	})

	t.Run("accommodation does not touch locations", func(t *testing.T) {
		svc, _, _, id := setupPlanTest(t)
		_, err := svc.UpdateTransportation(ctx, id, 1, "Bus Terminal 3", "", "Bus")
		require.NoError(t, err)

		p, err := svc.UpdateAccommodation(ctx, id, 1, "  Homestay Ban Khok  ")
		require.NoError(t, err)
		assert.Equal(t, "Homestay Ban Khok", p.Accommodation)
		assert.Equal(t, "Bus Terminal 3", p.StartLocation)
	})
}

func TestServiceImpl_Activities(t *testing.T) {
	ctx := context.Background()
	svc, _, _, id := setupPlanTest(t)

	p, err := svc.UpdateActivities(ctx, id, 1, []types.Activity{
		{Title: "Silk weaving", Cost: 300, Type: "culture"},
		{Title: "Som tam lunch", Date: tripStart, Cost: 120, Type: "local-food"},
	})
	require.NoError(t, err)
	require.Len(t, p.Activities, 2)
	assert.True(t, p.Activities[0].Date.Equal(types.Today(time.UTC)))
	assert.True(t, p.Activities[1].Date.Equal(tripStart))

	_, err = svc.UpdateActivities(ctx, id, 1, []types.Activity{{Title: "", Cost: -1}})
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 2)
}

func TestServiceImpl_GetDay(t *testing.T) {
	ctx := context.Background()
	svc, collections, _, id := setupPlanTest(t)

	_, err := collections.AddNewDay(ctx, id)
	require.NoError(t, err)

	view, err := svc.GetDay(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, types.PlanEmpty, view.Status)
	assert.True(t, view.Date.Equal(tripStart))

	_, err = svc.ReplaceStops(ctx, id, 2, []types.Stop{{Name: "Phra That Kham Kaen", TimeStart: "09:00", TimeEnd: "11:00"}})
	require.NoError(t, err)
	_, err = svc.UpdateActivities(ctx, id, 2, []types.Activity{{Title: "Rafting", Cost: 500, Type: "nature"}})
	require.NoError(t, err)

	view, err = svc.GetDay(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, types.PlanComplete, view.Status)
	assert.True(t, view.Date.Equal(tripStart.AddDays(1)))
	assert.Equal(t, []string{"2 hours"}, view.StopDurations)
	assert.InDelta(t, 500, view.DaySpent, 0.001)
	require.NotNil(t, view.Weather)
	assert.Equal(t, 31, view.Weather.Temperature)

	_, err = svc.GetDay(ctx, id, 9)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
