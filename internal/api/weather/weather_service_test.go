package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/collection"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// MockProvider is a mock implementation of ports.WeatherProvider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) DailyForecast(ctx context.Context, at types.LatLng) ([]types.ForecastPoint, error) {
	args := m.Called(ctx, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ForecastPoint), args.Error(1)
}

var khonKaen = types.LatLng{Lat: 16.4419, Lng: 102.8391}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func points(n int) []types.ForecastPoint {
	out := make([]types.ForecastPoint, n)
	for i := range out {
		out[i] = types.ForecastPoint{
			TempKelvin:  305.65 + float64(i),
			FeelsKelvin: 308.15,
			Humidity:    60,
			WindMS:      2.5,
			Main:        "Clear",
			Description: "clear sky",
			Icon:        "01d",
		}
	}
	return out
}

func TestServiceImpl_Forecast(t *testing.T) {
	ctx := context.Background()
	start := types.NewDate(2025, time.April, 10)

	t.Run("eight day trip yields five entries", func(t *testing.T) {
		p := new(MockProvider)
		p.On("DailyForecast", mock.Anything, khonKaen).Return(points(6), nil)
		svc := NewServiceImpl(p, khonKaen, testLogger())

		res := svc.Forecast(ctx, start, start.AddDays(7))

		assert.Equal(t, types.ForecastAvailable, res.Status)
		require.Len(t, res.Entries, 5)
		for i, e := range res.Entries {
			assert.True(t, e.Date.Equal(start.AddDays(i)), "entry %d date", i)
		}
		p.AssertExpectations(t)
	})

	t.Run("short trip is capped at trip length", func(t *testing.T) {
		p := new(MockProvider)
		p.On("DailyForecast", mock.Anything, khonKaen).Return(points(5), nil)
		svc := NewServiceImpl(p, khonKaen, testLogger())

		res := svc.Forecast(ctx, start, start.AddDays(1))
		assert.Len(t, res.Entries, 2)
	})

	t.Run("provider failure is unavailable without entries", func(t *testing.T) {
		p := new(MockProvider)
		p.On("DailyForecast", mock.Anything, khonKaen).Return(nil, types.ErrProviderFailure)
		svc := NewServiceImpl(p, khonKaen, testLogger())

		res := svc.Forecast(ctx, start, start.AddDays(2))
		assert.Equal(t, types.ForecastUnavailable, res.Status)
		assert.Empty(t, res.Entries)
		assert.NotNil(t, res.Entries)
	})

	t.Run("empty provider response is unavailable", func(t *testing.T) {
		p := new(MockProvider)
		p.On("DailyForecast", mock.Anything, khonKaen).Return([]types.ForecastPoint{}, nil)
		svc := NewServiceImpl(p, khonKaen, testLogger())

		res := svc.Forecast(ctx, start, start.AddDays(2))
		assert.Equal(t, types.ForecastUnavailable, res.Status)
	})

	t.Run("inverted range does not call the provider", func(t *testing.T) {
		p := new(MockProvider)
		svc := NewServiceImpl(p, khonKaen, testLogger())

		res := svc.Forecast(ctx, start, start.AddDays(-1))
		assert.Equal(t, types.ForecastUnavailable, res.Status)
		p.AssertNotCalled(t, "DailyForecast", mock.Anything, mock.Anything)
	})
}

func TestNormalize(t *testing.T) {
	date := types.NewDate(2025, time.April, 10)
	snap := Normalize(types.ForecastPoint{
		TempKelvin:  306.15,
		FeelsKelvin: 309.15,
		Humidity:    55,
		WindMS:      3.2,
		Main:        "Rain",
		Description: "light rain",
		Icon:        "10d",
	}, date)

	assert.Equal(t, 33, snap.Temperature)
	assert.Equal(t, 12, snap.WindSpeed)
	assert.Equal(t, 55, snap.Humidity)
	assert.Equal(t, "Rain", snap.Condition)
	assert.Equal(t, "light rain", snap.Description)
	assert.Equal(t, Advisory("rain"), snap.Advisory)
	assert.InDelta(t, 36.0, snap.FeelsLike, 0.01)
	assert.True(t, snap.Date.Equal(date))
}

func TestAdvisory(t *testing.T) {
	tests := []struct {
		main string
		want string
	}{
		{"Thunderstorm", "พกร่มไว้ด้วยและหลีกเลี่ยงพื้นที่โล่งแจ้ง"},
		{"Drizzle", "พกร่มไว้ด้วย"},
		{"Rain", "พกร่มไว้ด้วย"},
		{"Snow", "เตรียมเสื้อหนาวและรองเท้าที่เหมาะสม"},
		{"Clear", "อากาศแจ่มใส เหมาะสำหรับกิจกรรมกลางแจ้ง"},
		{"Clouds", "มีเมฆเล็กน้อย เหมาะสำหรับกิจกรรมกลางแจ้ง"},
		{"Haze", "ตรวจสอบสภาพอากาศก่อนออกเดินทาง"},
		{"", "ตรวจสอบสภาพอากาศก่อนออกเดินทาง"},
	}
	for _, tt := range tests {
		t.Run(tt.main, func(t *testing.T) {
			assert.Equal(t, tt.want, Advisory(tt.main))
		})
	}
}

func TestWeatherFor(t *testing.T) {
	start := types.NewDate(2025, time.April, 10)
	c := &types.Collection{
		StartDate: start,
		EndDate:   start.AddDays(6),
		WeatherForecast: []types.WeatherSnapshot{
			{Date: start, Temperature: 33},
			{Date: start.AddDays(1), Temperature: 34},
		},
	}

	snap, ok := WeatherFor(c, 2)
	require.True(t, ok)
	assert.Equal(t, 34, snap.Temperature)

	_, ok = WeatherFor(c, 6)
	assert.False(t, ok, "beyond the forecast horizon")

	_, ok = WeatherFor(c, 0)
	assert.False(t, ok)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	start := types.NewDate(2025, time.April, 10)

	setup := func(p *MockProvider) (*ServiceImpl, *collection.ServiceImpl, *types.Collection) {
		svc := NewServiceImpl(p, khonKaen, testLogger())
		collections := collection.NewServiceImpl(collection.NewMemoryStore(), nil, collection.Options{MaxTripDays: 7}, testLogger())
		budget := 5000.0
		resp, err := collections.Create(ctx, types.CreateCollectionRequest{
			Name:      "Refresh me",
			Category:  types.CategoryCouple,
			StartDate: start,
			EndDate:   start.AddDays(2),
			Budget:    &budget,
		})
		require.NoError(t, err)
		return svc, collections, resp.Collection
	}

	t.Run("stores new entries", func(t *testing.T) {
		p := new(MockProvider)
		p.On("DailyForecast", mock.Anything, khonKaen).Return(points(5), nil)
		svc, collections, c := setup(p)
		assert.Equal(t, types.ForecastUnavailable, c.ForecastStatus)

		updated, err := Refresh(ctx, svc, collections, c.ID)
		require.NoError(t, err)
		assert.Equal(t, types.ForecastAvailable, updated.ForecastStatus)
		assert.Len(t, updated.WeatherForecast, 3)
	})

	t.Run("outage keeps the previous entries", func(t *testing.T) {
		p := new(MockProvider)
		p.On("DailyForecast", mock.Anything, khonKaen).Return(points(5), nil).Once()
		p.On("DailyForecast", mock.Anything, khonKaen).Return(nil, errors.New("boom")).Once()
		svc, collections, c := setup(p)

		_, err := Refresh(ctx, svc, collections, c.ID)
		require.NoError(t, err)
		updated, err := Refresh(ctx, svc, collections, c.ID)
		require.NoError(t, err)
		assert.Equal(t, types.ForecastUnavailable, updated.ForecastStatus)
		assert.Len(t, updated.WeatherForecast, 3)
	})
}
