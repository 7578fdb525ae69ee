package hotel

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// MockProvider is a mock implementation of ports.HotelProvider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) SearchDestinations(ctx context.Context, query string) ([]types.HotelDestination, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.HotelDestination), args.Error(1)
}

func (m *MockProvider) GetDetails(ctx context.Context, q types.HotelQuery) (types.HotelDetails, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(types.HotelDetails), args.Error(1)
}

func setupHotelTest() (*ServiceImpl, *MockProvider) {
	m := new(MockProvider)
	return NewServiceImpl(m, slog.New(slog.NewTextHandler(io.Discard, nil))), m
}

func price(v float64) *float64 { return &v }

func TestServiceImpl_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("condensed card", func(t *testing.T) {
		svc, m := setupHotelTest()
		m.On("GetDetails", mock.Anything, types.HotelQuery{ID: "42", Adults: 1}).Return(types.HotelDetails{
			ID:           "42",
			Name:         "Avani Khon Kaen",
			Address:      "999 Srichan Rd, Khon Kaen, th",
			Facilities:   []string{"Pool", "Wifi", "Gym", "Spa", "Parking", "Bar", "Shuttle"},
			Rooms:        []types.HotelRoom{{Description: "Superior King", Photos: []string{"https://img/1.jpg", "https://img/2.jpg"}}},
			NightlyPrice: price(1850),
			Currency:     "THB",
		}, nil)

		sum, err := svc.Summary(ctx, types.HotelQuery{ID: "42"})
		require.NoError(t, err)
		assert.True(t, sum.Found)
		assert.False(t, sum.ManualEntry)
		assert.Equal(t, []string{"Pool", "Wifi", "Gym", "Spa", "Parking"}, sum.Facilities)
		assert.Equal(t, "https://img/1.jpg", sum.RoomPhoto)
		assert.Equal(t, "Superior King", sum.RoomDetails)
		assert.Equal(t, "฿1850 ต่อคืน", sum.NightlyPrice)
	})

	t.Run("unknown hotel falls back to manual entry", func(t *testing.T) {
		svc, m := setupHotelTest()
		m.On("GetDetails", mock.Anything, mock.Anything).Return(types.HotelDetails{}, types.ErrNotFound)

		sum, err := svc.Summary(ctx, types.HotelQuery{ID: "0"})
		require.NoError(t, err)
		assert.False(t, sum.Found)
		assert.True(t, sum.ManualEntry)
		assert.NotEmpty(t, sum.Notice)
	})

	t.Run("provider outage falls back to manual entry", func(t *testing.T) {
		svc, m := setupHotelTest()
		m.On("GetDetails", mock.Anything, mock.Anything).Return(types.HotelDetails{}, types.ErrProviderFailure)

		sum, err := svc.Summary(ctx, types.HotelQuery{ID: "42"})
		require.NoError(t, err)
		assert.True(t, sum.ManualEntry)
	})

	t.Run("checkout before checkin", func(t *testing.T) {
		svc, _ := setupHotelTest()
		_, err := svc.Summary(ctx, types.HotelQuery{
			ID:       "42",
			CheckIn:  types.NewDate(2025, time.April, 12),
			CheckOut: types.NewDate(2025, time.April, 10),
		})
		assert.ErrorIs(t, err, types.ErrValidation)
	})
}

func TestSummarize_ForeignCurrencyAndNoRooms(t *testing.T) {
	sum := Summarize(types.HotelDetails{Name: "x", NightlyPrice: price(55.5), Currency: "usd"})
	assert.Equal(t, "55.5 USD ต่อคืน", sum.NightlyPrice)
	assert.Empty(t, sum.RoomPhoto)
}

func TestServiceImpl_SearchDestinations(t *testing.T) {
	ctx := context.Background()
	svc, m := setupHotelTest()
	m.On("SearchDestinations", mock.Anything, "khon kaen hotel").Return([]types.HotelDestination{{ID: "1", Name: "Khon Kaen"}}, nil)
	m.On("SearchDestinations", mock.Anything, "atlantis").Return(nil, types.ErrNotFound)
	m.On("SearchDestinations", mock.Anything, "down").Return(nil, types.ErrProviderFailure)

	got, err := svc.SearchDestinations(ctx, "khon kaen hotel")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.SearchDestinations(ctx, "atlantis")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.SearchDestinations(ctx, "down")
	assert.ErrorIs(t, err, types.ErrProviderFailure)

	_, err = svc.SearchDestinations(ctx, "")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestHandlerImpl_GetHotelSummary(t *testing.T) {
	svc, m := setupHotelTest()
	m.On("GetDetails", mock.Anything, mock.Anything).Return(types.HotelDetails{}, types.ErrNotFound)
	h := NewHandlerImpl(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Get("/hotels/{hotelID}", h.GetHotelSummary)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/hotels/42?checkin=2025-04-10&checkout=2025-04-12&adults=2", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"manualEntry":true`)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/hotels/42?checkin=tomorrow", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
