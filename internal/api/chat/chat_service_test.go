package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/FACorreiaa/go-khonkaen-travel-planner/app/middleware"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/collection"
	generativeAI "github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

// MockModel is a mock implementation of ports.ChatModel
type MockModel struct {
	mock.Mock
}

func (m *MockModel) StartConversation(ctx context.Context, systemPrompt string) (ports.Conversation, error) {
	args := m.Called(ctx, systemPrompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Conversation), args.Error(1)
}

func (m *MockModel) GenerateContent(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// scriptedConversation answers with the queued replies in order.
type scriptedConversation struct {
	replies []string
	err     error
	seen    []string
}

func (c *scriptedConversation) SendMessage(_ context.Context, text string) (string, error) {
	c.seen = append(c.seen, text)
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r, nil
}

var fixedNow = time.Date(2025, time.April, 10, 9, 0, 0, 0, time.UTC)

const generatedTrip = "```json\n" + `{
  "name": "เที่ยวขอนแก่นกับเพื่อน",
  "category": "เพื่อน",
  "startDate": "2025-04-12",
  "endDate": "2025-04-13",
  "budget": 6000,
  "plans": [
    {"day": 1, "startLocation": "บึงแก่นนคร", "endLocation": "ที่ไหนก็ได้", "stops": [{"name": "พระมหาธาตุแก่นนคร", "timeStart": "09:00", "timeEnd": "10:00"}],
     "activities": [{"title": "ถนนคนเดิน", "cost": 300, "type": "shopping"}]},
    {"day": 2, "startLocation": "ตลาดต้นตาล"},
    {"day": 3, "startLocation": "เกินช่วงทริป"}
  ]
}` + "\n```"

type chatFixture struct {
	svc         *ServiceImpl
	model       *MockModel
	conv        *scriptedConversation
	collections collection.Service
}

func setupChatTest(t *testing.T) *chatFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := appMiddleware.NewSessionTokens("test-secret", "test", time.Hour)
	require.NoError(t, err)

	collections := collection.NewServiceImpl(collection.NewMemoryStore(), nil, collection.Options{MaxTripDays: 7}, logger)
	model := new(MockModel)
	conv := &scriptedConversation{}
	model.On("StartConversation", mock.Anything, generativeAI.SystemPrompt).Return(conv, nil)

	svc := NewServiceImpl(model, NewSessionStore(time.Hour), tokens, collections, time.UTC, logger)
	svc.now = func() time.Time { return fixedNow }
	return &chatFixture{svc: svc, model: model, conv: conv, collections: collections}
}

func TestServiceImpl_StartSession(t *testing.T) {
	f := setupChatTest(t)
	resp, err := f.svc.StartSession(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.SessionID)
	assert.NotEmpty(t, resp.Token)

	history, err := f.svc.History(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestServiceImpl_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("plain answer", func(t *testing.T) {
		f := setupChatTest(t)
		f.conv.replies = []string{"  ขอนแก่นมีบึงแก่นนครค่ะ  "}
		s, err := f.svc.StartSession(ctx)
		require.NoError(t, err)

		reply, err := f.svc.Send(ctx, s.SessionID, "แนะนำที่เที่ยวหน่อย")
		require.NoError(t, err)
		assert.Equal(t, "ขอนแก่นมีบึงแก่นนครค่ะ", reply.Text)
		assert.False(t, reply.TripCreated)

		history, err := f.svc.History(ctx, s.SessionID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, types.RoleUser, history[0].Role)
		assert.Equal(t, types.RoleAssistant, history[1].Role)
	})

	t.Run("sentinel creates a generated trip", func(t *testing.T) {
		f := setupChatTest(t)
		f.conv.replies = []string{"สรุปทริป 2 วันให้แล้วค่ะ [CREATE_TRIP]"}
		f.model.On("GenerateContent", mock.Anything, mock.Anything).Return(generatedTrip, nil)
		s, err := f.svc.StartSession(ctx)
		require.NoError(t, err)

		reply, err := f.svc.Send(ctx, s.SessionID, "สร้างทริปเลย")
		require.NoError(t, err)
		require.True(t, reply.TripCreated)
		require.NotNil(t, reply.CollectionID)
		assert.False(t, reply.UsedFallback)
		assert.NotContains(t, reply.Text, CreateTripSentinel)
		assert.True(t, strings.HasPrefix(reply.Text, "สรุปทริป 2 วันให้แล้วค่ะ"))

		c, err := f.collections.Get(ctx, *reply.CollectionID)
		require.NoError(t, err)
		assert.Equal(t, "เที่ยวขอนแก่นกับเพื่อน", c.Name)
		assert.Equal(t, types.CategoryFriends, c.Category)
		require.Len(t, c.Plans, 2)
		assert.Equal(t, "พระมหาธาตุแก่นนคร", c.Plans[0].Stops[0].Name)
		assert.Equal(t, "2025-04-12", c.Plans[0].Activities[0].Date.String())
		assert.NotNil(t, c.Plans[1].Stops)
		assertEndsAtLastStop(t, c)

		history, _ := f.svc.History(ctx, s.SessionID)
		for _, m := range history {
			assert.NotContains(t, m.Content, CreateTripSentinel)
		}
	})

	t.Run("unparseable trip uses the sample itinerary", func(t *testing.T) {
		f := setupChatTest(t)
		f.conv.replies = []string{"[CREATE_TRIP]"}
		f.model.On("GenerateContent", mock.Anything, mock.Anything).Return("นี่คือแผนของคุณ", nil)
		s, err := f.svc.StartSession(ctx)
		require.NoError(t, err)

		reply, err := f.svc.Send(ctx, s.SessionID, "ตกลง")
		require.NoError(t, err)
		require.True(t, reply.TripCreated)
		assert.True(t, reply.UsedFallback)

		c, err := f.collections.Get(ctx, *reply.CollectionID)
		require.NoError(t, err)
		assert.Equal(t, "ทริปครอบครัวขอนแก่น 3 วัน", c.Name)
		assert.Equal(t, types.CategoryFamily, c.Category)
		assert.Equal(t, "2025-04-10", c.StartDate.String())
		assert.Equal(t, 3, c.TotalDays())
		assert.Equal(t, 9000.0, c.Budget)
		assert.Len(t, c.Plans, 2)
		assertEndsAtLastStop(t, c)
	})

	t.Run("malformed stop time uses the sample itinerary", func(t *testing.T) {
		f := setupChatTest(t)
		f.conv.replies = []string{"[CREATE_TRIP]"}
		f.model.On("GenerateContent", mock.Anything, mock.Anything).
			Return(`{"name":"เช้าตรู่","category":"solo","startDate":"2025-04-10","endDate":"2025-04-10","budget":1000,"plans":[{"day":1,"stops":[{"name":"พระมหาธาตุแก่นนคร","timeStart":"9 AM","timeEnd":"10:00"}]}]}`, nil)
		s, _ := f.svc.StartSession(ctx)

		reply, err := f.svc.Send(ctx, s.SessionID, "ตกลง")
		require.NoError(t, err)
		require.True(t, reply.TripCreated)
		assert.True(t, reply.UsedFallback)

		c, err := f.collections.Get(ctx, *reply.CollectionID)
		require.NoError(t, err)
		assert.Equal(t, "ทริปครอบครัวขอนแก่น 3 วัน", c.Name)

		_, err = f.collections.Save(ctx, c)
		assert.NoError(t, err)

		list, err := f.collections.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("trip too long for the planner uses the sample itinerary", func(t *testing.T) {
		f := setupChatTest(t)
		f.conv.replies = []string{"[CREATE_TRIP]"}
		f.model.On("GenerateContent", mock.Anything, mock.Anything).
			Return(`{"name":"ยาวมาก","category":"solo","startDate":"2025-04-10","endDate":"2025-04-30","budget":1000,"plans":[{"day":1}]}`, nil)
		s, _ := f.svc.StartSession(ctx)

		reply, err := f.svc.Send(ctx, s.SessionID, "ตกลง")
		require.NoError(t, err)
		assert.True(t, reply.TripCreated)
		assert.True(t, reply.UsedFallback)
	})

	t.Run("model outage answers with an apology", func(t *testing.T) {
		f := setupChatTest(t)
		f.conv.err = types.ErrProviderFailure
		s, _ := f.svc.StartSession(ctx)

		reply, err := f.svc.Send(ctx, s.SessionID, "สวัสดี")
		require.NoError(t, err)
		assert.Equal(t, apologyText, reply.Text)

		history, _ := f.svc.History(ctx, s.SessionID)
		assert.Len(t, history, 2)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := setupChatTest(t)
		_, err := f.svc.Send(ctx, uuid.New(), "สวัสดี")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("blank message", func(t *testing.T) {
		f := setupChatTest(t)
		s, _ := f.svc.StartSession(ctx)
		_, err := f.svc.Send(ctx, s.SessionID, "   ")
		assert.ErrorIs(t, err, types.ErrValidation)
	})
}

func assertEndsAtLastStop(t *testing.T, c *types.Collection) {
	t.Helper()
	for _, p := range c.Plans {
		if len(p.Stops) == 0 {
			continue
		}
		assert.Equal(t, p.Stops[len(p.Stops)-1].Name, p.EndLocation, "day %d", p.Day)
	}
}

func TestSampleTrip_EndsAtLastStop(t *testing.T) {
	trip := SampleTrip(types.NewDate(2025, time.April, 10))
	for _, p := range trip.Plans {
		require.NotEmpty(t, p.Stops)
		assert.Equal(t, p.Stops[len(p.Stops)-1].Name, p.EndLocation, "day %d", p.Day)
	}
}

func TestServiceImpl_Clear(t *testing.T) {
	ctx := context.Background()
	f := setupChatTest(t)
	f.conv.replies = []string{"สวัสดีค่ะ"}
	s, _ := f.svc.StartSession(ctx)
	_, err := f.svc.Send(ctx, s.SessionID, "สวัสดี")
	require.NoError(t, err)

	require.NoError(t, f.svc.Clear(ctx, s.SessionID))
	history, err := f.svc.History(ctx, s.SessionID)
	require.NoError(t, err)
	assert.Empty(t, history)
	f.model.AssertNumberOfCalls(t, "StartConversation", 2)
}

func TestParseTripPlan(t *testing.T) {
	trip, err := ParseTripPlan(generatedTrip)
	require.NoError(t, err)
	assert.Len(t, trip.Plans, 3)
	assert.Equal(t, 3, trip.Plans[2].Day)

	for _, bad := range []string{
		"ไม่มี JSON",
		`{"name":"","startDate":"2025-04-10","endDate":"2025-04-11","plans":[{}]}`,
		`{"name":"x","startDate":"10/04/2025","endDate":"2025-04-11","plans":[{}]}`,
		`{"name":"x","startDate":"2025-04-12","endDate":"2025-04-11","plans":[{}]}`,
		`{"name":"x","startDate":"2025-04-10","endDate":"2025-04-11","plans":[]}`,
		`{"name":"x","startDate":"2025-04-10","endDate":"2025-04-11","plans":[{"activities":[{"date":"soon"}]}]}`,
		`{"name":"x","startDate":"2025-04-10","endDate":"2025-04-11","plans":[{"stops":[{"name":"a","timeStart":"9 AM"}]}]}`,
		`{"name":"x","startDate":"2025-04-10","endDate":"2025-04-11","plans":[{"activities":[{"title":"a","timeEnd":"25:00"}]}]}`,
		`{"name":"x","startDate":"2025-04-10","endDate":"2025-04-11","plans":[{"activities":[{"title":"a","cost":-5}]}]}`,
	} {
		_, err := ParseTripPlan(bad)
		assert.ErrorIs(t, err, types.ErrParseFailure, bad)
	}
}

func TestStripSentinel(t *testing.T) {
	text, ok := StripSentinel("พร้อมแล้วค่ะ\n[CREATE_TRIP]")
	assert.True(t, ok)
	assert.Equal(t, "พร้อมแล้วค่ะ", text)

	text, ok = StripSentinel("ยังไม่พร้อม")
	assert.False(t, ok)
	assert.Equal(t, "ยังไม่พร้อม", text)
}

func TestCategoryFrom(t *testing.T) {
	assert.Equal(t, types.CategoryCouple, CategoryFrom("Couple"))
	assert.Equal(t, types.CategoryStudent, CategoryFrom("นักศึกษา"))
	assert.Equal(t, types.CategoryFamily, CategoryFrom("อื่นๆ"))
}

func TestHandlerImpl_SessionFlow(t *testing.T) {
	f := setupChatTest(t)
	f.conv.replies = []string{"สวัสดีค่ะ"}
	tokens, err := appMiddleware.NewSessionTokens("test-secret", "test", time.Hour)
	require.NoError(t, err)
	h := NewHandlerImpl(f.svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Post("/chat/sessions", h.StartSession)
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.RequireSession(tokens))
		r.Post("/chat/messages", h.SendMessage)
		r.Get("/chat/messages", h.GetHistory)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/chat/sessions", nil))
	require.Equal(t, http.StatusCreated, rr.Code)

	s, err := f.svc.StartSession(context.Background())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(`{"message":"สวัสดี"}`))
	req.Header.Set("Authorization", "Bearer "+s.Token)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "สวัสดีค่ะ")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/chat/messages", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
