package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/collection"
	generativeAI "github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/itinerary"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

const (
	maxMessageRunes = 2000

	apologyText       = "ขออภัย เกิดข้อผิดพลาดในการเชื่อมต่อ AI กรุณาลองใหม่อีกครั้ง"
	tripFailedText    = "ขออภัย ไม่สามารถสร้างทริปได้ กรุณาลองใหม่อีกครั้ง"
	tripCreatedFormat = "✅ สร้างทริป \"%s\" สำเร็จแล้ว! ดูและแก้ไขทริปได้ในหน้า \"ทริปของฉัน\""
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// StartSession opens a conversation and returns the token that owns it.
	StartSession(ctx context.Context) (*types.ChatSessionResponse, error)
	// Send forwards text to the assistant. A model outage is answered with an
	// apology, not an error.
	Send(ctx context.Context, sessionID uuid.UUID, text string) (*types.ChatReply, error)
	History(ctx context.Context, sessionID uuid.UUID) ([]types.ChatMessage, error)
	// Clear restarts the conversation; the session token stays valid.
	Clear(ctx context.Context, sessionID uuid.UUID) error
	// GenerateTrip builds and saves a trip from a transcript. The bool
	// reports whether the sample itinerary was used instead.
	GenerateTrip(ctx context.Context, transcript string) (*types.Collection, bool, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(sessionID uuid.UUID) (string, time.Time, error)
}

type ServiceImpl struct {
	logger      *slog.Logger
	model       ports.ChatModel
	sessions    *SessionStore
	tokens      TokenIssuer
	collections collection.Service
	loc         *time.Location
	now         func() time.Time
}

func NewServiceImpl(model ports.ChatModel, sessions *SessionStore, tokens TokenIssuer, collections collection.Service, loc *time.Location, logger *slog.Logger) *ServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &ServiceImpl{
		logger:      logger,
		model:       model,
		sessions:    sessions,
		tokens:      tokens,
		collections: collections,
		loc:         loc,
		now:         time.Now,
	}
}

func (s *ServiceImpl) today() types.Date {
	t := s.now().In(s.loc)
	return types.NewDate(t.Year(), t.Month(), t.Day())
}

func (s *ServiceImpl) StartSession(ctx context.Context) (*types.ChatSessionResponse, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "StartSession")
	defer span.End()

	l := s.logger.With(slog.String("method", "StartSession"))

	conv, err := s.model.StartConversation(ctx, generativeAI.SystemPrompt)
	if err != nil {
		l.ErrorContext(ctx, "Failed to start assistant conversation", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Conversation start failed")
		return nil, fmt.Errorf("failed to start conversation: %w", err)
	}

	id := uuid.New()
	token, expiresAt, err := s.tokens.Issue(id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue session token", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Token issue failed")
		return nil, err
	}

	s.sessions.Put(&Conversation{ID: id, CreatedAt: s.now(), model: conv, messages: []types.ChatMessage{}})

	l.InfoContext(ctx, "Chat session started", slog.String("sessionID", id.String()))
	span.SetAttributes(attribute.String("session.id", id.String()))
	span.SetStatus(codes.Ok, "Session started")
	return &types.ChatSessionResponse{SessionID: id, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *ServiceImpl) conversation(id uuid.UUID) (*Conversation, error) {
	c, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("chat session %s: %w", id, types.ErrNotFound)
	}
	return c, nil
}

func (s *ServiceImpl) Send(ctx context.Context, sessionID uuid.UUID, text string) (*types.ChatReply, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "Send", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Send"), slog.String("sessionID", sessionID.String()))

	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return nil, &types.ValidationError{Problems: []string{"message is required"}}
	case utf8.RuneCountInString(text) > maxMessageRunes:
		return nil, &types.ValidationError{Problems: []string{fmt.Sprintf("message may not exceed %d characters", maxMessageRunes)}}
	}

	conv, err := s.conversation(sessionID)
	if err != nil {
		span.SetStatus(codes.Error, "Unknown session")
		return nil, err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	m := metrics.Get()
	conv.append(types.RoleUser, text, s.now())

	answer, err := conv.model.SendMessage(ctx, text)
	if err != nil {
		l.WarnContext(ctx, "Assistant unavailable", slog.Any("error", err))
		span.RecordError(err)
		m.ChatMessagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		conv.append(types.RoleAssistant, apologyText, s.now())
		return &types.ChatReply{Text: apologyText}, nil
	}
	m.ChatMessagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))

	visible, createTrip := StripSentinel(answer)
	reply := &types.ChatReply{Text: visible}

	if createTrip {
		l.InfoContext(ctx, "Assistant requested trip creation")
		transcript := Transcript(append(conv.messages, types.ChatMessage{Role: types.RoleAssistant, Content: visible}))
		c, usedFallback, err := s.GenerateTrip(ctx, transcript)
		if err != nil {
			l.ErrorContext(ctx, "Trip creation failed", slog.Any("error", err))
			span.RecordError(err)
			reply.Text = joinParagraphs(visible, tripFailedText)
		} else {
			id := c.ID
			reply.TripCreated = true
			reply.CollectionID = &id
			reply.UsedFallback = usedFallback
			reply.Text = joinParagraphs(visible, fmt.Sprintf(tripCreatedFormat, c.Name))
		}
	}

	conv.append(types.RoleAssistant, reply.Text, s.now())
	span.SetAttributes(attribute.Bool("trip.created", reply.TripCreated))
	span.SetStatus(codes.Ok, "Message answered")
	return reply, nil
}

func (s *ServiceImpl) History(ctx context.Context, sessionID uuid.UUID) ([]types.ChatMessage, error) {
	_, span := otel.Tracer("ChatService").Start(ctx, "History", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	conv, err := s.conversation(sessionID)
	if err != nil {
		span.SetStatus(codes.Error, "Unknown session")
		return nil, err
	}
	return conv.Messages(), nil
}

func (s *ServiceImpl) Clear(ctx context.Context, sessionID uuid.UUID) error {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "Clear", trace.WithAttributes(
		attribute.String("session.id", sessionID.String()),
	))
	defer span.End()

	conv, err := s.conversation(sessionID)
	if err != nil {
		span.SetStatus(codes.Error, "Unknown session")
		return err
	}

	fresh, err := s.model.StartConversation(ctx, generativeAI.SystemPrompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Conversation restart failed")
		return fmt.Errorf("failed to restart conversation: %w", err)
	}

	conv.mu.Lock()
	conv.model = fresh
	conv.messages = []types.ChatMessage{}
	conv.mu.Unlock()

	span.SetStatus(codes.Ok, "Conversation cleared")
	return nil
}

func (s *ServiceImpl) GenerateTrip(ctx context.Context, transcript string) (*types.Collection, bool, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "GenerateTrip")
	defer span.End()

	l := s.logger.With(slog.String("method", "GenerateTrip"))
	today := s.today()

	var trip *types.GeneratedTrip
	response, err := s.model.GenerateContent(ctx, TripPrompt(today, transcript))
	if err == nil {
		trip, err = ParseTripPlan(response)
	}
	usedFallback := err != nil
	if usedFallback {
		l.WarnContext(ctx, "Generated trip unusable, using sample itinerary", slog.Any("error", err))
		span.RecordError(err)
		trip = SampleTrip(today)
	}

	c, err := s.saveTrip(ctx, trip)
	if err != nil && !usedFallback && errors.Is(err, types.ErrValidation) {
		l.WarnContext(ctx, "Generated trip rejected, using sample itinerary", slog.Any("error", err))
		usedFallback = true
		c, err = s.saveTrip(ctx, SampleTrip(today))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Save failed")
		return nil, usedFallback, fmt.Errorf("failed to save generated trip: %w", err)
	}

	metrics.Get().TripsGeneratedTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("fallback", usedFallback)))
	l.InfoContext(ctx, "Trip generated", slog.String("collectionID", c.ID.String()), slog.Bool("fallback", usedFallback))
	span.SetAttributes(attribute.String("collection.id", c.ID.String()), attribute.Bool("fallback", usedFallback))
	span.SetStatus(codes.Ok, "Trip generated")
	return c, usedFallback, nil
}

// saveTrip creates the collection, which attaches the forecast, and then
// fills in the day plans that fit the date range.
func (s *ServiceImpl) saveTrip(ctx context.Context, trip *types.GeneratedTrip) (*types.Collection, error) {
	start, err := types.ParseDate(trip.StartDate)
	if err != nil {
		return nil, &types.ValidationError{Problems: []string{err.Error()}}
	}
	end, err := types.ParseDate(trip.EndDate)
	if err != nil {
		return nil, &types.ValidationError{Problems: []string{err.Error()}}
	}
	budget := trip.Budget

	created, err := s.collections.Create(ctx, types.CreateCollectionRequest{
		Name:      trip.Name,
		Category:  CategoryFrom(trip.Category),
		StartDate: start,
		EndDate:   end,
		Budget:    &budget,
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.collections.Mutate(ctx, created.Collection.ID, func(c *types.Collection) error {
		plans := trip.Plans
		if days := c.TotalDays(); len(plans) > days {
			plans = plans[:days]
		}
		c.Plans = make([]types.Plan, 0, len(plans))
		for i, p := range plans {
			p.Day = i + 1
			date := c.StartDate.AddDays(i)
			p.Activities = append([]types.Activity{}, p.Activities...)
			for j := range p.Activities {
				if p.Activities[j].Date.IsZero() {
					p.Activities[j].Date = date
				}
			}
			p.Stops = append([]types.Stop{}, p.Stops...)
			itinerary.OnStopsChanged(&p, p.Stops)
			c.Plans = append(c.Plans, p)
		}
		return collection.Validate(c)
	})
	if err != nil {
		if delErr := s.collections.Delete(ctx, created.Collection.ID); delErr != nil {
			s.logger.WarnContext(ctx, "Failed to remove incomplete trip", slog.Any("error", delErr))
		}
		return nil, err
	}
	return saved, nil
}

// StripSentinel removes every trip creation marker from an assistant answer
// and reports whether one was present.
func StripSentinel(answer string) (string, bool) {
	if !strings.Contains(answer, CreateTripSentinel) {
		return strings.TrimSpace(answer), false
	}
	return strings.TrimSpace(strings.ReplaceAll(answer, CreateTripSentinel, "")), true
}

func joinParagraphs(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
