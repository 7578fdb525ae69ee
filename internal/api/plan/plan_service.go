package plan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/budget"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/collection"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/weather"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/itinerary"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// RouteInvalidator drops derived route state for a day. It is called after
// any change to the stops or the start location.
type RouteInvalidator interface {
	Invalidate(collectionID uuid.UUID, day int)
}

// Service edits one day of a collection. Every write goes through
// collection.Service.Mutate so the per-collection lock is held.
type Service interface {
	AddStop(ctx context.Context, collectionID uuid.UUID, day int, stop types.Stop) (*types.Plan, error)
	RemoveStop(ctx context.Context, collectionID uuid.UUID, day, index int) (*types.Plan, error)
	UpdateStopField(ctx context.Context, collectionID uuid.UUID, day, index int, field itinerary.StopField, value string) (*types.Plan, error)
	ReplaceStops(ctx context.Context, collectionID uuid.UUID, day int, stops []types.Stop) (*types.Plan, error)
	UpdateTransportation(ctx context.Context, collectionID uuid.UUID, day int, startLocation, endLocationOverride, transportation string) (*types.Plan, error)
	UpdateAccommodation(ctx context.Context, collectionID uuid.UUID, day int, accommodation string) (*types.Plan, error)
	UpdateActivities(ctx context.Context, collectionID uuid.UUID, day int, activities []types.Activity) (*types.Plan, error)
	GetDay(ctx context.Context, collectionID uuid.UUID, day int) (*types.DayView, error)
}

type ServiceImpl struct {
	logger      *slog.Logger
	collections collection.Service
	routes      RouteInvalidator
	loc         *time.Location
}

func NewServiceImpl(collections collection.Service, routes RouteInvalidator, loc *time.Location, logger *slog.Logger) *ServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &ServiceImpl{
		logger:      logger,
		collections: collections,
		routes:      routes,
		loc:         loc,
	}
}

// mutatePlan runs fn against the plan for day and returns the stored plan.
func (s *ServiceImpl) mutatePlan(ctx context.Context, method string, collectionID uuid.UUID, day int, fn func(*types.Plan) error) (*types.Plan, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, method, trace.WithAttributes(
		attribute.String("collection.id", collectionID.String()),
		attribute.Int("day", day),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", method), slog.String("collectionID", collectionID.String()), slog.Int("day", day))

	c, err := s.collections.Mutate(ctx, collectionID, func(c *types.Collection) error {
		p := c.Plan(day)
		if p == nil {
			return fmt.Errorf("day %d of collection %s: %w", day, collectionID, types.ErrNotFound)
		}
		return fn(p)
	})
	if err != nil {
		l.WarnContext(ctx, "Plan update rejected", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Plan update failed")
		return nil, err
	}

	p := c.Plan(day)
	l.DebugContext(ctx, "Plan updated", slog.Int("stops", len(p.Stops)), slog.Int("activities", len(p.Activities)))
	span.SetStatus(codes.Ok, "Plan updated")
	return p, nil
}

func (s *ServiceImpl) invalidate(collectionID uuid.UUID, day int) {
	if s.routes != nil {
		s.routes.Invalidate(collectionID, day)
	}
}

func (s *ServiceImpl) AddStop(ctx context.Context, collectionID uuid.UUID, day int, stop types.Stop) (*types.Plan, error) {
	if err := validateStop(0, stop); err != nil {
		return nil, err
	}
	p, err := s.mutatePlan(ctx, "AddStop", collectionID, day, func(p *types.Plan) error {
		itinerary.OnStopsChanged(p, itinerary.AddStop(p.Stops, stop))
		return nil
	})
	if err == nil {
		s.invalidate(collectionID, day)
	}
	return p, err
}

func (s *ServiceImpl) RemoveStop(ctx context.Context, collectionID uuid.UUID, day, index int) (*types.Plan, error) {
	p, err := s.mutatePlan(ctx, "RemoveStop", collectionID, day, func(p *types.Plan) error {
		stops, err := itinerary.RemoveStop(p.Stops, index)
		if err != nil {
			return err
		}
		itinerary.OnStopsChanged(p, stops)
		return nil
	})
	if err == nil {
		s.invalidate(collectionID, day)
	}
	return p, err
}

func (s *ServiceImpl) UpdateStopField(ctx context.Context, collectionID uuid.UUID, day, index int, field itinerary.StopField, value string) (*types.Plan, error) {
	p, err := s.mutatePlan(ctx, "UpdateStopField", collectionID, day, func(p *types.Plan) error {
		stops, err := itinerary.UpdateStopField(p.Stops, index, field, value)
		if err != nil {
			return err
		}
		itinerary.OnStopsChanged(p, stops)
		return nil
	})
	if err == nil {
		s.invalidate(collectionID, day)
	}
	return p, err
}

func (s *ServiceImpl) ReplaceStops(ctx context.Context, collectionID uuid.UUID, day int, stops []types.Stop) (*types.Plan, error) {
	for i, st := range stops {
		if err := validateStop(i, st); err != nil {
			return nil, err
		}
	}
	p, err := s.mutatePlan(ctx, "ReplaceStops", collectionID, day, func(p *types.Plan) error {
		itinerary.OnStopsChanged(p, append([]types.Stop{}, stops...))
		return nil
	})
	if err == nil {
		s.invalidate(collectionID, day)
	}
	return p, err
}

func (s *ServiceImpl) UpdateTransportation(ctx context.Context, collectionID uuid.UUID, day int, startLocation, endLocationOverride, transportation string) (*types.Plan, error) {
	var startChanged bool
	p, err := s.mutatePlan(ctx, "UpdateTransportation", collectionID, day, func(p *types.Plan) error {
		before := p.StartLocation
		itinerary.OnTransportationChanged(p, startLocation, endLocationOverride, transportation)
		startChanged = before != p.StartLocation
		return nil
	})
	if err == nil && startChanged {
		s.invalidate(collectionID, day)
	}
	return p, err
}

func (s *ServiceImpl) UpdateAccommodation(ctx context.Context, collectionID uuid.UUID, day int, accommodation string) (*types.Plan, error) {
	return s.mutatePlan(ctx, "UpdateAccommodation", collectionID, day, func(p *types.Plan) error {
		itinerary.OnAccommodationChanged(p, strings.TrimSpace(accommodation))
		return nil
	})
}

func (s *ServiceImpl) UpdateActivities(ctx context.Context, collectionID uuid.UUID, day int, activities []types.Activity) (*types.Plan, error) {
	if err := validateActivities(activities); err != nil {
		return nil, err
	}
	return s.mutatePlan(ctx, "UpdateActivities", collectionID, day, func(p *types.Plan) error {
		itinerary.OnActivitiesChanged(p, activities, s.loc)
		return nil
	})
}

func (s *ServiceImpl) GetDay(ctx context.Context, collectionID uuid.UUID, day int) (*types.DayView, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "GetDay", trace.WithAttributes(
		attribute.String("collection.id", collectionID.String()),
		attribute.Int("day", day),
	))
	defer span.End()

	c, err := s.collections.Get(ctx, collectionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Load failed")
		return nil, err
	}
	p := c.Plan(day)
	if p == nil {
		span.SetStatus(codes.Error, "Day not found")
		return nil, fmt.Errorf("day %d of collection %s: %w", day, collectionID, types.ErrNotFound)
	}

	view := &types.DayView{
		CollectionID:  c.ID,
		Plan:          *p,
		Date:          c.StartDate.AddDays(day - 1),
		Status:        itinerary.Status(*p),
		StopDurations: itinerary.StopDurations(p.Stops),
		DaySpent:      budget.DaySpent(*p),
	}
	if w, ok := weather.WeatherFor(c, day); ok {
		view.Weather = &w
	}
	span.SetStatus(codes.Ok, "Day assembled")
	return view, nil
}

func validateStop(i int, st types.Stop) error {
	var problems []string
	if !itinerary.ValidClock(st.TimeStart) {
		problems = append(problems, fmt.Sprintf("stops[%d].timeStart must be HH:MM, got %q", i, st.TimeStart))
	}
	if !itinerary.ValidClock(st.TimeEnd) {
		problems = append(problems, fmt.Sprintf("stops[%d].timeEnd must be HH:MM, got %q", i, st.TimeEnd))
	}
	if len(problems) > 0 {
		return &types.ValidationError{Problems: problems}
	}
	return nil
}

func validateActivities(activities []types.Activity) error {
	var problems []string
	for i, a := range activities {
		if strings.TrimSpace(a.Title) == "" {
			problems = append(problems, fmt.Sprintf("activities[%d].title is required", i))
		}
		if a.Cost < 0 {
			problems = append(problems, fmt.Sprintf("activities[%d].cost must not be negative", i))
		}
		if !itinerary.ValidClock(a.TimeStart) || !itinerary.ValidClock(a.TimeEnd) {
			problems = append(problems, fmt.Sprintf("activities[%d] times must be HH:MM", i))
		}
	}
	if len(problems) > 0 {
		return &types.ValidationError{Problems: problems}
	}
	return nil
}
