package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/api/budget"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/itinerary"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the itinerary store. Every write goes through Save or Mutate,
// which are serialised per collection id.
type Service interface {
	Create(ctx context.Context, req types.CreateCollectionRequest) (*types.CreateCollectionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Collection, error)
	List(ctx context.Context) ([]types.CollectionSummary, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddNewDay(ctx context.Context, id uuid.UUID) (*types.Plan, error)

	// Save writes a full collection. A stale Revision is rejected with
	// types.ErrConflict.
	Save(ctx context.Context, c *types.Collection) (*types.Collection, error)

	// Mutate loads the collection, applies fn and saves the result under the
	// per-id lock. If fn fails nothing is written.
	Mutate(ctx context.Context, id uuid.UUID, fn func(*types.Collection) error) (*types.Collection, error)
}

// Forecaster attaches weather to a new trip. It never fails; an outage is
// reported through ForecastResult.Status.
type Forecaster interface {
	Forecast(ctx context.Context, start, end types.Date) types.ForecastResult
}

type Options struct {
	MaxTripDays          int
	RecommendedMaxBudget float64
	Location             *time.Location
}

type ServiceImpl struct {
	logger     *slog.Logger
	store      ports.CollectionStore
	forecaster Forecaster
	opts       Options
	locks      *keyedMutex
	now        func() time.Time
}

func NewServiceImpl(store ports.CollectionStore, forecaster Forecaster, opts Options, logger *slog.Logger) *ServiceImpl {
	if opts.MaxTripDays <= 0 {
		opts.MaxTripDays = 7
	}
	if opts.RecommendedMaxBudget <= 0 {
		opts.RecommendedMaxBudget = 50000
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &ServiceImpl{
		logger:     logger,
		store:      store,
		forecaster: forecaster,
		opts:       opts,
		locks:      newKeyedMutex(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *ServiceImpl) Create(ctx context.Context, req types.CreateCollectionRequest) (*types.CreateCollectionResponse, error) {
	ctx, span := otel.Tracer("CollectionService").Start(ctx, "Create", trace.WithAttributes(
		attribute.String("collection.name", req.Name),
		attribute.String("collection.category", string(req.Category)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Create"))
	l.DebugContext(ctx, "Creating collection")

	warnings, err := s.validateCreate(req)
	if err != nil {
		l.WarnContext(ctx, "Rejected collection", slog.Any("error", err))
		span.SetStatus(codes.Error, "Validation failed")
		return nil, err
	}

	now := s.now()
	c := &types.Collection{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(req.Name),
		Category:        req.Category,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Budget:          *req.Budget,
		WeatherForecast: []types.WeatherSnapshot{},
		ForecastStatus:  types.ForecastUnavailable,
		Plans:           []types.Plan{types.NewPlan(1)},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if s.forecaster != nil {
		fc := s.forecaster.Forecast(ctx, c.StartDate, c.EndDate)
		c.ForecastStatus = fc.Status
		if fc.Entries != nil {
			c.WeatherForecast = fc.Entries
		}
	}
	if c.ForecastStatus == types.ForecastUnavailable {
		warnings = append(warnings, "weather forecast is unavailable for this trip")
	}

	unlock := s.locks.Lock(c.ID)
	defer unlock()
	if err = s.persist(ctx, c); err != nil {
		l.ErrorContext(ctx, "Failed to save new collection", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Save failed")
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	l.InfoContext(ctx, "Collection created", slog.String("collectionID", c.ID.String()), slog.Int("warnings", len(warnings)))
	span.SetAttributes(attribute.String("collection.id", c.ID.String()))
	span.SetStatus(codes.Ok, "Collection created")
	return &types.CreateCollectionResponse{Collection: c, Warnings: warnings}, nil
}

func (s *ServiceImpl) validateCreate(req types.CreateCollectionRequest) ([]string, error) {
	var problems, warnings []string

	if strings.TrimSpace(req.Name) == "" {
		problems = append(problems, "name is required")
	}
	if req.Category == "" {
		problems = append(problems, "category is required")
	} else if !req.Category.Valid() {
		problems = append(problems, fmt.Sprintf("unknown category %q", req.Category))
	}
	if req.StartDate.IsZero() {
		problems = append(problems, "startDate is required")
	}
	if req.EndDate.IsZero() {
		problems = append(problems, "endDate is required")
	}
	if !req.StartDate.IsZero() && !req.EndDate.IsZero() {
		if req.EndDate.Before(req.StartDate.Time) {
			problems = append(problems, "endDate must not be before startDate")
		} else {
			days := int(req.EndDate.Sub(req.StartDate.Time).Hours()/24) + 1
			if days > s.opts.MaxTripDays {
				problems = append(problems, fmt.Sprintf("trip may not be longer than %d days", s.opts.MaxTripDays))
			}
		}
	}
	switch {
	case req.Budget == nil:
		problems = append(problems, "budget is required")
	case *req.Budget < 0:
		problems = append(problems, "budget must not be negative")
	case *req.Budget > s.opts.RecommendedMaxBudget:
		warnings = append(warnings, fmt.Sprintf("budget exceeds the recommended maximum of %.0f", s.opts.RecommendedMaxBudget))
	}

	if len(problems) > 0 {
		return nil, &types.ValidationError{Problems: problems}
	}
	return warnings, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id uuid.UUID) (*types.Collection, error) {
	ctx, span := otel.Tracer("CollectionService").Start(ctx, "Get", trace.WithAttributes(
		attribute.String("collection.id", id.String()),
	))
	defer span.End()

	c, err := s.store.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.logger.ErrorContext(ctx, "Failed to load collection", slog.String("collectionID", id.String()), slog.Any("error", err))
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, "Load failed")
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	span.SetStatus(codes.Ok, "Collection loaded")
	return c, nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]types.CollectionSummary, error) {
	ctx, span := otel.Tracer("CollectionService").Start(ctx, "List")
	defer span.End()

	l := s.logger.With(slog.String("method", "List"))

	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list collection ids", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "ListIDs failed")
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	summaries := make([]types.CollectionSummary, 0, len(ids))
	for _, id := range ids {
		c, err := s.store.Load(ctx, id)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "Load failed")
			return nil, fmt.Errorf("failed to load collection %s: %w", id, err)
		}
		summaries = append(summaries, types.CollectionSummary{
			ID:        c.ID,
			Name:      c.Name,
			Category:  c.Category,
			StartDate: c.StartDate,
			EndDate:   c.EndDate,
			Days:      len(c.Plans),
			Budget:    c.Budget,
			Spent:     budget.TotalSpent(c),
			UpdatedAt: c.UpdatedAt,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	l.DebugContext(ctx, "Collections listed", slog.Int("count", len(summaries)))
	span.SetStatus(codes.Ok, "Collections listed")
	return summaries, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("CollectionService").Start(ctx, "Delete", trace.WithAttributes(
		attribute.String("collection.id", id.String()),
	))
	defer span.End()

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Delete failed")
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	s.logger.InfoContext(ctx, "Collection deleted", slog.String("collectionID", id.String()))
	span.SetStatus(codes.Ok, "Collection deleted")
	return nil
}

func (s *ServiceImpl) AddNewDay(ctx context.Context, id uuid.UUID) (*types.Plan, error) {
	var added types.Plan
	_, err := s.Mutate(ctx, id, func(c *types.Collection) error {
		added = types.NewPlan(itinerary.NextDay(c.Plans))
		c.Plans = append(c.Plans, added)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

func (s *ServiceImpl) Save(ctx context.Context, c *types.Collection) (*types.Collection, error) {
	ctx, span := otel.Tracer("CollectionService").Start(ctx, "Save", trace.WithAttributes(
		attribute.String("collection.id", c.ID.String()),
		attribute.Int64("collection.revision", c.Revision),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Save"), slog.String("collectionID", c.ID.String()))

	if err := Validate(c); err != nil {
		span.SetStatus(codes.Error, "Validation failed")
		return nil, err
	}

	unlock := s.locks.Lock(c.ID)
	defer unlock()

	current, err := s.store.Load(ctx, c.ID)
	switch {
	case err == nil:
		if current.Revision != c.Revision {
			l.WarnContext(ctx, "Stale collection write rejected",
				slog.Int64("stored", current.Revision), slog.Int64("incoming", c.Revision))
			span.SetStatus(codes.Error, "Revision conflict")
			return nil, fmt.Errorf("collection %s is at revision %d, got %d: %w", c.ID, current.Revision, c.Revision, types.ErrConflict)
		}
		c.CreatedAt = current.CreatedAt
	case errors.Is(err, types.ErrNotFound):
		c.CreatedAt = s.now()
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "Load failed")
		return nil, fmt.Errorf("failed to save collection: %w", err)
	}

	out := cloneCollection(c)
	if err = s.persist(ctx, out); err != nil {
		l.ErrorContext(ctx, "Failed to save collection", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Save failed")
		return nil, fmt.Errorf("failed to save collection: %w", err)
	}
	span.SetStatus(codes.Ok, "Collection saved")
	return out, nil
}

func (s *ServiceImpl) Mutate(ctx context.Context, id uuid.UUID, fn func(*types.Collection) error) (*types.Collection, error) {
	ctx, span := otel.Tracer("CollectionService").Start(ctx, "Mutate", trace.WithAttributes(
		attribute.String("collection.id", id.String()),
	))
	defer span.End()

	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.store.Load(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, "Load failed")
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	if err = fn(c); err != nil {
		span.SetStatus(codes.Error, "Mutation rejected")
		return nil, err
	}
	if err = s.persist(ctx, c); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save mutated collection", slog.String("collectionID", id.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Save failed")
		return nil, fmt.Errorf("failed to save collection: %w", err)
	}
	span.SetStatus(codes.Ok, "Collection mutated")
	return c, nil
}

// persist repairs plan invariants, bumps the revision and writes c. The
// caller holds the lock for c.ID.
func (s *ServiceImpl) persist(ctx context.Context, c *types.Collection) error {
	m := metrics.Get()
	for i := range c.Plans {
		if c.Plans[i].Stops == nil {
			c.Plans[i].Stops = []types.Stop{}
		}
		if c.Plans[i].Activities == nil {
			c.Plans[i].Activities = []types.Activity{}
		}
		if itinerary.SanitizeBeforeSave(&c.Plans[i]) {
			s.logger.InfoContext(ctx, "Cleared accommodation-like start location",
				slog.String("collectionID", c.ID.String()), slog.Int("day", c.Plans[i].Day))
			m.InvariantRepairsTotal.Add(ctx, 1)
		}
	}
	if len(c.WeatherForecast) > 5 {
		c.WeatherForecast = c.WeatherForecast[:5]
	}
	c.Revision++
	c.UpdatedAt = s.now()
	if err := s.store.Save(ctx, c); err != nil {
		c.Revision--
		return err
	}
	m.CollectionsSavedTotal.Add(ctx, 1)
	return nil
}

func cloneCollection(c *types.Collection) *types.Collection {
	out := *c
	out.WeatherForecast = append([]types.WeatherSnapshot(nil), c.WeatherForecast...)
	out.Plans = make([]types.Plan, len(c.Plans))
	for i, p := range c.Plans {
		p.Stops = append([]types.Stop(nil), p.Stops...)
		p.Activities = append([]types.Activity(nil), p.Activities...)
		out.Plans[i] = p
	}
	return &out
}

// Validate checks the structure of a collection received from a client or
// loaded from an import.
func Validate(c *types.Collection) error {
	var problems []string
	if c.ID == uuid.Nil {
		problems = append(problems, "id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		problems = append(problems, "name is required")
	}
	if !c.Category.Valid() {
		problems = append(problems, fmt.Sprintf("unknown category %q", c.Category))
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		problems = append(problems, "startDate and endDate are required")
	} else if c.EndDate.Before(c.StartDate.Time) {
		problems = append(problems, "endDate must not be before startDate")
	}
	if c.Budget < 0 {
		problems = append(problems, "budget must not be negative")
	}
	if len(c.WeatherForecast) > 5 {
		problems = append(problems, "weatherForecast holds at most 5 entries")
	}
	seen := make(map[int]bool, len(c.Plans))
	for _, p := range c.Plans {
		if p.Day <= 0 {
			problems = append(problems, fmt.Sprintf("plan day %d must be positive", p.Day))
		}
		if seen[p.Day] {
			problems = append(problems, fmt.Sprintf("duplicate plan day %d", p.Day))
		}
		seen[p.Day] = true
		for i, st := range p.Stops {
			if !itinerary.ValidClock(st.TimeStart) || !itinerary.ValidClock(st.TimeEnd) {
				problems = append(problems, fmt.Sprintf("day %d stop %d has an invalid time", p.Day, i))
			}
		}
		for i, a := range p.Activities {
			if a.Cost < 0 {
				problems = append(problems, fmt.Sprintf("day %d activity %d has a negative cost", p.Day, i))
			}
		}
	}
	if len(problems) > 0 {
		return &types.ValidationError{Problems: problems}
	}
	return nil
}
